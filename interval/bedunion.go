package interval

import (
	"bufio"
	"context"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// ivKey is one disjoint interval stored in a per-chromosome tree, ordered
// by start position. Starts are unique after merging, so Compare need only
// look at them.
type ivKey struct {
	start, end PosType
}

// Compare compares two ivKey objects for use in llrb.
func (k ivKey) Compare(c2 llrb.Comparable) int {
	return int(k.start - c2.(ivKey).start)
}

// BEDUnion is a set of genomic intervals grouped by chromosome, loaded from
// a BED file or built from regions. Overlapping and adjacent input
// intervals are merged, so the stored intervals are disjoint and each
// chromosome's intervals form a searchable tree.
type BEDUnion struct {
	chroms map[string]*llrb.Tree
	// names preserves chromosome encounter order for deterministic output.
	names []string
}

// NewBEDUnion builds a union from the given regions. Region names are
// ignored; only coordinates participate.
func NewBEDUnion(regions []Region) *BEDUnion {
	byChrom := map[string][]Region{}
	u := &BEDUnion{chroms: map[string]*llrb.Tree{}}
	for _, r := range regions {
		if _, ok := byChrom[r.Chrom]; !ok {
			u.names = append(u.names, r.Chrom)
		}
		byChrom[r.Chrom] = append(byChrom[r.Chrom], r)
	}
	for _, chrom := range u.names {
		entries := byChrom[chrom]
		sort.Slice(entries, func(i, j int) bool { return entries[i].Start < entries[j].Start })
		tree := &llrb.Tree{}
		cur := ivKey{entries[0].Start, entries[0].End}
		for _, e := range entries[1:] {
			if e.Start <= cur.end {
				if e.End > cur.end {
					cur.end = e.End
				}
				continue
			}
			tree.Insert(cur)
			cur = ivKey{e.Start, e.End}
		}
		tree.Insert(cur)
		u.chroms[chrom] = tree
	}
	return u
}

// NewBEDUnionFromPath loads a BED file, which may be gzip-compressed.
// Zero-based half-open coordinates are assumed, per the BED convention.
// Lines starting with "track", "browser", or "#" are skipped.
func NewBEDUnionFromPath(ctx context.Context, pathname string) (u *BEDUnion, err error) {
	in, err := file.Open(ctx, pathname)
	if err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	var reader io.Reader = in.Reader(ctx)
	if fileio.DetermineType(pathname) == fileio.Gzip {
		var gz *gzip.Reader
		if gz, err = gzip.NewReader(reader); err != nil {
			return nil, errors.Wrapf(err, "%s: gzip open", pathname)
		}
		defer func() {
			if e := gz.Close(); e != nil && err == nil {
				err = e
			}
		}()
		reader = gz
	}
	regions, err := parseBED(reader, pathname)
	if err != nil {
		return nil, err
	}
	return NewBEDUnion(regions), nil
}

func parseBED(reader io.Reader, pathname string) ([]Region, error) {
	var regions []Region
	scanner := bufio.NewScanner(reader)
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		line := scanner.Text()
		if line == "" || line[0] == '#' ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}
		var tokens [4]string
		n := splitTokens(line, tokens[:])
		if n < 3 {
			return nil, errors.Errorf("%s:%d: fewer than 3 columns", pathname, lineIdx)
		}
		start, err := strconv.ParseInt(tokens[1], 10, 64)
		if err != nil || start < 0 {
			return nil, errors.Errorf("%s:%d: invalid start %q", pathname, lineIdx, tokens[1])
		}
		end, err := strconv.ParseInt(tokens[2], 10, 64)
		if err != nil || end < start || end > PosTypeMax {
			return nil, errors.Errorf("%s:%d: invalid end %q", pathname, lineIdx, tokens[2])
		}
		if end == start {
			// Empty intervals mention the chromosome but cover nothing.
			continue
		}
		r := Region{Chrom: tokens[0], Start: PosType(start), End: PosType(end)}
		if n > 3 {
			r.Name = tokens[3]
		}
		regions = append(regions, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, pathname)
	}
	if len(regions) == 0 {
		return nil, errors.Errorf("%s: no intervals", pathname)
	}
	return regions, nil
}

// splitTokens identifies up to the first len(tokens) whitespace-separated
// tokens from line, returning the number of tokens saved. Any (group of)
// characters <= ' ' is treated as a delimiter.
func splitTokens(line string, tokens []string) int {
	posEnd := 0
	lineLen := len(line)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if line[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if line[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = line[pos:posEnd]
	}
	return len(tokens)
}

// Chroms returns the chromosome names in encounter order.
func (u *BEDUnion) Chroms() []string {
	return u.names
}

// Intersect returns the parts of r covered by the union, clipped to r, in
// position order.
func (u *BEDUnion) Intersect(r Region) []Region {
	tree := u.chroms[r.Chrom]
	if tree == nil || r.End <= r.Start {
		return nil
	}
	var out []Region
	clip := func(k ivKey) {
		start, end := k.start, k.end
		if start < r.Start {
			start = r.Start
		}
		if end > r.End {
			end = r.End
		}
		if start < end {
			out = append(out, Region{Chrom: r.Chrom, Start: start, End: end})
		}
	}
	// An interval starting before r can still overlap it; Floor finds the
	// only candidate.
	if c := tree.Floor(ivKey{start: r.Start}); c != nil {
		if k := c.(ivKey); k.start < r.Start && k.end > r.Start {
			clip(k)
		}
	}
	tree.DoRange(func(c llrb.Comparable) bool {
		k := c.(ivKey)
		if k.start >= r.End {
			return true
		}
		clip(k)
		return false
	}, ivKey{start: r.Start}, ivKey{start: r.End})
	return out
}

// Overlaps reports whether any part of r is covered by the union.
func (u *BEDUnion) Overlaps(r Region) bool {
	return len(u.Intersect(r)) > 0
}

// TotalBases returns the number of covered bases across all chromosomes.
func (u *BEDUnion) TotalBases() int64 {
	var n int64
	for _, chrom := range u.names {
		u.chroms[chrom].Do(func(c llrb.Comparable) bool {
			k := c.(ivKey)
			n += int64(k.end - k.start)
			return false
		})
	}
	return n
}
