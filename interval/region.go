package interval

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// PosType is the type used to represent interval coordinates. int32 should
// be wide enough for some time to come, since that's what BAM is limited to.
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt32

// Region is one named genomic interval used to partition calling work.
// Coordinates are zero-based half-open. A region spanning [0, PosTypeMax)
// denotes a whole chromosome.
type Region struct {
	Chrom string  `json:"chrom"`
	Start PosType `json:"start"`
	End   PosType `json:"end"`
	// Name, when set, overrides the chromosome as the region's directory
	// name in split output paths (e.g. a callable-region block label).
	Name string `json:"name,omitempty"`
}

// WholeChrom returns the region covering all of chrom.
func WholeChrom(chrom string) Region {
	return Region{Chrom: chrom, Start: 0, End: PosTypeMax}
}

// ParseRegion parses a samtools-style region descriptor. Accepted forms are
// "chr" (whole chromosome), "chr:pos" (single position), and
// "chr:start-end". Input coordinates are one-based inclusive; the stored
// coordinates are zero-based half-open.
func ParseRegion(desc string) (Region, error) {
	colonPos := strings.IndexByte(desc, ':')
	if colonPos == -1 {
		if desc == "" {
			return Region{}, errors.New("empty region descriptor")
		}
		return WholeChrom(desc), nil
	}
	chrom := desc[:colonPos]
	if chrom == "" {
		return Region{}, errors.Errorf("region %q has no chromosome", desc)
	}
	rangeStr := desc[colonPos+1:]
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		pos, err := strconv.ParseInt(rangeStr, 10, 64)
		if err != nil || pos < 1 || pos > PosTypeMax {
			return Region{}, errors.Errorf("invalid position in region %q", desc)
		}
		return Region{Chrom: chrom, Start: PosType(pos - 1), End: PosType(pos)}, nil
	}
	start, err := strconv.ParseInt(rangeStr[:dashPos], 10, 64)
	if err != nil || start < 1 || start > PosTypeMax {
		return Region{}, errors.Errorf("invalid start in region %q", desc)
	}
	end, err := strconv.ParseInt(rangeStr[dashPos+1:], 10, 64)
	if err != nil || end < start || end > PosTypeMax {
		return Region{}, errors.Errorf("invalid end in region %q", desc)
	}
	return Region{Chrom: chrom, Start: PosType(start - 1), End: PosType(end)}, nil
}

// IsWhole reports whether r covers a whole chromosome.
func (r Region) IsWhole() bool {
	return r.Start == 0 && r.End == PosTypeMax
}

// String renders r in samtools form: the bare chromosome name for
// whole-chromosome regions, otherwise "chr:start-end" with one-based
// inclusive coordinates. ParseRegion(r.String()) reproduces r.
func (r Region) String() string {
	if r.IsWhole() {
		return r.Chrom
	}
	return fmt.Sprintf("%s:%d-%d", r.Chrom, int64(r.Start)+1, int64(r.End))
}

// SafeStr returns a filesystem-safe identifier for r, used in split output
// file names.
func (r Region) SafeStr() string {
	if r.IsWhole() {
		return r.Chrom
	}
	return fmt.Sprintf("%s_%d_%d", r.Chrom, r.Start, r.End)
}

// DirName returns the per-region directory component of split output paths:
// the region's name when one was assigned, otherwise its chromosome.
func (r Region) DirName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Chrom
}

// UnmarshalJSON accepts three manifest forms for a region: a descriptor
// string ("chr:start-end"), a [chrom, start, end] array with zero-based
// half-open coordinates, and the object form matching MarshalJSON.
func (r *Region) UnmarshalJSON(b []byte) error {
	b = []byte(strings.TrimSpace(string(b)))
	if len(b) == 0 {
		return errors.New("empty region value")
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := ParseRegion(s)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	case '[':
		var parts []json.RawMessage
		if err := json.Unmarshal(b, &parts); err != nil {
			return err
		}
		if len(parts) != 3 {
			return errors.Errorf("region array must have 3 elements, has %d", len(parts))
		}
		var chrom string
		var start, end int64
		if err := json.Unmarshal(parts[0], &chrom); err != nil {
			return err
		}
		if err := json.Unmarshal(parts[1], &start); err != nil {
			return err
		}
		if err := json.Unmarshal(parts[2], &end); err != nil {
			return err
		}
		if start < 0 || end < start || end > PosTypeMax {
			return errors.Errorf("invalid region coordinates [%d, %d)", start, end)
		}
		*r = Region{Chrom: chrom, Start: PosType(start), End: PosType(end)}
		return nil
	default:
		type plain Region
		var p plain
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		*r = Region(p)
		return nil
	}
}
