// Package vcf provides the small slice of VCF handling the variant-calling
// pipeline needs: header-aware scanning, empty-output synthesis for regions
// with no aligned reads, and concatenation of per-region outputs.
//
// It is deliberately not a general VCF toolkit. Callers produce their VCFs
// through external tools; this package only stitches, stubs, and summarizes
// those files.
package vcf

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bgzf"
)

// fixedColumns counts the mandatory VCF columns, CHROM through INFO.
const fixedColumns = 8

// bgzfParallelism bounds compressor threads; the files written directly by
// this package are small.
const bgzfParallelism = 1

// Scanner iterates over the records of one VCF stream. The header is
// consumed eagerly at construction time.
type Scanner struct {
	meta     []string // "##" metadata lines, in order
	columns  string   // the "#CHROM" column line, "" if absent
	scan     *bufio.Scanner
	pending  string
	buffered bool
	line     string
}

// NewScanner reads the header of r and returns a Scanner positioned at the
// first record.
func NewScanner(r io.Reader) (*Scanner, error) {
	sc := bufio.NewScanner(r)
	// Multi-sample records routinely exceed bufio's default token size.
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	s := &Scanner{scan: sc}
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "##"):
			s.meta = append(s.meta, line)
		case strings.HasPrefix(line, "#"):
			s.columns = line
		case line == "":
			// Blank lines are tolerated anywhere.
		default:
			s.pending = line
			s.buffered = true
		}
		if s.buffered {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.E(err, "vcf: reading header")
	}
	return s, nil
}

// Meta returns the "##" metadata lines in file order.
func (s *Scanner) Meta() []string { return s.meta }

// ColumnLine returns the "#CHROM" line, or "" for a headerless stream.
func (s *Scanner) ColumnLine() string { return s.columns }

// Samples returns the sample names declared on the column line, in order.
func (s *Scanner) Samples() []string {
	fields := strings.Split(s.columns, "\t")
	// Column 9 is FORMAT; samples follow it.
	if len(s.columns) == 0 || len(fields) <= fixedColumns+1 {
		return nil
	}
	return fields[fixedColumns+1:]
}

// Scan advances to the next record, returning false at EOF or on error.
func (s *Scanner) Scan() bool {
	if s.buffered {
		s.line = s.pending
		s.buffered = false
		return true
	}
	for s.scan.Scan() {
		if line := s.scan.Text(); line != "" {
			s.line = line
			return true
		}
	}
	return false
}

// Record returns the record produced by the last successful Scan.
func (s *Scanner) Record() string { return s.line }

// Err returns the first error encountered while scanning records.
func (s *Scanner) Err() error { return s.scan.Err() }

// WriteEmpty writes a valid VCF with a header and no records to path, for
// regions where no reads aligned. When samples are given they are declared
// on the column line together with FORMAT. A path ending in .gz is written
// BGZF-compressed so downstream indexing still works.
func WriteEmpty(ctx context.Context, path string, samples []string) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "vcf: create", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	var w io.Writer = out.Writer(ctx)
	if strings.HasSuffix(path, ".gz") {
		bz := bgzf.NewWriter(w, bgzfParallelism)
		defer func() {
			if e := bz.Close(); e != nil && err == nil {
				err = e
			}
		}()
		w = bz
	}
	var sb strings.Builder
	sb.WriteString("##fileformat=VCFv4.1\n")
	sb.WriteString("## No variants; no reads aligned in region\n")
	sb.WriteString("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO")
	if len(samples) > 0 {
		sb.WriteString("\tFORMAT\t")
		sb.WriteString(strings.Join(samples, "\t"))
	}
	sb.WriteString("\n")
	_, err = io.WriteString(w, sb.String())
	return err
}
