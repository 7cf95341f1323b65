package vcf

import (
	"context"
	"encoding/hex"
	"io"
	"strconv"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/minio/highwayhash"
)

type hashKey = [highwayhash.Size]uint8

// Stats summarizes the records of one VCF output.
type Stats struct {
	Records     uint64
	Fingerprint string // hex HighwayHash of the record text, in order
}

// FileStats scans path and returns the record count plus an order-sensitive
// fingerprint of the record text. Header lines do not contribute, so files
// with identical calls fingerprint identically even when their headers
// carry different tool banners.
func FileStats(ctx context.Context, path string) (stats Stats, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return Stats{}, errors.E(err, "vcf stats:", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, path); u != nil {
		r = u
	}
	sc, err := NewScanner(r)
	if err != nil {
		return Stats{}, errors.E(err, "vcf stats:", path)
	}
	var seed hashKey
	h, err := highwayhash.New(seed[:])
	if err != nil {
		return Stats{}, err
	}
	for sc.Scan() {
		h.Write([]byte(sc.Record()))
		h.Write([]byte{'\n'})
		stats.Records++
	}
	if err := sc.Err(); err != nil {
		return Stats{}, errors.E(err, "vcf stats:", path)
	}
	stats.Fingerprint = hex.EncodeToString(h.Sum(nil))
	return stats, nil
}

// StatsPath returns the sidecar path holding the stats for a VCF output.
func StatsPath(vcfPath string) string { return vcfPath + ".stats.tsv" }

// WriteStats writes stats as a one-row TSV sidecar next to vcfPath.
func WriteStats(ctx context.Context, vcfPath string, stats Stats) (err error) {
	out, err := file.Create(ctx, StatsPath(vcfPath))
	if err != nil {
		return errors.E(err, "vcf stats:", vcfPath)
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := tsv.NewWriter(out.Writer(ctx))
	w.WriteString("records")
	w.WriteString("fingerprint")
	if err := w.EndLine(); err != nil {
		return err
	}
	w.WriteString(strconv.FormatUint(stats.Records, 10))
	w.WriteString(stats.Fingerprint)
	if err := w.EndLine(); err != nil {
		return err
	}
	return w.Flush()
}
