package vcf

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/bgzf"
)

// Concat concatenates per-region VCFs into out, keeping the header of the
// first input only. Inputs must share sample columns; records are appended
// in the order the paths are given, which for region outputs is genome
// order. An existing out is left untouched, and a partial write never
// becomes visible under the final name.
func Concat(ctx context.Context, paths []string, out string) error {
	if len(paths) == 0 {
		return errors.New("vcf concat: no inputs")
	}
	if _, err := file.Stat(ctx, out); err == nil {
		log.Debug.Printf("vcf concat: %s exists, skipping", out)
		return nil
	}
	tmp := out + ".tmp"
	if err := writeConcat(ctx, tmp, paths, strings.HasSuffix(out, ".gz")); err != nil {
		return errors.E(err, "vcf concat:", out)
	}
	return os.Rename(tmp, out)
}

func writeConcat(ctx context.Context, tmp string, paths []string, bgzip bool) (err error) {
	dst, err := file.Create(ctx, tmp)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, dst, &err)
	var w io.Writer = dst.Writer(ctx)
	if bgzip {
		bz := bgzf.NewWriter(w, bgzfParallelism)
		defer func() {
			if e := bz.Close(); e != nil && err == nil {
				err = e
			}
		}()
		w = bz
	}
	buf := bufio.NewWriter(w)
	for i, path := range paths {
		if err := appendFile(ctx, buf, path, i == 0); err != nil {
			return err
		}
	}
	return buf.Flush()
}

func appendFile(ctx context.Context, w *bufio.Writer, path string, withHeader bool) (err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, in, &err)
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, path); u != nil {
		r = u
	}
	sc, err := NewScanner(r)
	if err != nil {
		return errors.E(err, path)
	}
	if withHeader {
		for _, line := range sc.Meta() {
			w.WriteString(line)
			w.WriteByte('\n')
		}
		if cols := sc.ColumnLine(); cols != "" {
			w.WriteString(cols)
			w.WriteByte('\n')
		}
	}
	for sc.Scan() {
		w.WriteString(sc.Record())
		w.WriteByte('\n')
	}
	return sc.Err()
}
