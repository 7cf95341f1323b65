package genotype

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/varcall/sample"
	"github.com/grailbio/varcall/util"
)

// HandlePrecalled copies externally supplied variants into the working
// directory so downstream steps own every path they touch: the file lands
// at <work>/precalled/<name>-precalled<ext>, keeping its extension and any
// tabix index alongside, and the returned record's vrn_file points there.
// A sample without a supplied vrn_file passes through unchanged. Supplying
// more than one path is a configuration error.
func HandlePrecalled(ctx context.Context, s *sample.Sample) (*sample.Sample, error) {
	if s.VrnFile.Empty() {
		return s, nil
	}
	if s.VrnFile.Len() != 1 {
		return nil, errors.New(fmt.Sprintf(
			"sample %s: %d precalled variant files supplied, need exactly one",
			s.Name, s.VrnFile.Len()))
	}
	src := s.VrnFile.String()
	dir := filepath.Join(s.Dirs.Work, "precalled")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	_, ext := util.Splitext(src)
	dst := filepath.Join(dir, s.Name+"-precalled"+ext)
	if err := copyIfMissing(ctx, src, dst); err != nil {
		return nil, errors.E(err, "sample", s.Name, ": precalled variants")
	}
	if _, err := file.Stat(ctx, src+".tbi"); err == nil {
		if err := copyIfMissing(ctx, src+".tbi", dst+".tbi"); err != nil {
			return nil, errors.E(err, "sample", s.Name, ": precalled index")
		}
	}
	out := s.Clone()
	out.VrnFile = sample.PathOf(dst)
	return out, nil
}

func copyIfMissing(ctx context.Context, src, dst string) (err error) {
	if _, err := file.Stat(ctx, dst); err == nil {
		log.Debug.Printf("%s exists, skipping", dst)
		return nil
	}
	in, err := file.Open(ctx, src)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, in, &err)
	out, err := file.Create(ctx, dst)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	_, err = io.Copy(out.Writer(ctx), in.Reader(ctx))
	return err
}
