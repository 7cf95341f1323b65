package genotype

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/varcall/caller"
	"github.com/grailbio/varcall/encoding/vcf"
	"github.com/grailbio/varcall/interval"
	"github.com/grailbio/varcall/sample"
	"github.com/grailbio/varcall/util"
)

// CallRegion genotypes one region of one sample or batch: the per-unit
// entry point handed to the execution delegate. An existing output makes it
// a no-op apart from refreshing the returned record, which is how a rerun
// resumes after a crash. The returned record is a clone of the group's
// first member with the region and output recorded on it.
func CallRegion(ctx context.Context, items []*sample.Sample, region *interval.Region, alignBams []string, outFile string) (*sample.Sample, error) {
	s := items[0]
	name := activeCaller(s)
	fail := func(err error) (*sample.Sample, error) {
		return nil, errors.E(err, fmt.Sprintf(
			"sample %s caller %s region %s", s.Name, name, regionLabel(region)))
	}

	if _, err := file.Stat(ctx, outFile); err != nil {
		if len(items) > 1 && len(items) != len(alignBams) {
			return fail(errors.New(fmt.Sprintf(
				"%d batch members but %d input BAMs", len(items), len(alignBams))))
		}
		c := caller.Find(name)
		if c == nil {
			return fail(errors.New("unsupported variantcaller"))
		}
		if c.Fn == nil {
			return fail(errors.New("caller is not driven by this build"))
		}
		if err := os.MkdirAll(filepath.Dir(outFile), 0755); err != nil {
			return fail(err)
		}
		for _, b := range alignBams {
			if err := caller.IndexBam(ctx, b); err != nil {
				return fail(err)
			}
		}
		base, ext := util.Splitext(outFile)
		callFile, err := c.Fn(ctx, caller.CallInput{
			AlignBams:  alignBams,
			Items:      items,
			RefFile:    s.Reference,
			AssocFiles: s.Resources,
			Region:     region,
			OutFile:    base + "-raw" + ext,
		})
		if err != nil {
			return fail(err)
		}
		if s.Config.Algorithm.Phasing == "gatk" {
			if callFile, err = caller.ReadBackedPhasing(ctx, callFile, alignBams, s.Reference); err != nil {
				return fail(err)
			}
		}
		if err := publish(ctx, callFile, outFile); err != nil {
			return fail(err)
		}
	}
	if _, err := file.Stat(ctx, vcf.StatsPath(outFile)); err != nil {
		stats, err := vcf.FileStats(ctx, outFile)
		if err != nil {
			return fail(err)
		}
		if err := vcf.WriteStats(ctx, outFile, stats); err != nil {
			return fail(err)
		}
	}

	out := s.Clone()
	if region != nil {
		out.Regions = []interval.Region{*region}
	}
	out.VrnFile = sample.PathOf(outFile)
	out.VrnStats = vcf.StatsPath(outFile)
	return out, nil
}

func regionLabel(r *interval.Region) string {
	if r == nil {
		return "whole genome"
	}
	return r.String()
}

// publish exposes callFile under outFile. Both live in the same directory,
// so a relative symlink survives tree moves; filesystems without symlink
// support get a copy instead.
func publish(ctx context.Context, callFile, outFile string) error {
	os.Remove(outFile)
	if err := os.Symlink(filepath.Base(callFile), outFile); err == nil {
		return nil
	}
	return copyIfMissing(ctx, callFile, outFile)
}
