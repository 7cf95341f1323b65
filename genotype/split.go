package genotype

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/varcall/runner"
	"github.com/grailbio/varcall/sample"
)

// SplitByRegions returns the split function handed to the execution
// delegate. A group whose samples carry assigned regions becomes one work
// unit per region, outputs namespaced by caller, region, and sample name so
// concurrent units never collide. A group without regions is not split and
// passes through uncalled. ext is the output extension, compound
// extensions included (".vcf.gz").
func SplitByRegions(ext string) runner.SplitFunc {
	return func(ctx context.Context, items []*sample.Sample) (string, []runner.Unit, error) {
		s := items[0]
		if len(s.Regions) == 0 {
			return "", nil, nil
		}
		name := s.Name
		if len(items) > 1 {
			name = s.Batch()
		}
		outDir := filepath.Join(s.Dirs.Work, activeCaller(s))
		units := make([]runner.Unit, 0, len(s.Regions))
		for i, r := range s.Regions {
			reg := r
			bams, err := regionBams(items, i)
			if err != nil {
				return "", nil, errors.E(err, fmt.Sprintf("sample %s region %s", name, r.String()))
			}
			for _, b := range bams {
				if _, err := file.Stat(ctx, b); err != nil {
					return "", nil, errors.E(err, fmt.Sprintf(
						"sample %s region %s: missing BAM %s", name, r.String(), b))
				}
			}
			units = append(units, runner.Unit{
				Items:  items,
				Region: &reg,
				Bams:   bams,
				Out:    filepath.Join(outDir, r.DirName(), fmt.Sprintf("%s-%s%s", name, r.SafeStr(), ext)),
			})
		}
		return filepath.Join(outDir, name+ext), units, nil
	}
}

// regionBams resolves the input BAMs of region i: one path from every BAM
// source of every batch mate, taking a source's single path when it applies
// to all regions. A mate without per-region assignments contributes its
// working BAMs to every region.
func regionBams(items []*sample.Sample, i int) ([]string, error) {
	var bams []string
	for _, m := range items {
		sources := m.RegionBams
		if len(sources) == 0 {
			for _, b := range m.WorkingBams() {
				sources = append(sources, []string{b})
			}
		}
		for _, src := range sources {
			switch {
			case len(src) == 1:
				bams = append(bams, src[0])
			case i < len(src):
				bams = append(bams, src[i])
			default:
				return nil, errors.New(fmt.Sprintf(
					"BAM source has %d paths, need index %d", len(src), i))
			}
		}
	}
	return bams, nil
}
