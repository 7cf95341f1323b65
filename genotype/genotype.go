// Package genotype orchestrates parallel variant calling. A sample record
// fans out once per configured caller, then once per assigned genomic
// region; the resulting work units run through an execution delegate, and
// the per-region outputs are stitched back together, collapsed to one
// record per caller, and finally combined across callers into a terminal
// record carrying an ordered variants list. The package is synchronous and
// stateless between calls; all parallelism lives in the delegate.
package genotype

import (
	"context"

	"github.com/grailbio/base/log"
	"github.com/grailbio/varcall/runner"
	"github.com/grailbio/varcall/sample"
)

// vcfExt is the extension of region calling outputs, compound so that
// bgzip compression survives path surgery.
const vcfExt = ".vcf.gz"

// RunRegionParallel drives region-parallel genotyping of samples through
// d. Samples with no calling requested short-circuit through the precalled
// path and come back first, uncalled; everything else expands per caller,
// groups into batches, splits per region, calls, and collapses back to one
// record per (batch, BAMs, caller). The result still carries per-caller
// records; CombineMultipleCallers merges those into terminal records.
func RunRegionParallel(ctx context.Context, samples []*sample.Sample, d runner.Delegate) ([]*sample.Sample, error) {
	var (
		toProcess [][]*sample.Sample
		extras    []*sample.Sample
	)
	for _, s := range samples {
		expanded := ExpandCallers(s, VariantCallerKey, DefaultCaller)
		if len(expanded) == 0 {
			p, err := HandlePrecalled(ctx, s)
			if err != nil {
				return nil, err
			}
			extras = append(extras, p)
			continue
		}
		for _, e := range expanded {
			toProcess = append(toProcess, []*sample.Sample{e})
		}
	}
	log.Debug.Printf("genotype: %d work records, %d uncalled", len(toProcess), len(extras))
	groups := sample.GroupBatches(toProcess)
	called, err := runner.SplitCombine(ctx, d, groups, SplitByRegions(vcfExt))
	if err != nil {
		return nil, err
	}
	return append(extras, CollapseByBamCaller(called)...), nil
}
