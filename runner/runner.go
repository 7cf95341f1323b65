// Package runner schedules variant-calling work. The genotyping core
// hands groups of per-region work units to a Delegate and receives
// finished sample records back; whether the delegate runs units in
// goroutines or on a cluster is its business. The core relies on three
// guarantees only: every unit of a group finishes before the group's
// combine step runs, the combine step sees all per-region outputs, and
// results keep enough identity for regrouping afterward.
package runner

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/varcall/interval"
	"github.com/grailbio/varcall/sample"
)

// Unit is one region's worth of calling work for one group of samples.
// Items lists every batch mate taking part; Bams holds the region's
// aligned inputs in Items order.
type Unit struct {
	Items  []*sample.Sample
	Region *interval.Region // nil means the whole genome
	Bams   []string
	Out    string
}

// ConcatJob stitches per-region outputs into one combined file. Inputs
// are listed in genome order.
type ConcatJob struct {
	Inputs []string
	Out    string
}

// Delegate runs batches of work units. Implementations may use any
// parallelism and any completion order, but must return one finished
// record per unit, in submission order; the first failure aborts the
// batch.
type Delegate interface {
	CallVariants(ctx context.Context, units []Unit) ([]*sample.Sample, error)
	ConcatVariantFiles(ctx context.Context, jobs []ConcatJob) error
}

// SplitFunc breaks one group of samples into per-region units and names
// the combined output their results roll up into. A group without region
// assignments returns no units; such groups pass through SplitCombine
// untouched.
type SplitFunc func(ctx context.Context, items []*sample.Sample) (combined string, units []Unit, err error)

// SplitCombine fans every group out across its regions, runs all units
// through the delegate, stitches each group's per-region outputs into its
// combined file, and returns one finished record per group, in submission
// order. Groups that produced no units pass through unchanged.
func SplitCombine(ctx context.Context, d Delegate, groups [][]*sample.Sample, split SplitFunc) ([]*sample.Sample, error) {
	type plan struct {
		combined string
		nunits   int
		items    []*sample.Sample
	}
	var (
		plans []plan
		units []Unit
	)
	for _, items := range groups {
		combined, groupUnits, err := split(ctx, items)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan{combined: combined, nunits: len(groupUnits), items: items})
		units = append(units, groupUnits...)
	}

	results, err := d.CallVariants(ctx, units)
	if err != nil {
		return nil, err
	}
	if len(results) != len(units) {
		return nil, errors.New(fmt.Sprintf(
			"delegate returned %d results for %d units", len(results), len(units)))
	}

	var jobs []ConcatJob
	base := 0
	for _, p := range plans {
		if p.nunits == 0 {
			continue
		}
		job := ConcatJob{Out: p.combined}
		for _, r := range results[base : base+p.nunits] {
			job.Inputs = append(job.Inputs, r.VrnFile.String())
		}
		jobs = append(jobs, job)
		base += p.nunits
	}
	if err := d.ConcatVariantFiles(ctx, jobs); err != nil {
		return nil, err
	}

	out := make([]*sample.Sample, 0, len(plans))
	base = 0
	for _, p := range plans {
		if p.nunits == 0 {
			out = append(out, p.items...)
			continue
		}
		rep := results[base]
		rep.VrnFile = sample.PathOf(p.combined)
		out = append(out, rep)
		base += p.nunits
	}
	return out, nil
}
