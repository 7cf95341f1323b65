package runner

import (
	"context"
	"runtime"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/varcall/encoding/vcf"
	"github.com/grailbio/varcall/sample"
)

// Local runs work units in-process. Worker handles one unit at a time;
// units are divided across Parallelism goroutines.
type Local struct {
	Parallelism int // <= 0 selects one worker per CPU
	Worker      func(ctx context.Context, u Unit) (*sample.Sample, error)
}

func (l *Local) workers(n int) int {
	p := l.Parallelism
	if p <= 0 {
		p = runtime.NumCPU()
	}
	if p > n {
		p = n
	}
	return p
}

// CallVariants runs every unit through Worker. Results land in
// submission order no matter which units finish first.
func (l *Local) CallVariants(ctx context.Context, units []Unit) ([]*sample.Sample, error) {
	if len(units) == 0 {
		return nil, nil
	}
	results := make([]*sample.Sample, len(units))
	workers := l.workers(len(units))
	log.Printf("calling variants: %d units across %d workers", len(units), workers)
	err := traverse.Each(workers, func(jobIdx int) error {
		startIdx := (jobIdx * len(units)) / workers
		endIdx := ((jobIdx + 1) * len(units)) / workers
		for i := startIdx; i < endIdx; i++ {
			r, err := l.Worker(ctx, units[i])
			if err != nil {
				return err
			}
			results[i] = r
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ConcatVariantFiles stitches each job's inputs with the native VCF
// concatenator.
func (l *Local) ConcatVariantFiles(ctx context.Context, jobs []ConcatJob) error {
	if len(jobs) == 0 {
		return nil
	}
	workers := l.workers(len(jobs))
	return traverse.Each(workers, func(jobIdx int) error {
		startIdx := (jobIdx * len(jobs)) / workers
		endIdx := ((jobIdx + 1) * len(jobs)) / workers
		for i := startIdx; i < endIdx; i++ {
			if err := vcf.Concat(ctx, jobs[i].Inputs, jobs[i].Out); err != nil {
				return err
			}
		}
		return nil
	})
}
