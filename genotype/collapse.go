package genotype

import (
	"github.com/grailbio/varcall/sample"
)

// CollapseByBamCaller reduces per-region call results to one record per
// (batch, working BAMs, caller) group: the group's first record represents
// it, with region-scoped fields stripped. When the input was split into
// distinct per-region BAMs, the single working-BAM field no longer
// identifies the merged result and is dropped as well. Group encounter
// order is preserved.
func CollapseByBamCaller(samples []*sample.Sample) []*sample.Sample {
	seen := make(map[uint64]bool)
	var out []*sample.Sample
	for _, s := range samples {
		key := s.CollapseKey(activeCaller(s))
		if seen[key] {
			continue
		}
		seen[key] = true
		regionBams := s.RegionBams
		s.Regions = nil
		s.RegionBams = nil
		if len(regionBams) > 0 && len(regionBams[0]) > 1 {
			s.WorkBams = nil
		}
		out = append(out, s)
	}
	return out
}
