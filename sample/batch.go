package sample

import (
	"blainsmith.com/go/seahash"
)

// Batch returns the batch this sample is analyzed in, falling back to the
// sample name when no batch was assigned.
func (s *Sample) Batch() string {
	if s.Metadata.Batch != "" {
		return s.Metadata.Batch
	}
	return s.Name
}

// IsPaired reports whether this sample is the tumor side of a paired
// (tumor/normal) analysis.
func (s *Sample) IsPaired() bool {
	return s.Metadata.Batch != "" && s.Metadata.Phenotype == "tumor"
}

// IsPairedAnalysis reports whether any of items belongs to a paired
// analysis.
func IsPairedAnalysis(items []*Sample) bool {
	for _, s := range items {
		if s.IsPaired() {
			return true
		}
	}
	return false
}

// WorkingBams returns the BAM identity used in group keys: the working set
// when present, otherwise the aligned inputs.
func (s *Sample) WorkingBams() Paths {
	if len(s.WorkBams) > 0 {
		return s.WorkBams
	}
	return s.AlignBams
}

// groupKey hashes the given fields into a stable 64-bit key. Fields are
// NUL-separated; paths and names never contain NUL.
func groupKey(fields ...string) uint64 {
	n := len(fields)
	for _, f := range fields {
		n += len(f)
	}
	buf := make([]byte, 0, n)
	for _, f := range fields {
		buf = append(buf, f...)
		buf = append(buf, 0)
	}
	return seahash.Sum64(buf)
}

// CollapseKey identifies the group of expanded per-region records that must
// recombine into one: one key per (batch, working BAMs, variant caller).
// The caller is passed in because sites resolve it with their own default.
// Equal BAM path sequences yield equal keys regardless of how the sequence
// was built.
func (s *Sample) CollapseKey(caller string) uint64 {
	fields := make([]string, 0, len(s.WorkingBams())+2)
	fields = append(fields, s.Batch())
	fields = append(fields, s.WorkingBams()...)
	fields = append(fields, caller)
	return groupKey(fields...)
}

// CombineKey identifies the group of caller clones belonging to one
// sample/batch: one key per (batch, working BAMs), the caller deliberately
// excluded so that all callers for a sample collapse together.
func (s *Sample) CombineKey() uint64 {
	fields := make([]string, 0, len(s.WorkingBams())+1)
	fields = append(fields, s.Batch())
	fields = append(fields, s.WorkingBams()...)
	return groupKey(fields...)
}

// GroupBatches merges single-record work items that share a batch into one
// multi-record item whose first member acts as the representative, so
// batched samples travel together through split/combine. Unbatched records
// pass through as singletons. Encounter order is preserved throughout.
func GroupBatches(items [][]*Sample) [][]*Sample {
	type group struct {
		idx     int
		members []*Sample
	}
	var out [][]*Sample
	batches := map[string]*group{}
	for _, item := range items {
		for _, s := range item {
			if s.Metadata.Batch == "" {
				out = append(out, []*Sample{s})
				continue
			}
			// Batched samples with distinct caller configurations must
			// not merge: fan-out clones of one batch stay separate
			// per-caller work items.
			key := s.Metadata.Batch + "\x00" + s.Config.Algorithm.VariantCaller.Active()
			g, ok := batches[key]
			if !ok {
				out = append(out, []*Sample{s})
				batches[key] = &group{idx: len(out) - 1, members: out[len(out)-1]}
				continue
			}
			g.members = append(g.members, s)
			out[g.idx] = g.members
		}
	}
	return out
}
