package genotype

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/varcall/sample"
)

// CombineMultipleCallers merges the finished records of every caller run
// for one sample or batch into a single terminal record holding an ordered
// variants list. Records group by (batch, working BAMs); within a group the
// first record becomes the merged result. When the group was fanned out
// from a multi-caller configuration, entries sort back into the originally
// configured order and the pre-expansion caller lists become the active
// configuration again; otherwise encounter order stands. Staging fields
// are cleared either way.
func CombineMultipleCallers(samples []*sample.Sample) ([]*sample.Sample, error) {
	type member struct {
		caller, joint string
		s             *sample.Sample
	}
	var order []uint64
	groups := make(map[uint64][]member)
	for _, s := range samples {
		key := s.CombineKey()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], member{
			caller: activeCaller(s),
			joint:  s.Config.Algorithm.JointCaller.Active(),
			s:      s,
		})
	}
	out := make([]*sample.Sample, 0, len(order))
	for _, key := range order {
		group := groups[key]
		var entries []sample.Variant
		for _, m := range group {
			if m.caller != "" {
				v := sample.Variant{
					Caller:     m.caller,
					Stats:      m.s.VrnStats,
					Extra:      m.s.VrnFilePlus,
					Population: true,
					DoUpload:   true,
				}
				if m.joint != "" {
					// Joint output supersedes the per-sample file: keep
					// the pre-joint call here and leave batch files,
					// validation, and population loading to the joint
					// entry.
					v.File = m.s.VrnFileOrig
					v.Population = false
				} else {
					v.File = m.s.VrnFile.String()
					v.BatchFile = m.s.VrnFileBatch
					v.Validate = m.s.Validate
				}
				entries = append(entries, v)
			}
			if m.joint != "" {
				entries = append(entries, sample.Variant{
					Caller:     m.joint,
					File:       m.s.VrnFile.String(),
					BatchFile:  m.s.VrnFileBatch,
					Validate:   m.s.Validate,
					Population: true,
					DoUpload:   false,
				})
			}
			if m.caller == "" && m.joint == "" {
				entries = append(entries, sample.Variant{
					Caller:     "precalled",
					File:       m.s.VrnFile.String(),
					Validate:   m.s.Validate,
					Population: true,
					DoUpload:   false,
				})
			}
		}
		final := group[0].s
		prov := final.Config.Algorithm.Provenance
		if len(entries) > 1 && prov != nil && len(prov.VariantCaller) > 0 {
			if err := sortByConfiguredOrder(entries, prov); err != nil {
				return nil, errors.E(err, "sample", final.Name)
			}
			alg := &final.Config.Algorithm
			alg.VariantCaller = sample.Callers(prov.VariantCaller...)
			if len(prov.JointCaller) > 0 {
				alg.JointCaller = sample.Callers(prov.JointCaller...)
			}
			alg.Provenance = nil
		}
		final.Variants = entries
		final.VrnFileBatch = ""
		final.VrnFileOrig = ""
		final.VrnFilePlus = nil
		final.VrnStats = ""
		out = append(out, final)
	}
	return out, nil
}

// sortByConfiguredOrder arranges entries by their caller's position in the
// concatenated original lists, variant callers before joint callers. An
// entry whose caller appears in neither list means the provenance does not
// cover the group's results; that is a configuration error, not something
// to guess an order for.
func sortByConfiguredOrder(entries []sample.Variant, prov *sample.Provenance) error {
	rank := make(map[string]int, len(prov.VariantCaller)+len(prov.JointCaller))
	for i, name := range prov.VariantCaller {
		rank[name] = i
	}
	for i, name := range prov.JointCaller {
		if _, ok := rank[name]; !ok {
			rank[name] = len(prov.VariantCaller) + i
		}
	}
	type keyed struct {
		rank int
		v    sample.Variant
	}
	ks := make([]keyed, len(entries))
	for i, e := range entries {
		r, ok := rank[e.Caller]
		if !ok {
			return errors.New(fmt.Sprintf(
				"caller %q is not in the original caller configuration", e.Caller))
		}
		ks[i] = keyed{rank: r, v: e}
	}
	sort.SliceStable(ks, func(a, b int) bool { return ks[a].rank < ks[b].rank })
	for i := range ks {
		entries[i] = ks[i].v
	}
	return nil
}
