package genotype

import (
	"strings"

	"github.com/grailbio/varcall/sample"
)

// Key selects which caller configuration field an expansion fans out over.
type Key string

const (
	VariantCallerKey Key = "variantcaller"
	JointCallerKey   Key = "jointcaller"
)

// DefaultCaller is assumed for a sample that has aligned input but no
// configured variant caller.
const DefaultCaller = "gatk"

// callerValue returns the effective caller configuration for key. A sample
// without aligned input has no caller regardless of configuration, and def
// stands in when the key was never configured. An explicitly disabled value
// is a configuration, not an absence, so it wins over def.
func callerValue(s *sample.Sample, key Key, def sample.CallerList) sample.CallerList {
	if len(s.AlignBams) == 0 {
		return sample.CallerList{}
	}
	var v sample.CallerList
	switch key {
	case JointCallerKey:
		v = s.Config.Algorithm.JointCaller
	default:
		v = s.Config.Algorithm.VariantCaller
	}
	if v.Len() == 0 && !v.IsDisabled() {
		return def
	}
	return v
}

// activeCaller resolves the concrete caller of a record the way every use
// site does: nothing without aligned input, the configured name otherwise,
// DefaultCaller when none was configured.
func activeCaller(s *sample.Sample) string {
	return callerValue(s, VariantCallerKey, sample.ScalarCaller(DefaultCaller)).Active()
}

// ExpandCallers fans a sample out over its configured callers for key: one
// clone per configured name, each set to one concrete caller and carrying
// the original list as provenance. A scalar configuration needs no fan-out
// and returns the record itself; a sample with no calling requested
// (nothing configured and no default, calling switched off, or no aligned
// input) returns nil.
//
// Expanding by variantcaller also deals each clone its share of any
// configured joint callers, by name prefix: a clone for "gatk-haplotype"
// takes "gatk-haplotype-joint" while a sibling clone for "samtools" has
// joint calling switched off.
func ExpandCallers(s *sample.Sample, key Key, def string) []*sample.Sample {
	var defList sample.CallerList
	if def != "" {
		defList = sample.ScalarCaller(def)
	}
	callers := callerValue(s, key, defList)
	switch {
	case callers.IsScalar():
		return []*sample.Sample{s}
	case callers.IsEmpty():
		return nil
	}
	out := make([]*sample.Sample, 0, callers.Len())
	for _, name := range callers.Names() {
		c := s.Clone()
		stashProvenance(&c.Config, key, callers.Names())
		setCaller(&c.Config, key, sample.ScalarCaller(name))
		if key == VariantCallerKey {
			expandJoint(s, c, name)
		}
		out = append(out, c)
	}
	return out
}

// expandJoint assigns clone c its share of the sample's configured joint
// callers: the first one whose name extends caller, or joint calling
// explicitly switched off when none does.
func expandJoint(orig, c *sample.Sample, caller string) {
	joint := callerValue(orig, JointCallerKey, sample.CallerList{})
	if joint.IsEmpty() {
		return
	}
	stashProvenance(&c.Config, JointCallerKey, joint.Names())
	for _, j := range joint.Names() {
		if strings.HasPrefix(j, caller) {
			setCaller(&c.Config, JointCallerKey, sample.ScalarCaller(j))
			return
		}
	}
	setCaller(&c.Config, JointCallerKey, sample.DisabledCallers())
}

func setCaller(c *sample.Config, key Key, v sample.CallerList) {
	switch key {
	case JointCallerKey:
		c.Algorithm.JointCaller = v
	default:
		c.Algorithm.VariantCaller = v
	}
}

// stashProvenance records the pre-expansion list for key. A stash already
// present is never overwritten, so re-expanding an expanded record cannot
// lose the original configuration.
func stashProvenance(c *sample.Config, key Key, names []string) {
	p := c.Algorithm.Provenance
	if p == nil {
		p = &sample.Provenance{}
		c.Algorithm.Provenance = p
	}
	cp := append([]string(nil), names...)
	switch key {
	case JointCallerKey:
		if len(p.JointCaller) == 0 {
			p.JointCaller = cp
		}
	default:
		if len(p.VariantCaller) == 0 {
			p.VariantCaller = cp
		}
	}
}
