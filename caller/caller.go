// Package caller defines the registry of supported variant callers and the
// adapters that drive them. The samtools mpileup plus bcftools pipeline is
// driven natively; the remaining callers are recognized, validated, and
// filtered here, with their invocation left to site tooling.
package caller

import (
	"context"
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/varcall/interval"
	"github.com/grailbio/varcall/sample"
	"github.com/grailbio/varcall/util"
)

// Name identifies a supported variant caller.
type Name string

const (
	Samtools      Name = "samtools"
	GATK          Name = "gatk"
	GATKHaplotype Name = "gatk-haplotype"
	FreeBayes     Name = "freebayes"
	VarDict       Name = "vardict"
	VarScan       Name = "varscan"
	Platypus      Name = "platypus"

	// Precalled is not configurable. It marks variants supplied by the
	// user instead of produced by a caller run.
	Precalled Name = "precalled"
)

// CallInput carries everything one caller invocation needs for one region.
type CallInput struct {
	AlignBams  []string
	Items      []*sample.Sample
	RefFile    string
	AssocFiles map[string]string // reference-associated resources, eg "dbsnp"
	Region     *interval.Region  // nil means the whole genome
	OutFile    string            // "" selects the default location
}

// CallFunc produces variant calls, returning the path of the finished VCF.
// Implementations are idempotent: an existing output short-circuits work.
type CallFunc func(ctx context.Context, in CallInput) (string, error)

// FilterInput carries the arguments of a post-calling filter step.
type FilterInput struct {
	CallFile   string
	RefFile    string
	AssocFiles map[string]string
}

// FilterFunc applies caller-specific filters, returning the path of the
// filtered VCF.
type FilterFunc func(ctx context.Context, in FilterInput) (string, error)

// Caller bundles the operations registered for one supported caller. Fn is
// nil for callers this build validates and filters but does not drive
// natively. FilterFn is nil for callers whose output needs no extra
// filtering.
type Caller struct {
	Name       Name
	Fn         CallFunc
	FilterFn   FilterFunc
	JointAware bool
}

// supportedNames fixes the display and suggestion order.
var supportedNames = []string{
	"freebayes",
	"gatk",
	"gatk-haplotype",
	"platypus",
	"samtools",
	"vardict",
	"varscan",
}

var registry = map[Name]*Caller{
	Samtools:      {Name: Samtools, Fn: samtoolsCall, FilterFn: samtoolsFilter, JointAware: true},
	GATK:          {Name: GATK, FilterFn: gatkFilter},
	GATKHaplotype: {Name: GATKHaplotype, FilterFn: gatkFilter, JointAware: true},
	FreeBayes:     {Name: FreeBayes, FilterFn: freebayesFilter, JointAware: true},
	VarDict:       {Name: VarDict},
	VarScan:       {Name: VarScan},
	Platypus:      {Name: Platypus, FilterFn: platypusFilter, JointAware: true},
}

// SupportedNames returns the configurable caller names in display order.
func SupportedNames() []string {
	return append([]string(nil), supportedNames...)
}

// Find returns the registry entry for name, or nil when name is unknown.
// Use it where unknown names must pass through rather than fail.
func Find(name string) *Caller {
	return registry[Name(name)]
}

// suggestionDistance bounds how far a typo may be from a supported name
// before suggesting it does more harm than good.
const suggestionDistance = 3

// Lookup resolves a configured caller name. Unknown names are a
// configuration error whose message carries the closest supported name
// when one is plausibly near.
func Lookup(name string) (*Caller, error) {
	if c := Find(name); c != nil {
		return c, nil
	}
	if best, dist := util.Nearest(name, supportedNames); dist >= 0 && dist <= suggestionDistance {
		return nil, errors.New(fmt.Sprintf("unsupported variantcaller %q (did you mean %q?)", name, best))
	}
	return nil, errors.New(fmt.Sprintf("unsupported variantcaller %q", name))
}

// ValidateNames checks a sample's configured caller lists against the
// registry before any work is scheduled. Joint caller names must extend a
// joint-capable base caller, eg "samtools-joint".
func ValidateNames(s *sample.Sample) error {
	for _, name := range s.Config.Algorithm.VariantCaller.Names() {
		if _, err := Lookup(name); err != nil {
			return errors.E(err, "sample", s.Name)
		}
	}
	for _, joint := range s.Config.Algorithm.JointCaller.Names() {
		if !validJointName(joint) {
			return errors.New(fmt.Sprintf(
				"sample %s: jointcaller %q does not extend a joint-capable caller", s.Name, joint))
		}
	}
	return nil
}

func validJointName(joint string) bool {
	for _, name := range supportedNames {
		if c := registry[Name(name)]; c.JointAware && strings.HasPrefix(joint, name) {
			return true
		}
	}
	return false
}
