package genotype

import (
	"context"

	"github.com/grailbio/varcall/caller"
	"github.com/grailbio/varcall/sample"
)

// VariantFiltration applies post-calling filters to callFile. Sex-linked
// region normalization runs first, unconditionally; after that the record's
// caller picks the filter. Only a concrete single-caller selection routes
// to a registered filter. Every other name, known or not, passes through
// untouched, filtration having happened as part of calling. The dispatch is
// total over the name domain.
func VariantFiltration(ctx context.Context, callFile string, s *sample.Sample) (string, error) {
	out, err := caller.NormalizeSex(ctx, callFile, s)
	if err != nil {
		return "", err
	}
	vc := s.Config.Algorithm.VariantCaller
	if !vc.IsScalar() {
		return out, nil
	}
	c := caller.Find(vc.Active())
	if c == nil || c.FilterFn == nil {
		return out, nil
	}
	return c.FilterFn(ctx, caller.FilterInput{
		CallFile:   out,
		RefFile:    s.Reference,
		AssocFiles: s.Resources,
	})
}
