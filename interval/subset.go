package interval

import (
	"context"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// Target is a region restriction handed to an external caller tool: a BED
// file listing the callable intervals, a literal region, or nothing usable
// (the restriction exists but covers no bases, so the caller should produce
// an empty result without running the tool).
type Target struct {
	path   string
	region Region
	kind   targetKind
}

type targetKind int

const (
	targetNone targetKind = iota
	targetFile
	targetRegion
)

// FileTarget restricts calling to the intervals in a BED file.
func FileTarget(path string) Target {
	return Target{path: path, kind: targetFile}
}

// RegionTarget restricts calling to a single region.
func RegionTarget(r Region) Target {
	return Target{region: r, kind: targetRegion}
}

// IsFile reports whether the restriction is a BED file.
func (t Target) IsFile() bool { return t.kind == targetFile }

// IsRegion reports whether the restriction is a literal region.
func (t Target) IsRegion() bool { return t.kind == targetRegion }

// Usable reports whether the restriction selects any bases at all.
func (t Target) Usable() bool { return t.kind != targetNone }

// Path returns the BED path of a file restriction.
func (t Target) Path() string { return t.path }

// Region returns the region of a literal-region restriction.
func (t Target) Region() Region { return t.region }

// SubsetToRegion restricts configured variant regions to one calling
// region:
//
//   - no variant-regions file configured: the region itself (or no
//     restriction at all when the region is also empty)
//   - variant regions configured, no region: the variant-regions file
//   - both configured: their intersection, written as
//     "<outBase>-regions.bed"; an empty intersection returns an unusable
//     Target, which callers treat as "write an empty result"
//
// The subset BED write is skipped when the output already exists.
func SubsetToRegion(ctx context.Context, variantRegions string, region *Region, outBase string) (Target, error) {
	if variantRegions == "" {
		if region == nil {
			return Target{}, nil
		}
		return RegionTarget(*region), nil
	}
	if region == nil {
		return FileTarget(variantRegions), nil
	}
	outPath := outBase + "-regions.bed"
	if _, err := file.Stat(ctx, outPath); err == nil {
		return FileTarget(outPath), nil
	}
	union, err := NewBEDUnionFromPath(ctx, variantRegions)
	if err != nil {
		return Target{}, errors.Wrapf(err, "variant regions %s", variantRegions)
	}
	subset := union.Intersect(*region)
	if len(subset) == 0 {
		return Target{}, nil
	}
	if err := writeBED(ctx, outPath, subset); err != nil {
		return Target{}, err
	}
	return FileTarget(outPath), nil
}

// writeBED writes regions as a three-column BED file.
func writeBED(ctx context.Context, path string, regions []Region) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := tsv.NewWriter(out.Writer(ctx))
	for _, r := range regions {
		w.WriteString(r.Chrom)
		w.WriteUint32(uint32(r.Start))
		w.WriteUint32(uint32(r.End))
		if err = w.EndLine(); err != nil {
			return errors.Wrapf(err, "write %s", path)
		}
	}
	return w.Flush()
}
