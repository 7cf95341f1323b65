package genotype

import (
	"testing"

	"github.com/grailbio/varcall/interval"
	"github.com/grailbio/varcall/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calledRegion(name, caller, chrom string) *sample.Sample {
	return &sample.Sample{
		Name:      name,
		AlignBams: sample.Paths{"/data/" + name + ".bam"},
		Regions:   []interval.Region{interval.WholeChrom(chrom)},
		Config: sample.Config{Algorithm: sample.Algorithm{
			VariantCaller: sample.ScalarCaller(caller),
		}},
	}
}

func TestCollapse(t *testing.T) {
	a1 := calledRegion("s1", "samtools", "chr1")
	a2 := calledRegion("s1", "samtools", "chr2")
	b1 := calledRegion("s1", "freebayes", "chr1")
	b2 := calledRegion("s1", "freebayes", "chr2")
	c1 := calledRegion("s2", "samtools", "chr1")

	out := CollapseByBamCaller([]*sample.Sample{a1, a2, b1, b2, c1})
	require.Len(t, out, 3)
	assert.True(t, out[0] == a1, "first record represents its group")
	assert.True(t, out[1] == b1)
	assert.True(t, out[2] == c1)

	for _, s := range out {
		assert.Nil(t, s.Regions)
		assert.Nil(t, s.RegionBams)
	}
	assert.Equal(t, sample.Paths{"/data/s1.bam"}, out[0].AlignBams)
}

func TestCollapseDropsWorkBam(t *testing.T) {
	// Two per-region BAMs in the first source: the merged record cannot
	// claim a single working BAM anymore.
	s := calledRegion("s1", "samtools", "chr1")
	s.WorkBams = sample.Paths{"/data/s1-prep.bam"}
	s.RegionBams = [][]string{{"/data/s1-chr1.bam", "/data/s1-chr2.bam"}}

	out := CollapseByBamCaller([]*sample.Sample{s})
	require.Len(t, out, 1)
	assert.Nil(t, out[0].WorkBams)
}

func TestCollapseKeepsSingularWorkBam(t *testing.T) {
	s := calledRegion("s1", "samtools", "chr1")
	s.WorkBams = sample.Paths{"/data/s1-prep.bam"}
	s.RegionBams = [][]string{{"/data/s1-prep.bam"}}

	out := CollapseByBamCaller([]*sample.Sample{s})
	require.Len(t, out, 1)
	assert.Equal(t, sample.Paths{"/data/s1-prep.bam"}, out[0].WorkBams)
}

func TestCollapseBatchedMates(t *testing.T) {
	// Batch mates share working BAMs after the worker merges them, so they
	// collapse to one record keyed by batch.
	tumor := calledRegion("tumor", "samtools", "chr1")
	tumor.Metadata = sample.Metadata{Batch: "pair1", Phenotype: "tumor"}
	tumor.WorkBams = sample.Paths{"/data/tumor.bam", "/data/normal.bam"}
	tumor2 := calledRegion("tumor", "samtools", "chr2")
	tumor2.Metadata = tumor.Metadata
	tumor2.WorkBams = tumor.WorkBams

	out := CollapseByBamCaller([]*sample.Sample{tumor, tumor2})
	require.Len(t, out, 1)
	assert.True(t, out[0] == tumor)
}
