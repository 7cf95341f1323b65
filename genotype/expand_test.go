package genotype

import (
	"encoding/json"
	"testing"

	"github.com/grailbio/varcall/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configured(t *testing.T, doc string) *sample.Sample {
	t.Helper()
	var s sample.Sample
	require.NoError(t, json.Unmarshal([]byte(doc), &s))
	return &s
}

func TestExpandScalar(t *testing.T) {
	s := configured(t, `{
		"description": "s1",
		"align_bam": "s1.bam",
		"config": {"algorithm": {"variantcaller": "samtools"}}
	}`)
	out := ExpandCallers(s, VariantCallerKey, DefaultCaller)
	require.Len(t, out, 1)
	assert.True(t, out[0] == s, "a scalar configuration passes through unexpanded")
	assert.Nil(t, s.Config.Algorithm.Provenance)
}

func TestExpandDefault(t *testing.T) {
	s := configured(t, `{"description": "s1", "align_bam": "s1.bam", "config": {"algorithm": {}}}`)
	out := ExpandCallers(s, VariantCallerKey, DefaultCaller)
	require.Len(t, out, 1)
	assert.True(t, out[0] == s)
	assert.Equal(t, "gatk", activeCaller(s))
}

func TestExpandNoCalling(t *testing.T) {
	for name, doc := range map[string]string{
		"no align_bam": `{
			"description": "s1",
			"config": {"algorithm": {"variantcaller": ["samtools"]}}
		}`,
		"disabled": `{
			"description": "s1",
			"align_bam": "s1.bam",
			"config": {"algorithm": {"variantcaller": false}}
		}`,
	} {
		s := configured(t, doc)
		assert.Nil(t, ExpandCallers(s, VariantCallerKey, DefaultCaller), name)
		assert.Equal(t, "", activeCaller(s), name)
	}
}

func TestExpandList(t *testing.T) {
	s := configured(t, `{
		"description": "s1",
		"align_bam": "s1.bam",
		"config": {"algorithm": {"variantcaller": ["samtools", "freebayes"]}}
	}`)
	out := ExpandCallers(s, VariantCallerKey, DefaultCaller)
	require.Len(t, out, 2)
	assert.Equal(t, "samtools", out[0].Config.Algorithm.VariantCaller.Active())
	assert.Equal(t, "freebayes", out[1].Config.Algorithm.VariantCaller.Active())
	for _, c := range out {
		assert.True(t, c.Config.Algorithm.VariantCaller.IsScalar())
		require.NotNil(t, c.Config.Algorithm.Provenance)
		assert.Equal(t, []string{"samtools", "freebayes"}, c.Config.Algorithm.Provenance.VariantCaller)
		assert.Empty(t, c.Config.Algorithm.Provenance.JointCaller)
	}
	// The original stays untouched and the clones are independent.
	assert.Nil(t, s.Config.Algorithm.Provenance)
	assert.Equal(t, []string{"samtools", "freebayes"}, s.Config.Algorithm.VariantCaller.Names())
	out[0].Config.Algorithm.Provenance.VariantCaller[0] = "mangled"
	assert.Equal(t, "samtools", out[1].Config.Algorithm.Provenance.VariantCaller[0])
}

func TestExpandJointPartition(t *testing.T) {
	s := configured(t, `{
		"description": "s1",
		"align_bam": "s1.bam",
		"config": {"algorithm": {
			"variantcaller": ["gatk-haplotype", "samtools"],
			"jointcaller": ["gatk-haplotype-joint"]
		}}
	}`)
	out := ExpandCallers(s, VariantCallerKey, DefaultCaller)
	require.Len(t, out, 2)

	gatk := out[0].Config.Algorithm
	assert.Equal(t, "gatk-haplotype-joint", gatk.JointCaller.Active())
	require.NotNil(t, gatk.Provenance)
	assert.Equal(t, []string{"gatk-haplotype-joint"}, gatk.Provenance.JointCaller)

	st := out[1].Config.Algorithm
	assert.True(t, st.JointCaller.IsDisabled(),
		"a clone with no matching joint caller has joint calling switched off, not unset")
	assert.Equal(t, []string{"gatk-haplotype-joint"}, st.Provenance.JointCaller)
}

func TestExpandJointScalarConfig(t *testing.T) {
	s := configured(t, `{
		"description": "s1",
		"align_bam": "s1.bam",
		"config": {"algorithm": {
			"variantcaller": ["samtools"],
			"jointcaller": "samtools-joint"
		}}
	}`)
	out := ExpandCallers(s, VariantCallerKey, DefaultCaller)
	require.Len(t, out, 1)
	assert.Equal(t, "samtools-joint", out[0].Config.Algorithm.JointCaller.Active())
}

func TestExpandIdempotent(t *testing.T) {
	s := configured(t, `{
		"description": "s1",
		"align_bam": "s1.bam",
		"config": {"algorithm": {"variantcaller": ["samtools", "freebayes"]}}
	}`)
	first := ExpandCallers(s, VariantCallerKey, DefaultCaller)
	require.Len(t, first, 2)
	clone := first[0]

	again := ExpandCallers(clone, VariantCallerKey, DefaultCaller)
	require.Len(t, again, 1)
	assert.True(t, again[0] == clone, "an expanded record re-expands to itself")
	assert.Equal(t, []string{"samtools", "freebayes"},
		clone.Config.Algorithm.Provenance.VariantCaller,
		"re-expansion must not overwrite provenance")
}
