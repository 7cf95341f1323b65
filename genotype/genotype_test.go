package genotype

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/grailbio/varcall/interval"
	"github.com/grailbio/varcall/runner"
	"github.com/grailbio/varcall/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDelegate fabricates per-unit results without running tools.
type recordingDelegate struct {
	units []runner.Unit
	jobs  []runner.ConcatJob
}

func (d *recordingDelegate) CallVariants(ctx context.Context, units []runner.Unit) ([]*sample.Sample, error) {
	d.units = append(d.units, units...)
	results := make([]*sample.Sample, len(units))
	for i, u := range units {
		r := u.Items[0].Clone()
		if u.Region != nil {
			r.Regions = []interval.Region{*u.Region}
		}
		r.VrnFile = sample.PathOf(u.Out)
		results[i] = r
	}
	return results, nil
}

func (d *recordingDelegate) ConcatVariantFiles(ctx context.Context, jobs []runner.ConcatJob) error {
	d.jobs = append(d.jobs, jobs...)
	return nil
}

func TestRunRegionParallel(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "genotype")
	defer cleanup()
	ctx := context.Background()

	bam := filepath.Join(tmp, "s1.bam")
	require.NoError(t, ioutil.WriteFile(bam, []byte("bam"), 0644))
	s1 := configured(t, `{
		"description": "s1",
		"config": {"algorithm": {"variantcaller": ["samtools", "freebayes"]}}
	}`)
	s1.AlignBams = sample.Paths{bam}
	s1.Regions = []interval.Region{interval.WholeChrom("chr1"), interval.WholeChrom("chr2")}
	s1.Dirs = sample.Dirs{Work: tmp}

	precalledSrc := filepath.Join(tmp, "external.vcf.gz")
	require.NoError(t, ioutil.WriteFile(precalledSrc, []byte("vcf"), 0644))
	pre := &sample.Sample{
		Name:    "pre",
		VrnFile: sample.PathOf(precalledSrc),
		Dirs:    sample.Dirs{Work: tmp},
	}

	nrBam := filepath.Join(tmp, "nr.bam")
	require.NoError(t, ioutil.WriteFile(nrBam, []byte("bam"), 0644))
	nr := configured(t, `{
		"description": "nr",
		"config": {"algorithm": {"variantcaller": "samtools"}}
	}`)
	nr.AlignBams = sample.Paths{nrBam}
	nr.Dirs = sample.Dirs{Work: tmp}

	d := &recordingDelegate{}
	out, err := RunRegionParallel(ctx, []*sample.Sample{s1, pre, nr}, d)
	require.NoError(t, err)
	require.Len(t, out, 4)

	// Uncalled samples come back first, staged into the work tree.
	assert.Equal(t, "pre", out[0].Name)
	assert.Equal(t, filepath.Join(tmp, "precalled", "pre-precalled.vcf.gz"), out[0].VrnFile.String())

	st := out[1]
	assert.Equal(t, "s1", st.Name)
	assert.Equal(t, "samtools", st.Config.Algorithm.VariantCaller.Active())
	assert.True(t, st.Config.Algorithm.VariantCaller.IsScalar())
	assert.Equal(t, []string{"samtools", "freebayes"}, st.Config.Algorithm.Provenance.VariantCaller)
	assert.Equal(t, filepath.Join(tmp, "samtools", "s1.vcf.gz"), st.VrnFile.String())
	assert.Nil(t, st.Regions, "collapse strips per-region state")

	fb := out[2]
	assert.Equal(t, "freebayes", fb.Config.Algorithm.VariantCaller.Active())
	assert.Equal(t, filepath.Join(tmp, "freebayes", "s1.vcf.gz"), fb.VrnFile.String())

	assert.True(t, out[3] == nr, "a regionless sample passes through untouched")
	assert.True(t, out[3].VrnFile.Empty())

	// Four region units ran, two per caller clone, then one merge each.
	require.Len(t, d.units, 4)
	assert.Equal(t, filepath.Join(tmp, "samtools", "chr1", "s1-chr1.vcf.gz"), d.units[0].Out)
	assert.Equal(t, filepath.Join(tmp, "samtools", "chr2", "s1-chr2.vcf.gz"), d.units[1].Out)
	assert.Equal(t, filepath.Join(tmp, "freebayes", "chr1", "s1-chr1.vcf.gz"), d.units[2].Out)
	assert.Equal(t, filepath.Join(tmp, "freebayes", "chr2", "s1-chr2.vcf.gz"), d.units[3].Out)
	require.Len(t, d.jobs, 2)
	assert.Equal(t, runner.ConcatJob{
		Inputs: []string{d.units[0].Out, d.units[1].Out},
		Out:    filepath.Join(tmp, "samtools", "s1.vcf.gz"),
	}, d.jobs[0])
	assert.Equal(t, runner.ConcatJob{
		Inputs: []string{d.units[2].Out, d.units[3].Out},
		Out:    filepath.Join(tmp, "freebayes", "s1.vcf.gz"),
	}, d.jobs[1])
}

func TestRunRegionParallelCombine(t *testing.T) {
	// The full chain: fan out, call, collapse, then combine back into one
	// terminal record per sample.
	tmp, cleanup := testutil.TempDir(t, "", "genotype")
	defer cleanup()
	ctx := context.Background()

	bam := filepath.Join(tmp, "s1.bam")
	require.NoError(t, ioutil.WriteFile(bam, []byte("bam"), 0644))
	s1 := configured(t, `{
		"description": "s1",
		"config": {"algorithm": {"variantcaller": ["samtools", "freebayes"]}}
	}`)
	s1.AlignBams = sample.Paths{bam}
	s1.Regions = []interval.Region{interval.WholeChrom("chr1")}
	s1.Dirs = sample.Dirs{Work: tmp}

	called, err := RunRegionParallel(ctx, []*sample.Sample{s1}, &recordingDelegate{})
	require.NoError(t, err)
	require.Len(t, called, 2)

	out, err := CombineMultipleCallers(called)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].Variants, 2)
	assert.Equal(t, "samtools", out[0].Variants[0].Caller)
	assert.Equal(t, "freebayes", out[0].Variants[1].Caller)
	assert.Equal(t, sample.Callers("samtools", "freebayes"), out[0].Config.Algorithm.VariantCaller)
	assert.Nil(t, out[0].Config.Algorithm.Provenance)
}
