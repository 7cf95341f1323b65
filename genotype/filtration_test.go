package genotype

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/grailbio/varcall/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiltrationPassthrough(t *testing.T) {
	ctx := context.Background()
	for name, alg := range map[string]sample.Algorithm{
		"caller list":      {VariantCaller: sample.Callers("samtools", "freebayes")},
		"no filter step":   {VariantCaller: sample.ScalarCaller("vardict")},
		"unknown caller":   {VariantCaller: sample.ScalarCaller("sitecaller")},
		"nothing selected": {},
	} {
		s := &sample.Sample{Name: "s1", Config: sample.Config{Algorithm: alg}}
		out, err := VariantFiltration(ctx, "/work/s1.vcf.gz", s)
		require.NoError(t, err, name)
		assert.Equal(t, "/work/s1.vcf.gz", out, name)
	}
}

func TestFiltrationScalar(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "filter")
	defer cleanup()
	ctx := context.Background()

	// A finished filter output short-circuits the tool run.
	callFile := filepath.Join(tmp, "s1.vcf")
	filtered := filepath.Join(tmp, "s1-filter.vcf")
	require.NoError(t, ioutil.WriteFile(filtered, []byte("filtered"), 0644))

	s := &sample.Sample{
		Name: "s1",
		Config: sample.Config{Algorithm: sample.Algorithm{
			VariantCaller: sample.ScalarCaller("samtools"),
		}},
	}
	out, err := VariantFiltration(ctx, callFile, s)
	require.NoError(t, err)
	assert.Equal(t, filtered, out)
}

func TestFiltrationFemale(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "filter")
	defer cleanup()
	ctx := context.Background()

	// Ploidy normalization chains into the caller filter: both staged
	// outputs exist already, so the paths alone prove the routing.
	callFile := filepath.Join(tmp, "s1.vcf")
	require.NoError(t, ioutil.WriteFile(filepath.Join(tmp, "s1-ploidyfix.vcf"), nil, 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(tmp, "s1-ploidyfix-filter.vcf"), nil, 0644))

	s := &sample.Sample{
		Name:     "s1",
		Metadata: sample.Metadata{Sex: "female"},
		Config: sample.Config{Algorithm: sample.Algorithm{
			VariantCaller: sample.ScalarCaller("freebayes"),
		}},
	}
	out, err := VariantFiltration(ctx, callFile, s)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "s1-ploidyfix-filter.vcf"), out)
}
