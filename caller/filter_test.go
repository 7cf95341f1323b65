package caller

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterNaming(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "filter")
	defer cleanup()
	ctx := context.Background()

	calls := filepath.Join(tmp, "calls.vcf.gz")
	want := filepath.Join(tmp, "calls-filter.vcf.gz")
	touch(t, want)

	// Every registered filter writes <base>-filter<ext> and honors an
	// existing output without running its tool.
	for _, name := range []string{"samtools", "freebayes", "platypus", "gatk", "gatk-haplotype"} {
		c := Find(name)
		require.NotNil(t, c, name)
		require.NotNil(t, c.FilterFn, name)
		got, err := c.FilterFn(ctx, FilterInput{CallFile: calls, RefFile: "ref.fa"})
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	for _, name := range []string{"vardict", "varscan"} {
		require.NotNil(t, Find(name), name)
		assert.Nil(t, Find(name).FilterFn, name)
	}
}
