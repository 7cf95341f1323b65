package caller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionLess(t *testing.T) {
	for _, tc := range []struct {
		a, b string
		want bool
	}{
		{"0.1.19", "1.9", true},
		{"1.9", "0.1.19", false},
		{"0.1.19", "0.1.19", false},
		{"0.1.18", "0.1.19", true},
		{"0.1.19", "0.1.19-44428cd", false},
		{"1.9", "1.10", true},
		{"1.10", "1.9", false},
		{"1.9", "1.9.1", true},
		{"1", "1.0", false},
	} {
		assert.Equal(t, tc.want, versionLess(tc.a, tc.b), "%s < %s", tc.a, tc.b)
	}
}

func TestVersionBannerParse(t *testing.T) {
	for banner, want := range map[string]string{
		"samtools 1.9\nUsing htslib 1.9\nCopyright (C) 2018": "1.9",
		"bcftools 1.10.2\nUsing htslib 1.10.2":               "1.10.2",
		"\nProgram: samtools (Tools for alignments in the SAM format)\n" +
			"Version: 0.1.19-44428cd (r96)\n\nUsage: samtools <command>": "0.1.19-44428cd",
	} {
		m := versionRE.FindSubmatch([]byte(banner))
		require.NotNil(t, m, banner)
		assert.Equal(t, want, string(m[1]))
	}
	assert.Nil(t, versionRE.FindSubmatch([]byte("Usage: tool <command> [options]")))
}
