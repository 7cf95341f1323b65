package util

import (
	"testing"

	"github.com/antzucaro/matchr"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"samtools", "samtools", 0},
		{"samtool", "samtools", 1},
		{"freebayes", "freebayse", 2},
		{"vardict", "varscan", 4},
		{"gatk", "gatk-haplotype", 10},
		{"", "varscan", 7},
		{"platypus", "", 8},
	}

	for _, test := range tests {
		got := EditDistance(test.s1, test.s2)
		if got != test.want {
			t.Errorf("EditDistance(%q, %q): got %v, want %v", test.s1, test.s2, got, test.want)
		}
		// Cross-check against the reference implementation.
		if ref := matchr.Levenshtein(test.s1, test.s2); got != ref {
			t.Errorf("EditDistance(%q, %q) disagrees with reference: got %v, reference %v",
				test.s1, test.s2, got, ref)
		}
		// Distance is symmetric.
		if rev := EditDistance(test.s2, test.s1); got != rev {
			t.Errorf("EditDistance(%q, %q) not symmetric: %v vs %v", test.s1, test.s2, got, rev)
		}
	}
}

func TestNearest(t *testing.T) {
	callers := []string{"samtools", "freebayes", "platypus", "gatk", "gatk-haplotype"}

	tests := []struct {
		name     string
		want     string
		wantDist int
	}{
		{"samtool", "samtools", 1},
		{"freebays", "freebayes", 1},
		{"gatk", "gatk", 0},
		{"gatkhaplotype", "gatk-haplotype", 1},
	}
	for _, test := range tests {
		got, dist := Nearest(test.name, callers)
		if got != test.want || dist != test.wantDist {
			t.Errorf("Nearest(%q): got (%q, %v), want (%q, %v)",
				test.name, got, dist, test.want, test.wantDist)
		}
	}

	if got, dist := Nearest("anything", nil); got != "" || dist != -1 {
		t.Errorf("Nearest with no candidates: got (%q, %v), want (\"\", -1)", got, dist)
	}
}
