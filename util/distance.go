package util

import (
	"fmt"
	"strconv"
	"strings"
)

// matrix represents a 2 dimensional matrix.
type matrix struct {
	nRow, nCol int
	data       []int // row-major nRow*nCol array.
}

// newMatrix returns an n x m matrix.
func newMatrix(n, m int) (x matrix) {
	return matrix{
		nRow: n,
		nCol: m,
		data: make([]int, n*m),
	}
}

// String returns a string representation of a matrix.
func (m matrix) String() (r string) {
	maxLength := 0
	for _, d := range m.data {
		if l := len(strconv.Itoa(d)); l > maxLength {
			maxLength = l
		}
	}

	lines := []string{"\n"}
	for i := 0; i < m.nRow; i++ {
		var parts []string
		for j := 0; j < m.nCol; j++ {
			parts = append(parts, fmt.Sprintf("%0*s", maxLength, strconv.Itoa(m.data[i*m.nCol+j])))
		}
		lines = append(lines, strings.Join(parts, " | "))
	}
	return strings.Join(lines, "\n")
}

// computeCell computes the cell (i, j) in a Levenshtein edit distance
// matrix. Row 0 and column 0 hold the base cases (distance from the empty
// string).
func (m matrix) computeCell(i, j int, r1, r2 []byte) {
	switch {
	case i == 0:
		m.data[j] = j
	case j == 0:
		m.data[i*m.nCol] = i
	case r1[i-1] == r2[j-1]:
		m.data[i*m.nCol+j] = m.data[(i-1)*m.nCol+(j-1)]
	default:
		minValue := m.data[(i-1)*m.nCol+j] + 1 // deletion
		if diagonalValue := m.data[(i-1)*m.nCol+(j-1)] + 1; diagonalValue < minValue {
			minValue = diagonalValue // substitution
		}
		if rightValue := m.data[i*m.nCol+(j-1)] + 1; rightValue < minValue {
			minValue = rightValue // insertion
		}
		m.data[i*m.nCol+j] = minValue
	}
}

// EditDistance computes the Levenshtein distance between two strings: the
// number of single-character insertions, deletions, and substitutions it
// takes to transform s1 into s2. The inputs may have different lengths.
func EditDistance(s1, s2 string) (distance int) {
	r1 := []byte(s1)
	r2 := []byte(s2)

	m := newMatrix(len(r1)+1, len(r2)+1)
	for i := 0; i <= len(r1); i++ {
		for j := 0; j <= len(r2); j++ {
			m.computeCell(i, j, r1, r2)
		}
	}
	return m.data[len(r1)*m.nCol+len(r2)]
}

// Nearest returns the candidate with the smallest edit distance to name,
// along with that distance. Ties resolve to the earliest candidate. An
// empty candidate list returns ("", -1).
func Nearest(name string, candidates []string) (best string, distance int) {
	distance = -1
	for _, c := range candidates {
		if d := EditDistance(name, c); distance < 0 || d < distance {
			best, distance = c, d
		}
	}
	return best, distance
}
