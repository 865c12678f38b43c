package hungarian

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matrixOf(rows [][]EdgeWeight) *Matrix {
	m := NewMatrix(len(rows), len(rows[0]))
	for x, row := range rows {
		for y, w := range row {
			m.Set(x, y, w)
		}
	}
	return m
}

func TestSolveSmall(t *testing.T) {
	adj := matrixOf([][]EdgeWeight{
		{7, 5, 11},
		{5, 4, 1},
		{9, 3, 2},
	})
	none := make([]bool, 3)

	matching, score := Solve(adj, none, none, none, none)

	assert.Equal(t, Matching{2, 1, 0}, matching)
	assert.Equal(t, Score(24), score)
}

func TestSolveDummyRows(t *testing.T) {
	adj := matrixOf([][]EdgeWeight{
		{10, 8, 1, 1},
		{9, 10, 1, 1},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	dummyRow := []bool{false, false, true, true}
	mandatoryCol := []bool{true, true, false, false}
	none := make([]bool, 4)

	matching, score := Solve(adj, dummyRow, mandatoryCol, none, none)

	// The dummy rows are forced onto the non-mandatory columns, so the
	// real rows take the mandatory ones.
	assert.Equal(t, 0, matching[0])
	assert.Equal(t, 1, matching[1])
	assert.Contains(t, []int{2, 3}, matching[2])
	assert.Contains(t, []int{2, 3}, matching[3])
	assert.NotEqual(t, matching[2], matching[3])
	assert.Equal(t, Score(20), score)
}

func TestSolveSkipped(t *testing.T) {
	adj := matrixOf([][]EdgeWeight{
		{7, 5, 100, 11},
		{5, 4, 100, 1},
		{9, 3, 100, 2},
		{90, 90, 100, 90},
	})
	none := make([]bool, 4)
	skipRow := []bool{false, false, false, true}
	skipCol := []bool{false, false, true, false}

	matching, score := Solve(adj, none, none, skipRow, skipCol)

	assert.Equal(t, Matching{2, 1, -1, 0}, matching)
	assert.Equal(t, Score(24), score)
}

func TestSolveBijection(t *testing.T) {
	const n = 8
	adj := NewMatrix(n, n)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			adj.Set(x, y, EdgeWeight((x*31+y*17)%97))
		}
	}
	none := make([]bool, n)

	matching, score := Solve(adj, none, none, none, none)

	seen := make(map[int]bool)
	var sum Score
	for y, x := range matching {
		require.GreaterOrEqual(t, x, 0)
		require.False(t, seen[x], "row %d matched twice", x)
		seen[x] = true
		sum += Score(adj.At(x, y))
	}
	assert.Equal(t, sum, score)
}

func TestSolveNotSquarePanics(t *testing.T) {
	adj := NewMatrix(3, 3)
	none := make([]bool, 3)
	skipRow := []bool{true, false, false}

	require.Panics(t, func() {
		Solve(adj, none, none, skipRow, none)
	})
}
