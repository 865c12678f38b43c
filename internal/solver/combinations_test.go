package solver

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func collectSelections(n, k int) [][]int {
	var result [][]int
	sel := newSelections(n, k)
	for sel.next() {
		result = append(result, slices.Clone(sel.indices))
	}
	return result
}

func TestSelections(t *testing.T) {
	assert.Equal(t, [][]int{
		{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3},
	}, collectSelections(4, 2))

	assert.Equal(t, [][]int{{0, 1, 2}}, collectSelections(3, 3))
	assert.Len(t, collectSelections(5, 3), 10)
	assert.Empty(t, collectSelections(2, 3))
}

func TestBinomial(t *testing.T) {
	assert.Equal(t, 1, binomial(5, 0))
	assert.Equal(t, 5, binomial(5, 1))
	assert.Equal(t, 10, binomial(5, 3))
	assert.Equal(t, 6188, binomial(17, 5))
	assert.Equal(t, 0, binomial(3, 4))
}
