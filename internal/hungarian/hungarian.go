// Package hungarian solves weighted bipartite matching problems with the
// Hungarian algorithm (Kuhn-Munkres) in O(n^3) time.
//
// The matching is maximized over a square cost matrix of rows (left
// vertices) and columns (right vertices). Rows may be marked as dummy
// rows that must not be matched to mandatory columns, and rows or
// columns may be skipped entirely as long as the remaining matrix stays
// square.
package hungarian

import (
	"fmt"
	"math"
)

// EdgeWeight is the weight of a single edge. It is deliberately narrow
// so large adjacency matrices fit in few cache lines.
type EdgeWeight = uint16

// Score is the total weight of a matching.
type Score = uint32

// Matching maps each column index to the row it is matched with, or -1
// for unmatched (skipped) columns.
type Matching []int

// Matrix is a dense row-major edge weight matrix.
type Matrix struct {
	rows, cols int
	cells      []EdgeWeight
}

// NewMatrix returns a zero-initialized rows x cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, cells: make([]EdgeWeight, rows*cols)}
}

func (m *Matrix) Rows() int { return m.rows }

func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) At(row, col int) EdgeWeight {
	return m.cells[row*m.cols+col]
}

func (m *Matrix) Set(row, col int, w EdgeWeight) {
	m.cells[row*m.cols+col] = w
}

const infinite = math.MaxInt64

// Solve computes a maximum weight perfect matching on adjacency. Rows
// with dummyRow set are never matched to columns with mandatoryCol set.
// Rows with skipRow and columns with skipCol set are left out of the
// matching; the counts of remaining rows and columns must be equal.
//
// It panics when the reduced matrix is not square or no perfect matching
// exists, which means the caller handed over an inconsistent problem.
func Solve(adjacency *Matrix, dummyRow, mandatoryCol, skipRow, skipCol []bool) (Matching, Score) {
	rowOf := make([]int, 0, adjacency.Rows())
	for x := 0; x < adjacency.Rows(); x++ {
		if !skipRow[x] {
			rowOf = append(rowOf, x)
		}
	}
	colOf := make([]int, 0, adjacency.Cols())
	for y := 0; y < adjacency.Cols(); y++ {
		if !skipCol[y] {
			colOf = append(colOf, y)
		}
	}
	if len(rowOf) != len(colOf) {
		panic(fmt.Sprintf("matching problem is not square: %d rows vs %d columns", len(rowOf), len(colOf)))
	}
	n := len(rowOf)

	// weight returns the edge weight in compact index space, or false for
	// an excluded edge.
	weight := func(i, j int) (int64, bool) {
		if dummyRow[rowOf[i]] && mandatoryCol[colOf[j]] {
			return 0, false
		}
		return int64(adjacency.At(rowOf[i], colOf[j])), true
	}

	labelRow := make([]int64, n)
	labelCol := make([]int64, n)
	for i := 0; i < n; i++ {
		best := int64(-1)
		for j := 0; j < n; j++ {
			if w, ok := weight(i, j); ok && w > best {
				best = w
			}
		}
		if best < 0 {
			panic(fmt.Sprintf("row %d has no allowed edge", rowOf[i]))
		}
		labelRow[i] = best
	}

	matchCol := make([]int, n)
	matchRow := make([]int, n)
	for i := 0; i < n; i++ {
		matchCol[i] = -1
		matchRow[i] = -1
	}

	slack := make([]int64, n)
	slackRow := make([]int, n)
	inTreeRow := make([]bool, n)
	inTreeCol := make([]bool, n)

	for root := 0; root < n; root++ {
		for j := 0; j < n; j++ {
			inTreeCol[j] = false
			slack[j] = infinite
			if w, ok := weight(root, j); ok {
				slack[j] = labelRow[root] + labelCol[j] - w
			}
			slackRow[j] = root
		}
		for i := 0; i < n; i++ {
			inTreeRow[i] = false
		}
		inTreeRow[root] = true

		// Grow the alternating tree until an unmatched column is reached.
		finalCol := -1
		for finalCol == -1 {
			delta := int64(infinite)
			sel := -1
			for j := 0; j < n; j++ {
				if !inTreeCol[j] && slack[j] < delta {
					delta = slack[j]
					sel = j
				}
			}
			if sel == -1 {
				panic("matching problem has no perfect matching")
			}
			if delta > 0 {
				for i := 0; i < n; i++ {
					if inTreeRow[i] {
						labelRow[i] -= delta
					}
				}
				for j := 0; j < n; j++ {
					if inTreeCol[j] {
						labelCol[j] += delta
					} else if slack[j] != infinite {
						slack[j] -= delta
					}
				}
			}
			inTreeCol[sel] = true
			if matchRow[sel] == -1 {
				finalCol = sel
				break
			}
			next := matchRow[sel]
			inTreeRow[next] = true
			for j := 0; j < n; j++ {
				if inTreeCol[j] {
					continue
				}
				if w, ok := weight(next, j); ok {
					if s := labelRow[next] + labelCol[j] - w; s < slack[j] {
						slack[j] = s
						slackRow[j] = next
					}
				}
			}
		}

		// Flip the matching along the augmenting path back to the root.
		for j := finalCol; j != -1; {
			i := slackRow[j]
			prev := matchCol[i]
			matchRow[j] = i
			matchCol[i] = j
			j = prev
		}
	}

	matching := make(Matching, adjacency.Cols())
	for y := range matching {
		matching[y] = -1
	}
	var score Score
	for j := 0; j < n; j++ {
		matching[colOf[j]] = rowOf[matchRow[j]]
		score += Score(adjacency.At(rowOf[matchRow[j]], colOf[j]))
	}
	return matching, score
}
