package solver

// selections enumerates all k-element subsets of {0, ..., n-1} in
// lexicographic order via their index slices.
type selections struct {
	n, k    int
	indices []int
	started bool
}

func newSelections(n, k int) *selections {
	return &selections{n: n, k: k}
}

// next advances to the next selection and reports whether one exists.
// The current selection is available in indices until the next call.
func (s *selections) next() bool {
	if s.k > s.n {
		return false
	}
	if !s.started {
		s.started = true
		s.indices = make([]int, s.k)
		for i := range s.indices {
			s.indices[i] = i
		}
		return true
	}
	// Find the rightmost index that can still move up.
	i := s.k - 1
	for i >= 0 && s.indices[i] == s.n-s.k+i {
		i--
	}
	if i < 0 {
		return false
	}
	s.indices[i]++
	for j := i + 1; j < s.k; j++ {
		s.indices[j] = s.indices[j-1] + 1
	}
	return true
}

func binomial(n, k int) int {
	if k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1
	for i := 0; i < k; i++ {
		result = result * (n - i) / (i + 1)
	}
	return result
}
