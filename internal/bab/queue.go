package bab

// pendingNode is a queued subproblem together with its parent node's
// reported score, used to bound the branch at dequeue time.
type pendingNode[P SubProblem, Sc Score] struct {
	problem P
	bound   Sc
}

// pendingQueue is a max-heap of pending subproblems, ordered by depth
// first (pseudo-depth-first search) and by parent bound among nodes of
// equal depth.
type pendingQueue[P SubProblem, Sc Score] []pendingNode[P, Sc]

func (q pendingQueue[P, Sc]) Len() int { return len(q) }

func (q pendingQueue[P, Sc]) Less(i, j int) bool {
	if di, dj := q[i].problem.Depth(), q[j].problem.Depth(); di != dj {
		return di > dj
	}
	return q[i].bound > q[j].bound
}

func (q pendingQueue[P, Sc]) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *pendingQueue[P, Sc]) Push(x any) {
	*q = append(*q, x.(pendingNode[P, Sc]))
}

func (q *pendingQueue[P, Sc]) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
