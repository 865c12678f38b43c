// Package bab implements a generic branch and bound search with a
// parallel pseudo-depth-first strategy.
//
// A fixed number of workers pop pending subproblems from a shared
// priority queue ordered by their depth in the search tree, so the
// workers prefer digging into the depth of the tree, which produces
// feasible solutions (and with them useful bounds) early. The best
// feasible solution found so far is kept with the queue in one shared,
// mutex-guarded structure; its score bounds the remaining branches. The
// workers stop as soon as no pending subproblems are left and no worker
// is still busy (and could produce new ones).
package bab

import (
	"container/heap"
	"log/slog"
	"sync"
	"time"
)

// SubProblem is implemented by node types of the search tree. Depth is
// the node's depth in the tree; deeper nodes are scheduled first.
type SubProblem interface {
	Depth() int
}

// Score constrains solution scores to unsigned integers, so the minimum
// value is 0 and the maximum is all bits set. Higher is better.
type Score interface {
	~uint16 | ~uint32 | ~uint64
}

// Outcome tags a NodeResult.
type Outcome uint8

const (
	// NoSolution marks a dead end; the node produced nothing and has no
	// children worth exploring.
	NoSolution Outcome = iota
	// Infeasible marks a node whose relaxation is not a valid solution.
	// Children carries the more constrained subproblems to try next and
	// Score is an upper bound on any descendant's achievable score.
	Infeasible
	// Feasible marks a complete candidate solution with its score.
	Feasible
)

// NodeResult is the outcome of solving a single subproblem.
type NodeResult[P SubProblem, Sol any, Sc Score] struct {
	Outcome  Outcome
	Children []P
	Solution Sol
	Score    Sc
}

type state[P SubProblem, Sol any, Sc Score] struct {
	mu   sync.Mutex
	cond *sync.Cond

	pending     pendingQueue[P, Sc]
	busyWorkers int
	best        Sol
	bestScore   Sc
	haveBest    bool
	stats       Statistics
}

// Solve explores the branch and bound tree rooted at baseProblem with
// numWorkers parallel workers. nodeSolver is called once per node and
// must be safe for concurrent use; subproblems with a higher chance of
// good scores should come first in an Infeasible result's Children.
//
// It returns the best solution with its score (found reports whether one
// exists) and statistics about the run.
func Solve[P SubProblem, Sol any, Sc Score](
	nodeSolver func(P) NodeResult[P, Sol, Sc],
	baseProblem P,
	numWorkers int,
) (best Sol, bestScore Sc, found bool, stats Statistics) {
	s := &state[P, Sol, Sc]{}
	s.cond = sync.NewCond(&s.mu)
	heap.Push(&s.pending, pendingNode[P, Sc]{problem: baseProblem, bound: maxScore[Sc]()})

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(nodeSolver)
		}()
	}
	wg.Wait()
	s.stats.TotalTime = time.Since(start)

	return s.best, s.bestScore, s.haveBest, s.stats
}

// worker runs the search loop of one worker. It holds the lock except
// while solving a node.
func (s *state[P, Sol, Sc]) worker(nodeSolver func(P) NodeResult[P, Sol, Sc]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if s.pending.Len() > 0 {
			pn := heap.Pop(&s.pending).(pendingNode[P, Sc])
			// The bound is checked at dequeue time, not at enqueue time: a
			// node queued earlier may have become prunable while it waited.
			if pn.bound > s.bestScore {
				s.busyWorkers++
				s.mu.Unlock()
				tic := time.Now()
				result := nodeSolver(pn.problem)
				elapsed := time.Since(tic)
				s.mu.Lock()
				s.busyWorkers--
				s.stats.ExecutedNodes++
				s.stats.NodeTime += elapsed

				switch result.Outcome {
				case NoSolution:
					s.stats.NoSolutionNodes++

				case Feasible:
					s.stats.FeasibleNodes++
					slog.Debug("found feasible solution", "score", result.Score, "node", pn.problem)
					if result.Score > s.bestScore {
						s.stats.NewBest++
						s.best = result.Solution
						s.bestScore = result.Score
						s.haveBest = true
					}

				case Infeasible:
					s.stats.InfeasibleNodes++
					slog.Debug("found infeasible solution", "score", result.Score, "children", len(result.Children), "node", pn.problem)
					for i, child := range result.Children {
						heap.Push(&s.pending, pendingNode[P, Sc]{problem: child, bound: result.Score})
						// Wake one idle worker per extra child; this worker
						// keeps looping and takes one child itself.
						if i != 0 {
							s.cond.Signal()
						}
					}
				}
			} else {
				s.stats.PrunedNodes++
				slog.Debug("bounding branch", "bound", pn.bound, "node", pn.problem)
			}

			if s.pending.Len() == 0 && s.busyWorkers == 0 {
				s.cond.Broadcast()
				return
			}
		} else if s.busyWorkers > 0 {
			// A busy peer may still enqueue new subproblems. Wait releases
			// the lock and reacquires it on wake-up.
			s.cond.Wait()
		} else {
			return
		}
	}
}

func maxScore[Sc Score]() Sc {
	var zero Sc
	return ^zero
}
