package bab

import (
	"fmt"
	"time"
)

// Statistics collects counters and timings of one branch and bound run.
type Statistics struct {
	// ExecutedNodes is the number of calls to the node solver.
	ExecutedNodes uint32
	// NoSolutionNodes counts subproblems that returned without solution.
	NoSolutionNodes uint32
	// InfeasibleNodes counts infeasible subproblems.
	InfeasibleNodes uint32
	// FeasibleNodes counts feasible subproblems.
	FeasibleNodes uint32
	// NewBest counts how often the best known result was replaced.
	NewBest uint32
	// PrunedNodes counts subproblems skipped because their parent's score
	// no longer exceeded the best known solution.
	PrunedNodes uint32
	// TotalTime is the wall-clock duration of the whole run.
	TotalTime time.Duration
	// NodeTime is the accumulated node solver time. Due to parallelism it
	// can be a multiple of TotalTime.
	NodeTime time.Duration
}

func (s Statistics) String() string {
	avg := time.Duration(0)
	if s.ExecutedNodes > 0 {
		avg = s.NodeTime / time.Duration(s.ExecutedNodes)
	}
	return fmt.Sprintf(`Solving statistics:
Executed subproblems:  %6d
    ... no solution:   %6d
    ... infeasible:    %6d
    ... feasible:      %6d
         ... new best: %6d
Bound branches:        %6d

Total time: %.3fs
Average subproblem solver time: %.3fs
`,
		s.ExecutedNodes,
		s.NoSolutionNodes,
		s.InfeasibleNodes,
		s.FeasibleNodes,
		s.NewBest,
		s.PrunedNodes,
		s.TotalTime.Seconds(),
		avg.Seconds())
}
