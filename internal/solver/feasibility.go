package solver

import (
	"fmt"
	"slices"
	"sort"

	"github.com/tverron/courseassign/pkg/model"
)

// checkFeasibility checks an assignment against the courses' minimum
// sizes and against wrong assignments (a participant matched to a
// course they did not choose).
//
// A wrong assignment sets participantProblem. In that case the returned
// course is the smallest unconstrained course whose instructor chose
// the offending course, so cancelling it frees the instructor; -1 means
// no such course exists and the branch is a dead end. Otherwise the
// returned course is the one missing the most participants, to enforce
// or cancel in the child nodes.
func checkFeasibility(
	courses []*model.Course,
	participants []*model.Participant,
	assignment model.Assignment,
	node *babNode,
	isInstructor []bool,
) (feasible bool, participantProblem bool, branchCourse int) {
	courseSize := make([]int, len(courses))
	for p, c := range assignment {
		if !isInstructor[p] && c != model.Unassigned {
			courseSize[c]++
		}
	}

	for p, c := range assignment {
		if isInstructor[p] || participants[p].InstructorOnly() {
			continue
		}
		if _, chosen := participants[p].ChosePenalty(c); chosen {
			continue
		}
		var relevant []int
		for rc := range courses {
			if slices.Contains(node.cancelled, rc) || slices.Contains(node.enforced, rc) {
				continue
			}
			hasInstructor := slices.ContainsFunc(courses[rc].Instructors, func(instr int) bool {
				_, chose := participants[instr].ChosePenalty(c)
				return chose
			})
			if hasInstructor {
				relevant = append(relevant, rc)
			}
		}
		if len(relevant) == 0 {
			return false, true, -1
		}
		sort.Slice(relevant, func(i, j int) bool {
			return courseSize[relevant[i]] < courseSize[relevant[j]]
		})
		return false, true, relevant[0]
	}

	maxShortfall := 0
	branchCourse = -1
	for c, size := range courseSize {
		if slices.Contains(node.cancelled, c) || size >= courses[c].NumMin {
			continue
		}
		if slices.Contains(node.enforced, c) {
			panic(fmt.Sprintf("course %d is enforced but still below its minimum size: %d < %d",
				c, size, courses[c].NumMin))
		}
		if shortfall := courses[c].NumMin - size; shortfall > maxShortfall {
			maxShortfall = shortfall
			branchCourse = c
		}
	}
	return branchCourse == -1, false, branchCourse
}
