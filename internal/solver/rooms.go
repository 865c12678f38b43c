package solver

import (
	"log/slog"
	"math"
	"slices"

	"github.com/tverron/courseassign/pkg/model"
)

// Range of courses to consider for shrinking when a room conflict is
// found. The selection size k is raised to at least minShrinkK courses,
// the candidate range n is grown by at most maxRangeGrowth larger
// courses and capped at maxRangeSize, so at most
// binomial(17, 5) = 6188 constraint sets are generated per conflict.
const (
	minShrinkK     = 5
	maxRangeSize   = 17
	maxRangeGrowth = 5
)

// roomConstraintSet is one alternative set of constraints to fix a room
// size violation. All entries are meant to be applied together, on top
// of the current node's constraints.
type roomConstraintSet struct {
	shrink []courseShrink
	cancel []int
}

// footprint is the room size a course occupies with the given number of
// assigned people (attendees and instructors). Empty courses take no
// room at all.
func footprint(c *model.Course, assigned int) int {
	if assigned == 0 {
		return 0
	}
	return int(math.Ceil(c.RoomOffset + c.RoomFactor*float64(assigned)))
}

// RoomFootprints returns the room size each course occupies under the
// given assignment, indexed by course.
func RoomFootprints(courses []*model.Course, assignment model.Assignment) []int {
	counts := assignment.CourseSizes(len(courses))
	sizes := make([]int, len(courses))
	for i, c := range courses {
		sizes[i] = footprint(c, counts[i])
	}
	return sizes
}

// checkRoomFeasibility checks an assignment against the available room
// sizes. Courses and rooms are paired in descending size order; the
// assignment is feasible when every course fits its room. Otherwise a
// list of alternative constraint sets is returned, each fixing the
// largest conflicting course's room violation in a different way.
//
// Checking every possible selection of courses to shrink is
// combinatorially impossible, so only courses of similar size as the
// conflicting one are considered for selection. Courses below that
// range are shrunk to the conflicting room's size in every constraint
// set, larger courses are never shrunk.
func checkRoomFeasibility(
	courses []*model.Course,
	assignment model.Assignment,
	rooms []int,
	node *babNode,
) ([]roomConstraintSet, bool) {
	type sizedCourse struct {
		course *model.Course
		size   int
	}
	bySize := make([]sizedCourse, len(courses))
	counts := assignment.CourseSizes(len(courses))
	for i, c := range courses {
		bySize[i] = sizedCourse{course: c, size: footprint(c, counts[i])}
	}
	slices.SortStableFunc(bySize, func(a, b sizedCourse) int { return a.size - b.size })

	// Pair the largest course with the largest room and so on; the first
	// conflict from the large end determines the conflicting course.
	conflictIdx := -1
	for k := range rooms {
		i := len(bySize) - 1 - k
		if bySize[i].size > rooms[k] {
			conflictIdx = i
			break
		}
	}
	if conflictIdx == -1 {
		return nil, true
	}

	conflictRoom := rooms[len(rooms)-1-conflictIdx]
	smallestConflictIdx := -1
	for i, cs := range bySize {
		if cs.size > conflictRoom {
			smallestConflictIdx = i
			break
		}
	}
	if smallestConflictIdx == -1 || smallestConflictIdx > conflictIdx {
		panic("conflicting course is not conflicting with its room")
	}

	k := conflictIdx - smallestConflictIdx + 1
	var lower int
	if k < minShrinkK {
		if conflictIdx+1 < minShrinkK {
			lower = 0
			k = conflictIdx + 1
		} else {
			lower = conflictIdx + 1 - minShrinkK
			k = minShrinkK
		}
	} else {
		lower = smallestConflictIdx
	}
	upper := conflictIdx + 1
	if upper-lower < maxRangeSize {
		upper = min(min(conflictIdx+maxRangeGrowth, lower+maxRangeSize), len(bySize))
	}

	slog.Debug("creating room constraint sets",
		"lower", lower, "upper", upper, "k", k, "roomSize", conflictRoom)

	var fitting []*model.Course
	for _, cs := range bySize {
		if cs.size <= conflictRoom {
			fitting = append(fitting, cs.course)
		}
	}
	always, ok := newRoomConstraintSet(node, fitting, conflictRoom, false)
	if !ok {
		panic("constraint set without required courses must not fail")
	}

	result := make([]roomConstraintSet, 0, binomial(upper-lower, k))
	sel := newSelections(upper-lower, k)
	selected := make([]*model.Course, k)
	for sel.next() {
		for i, idx := range sel.indices {
			selected[i] = bySize[lower+idx].course
		}
		set, ok := newRoomConstraintSet(node, selected, conflictRoom, true)
		if !ok {
			// Some course of the selection is already constrained further.
			continue
		}
		set.shrink = append(set.shrink, always.shrink...)
		set.cancel = append(set.cancel, always.cancel...)
		if len(set.shrink) == 0 && len(set.cancel) == 0 {
			panic("selection produced an empty room constraint set")
		}
		result = append(result, set)
	}

	slog.Debug("created room constraint sets", "count", len(result))
	return result, false
}

// newRoomConstraintSet builds the constraints that restrict the given
// courses to toSize people. A course whose minimum size still fits is
// shrunk, otherwise it is cancelled. Constraints that conflict with the
// current node (already cancelled, shrunk further, enforced or fixed)
// are skipped; with allRequired set, a skipped constraint invalidates
// the whole set and ok is false.
func newRoomConstraintSet(
	node *babNode,
	courses []*model.Course,
	toSize int,
	allRequired bool,
) (set roomConstraintSet, ok bool) {
	for _, c := range courses {
		if slices.Contains(node.cancelled, c.Index) {
			if allRequired {
				return roomConstraintSet{}, false
			}
			continue
		}
		minFootprint := int(math.Ceil(c.RoomOffset + c.RoomFactor*float64(c.NumMin+len(c.Instructors))))
		if toSize >= minFootprint {
			shrinkSize := int(math.Floor((float64(toSize)-c.RoomOffset)/c.RoomFactor)) - len(c.Instructors)
			alreadyShrunk := slices.ContainsFunc(node.shrunk, func(s courseShrink) bool {
				return s.course == c.Index && s.maxSize <= shrinkSize
			})
			if alreadyShrunk {
				if allRequired {
					return roomConstraintSet{}, false
				}
				continue
			}
			set.shrink = append(set.shrink, courseShrink{course: c.Index, maxSize: shrinkSize})
		} else {
			if slices.Contains(node.enforced, c.Index) || c.Fixed {
				if allRequired {
					return roomConstraintSet{}, false
				}
				continue
			}
			set.cancel = append(set.cancel, c.Index)
		}
	}
	return set, true
}
