// Package solver assigns participants to courses by searching over
// course constellations with branch and bound, solving each subproblem
// as a weighted bipartite matching of participants to course places.
package solver

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/tverron/courseassign/internal/bab"
	"github.com/tverron/courseassign/internal/hungarian"
	"github.com/tverron/courseassign/pkg/model"
)

// weightOffset is the highest edge weight in use. Choice penalties are
// subtracted from it, so better choices get larger weights while the
// matrix values stay well below the EdgeWeight limit.
const weightOffset hungarian.EdgeWeight = 50000

// instructorScore is added to the matching score for every assigned
// course instructor who also has own course choices.
const instructorScore = hungarian.Score(weightOffset)

func edgeWeight(choice model.Choice) hungarian.EdgeWeight {
	return weightOffset - hungarian.EdgeWeight(choice.Penalty)
}

// preComputedProblem holds the parts of the matching problem that are
// identical for every branch and bound node.
type preComputedProblem struct {
	// adjacency holds one row per participant (plus dummy rows) and one
	// column per course place.
	adjacency *hungarian.Matrix
	// dummyRow marks rows that do not represent an actual participant.
	// They may not fill mandatory course places.
	dummyRow []bool
	// skipRowAlways marks rows to leave out of every matching. The node
	// solver extends it per node with the active course instructors.
	skipRowAlways []bool
	// courseOfColumn maps each column to the course its place belongs to.
	courseOfColumn []int
	// firstColumn maps each course to the column of its first place.
	firstColumn []int
	// roomSizes is the descending list of room sizes, padded with zeros
	// to the number of courses, or nil when rooms are unconstrained.
	roomSizes []int
}

func precompute(courses []*model.Course, participants []*model.Participant, rooms []int) *preComputedProblem {
	// Dummy rows pad the matrix for the worst case of skipped rows, which
	// covers all instructors and all participants without own choices.
	skippable := make([]bool, len(participants))
	for i, p := range participants {
		skippable[i] = p.InstructorOnly()
	}
	for _, c := range courses {
		for _, instr := range c.Instructors {
			skippable[instr] = true
		}
	}
	maxSkipped := 0
	for _, s := range skippable {
		if s {
			maxSkipped++
		}
	}

	numPlaces := 0
	for _, c := range courses {
		numPlaces += c.NumMax
	}
	numRows := numPlaces + maxSkipped

	courseOfColumn := make([]int, numPlaces)
	firstColumn := make([]int, 0, len(courses))
	col := 0
	for i, c := range courses {
		firstColumn = append(firstColumn, col)
		for j := 0; j < c.NumMax; j++ {
			courseOfColumn[col+j] = i
		}
		col += c.NumMax
	}

	dummyRow := make([]bool, numRows)
	for i := len(participants); i < numRows; i++ {
		dummyRow[i] = true
	}

	skipRowAlways := make([]bool, numRows)
	for i, p := range participants {
		skipRowAlways[i] = p.InstructorOnly()
	}

	adjacency := hungarian.NewMatrix(numRows, numPlaces)
	for x, p := range participants {
		for _, choice := range p.Choices {
			for j := 0; j < courses[choice.Course].NumMax; j++ {
				adjacency.Set(x, firstColumn[choice.Course]+j, edgeWeight(choice))
			}
		}
	}

	var roomSizes []int
	if rooms != nil {
		roomSizes = slices.Clone(rooms)
		slices.SortFunc(roomSizes, func(a, b int) int { return b - a })
		for len(roomSizes) < len(courses) {
			roomSizes = append(roomSizes, 0)
		}
		roomSizes = roomSizes[:len(courses)]
	}

	return &preComputedProblem{
		adjacency:      adjacency,
		dummyRow:       dummyRow,
		skipRowAlways:  skipRowAlways,
		courseOfColumn: courseOfColumn,
		firstColumn:    firstColumn,
		roomSizes:      roomSizes,
	}
}

// courseShrink restricts a course to a smaller number of attendees
// (excluding instructors) because of room sizes.
type courseShrink struct {
	course  int
	maxSize int
}

// babNode is one subproblem of the search: a set of constraints on the
// course constellation. A course may appear multiple times in shrunk;
// the smallest bound wins.
type babNode struct {
	cancelled []int
	enforced  []int
	shrunk    []courseShrink
}

// Depth is the total number of constraints, which equals the node's
// depth in the search tree.
func (n *babNode) Depth() int {
	return len(n.cancelled) + len(n.enforced) + len(n.shrunk)
}

func (n *babNode) clone() *babNode {
	return &babNode{
		cancelled: slices.Clone(n.cancelled),
		enforced:  slices.Clone(n.enforced),
		shrunk:    slices.Clone(n.shrunk),
	}
}

func (n *babNode) String() string {
	return fmt.Sprintf("{cancelled:%v enforced:%v shrunk:%v}", n.cancelled, n.enforced, n.shrunk)
}

// Solve computes an optimal assignment of participants to courses. The
// rooms slice lists available room sizes (nil disables room checking).
// found is false when no feasible assignment exists.
func Solve(
	courses []*model.Course,
	participants []*model.Participant,
	rooms []int,
	reportNoSolution bool,
	numWorkers int,
) (assignment model.Assignment, score hungarian.Score, found bool, stats bab.Statistics) {
	pre := precompute(courses, participants, rooms)
	return bab.Solve(
		func(node *babNode) bab.NodeResult[*babNode, model.Assignment, hungarian.Score] {
			return runNode(courses, participants, pre, node, reportNoSolution)
		},
		&babNode{},
		numWorkers,
	)
}

// runNode solves a single subproblem: it builds the mandatory and skip
// vectors from the node's constraints, runs the Hungarian method and
// checks the resulting assignment for feasibility. Infeasible results
// carry the more constrained subproblems to try next.
func runNode(
	courses []*model.Course,
	participants []*model.Participant,
	pre *preComputedProblem,
	node *babNode,
	reportNoSolution bool,
) bab.NodeResult[*babNode, model.Assignment, hungarian.Score] {
	numRows := pre.adjacency.Rows()
	numCols := pre.adjacency.Cols()

	// Skip the instructors of all courses still taking place.
	skipRow := slices.Clone(pre.skipRowAlways)
	for i, c := range courses {
		if !slices.Contains(node.cancelled, i) {
			for _, instr := range c.Instructors {
				skipRow[instr] = true
			}
		}
	}
	numSkipRow := 0
	for _, s := range skipRow {
		if s {
			numSkipRow++
		}
	}

	effectiveNumMax := make([]int, len(courses))
	for i, c := range courses {
		effectiveNumMax[i] = c.NumMax
	}
	for _, c := range node.cancelled {
		effectiveNumMax[c] = 0
	}
	for _, s := range node.shrunk {
		effectiveNumMax[s.course] = min(effectiveNumMax[s.course], s.maxSize)
	}

	// Cheap infeasibility checks before running the expensive matching.
	enforcedPlaces := 0
	for _, c := range node.enforced {
		enforcedPlaces += courses[c].NumMin
	}
	if enforcedPlaces > len(participants)-numSkipRow {
		slog.Debug("skipping branch, too many course places enforced", "node", node)
		return bab.NodeResult[*babNode, model.Assignment, hungarian.Score]{Outcome: bab.NoSolution}
	}
	totalPlaces := 0
	for _, m := range effectiveNumMax {
		totalPlaces += m
	}
	if totalPlaces < len(participants)-numSkipRow {
		slog.Debug("skipping branch, not enough course places left", "node", node)
		return bab.NodeResult[*babNode, model.Assignment, hungarian.Score]{Outcome: bab.NoSolution}
	}
	for x, p := range participants {
		if skipRow[x] {
			continue
		}
		allCancelled := true
		for _, choice := range p.Choices {
			if !slices.Contains(node.cancelled, choice.Course) {
				allCancelled = false
				break
			}
		}
		if allCancelled {
			slog.Debug("skipping branch, course choices cannot be fulfilled", "participant", p.Name)
			if reportNoSolution {
				names := make([]string, len(node.cancelled))
				for i, c := range node.cancelled {
					names[i] = courses[c].Name
				}
				slog.Info("cannot cancel courses, a participant's choices cannot be fulfilled anymore",
					"courses", names, "participant", p.Name)
			}
			return bab.NodeResult[*babNode, model.Assignment, hungarian.Score]{Outcome: bab.NoSolution}
		}
	}

	// Skip the last course places of cancelled and shrunk courses.
	skipCol := make([]bool, numCols)
	numSkipCol := 0
	for c, s := range effectiveNumMax {
		delta := courses[c].NumMax - s
		for j := 0; j < delta; j++ {
			skipCol[pre.firstColumn[c]+courses[c].NumMax-1-j] = true
		}
		numSkipCol += delta
	}

	// Skip surplus dummy rows so the reduced matrix becomes square.
	surplus := numRows - numCols + numSkipCol - numSkipRow
	if surplus < 0 {
		panic(fmt.Sprintf("more effective rows (%d-%d) than course places (%d-%d)",
			numRows, numSkipRow, numCols, numSkipCol))
	}
	for i := 0; i < surplus; i++ {
		skipRow[len(participants)+i] = true
	}

	mandatoryCol := make([]bool, numCols)
	for _, c := range node.enforced {
		for j := 0; j < courses[c].NumMin; j++ {
			y := pre.firstColumn[c] + j
			if skipCol[y] {
				panic(fmt.Sprintf("place %d of course %d is mandatory but skipped", j, c))
			}
			mandatoryCol[y] = true
		}
	}

	matching, score := hungarian.Solve(pre.adjacency, pre.dummyRow, mandatoryCol, skipRow, skipCol)

	assignment := make(model.Assignment, len(participants))
	for i := range assignment {
		assignment[i] = model.Unassigned
	}
	for cp, p := range matching {
		if !skipCol[cp] && p >= 0 && p < len(assignment) {
			assignment[p] = pre.courseOfColumn[cp]
		}
	}
	for c, course := range courses {
		if slices.Contains(node.cancelled, c) {
			continue
		}
		for _, instr := range course.Instructors {
			assignment[instr] = c
			// Instructor-only participants are left out of the score, as
			// they would effectively soft-enforce their course otherwise.
			if !participants[instr].InstructorOnly() {
				score += instructorScore
			}
		}
	}

	if pre.roomSizes != nil {
		constraintSets, feasible := checkRoomFeasibility(courses, assignment, pre.roomSizes, node)
		if !feasible {
			branches := make([]*babNode, 0, len(constraintSets))
			for _, set := range constraintSets {
				child := node.clone()
				child.shrunk = append(child.shrunk, set.shrink...)
				child.cancelled = append(child.cancelled, set.cancel...)
				branches = append(branches, child)
			}
			return bab.NodeResult[*babNode, model.Assignment, hungarian.Score]{
				Outcome:  bab.Infeasible,
				Children: branches,
				Score:    score,
			}
		}
	}

	feasible, participantProblem, branchCourse := checkFeasibility(courses, participants, assignment, node, skipRow)
	if !feasible {
		var branches []*babNode
		if branchCourse >= 0 {
			// A wrong assignment cannot be fixed by enforcing the course.
			if !participantProblem {
				child := node.clone()
				child.enforced = append(child.enforced, branchCourse)
				branches = append(branches, child)
			}
			if !courses[branchCourse].Fixed {
				child := node.clone()
				child.cancelled = append(child.cancelled, branchCourse)
				branches = append(branches, child)
			} else if reportNoSolution {
				slog.Info("cannot cancel course, it is fixed", "course", courses[branchCourse].Name)
			}
		}
		return bab.NodeResult[*babNode, model.Assignment, hungarian.Score]{
			Outcome:  bab.Infeasible,
			Children: branches,
			Score:    score,
		}
	}

	return bab.NodeResult[*babNode, model.Assignment, hungarian.Score]{
		Outcome:  bab.Feasible,
		Solution: assignment,
		Score:    score,
	}
}
