package solver

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tverron/courseassign/internal/bab"
	"github.com/tverron/courseassign/internal/hungarian"
	"github.com/tverron/courseassign/pkg/model"
)

// choicesOf builds a choice list with the penalty given by the position.
func choicesOf(courses ...int) []model.Choice {
	choices := make([]model.Choice, len(courses))
	for i, c := range courses {
		choices[i] = model.Choice{Course: c, Penalty: uint32(i)}
	}
	return choices
}

// simpleProblem builds a small problem where course 1 or 2 must be
// cancelled, because otherwise there are not enough participants to
// fill all courses. Course 1 wins due to participant 5's choices.
//
// Unless there are room constraints: course 0 needs a large room
// (offset 10), course 2 needs more space per participant than course 1.
func simpleProblem() ([]*model.Participant, []*model.Course) {
	participants := []*model.Participant{
		{Index: 0, ID: 0, Name: "Participant 0", Choices: choicesOf(1, 2)},
		{Index: 1, ID: 1, Name: "Participant 1", Choices: choicesOf(0, 2)},
		{Index: 2, ID: 2, Name: "Participant 2", Choices: choicesOf(0, 1)},
		{Index: 3, ID: 3, Name: "Participant 3", Choices: choicesOf(0, 1)},
		{Index: 4, ID: 4, Name: "Participant 4", Choices: choicesOf(0, 2)},
		{Index: 5, ID: 5, Name: "Participant 5", Choices: choicesOf(1, 2)},
	}
	courses := []*model.Course{
		{Index: 0, ID: 0, Name: "Wanted Course 0", NumMin: 2, NumMax: 2,
			Instructors: []int{0}, RoomFactor: 1.0, RoomOffset: 10.0},
		{Index: 1, ID: 1, Name: "Okay Course 1", NumMin: 2, NumMax: 8,
			Instructors: []int{1}, RoomFactor: 2.0},
		{Index: 2, ID: 2, Name: "Boring Course 2", NumMin: 2, NumMax: 10,
			Instructors: []int{2}, RoomFactor: 1.5},
	}
	return participants, courses
}

// otherProblem builds a larger problem without instructors, used for
// the room constraint tests.
//
// Choices per course and rank:
//
//	course |  1.  2.  3.
//	---------------------
//	0      | 14   4   2
//	1      |  5   9   3
//	2      |  0   6   9
//	3      |  2   1   7
func otherProblem() ([]*model.Course, []*model.Participant) {
	makeCourse := func(index, min, max int) *model.Course {
		return &model.Course{
			Index:  index,
			ID:     uint64(index),
			Name:   fmt.Sprintf("Course %d", index),
			NumMin: min, NumMax: max,
			RoomFactor: 1.0,
		}
	}
	courses := []*model.Course{
		makeCourse(0, 1, 12),
		makeCourse(1, 1, 10),
		makeCourse(2, 1, 10),
		makeCourse(3, 4, 10),
	}
	var participants []*model.Participant
	addParts := func(num int, choices ...int) {
		for i := 0; i < num; i++ {
			index := len(participants)
			participants = append(participants, &model.Participant{
				Index: index, ID: uint64(index),
				Name:    fmt.Sprintf("Participant %d", index),
				Choices: choicesOf(choices...),
			})
		}
	}
	addParts(6, 0, 1, 2)
	addParts(3, 0, 1, 3)
	addParts(2, 0, 2, 1)
	addParts(2, 0, 2, 3)
	addParts(1, 0, 3, 2)
	addParts(1, 1, 0, 2)
	addParts(2, 1, 0, 3)
	addParts(2, 1, 2, 0)
	addParts(1, 3, 0, 1)
	addParts(1, 3, 0, 2)
	return courses, participants
}

// checkAssignment checks a feasible assignment for correctness. When a
// node is given, exactly its cancelled courses must be empty.
func checkAssignment(
	t *testing.T,
	courses []*model.Course,
	participants []*model.Participant,
	assignment model.Assignment,
	node *babNode,
) {
	t.Helper()
	sizes := assignment.CourseSizes(len(courses))

	for c, size := range sizes {
		course := courses[c]
		require.LessOrEqual(t, size, course.NumMax+len(course.Instructors),
			"maximum size violation for course %d", c)
		if node != nil {
			if slices.Contains(node.cancelled, c) {
				require.Zero(t, size, "cancelled course %d has participants", c)
			} else {
				require.GreaterOrEqual(t, size, course.NumMin+len(course.Instructors),
					"minimum size violation for course %d", c)
			}
		} else {
			require.True(t, size == 0 || size >= course.NumMin+len(course.Instructors),
				"minimum size violation for course %d: %d required, %d assigned",
				c, course.NumMin, size)
		}
	}
	if node != nil {
		for _, s := range node.shrunk {
			require.LessOrEqual(t, sizes[s.course], s.maxSize+len(courses[s.course].Instructors),
				"size constraint for course %d not satisfied", s.course)
		}
	}

	isInstructor := make([]bool, len(participants))
	for c, course := range courses {
		if sizes[c] == 0 {
			continue
		}
		for _, instr := range course.Instructors {
			require.Equal(t, c, assignment[instr],
				"instructor %d of course %d is assigned to %d", instr, c, assignment[instr])
			isInstructor[instr] = true
		}
	}
	for p, participant := range participants {
		if isInstructor[p] {
			continue
		}
		chosen := slices.ContainsFunc(participant.Choices, func(choice model.Choice) bool {
			return choice.Course == assignment[p]
		})
		require.True(t, chosen, "course %d of participant %d is none of their choices",
			assignment[p], p)
	}
}

func TestPrecompute(t *testing.T) {
	participants, courses := simpleProblem()

	pre := precompute(courses, participants, []int{8, 10})

	numPlaces := 0
	numInstructors := 0
	for _, c := range courses {
		numPlaces += c.NumMax
		numInstructors += len(c.Instructors)
	}
	numRows := numPlaces + numInstructors
	require.Equal(t, numRows, pre.adjacency.Rows())
	require.Equal(t, numPlaces, pre.adjacency.Cols())
	require.Len(t, pre.dummyRow, numRows)
	require.Len(t, pre.courseOfColumn, numPlaces)
	require.Len(t, pre.firstColumn, len(courses))

	for i, c := range courses {
		for j := 0; j < c.NumMax; j++ {
			assert.Equal(t, i, pre.courseOfColumn[pre.firstColumn[i]+j],
				"column %d should belong to course %d", pre.firstColumn[i]+j, i)
		}
	}

	for x, p := range participants {
		for y := 0; y < numPlaces; y++ {
			var want hungarian.EdgeWeight
			for rank, choice := range p.Choices {
				if choice.Course == pre.courseOfColumn[y] {
					want = weightOffset - hungarian.EdgeWeight(rank)
				}
			}
			assert.Equal(t, want, pre.adjacency.At(x, y),
				"unexpected edge weight for participant %d and course place %d", x, y)
		}
	}
	for x := len(participants); x < numRows; x++ {
		for y := 0; y < numPlaces; y++ {
			assert.Zero(t, pre.adjacency.At(x, y),
				"edge weight of dummy row %d and course place %d is not zero", x, y)
		}
	}

	for x := 0; x < len(participants); x++ {
		assert.False(t, pre.dummyRow[x])
	}
	for x := len(participants); x < numRows; x++ {
		assert.True(t, pre.dummyRow[x])
	}

	assert.Equal(t, []int{10, 8, 0}, pre.roomSizes)

	pre = precompute(courses, participants, nil)
	assert.Nil(t, pre.roomSizes)
}

func TestNodeDepth(t *testing.T) {
	assert.Equal(t, 0, (&babNode{}).Depth())
	assert.Equal(t, 1, (&babNode{cancelled: []int{0}}).Depth())
	assert.Equal(t, 1, (&babNode{enforced: []int{2}}).Depth())
	assert.Equal(t, 2, (&babNode{cancelled: []int{1, 2}}).Depth())
	assert.Equal(t, 4, (&babNode{cancelled: []int{0, 1}, enforced: []int{0, 1}}).Depth())
	assert.Equal(t, 5, (&babNode{
		enforced: []int{0, 1, 2},
		shrunk:   []courseShrink{{0, 10}, {1, 20}},
	}).Depth())
	assert.Equal(t, 6, (&babNode{
		cancelled: []int{0, 1},
		enforced:  []int{0},
		shrunk:    []courseShrink{{0, 10}, {1, 20}, {0, 8}},
	}).Depth())
}

func TestCheckFeasibility(t *testing.T) {
	participants, courses := simpleProblem()

	// A feasible assignment.
	assignment := model.Assignment{0, 1, 1, 0, 0, 1}
	isInstructor := []bool{true, true, false, false, false, false}
	node := &babNode{cancelled: []int{2}}
	feasible, participantProblem, branchCourse := checkFeasibility(
		courses, participants, assignment, node, isInstructor)
	assert.True(t, feasible)
	assert.False(t, participantProblem)
	assert.Equal(t, -1, branchCourse)

	// Courses 1 and 2 have too few participants, course 2 lacks more.
	assignment = model.Assignment{0, 1, 2, 0, 0, 1}
	isInstructor = []bool{true, true, true, false, false, false}
	feasible, participantProblem, branchCourse = checkFeasibility(
		courses, participants, assignment, &babNode{}, isInstructor)
	assert.False(t, feasible)
	assert.False(t, participantProblem)
	assert.Equal(t, 2, branchCourse)

	// Participant 4 is assigned to unwanted course 1. Course 2 should be
	// cancelled to free its instructor, who chose course 1.
	assignment = model.Assignment{0, 1, 2, 0, 1, 0}
	node = &babNode{enforced: []int{0}}
	feasible, participantProblem, branchCourse = checkFeasibility(
		courses, participants, assignment, node, isInstructor)
	assert.False(t, feasible)
	assert.True(t, participantProblem)
	assert.Equal(t, 2, branchCourse)
}

func TestRunNodeSimple(t *testing.T) {
	participants, courses := simpleProblem()
	pre := precompute(courses, participants, nil)

	// A feasible solution with course 1 cancelled.
	node := &babNode{cancelled: []int{1}}
	result := runNode(courses, participants, pre, node, false)
	require.Equal(t, bab.Feasible, result.Outcome)
	checkAssignment(t, courses, participants, result.Solution, node)
	assert.Greater(t, result.Score, hungarian.Score(len(participants))*(hungarian.Score(weightOffset)-1))

	// This should also work out.
	node = &babNode{cancelled: []int{2}, enforced: []int{1}}
	result = runNode(courses, participants, pre, node, false)
	require.Equal(t, bab.Feasible, result.Outcome)
	checkAssignment(t, courses, participants, result.Solution, node)
	assert.Greater(t, result.Score, hungarian.Score(len(participants))*(hungarian.Score(weightOffset)-1))

	// Cancelling both courses leaves participants without any choice.
	node = &babNode{cancelled: []int{1, 2}}
	result = runNode(courses, participants, pre, node, false)
	require.Equal(t, bab.NoSolution, result.Outcome)

	// The unconstrained root node is infeasible (too few participants in
	// courses 1 and 2).
	result = runNode(courses, participants, pre, &babNode{}, false)
	require.Equal(t, bab.Infeasible, result.Outcome)
}

func TestRunNodeLarge(t *testing.T) {
	const (
		numCourses      = 20
		maxPlaces       = 10
		minPlaces       = 6
		numParticipants = 200
	)

	courses := make([]*model.Course, numCourses)
	for c := 0; c < numCourses; c++ {
		courses[c] = &model.Course{
			Index: c, ID: uint64(c), Name: fmt.Sprintf("Course %d", c),
			NumMin: minPlaces, NumMax: maxPlaces, RoomFactor: 1.0,
		}
	}
	participants := make([]*model.Participant, numParticipants)
	for p := 0; p < numParticipants; p++ {
		choices := make([]model.Choice, 3)
		for i := range choices {
			choices[i] = model.Choice{Course: (p + i) % numCourses, Penalty: uint32(i)}
		}
		participants[p] = &model.Participant{
			Index: p, ID: uint64(p), Name: fmt.Sprintf("Participant %d", p),
			Choices: choices,
		}
		if p < numCourses {
			if p == 0 {
				courses[numCourses-1].Instructors = append(courses[numCourses-1].Instructors, p)
			} else {
				courses[p-1].Instructors = append(courses[p-1].Instructors, p)
			}
		}
	}

	pre := precompute(courses, participants, nil)
	node := &babNode{}
	result := runNode(courses, participants, pre, node, false)

	require.Equal(t, bab.Feasible, result.Outcome)
	checkAssignment(t, courses, participants, result.Solution, node)
	assert.Greater(t, result.Score, hungarian.Score(numParticipants)*(hungarian.Score(weightOffset)-1))
}

func TestSolveSimple(t *testing.T) {
	participants, courses := simpleProblem()

	assignment, score, found, _ := Solve(courses, participants, nil, false, 4)

	require.True(t, found)
	checkAssignment(t, courses, participants, assignment, nil)
	assert.Greater(t, score, hungarian.Score(len(participants))*(hungarian.Score(weightOffset)-1))
	assert.Less(t, score, hungarian.Score(len(participants))*hungarian.Score(weightOffset))
	want1 := model.Assignment{0, 1, 0, 1, 0, 1}
	want2 := model.Assignment{0, 1, 1, 0, 0, 1}
	assert.True(t, slices.Equal(assignment, want1) || slices.Equal(assignment, want2),
		"unexpected assignment: %v", assignment)
}

func TestSolveRooms(t *testing.T) {
	courses, participants := otherProblem()
	require.NoError(t, model.ValidateData(participants, courses))
	rooms := []int{10, 5, 8}

	assignment, score, found, stats := Solve(courses, participants, rooms, false, 4)

	require.True(t, found)
	checkAssignment(t, courses, participants, assignment, nil)
	assert.Greater(t, score, hungarian.Score(len(participants))*(hungarian.Score(weightOffset)-2))
	assert.Less(t, score, hungarian.Score(len(participants))*hungarian.Score(weightOffset))

	// Course 0 is shrunk to room size 10, course 2 is cancelled and the
	// remaining participants fill courses 1 and 3.
	assert.Equal(t, []int{10, 7, 0, 4}, assignment.CourseSizes(len(courses)))
	assert.GreaterOrEqual(t, stats.InfeasibleNodes, uint32(3))
}

func TestSolveRoomsFixedCourse(t *testing.T) {
	courses, participants := otherProblem()
	courses[2].Fixed = true
	require.NoError(t, model.ValidateData(participants, courses))
	rooms := []int{10, 5, 8}

	assignment, score, found, _ := Solve(courses, participants, rooms, false, 4)

	require.True(t, found)
	checkAssignment(t, courses, participants, assignment, nil)
	assert.Greater(t, score, hungarian.Score(len(participants))*(hungarian.Score(weightOffset)-2))
	assert.Less(t, score, hungarian.Score(len(participants))*hungarian.Score(weightOffset))

	sizes := assignment.CourseSizes(len(courses))
	assert.Zero(t, sizes[3])
	assert.GreaterOrEqual(t, sizes[2], 1)
}

func TestSolveFixedCourse(t *testing.T) {
	courses, participants := otherProblem()
	courses[2].Fixed = true
	courses[2].NumMin = 5
	require.NoError(t, model.ValidateData(participants, courses))

	assignment, score, found, _ := Solve(courses, participants, nil, false, 4)

	require.True(t, found)
	checkAssignment(t, courses, participants, assignment, nil)
	assert.Greater(t, score, hungarian.Score(len(participants))*(hungarian.Score(weightOffset)-2))
	assert.Less(t, score, hungarian.Score(len(participants))*hungarian.Score(weightOffset))

	sizes := assignment.CourseSizes(len(courses))
	assert.Zero(t, sizes[3])
	assert.GreaterOrEqual(t, sizes[2], 4)
}

func TestSolveRoomsScaling(t *testing.T) {
	participants, courses := simpleProblem()
	require.NoError(t, model.ValidateData(participants, courses))

	cases := []struct {
		rooms     []int
		cancelled [3]bool
	}{
		{[]int{15, 5}, [3]bool{false, true, false}},
		{[]int{15, 7}, [3]bool{false, false, true}},
		{[]int{10, 5}, [3]bool{true, false, false}},
	}
	for _, tc := range cases {
		assignment, score, found, _ := Solve(courses, participants, tc.rooms, false, 4)

		require.True(t, found, "expected a result for rooms=%v", tc.rooms)
		checkAssignment(t, courses, participants, assignment, nil)
		assert.Greater(t, score, hungarian.Score(len(participants))*(hungarian.Score(weightOffset)-2))
		assert.Less(t, score, hungarian.Score(len(participants))*hungarian.Score(weightOffset))

		for c, size := range assignment.CourseSizes(len(courses)) {
			if tc.cancelled[c] {
				assert.Zero(t, size, "course %d should be cancelled with rooms=%v", c, tc.rooms)
			} else {
				assert.GreaterOrEqual(t, size, 1, "course %d should take place with rooms=%v", c, tc.rooms)
			}
		}
	}

	for _, rooms := range [][]int{{5, 5}, {5}} {
		_, _, found, _ := Solve(courses, participants, rooms, false, 4)
		assert.False(t, found, "no result expected for rooms=%v", rooms)
	}
}
