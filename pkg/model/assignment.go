package model

import "fmt"

// Unassigned marks a participant without a course in an Assignment.
const Unassigned = -1

// Assignment maps each participant index to the index of their assigned
// course, or Unassigned. It is the final output artifact of the solver.
type Assignment []int

// CourseSizes returns the number of assigned participants per course,
// including instructors.
func (a Assignment) CourseSizes(numCourses int) []int {
	sizes := make([]int, numCourses)
	for _, c := range a {
		if c != Unassigned {
			sizes[c]++
		}
	}
	return sizes
}

// ValidateData checks participants and courses for index consistency and
// plausible capacities. The solver treats violations as programmer errors,
// so callers must run this on freshly loaded data before solving.
func ValidateData(participants []*Participant, courses []*Course) error {
	for i, p := range participants {
		if p.Index != i {
			return fmt.Errorf("index of participant %d is %d", i, p.Index)
		}
		for _, choice := range p.Choices {
			if choice.Course < 0 || choice.Course >= len(courses) {
				return fmt.Errorf("course choice %d of participant %q is invalid", choice.Course, p.Name)
			}
		}
	}
	for i, c := range courses {
		if c.Index != i {
			return fmt.Errorf("index of course %d is %d", i, c.Index)
		}
		for _, instr := range c.Instructors {
			if instr < 0 || instr >= len(participants) {
				return fmt.Errorf("instructor %d of course %q is invalid", instr, c.Name)
			}
		}
		if c.NumMin > c.NumMax {
			return fmt.Errorf("min size (%d) > max size (%d) of course %q", c.NumMin, c.NumMax, c.Name)
		}
		if c.RoomFactor <= 0 {
			return fmt.Errorf("room factor %g of course %q is not positive", c.RoomFactor, c.Name)
		}
	}
	return nil
}
