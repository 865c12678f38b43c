package csvio

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tverron/courseassign/pkg/model"
)

// FormatAssignment renders the calculated course assignment as a human
// readable report, e.g. to print it to stdout. possibleRooms optionally
// holds a room description per course, as produced by RoomSizeLists or
// RoomKindNames.
func FormatAssignment(
	assignment model.Assignment,
	courses []*model.Course,
	participants []*model.Participant,
	possibleRooms []string,
) string {
	var b strings.Builder
	for _, c := range courses {
		fmt.Fprintf(&b, "\n===== %s =====\n", c.Name)
		var assigned []*model.Participant
		for p, course := range assignment {
			if course == c.Index {
				assigned = append(assigned, participants[p])
			}
		}
		fmt.Fprintf(&b, "(%d participants incl. instructors)\n", len(assigned)+len(c.HiddenParticipants))
		if possibleRooms != nil {
			fmt.Fprintf(&b, "(possible course rooms: %s)\n", possibleRooms[c.Index])
		}
		for _, p := range assigned {
			if slices.Contains(c.Instructors, p.Index) {
				fmt.Fprintf(&b, "- %s (instr)\n", p.Name)
			} else {
				fmt.Fprintf(&b, "- %s\n", p.Name)
			}
		}
		if len(c.HiddenParticipants) > 0 {
			b.WriteString("further attendees (not optimized):\n")
			for _, name := range c.HiddenParticipants {
				fmt.Fprintf(&b, "- %s\n", name)
			}
		}
	}
	return b.String()
}

// CourseList renders the indexed course list for debug output.
func CourseList(courses []*model.Course) string {
	lines := make([]string, len(courses))
	for i, c := range courses {
		lines[i] = fmt.Sprintf("%02d %s", c.Index, c.Name)
	}
	return strings.Join(lines, "\n")
}
