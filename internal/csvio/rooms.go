package csvio

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/tverron/courseassign/internal/solver"
	"github.com/tverron/courseassign/pkg/model"
)

// LoadRooms reads the available course rooms from a JSON list of room
// kinds. It returns the flat list of room sizes in descending order
// together with the sorted kinds.
func LoadRooms(r io.Reader) ([]int, []model.RoomKind, error) {
	var kinds []model.RoomKind
	if err := json.NewDecoder(r).Decode(&kinds); err != nil {
		return nil, nil, fmt.Errorf("parsing rooms JSON: %w", err)
	}
	slices.SortStableFunc(kinds, func(a, b model.RoomKind) int { return b.Capacity - a.Capacity })
	return expandRoomKinds(kinds), kinds, nil
}

func expandRoomKinds(kinds []model.RoomKind) []int {
	var rooms []int
	for _, kind := range kinds {
		for i := 0; i < kind.Quantity; i++ {
			rooms = append(rooms, kind.Capacity)
		}
	}
	return rooms
}

// ParseRoomList parses a comma-separated list of room sizes, e.g.
// "15,10,8".
func ParseRoomList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	rooms := make([]int, len(parts))
	for i, part := range parts {
		size, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || size < 0 {
			return nil, fmt.Errorf("invalid room size %q", part)
		}
		rooms[i] = size
	}
	return rooms, nil
}

// RoomSizeLists returns a human readable list of possible room sizes
// in the form "15, 12, 10" for each course.
func RoomSizeLists(assignment model.Assignment, courses []*model.Course, rooms []int) []string {
	result := make([]string, 0, len(courses))
	for _, sizes := range possibleRoomSizes(assignment, courses, rooms) {
		texts := make([]string, len(sizes))
		for i, s := range sizes {
			texts[i] = strconv.Itoa(s)
		}
		result = append(result, strings.Join(texts, ", "))
	}
	return result
}

// RoomKindNames returns a human readable list of possible room kind
// names in the form "room kind 1, room kind 2" for each course.
func RoomKindNames(assignment model.Assignment, courses []*model.Course, kinds []model.RoomKind) []string {
	rooms := expandRoomKinds(kinds)
	result := make([]string, 0, len(courses))
	for _, sizes := range possibleRoomSizes(assignment, courses, rooms) {
		var names []string
		for _, s := range sizes {
			for _, kind := range kinds {
				if kind.Capacity == s {
					names = append(names, kind.Name)
				}
			}
		}
		result = append(result, strings.Join(names, ", "))
	}
	return result
}

// possibleRoomSizes returns the possible room sizes for each course (in
// descending order), assuming the assignment is valid so every course
// has a matching room.
//
// Courses and rooms are paired in descending size order. A course can
// use its paired room, any larger room and any smaller room that still
// fits its footprint. The paired rooms of larger courses stand in for
// them, since those courses can move up as well.
func possibleRoomSizes(assignment model.Assignment, courses []*model.Course, rooms []int) [][]int {
	footprints := solver.RoomFootprints(courses, assignment)
	type sizedCourse struct {
		course int
		size   int
	}
	bySize := make([]sizedCourse, len(courses))
	for i := range courses {
		bySize[i] = sizedCourse{course: i, size: footprints[i]}
	}
	slices.SortStableFunc(bySize, func(a, b sizedCourse) int { return b.size - a.size })

	sortedRooms := slices.Clone(rooms)
	slices.SortFunc(sortedRooms, func(a, b int) int { return b - a })

	num := len(courses)
	result := make([][]int, num)
	for i := 0; i < num; i++ {
		for j := i; j < len(sortedRooms); j++ {
			if sortedRooms[j] < bySize[i].size {
				break
			}
			result[i] = append(result[i], sortedRooms[j])
			if j < num {
				result[j] = append(result[j], sortedRooms[i])
			}
		}
	}

	// The per-course room lists are descending by construction, so
	// removing consecutive duplicates dedups them completely.
	byCourse := make([][]int, num)
	for i, sc := range bySize {
		byCourse[sc.course] = slices.Compact(result[i])
	}
	return byCourse
}
