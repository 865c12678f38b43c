package model

// Course holds one offered course with its capacity limits and room
// requirements. Index is the position in the course list and is assigned
// by the loader, not read from the input.
//
// NumMin and NumMax bound the number of regular attendees excluding
// instructors. RoomOffset and RoomFactor map the assigned headcount
// (including instructors) to the required room size:
//
//	required = ceil(RoomOffset + RoomFactor * headcount)
type Course struct {
	Index       int     `json:"-"`
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	NumMin      int     `json:"num_min"`
	NumMax      int     `json:"num_max"`
	Instructors []int   `json:"instructors"`
	RoomFactor  float64 `json:"room_factor"`
	RoomOffset  float64 `json:"room_offset"`
	// Fixed courses may never be cancelled by the solver.
	Fixed bool `json:"fixed_course"`
	// HiddenParticipants lists names of externally pre-assigned attendees.
	// They are invisible to the solver and only appear in reports.
	HiddenParticipants []string `json:"hidden_participant_names,omitempty"`
}
