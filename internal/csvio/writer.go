package csvio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tverron/courseassign/pkg/model"
)

// assignmentDocument is the JSON representation of a computed
// assignment. Unassigned participants are encoded as null.
type assignmentDocument struct {
	Format     string `json:"format"`
	Version    string `json:"version"`
	Assignment []*int `json:"assignment"`
}

// WriteAssignment writes the calculated course assignment as JSON.
func WriteAssignment(w io.Writer, assignment model.Assignment) error {
	entries := make([]*int, len(assignment))
	for i, c := range assignment {
		if c != model.Unassigned {
			c := c
			entries[i] = &c
		}
	}
	doc := assignmentDocument{
		Format:     "X-courseassignment-simple",
		Version:    "1.0",
		Assignment: entries,
	}
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("writing assignment: %w", err)
	}
	return nil
}

// WriteProblem writes the participant and course lists as JSON, in the
// format read back by LoadProblemJSON.
func WriteProblem(w io.Writer, participants []*model.Participant, courses []*model.Course) error {
	doc := problemDocument{
		Format:       "X-coursedata-simple",
		Version:      "1.0",
		Participants: participants,
		Courses:      courses,
	}
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("writing problem data: %w", err)
	}
	return nil
}
