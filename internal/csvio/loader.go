// Package csvio loads course assignment problems from CSV or JSON
// files and exports solutions and human readable reports.
package csvio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/tverron/courseassign/pkg/model"
)

// courseRow is one record of the courses CSV file. The instructors
// column holds pipe-separated participant ids.
type courseRow struct {
	ID          uint64  `csv:"id"`
	Name        string  `csv:"name"`
	NumMin      int     `csv:"num_min"`
	NumMax      int     `csv:"num_max"`
	Instructors string  `csv:"instructors"`
	RoomFactor  float64 `csv:"room_factor"`
	RoomOffset  float64 `csv:"room_offset"`
	Fixed       bool    `csv:"fixed"`
}

// participantRow is one record of the participants CSV file. The
// choices column holds pipe-separated course ids, best choice first.
type participantRow struct {
	ID      uint64 `csv:"id"`
	Name    string `csv:"name"`
	Choices string `csv:"choices"`
}

// LoadProblem reads and parses the given CSV files for course and
// participant data. Choice penalties are the position in the choice
// list, so the first choice is free and later choices get worse.
func LoadProblem(coursesPath, participantsPath string, delim rune) ([]*model.Participant, []*model.Course, error) {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = delim
		return r
	})

	coursesFile, err := os.Open(coursesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening courses file: %w", err)
	}
	defer coursesFile.Close()
	var courseRows []*courseRow
	if err := gocsv.UnmarshalFile(coursesFile, &courseRows); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", coursesPath, err)
	}

	participantsFile, err := os.Open(participantsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening participants file: %w", err)
	}
	defer participantsFile.Close()
	var participantRows []*participantRow
	if err := gocsv.UnmarshalFile(participantsFile, &participantRows); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", participantsPath, err)
	}

	courseIndex := make(map[uint64]int, len(courseRows))
	courses := make([]*model.Course, len(courseRows))
	for i, row := range courseRows {
		if _, dup := courseIndex[row.ID]; dup {
			return nil, nil, fmt.Errorf("duplicate course id %d", row.ID)
		}
		courseIndex[row.ID] = i
		factor := row.RoomFactor
		if factor == 0 {
			factor = 1.0
		}
		courses[i] = &model.Course{
			Index:      i,
			ID:         row.ID,
			Name:       row.Name,
			NumMin:     row.NumMin,
			NumMax:     row.NumMax,
			RoomFactor: factor,
			RoomOffset: row.RoomOffset,
			Fixed:      row.Fixed,
		}
	}

	participantIndex := make(map[uint64]int, len(participantRows))
	participants := make([]*model.Participant, len(participantRows))
	for i, row := range participantRows {
		if _, dup := participantIndex[row.ID]; dup {
			return nil, nil, fmt.Errorf("duplicate participant id %d", row.ID)
		}
		participantIndex[row.ID] = i
		choiceIDs, err := parseIDList(row.Choices)
		if err != nil {
			return nil, nil, fmt.Errorf("choices of participant %d: %w", row.ID, err)
		}
		choices := make([]model.Choice, len(choiceIDs))
		for rank, id := range choiceIDs {
			c, ok := courseIndex[id]
			if !ok {
				return nil, nil, fmt.Errorf("participant %d chose unknown course %d", row.ID, id)
			}
			choices[rank] = model.Choice{Course: c, Penalty: uint32(rank)}
		}
		participants[i] = &model.Participant{
			Index:   i,
			ID:      row.ID,
			Name:    row.Name,
			Choices: choices,
		}
	}

	for i, row := range courseRows {
		instructorIDs, err := parseIDList(row.Instructors)
		if err != nil {
			return nil, nil, fmt.Errorf("instructors of course %d: %w", row.ID, err)
		}
		for _, id := range instructorIDs {
			p, ok := participantIndex[id]
			if !ok {
				return nil, nil, fmt.Errorf("course %d has unknown instructor %d", row.ID, id)
			}
			courses[i].Instructors = append(courses[i].Instructors, p)
		}
	}

	return participants, courses, nil
}

// parseIDList splits a pipe-separated list of numeric ids. Empty input
// yields an empty list.
func parseIDList(s string) ([]uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "|")
	ids := make([]uint64, len(parts))
	for i, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids[i] = id
	}
	return ids, nil
}

// problemDocument is the JSON representation of the input data.
type problemDocument struct {
	Format       string               `json:"format"`
	Version      string               `json:"version"`
	Participants []*model.Participant `json:"participants"`
	Courses      []*model.Course      `json:"courses"`
}

// LoadProblemJSON reads participants and courses from their JSON
// representation. Indexes are assigned by list position.
func LoadProblemJSON(r io.Reader) ([]*model.Participant, []*model.Course, error) {
	var doc problemDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("parsing problem JSON: %w", err)
	}
	for i, p := range doc.Participants {
		p.Index = i
	}
	for i, c := range doc.Courses {
		c.Index = i
		if c.RoomFactor == 0 {
			c.RoomFactor = 1.0
		}
	}
	return doc.Participants, doc.Courses, nil
}
