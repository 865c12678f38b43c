package model

// Choice is one entry in a participant's ordered course preference list.
// Penalty grows with the position in the list; the first choice has
// penalty 0.
type Choice struct {
	Course  int    `json:"course"`
	Penalty uint32 `json:"penalty"`
}

// Participant holds one registered event participant with their ordered
// course choices. Index is the position in the participant list and is
// assigned by the loader, not read from the input.
type Participant struct {
	Index   int      `json:"-"`
	ID      uint64   `json:"id"`
	Name    string   `json:"name"`
	Choices []Choice `json:"choices"`
}

// InstructorOnly reports whether the participant has no course choices.
// Such participants are only relevant as potential course instructors and
// are excluded from the score and from mandatory placement.
func (p *Participant) InstructorOnly() bool {
	return len(p.Choices) == 0
}

// ChosePenalty returns the penalty of the given course in the
// participant's choice list, or false if the course was not chosen.
func (p *Participant) ChosePenalty(course int) (uint32, bool) {
	for _, choice := range p.Choices {
		if choice.Course == course {
			return choice.Penalty, true
		}
	}
	return 0, false
}
