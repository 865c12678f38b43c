package solver

import (
	"fmt"

	"github.com/tverron/courseassign/internal/hungarian"
	"github.com/tverron/courseassign/pkg/model"
)

// TheoreticalMaxScore is a simple upper bound for the solution score,
// assuming every instructor gets their course and every participant
// their first choice.
func TheoreticalMaxScore(participants []*model.Participant, courses []*model.Course) hungarian.Score {
	scores := make([]hungarian.Score, len(participants))
	for i, p := range participants {
		for _, choice := range p.Choices {
			if w := hungarian.Score(edgeWeight(choice)); w > scores[i] {
				scores[i] = w
			}
		}
	}
	for _, c := range courses {
		for _, instr := range c.Instructors {
			// Instructor-only participants never contribute to the score.
			if !participants[instr].InstructorOnly() {
				scores[instr] = instructorScore
			}
		}
	}
	var sum hungarian.Score
	for _, s := range scores {
		sum += s
	}
	return sum
}

// SolutionQuality is the average score lack per real participant. It is
// comparable across problems with different participant counts and
// choice lists; 0 means a perfect assignment, higher is worse.
func SolutionQuality(score hungarian.Score, participants []*model.Participant) float64 {
	numReal := 0
	for _, p := range participants {
		if !p.InstructorOnly() {
			numReal++
		}
	}
	return float64(uint64(numReal)*uint64(weightOffset)-uint64(score)) / float64(numReal)
}

// QualityInfo bundles the quality figures of one solution.
type QualityInfo struct {
	SolutionScore         hungarian.Score `json:"solution_score"`
	TheoreticalMaxScore   hungarian.Score `json:"theoretical_max_score"`
	SolutionQuality       float64         `json:"solution_quality"`
	TheoreticalMaxQuality float64         `json:"theoretical_max_quality"`
}

// CalculateQuality computes the quality figures for a solution score.
func CalculateQuality(
	score hungarian.Score,
	participants []*model.Participant,
	courses []*model.Course,
) QualityInfo {
	maxScore := TheoreticalMaxScore(participants, courses)
	return QualityInfo{
		SolutionScore:         score,
		TheoreticalMaxScore:   maxScore,
		SolutionQuality:       SolutionQuality(score, participants),
		TheoreticalMaxQuality: SolutionQuality(maxScore, participants),
	}
}

func (q QualityInfo) String() string {
	return fmt.Sprintf(`Solution score:                     %9d
(Perfect matching would have been:  %9d)
----------------------------------------------
Solution quality lack:               %8.6f
(Perfect matching would have been:   %8.6f)
`,
		q.SolutionScore,
		q.TheoreticalMaxScore,
		q.SolutionQuality,
		q.TheoreticalMaxQuality)
}
