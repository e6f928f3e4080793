package service

import (
	"sort"

	"github.com/lshigami/Margays/internal/dto"
	"github.com/lshigami/Margays/internal/model"
)

// WeakAreaAccuracyThreshold: a section with accuracy strictly below this is
// reported as a weak area.
const WeakAreaAccuracyThreshold = 0.60

// WeakAreaService derives per-section performance insight from a graded
// breakdown. Advisory only; never touches stored scores.
type WeakAreaService interface {
	Analyze(breakdown []AnswerBreakdown) []dto.WeakAreaDTO
}

type weakAreaService struct{}

func NewWeakAreaService() WeakAreaService {
	return &weakAreaService{}
}

func (s *weakAreaService) Analyze(breakdown []AnswerBreakdown) []dto.WeakAreaDTO {
	type tally struct {
		skill   model.Skill
		correct int
		total   int
	}
	bySection := make(map[int]*tally)
	for _, b := range breakdown {
		t, ok := bySection[b.Section]
		if !ok {
			t = &tally{skill: b.Skill}
			bySection[b.Section] = t
		}
		t.total++
		if b.IsCorrect {
			t.correct++
		}
	}

	var weak []dto.WeakAreaDTO
	for section, t := range bySection {
		// Sections with no attempted questions never reach here, so no
		// division by zero and no false signal.
		accuracy := float64(t.correct) / float64(t.total)
		if accuracy < WeakAreaAccuracyThreshold {
			weak = append(weak, dto.WeakAreaDTO{
				Section:         section,
				Skill:           string(t.skill),
				Correct:         t.correct,
				Total:           t.total,
				AccuracyPercent: accuracy * 100,
			})
		}
	}

	// Worst first; section number breaks ties for stable output.
	sort.Slice(weak, func(i, j int) bool {
		if weak[i].AccuracyPercent != weak[j].AccuracyPercent {
			return weak[i].AccuracyPercent < weak[j].AccuracyPercent
		}
		return weak[i].Section < weak[j].Section
	})
	return weak
}
