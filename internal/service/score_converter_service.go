package service

import (
	"fmt"
	"math"

	"github.com/lshigami/Margays/internal/model"
)

const (
	// MaxScaledScorePerSkill is the TOEIC per-skill ceiling (listening or reading).
	MaxScaledScorePerSkill = 495
	// MinScaledScorePerSkill is the participation floor on a full test; a
	// scored skill never maps to 0 under the conversion tables.
	MinScaledScorePerSkill = 5
	// FullTestQuestionsPerSkill is the raw count each conversion table covers.
	FullTestQuestionsPerSkill = 100
)

// fullTestListeningTable maps a raw listening correct count (index 0-100) to
// a scaled score. Monotonically non-decreasing by construction.
var fullTestListeningTable = [FullTestQuestionsPerSkill + 1]int{
	5, 5, 5, 5, 5, 5, 10, 15, 20, 25, // 0-9
	30, 35, 40, 45, 50, 55, 60, 70, 80, 85, // 10-19
	90, 95, 100, 105, 110, 115, 120, 125, 130, 135, // 20-29
	140, 145, 150, 155, 160, 165, 170, 175, 180, 185, // 30-39
	190, 195, 200, 205, 210, 215, 220, 230, 240, 245, // 40-49
	250, 255, 260, 265, 270, 275, 280, 285, 290, 295, // 50-59
	300, 305, 310, 315, 320, 325, 330, 335, 340, 345, // 60-69
	350, 355, 360, 365, 370, 375, 380, 385, 390, 395, // 70-79
	400, 405, 410, 415, 420, 425, 430, 435, 440, 445, // 80-89
	450, 455, 460, 465, 470, 475, 480, 485, 490, 495, // 90-99
	495, // 100
}

// fullTestReadingTable is the reading-side conversion curve. It trails the
// listening curve slightly at both extremes, as the published charts do.
var fullTestReadingTable = [FullTestQuestionsPerSkill + 1]int{
	5, 5, 5, 5, 5, 5, 5, 10, 15, 20, // 0-9
	25, 30, 35, 40, 45, 50, 60, 70, 80, 85, // 10-19
	90, 95, 100, 105, 110, 115, 120, 125, 130, 135, // 20-29
	140, 145, 150, 155, 160, 165, 170, 175, 180, 185, // 30-39
	190, 195, 200, 205, 210, 215, 220, 225, 230, 235, // 40-49
	240, 245, 250, 255, 260, 265, 270, 275, 280, 285, // 50-59
	290, 295, 300, 305, 310, 315, 320, 325, 330, 335, // 60-69
	340, 345, 350, 355, 360, 365, 370, 375, 380, 385, // 70-79
	390, 395, 400, 405, 410, 415, 420, 425, 430, 435, // 80-89
	440, 445, 450, 455, 460, 465, 470, 475, 480, 490, // 90-99
	495, // 100
}

// ScoreConverterService maps raw correct counts to per-skill scaled scores.
// Pure computation, no I/O.
type ScoreConverterService interface {
	// ScaledScore converts a raw correct count for one skill under the
	// regime selected by mode. For FULL_TEST, correct must lie in [0, 100]
	// and the fixed table for the skill applies. For PRACTICE_BY_PART the
	// score is round(correct/total*495); a zero total yields 0 (skill not
	// present in the selected parts).
	ScaledScore(mode model.AttemptMode, skill model.Skill, correct, total int) (int, error)

	// ScorePercent is round(correct/total*100), identical in every mode.
	ScorePercent(correct, total int) int
}

type scoreConverterService struct{}

func NewScoreConverterService() ScoreConverterService {
	return &scoreConverterService{}
}

func (s *scoreConverterService) ScaledScore(mode model.AttemptMode, skill model.Skill, correct, total int) (int, error) {
	switch mode {
	case model.ModeFullTest:
		if correct < 0 || correct > FullTestQuestionsPerSkill {
			return 0, fmt.Errorf("raw correct count %d out of range 0-%d", correct, FullTestQuestionsPerSkill)
		}
		switch skill {
		case model.SkillListening:
			return fullTestListeningTable[correct], nil
		case model.SkillReading:
			return fullTestReadingTable[correct], nil
		default:
			return 0, fmt.Errorf("unknown skill %q", skill)
		}
	case model.ModePracticeByPart:
		if total == 0 {
			return 0, nil
		}
		if correct < 0 || total < 0 || correct > total {
			return 0, fmt.Errorf("invalid raw counts %d/%d", correct, total)
		}
		return int(math.Round(float64(correct) / float64(total) * MaxScaledScorePerSkill)), nil
	default:
		return 0, fmt.Errorf("unknown attempt mode %q", mode)
	}
}

func (s *scoreConverterService) ScorePercent(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
