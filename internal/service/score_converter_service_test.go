package service

import (
	"testing"

	"github.com/lshigami/Margays/internal/model"
)

func TestScaledScore_FullTestAnchors(t *testing.T) {
	tests := []struct {
		name    string
		skill   model.Skill
		correct int
		want    int
	}{
		{name: "listening perfect", skill: model.SkillListening, correct: 100, want: 495},
		{name: "reading perfect", skill: model.SkillReading, correct: 100, want: 495},
		{name: "listening zero floors at 5", skill: model.SkillListening, correct: 0, want: 5},
		{name: "reading zero floors at 5", skill: model.SkillReading, correct: 0, want: 5},
	}

	sc := NewScoreConverterService()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sc.ScaledScore(model.ModeFullTest, tc.skill, tc.correct, FullTestQuestionsPerSkill)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ScaledScore(%s, %d) = %d, want %d", tc.skill, tc.correct, got, tc.want)
			}
		})
	}
}

func TestScaledScore_FullTestMonotonic(t *testing.T) {
	sc := NewScoreConverterService()
	for _, skill := range []model.Skill{model.SkillListening, model.SkillReading} {
		prev := -1
		for correct := 0; correct <= FullTestQuestionsPerSkill; correct++ {
			got, err := sc.ScaledScore(model.ModeFullTest, skill, correct, FullTestQuestionsPerSkill)
			if err != nil {
				t.Fatalf("%s raw %d: unexpected error: %v", skill, correct, err)
			}
			if got < prev {
				t.Fatalf("%s table not monotonic at raw %d: %d < %d", skill, correct, got, prev)
			}
			if got < MinScaledScorePerSkill || got > MaxScaledScorePerSkill {
				t.Fatalf("%s raw %d: score %d outside [%d, %d]", skill, correct, got, MinScaledScorePerSkill, MaxScaledScorePerSkill)
			}
			prev = got
		}
	}
}

func TestScaledScore_Practice(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		total   int
		want    int
	}{
		{name: "15 of 20", correct: 15, total: 20, want: 371},
		{name: "all correct", correct: 20, total: 20, want: 495},
		{name: "none correct", correct: 0, total: 20, want: 0},
		{name: "skill absent from selection", correct: 0, total: 0, want: 0},
		{name: "10 of 40", correct: 10, total: 40, want: 124},
	}

	sc := NewScoreConverterService()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sc.ScaledScore(model.ModePracticeByPart, model.SkillListening, tc.correct, tc.total)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ScaledScore(practice, %d/%d) = %d, want %d", tc.correct, tc.total, got, tc.want)
			}
		})
	}
}

func TestScaledScore_Invalid(t *testing.T) {
	sc := NewScoreConverterService()
	tests := []struct {
		name    string
		mode    model.AttemptMode
		skill   model.Skill
		correct int
		total   int
	}{
		{name: "full test raw above 100", mode: model.ModeFullTest, skill: model.SkillListening, correct: 101, total: 101},
		{name: "full test negative raw", mode: model.ModeFullTest, skill: model.SkillReading, correct: -1, total: 100},
		{name: "full test unknown skill", mode: model.ModeFullTest, skill: "SPEAKING", correct: 10, total: 100},
		{name: "practice correct above total", mode: model.ModePracticeByPart, skill: model.SkillReading, correct: 5, total: 4},
		{name: "unknown mode", mode: "DIAGNOSTIC", skill: model.SkillListening, correct: 1, total: 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := sc.ScaledScore(tc.mode, tc.skill, tc.correct, tc.total); err == nil {
				t.Errorf("expected error, got nil")
			}
		})
	}
}

func TestScorePercent(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		total   int
		want    int
	}{
		{name: "half of full exam", correct: 100, total: 200, want: 50},
		{name: "rounds half up", correct: 75, total: 200, want: 38},
		{name: "one of three", correct: 1, total: 3, want: 33},
		{name: "perfect", correct: 200, total: 200, want: 100},
		{name: "empty pool", correct: 0, total: 0, want: 0},
	}

	sc := NewScoreConverterService()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := sc.ScorePercent(tc.correct, tc.total); got != tc.want {
				t.Errorf("ScorePercent(%d, %d) = %d, want %d", tc.correct, tc.total, got, tc.want)
			}
		})
	}
}
