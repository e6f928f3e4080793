package service

import (
	"testing"

	"github.com/lshigami/Margays/internal/model"
)

// sectionAnswers builds a breakdown slice with the given correct/total split
// for one section.
func sectionAnswers(section, correct, total int) []AnswerBreakdown {
	skill := model.SkillForSection(section)
	out := make([]AnswerBreakdown, 0, total)
	for i := 0; i < total; i++ {
		out = append(out, AnswerBreakdown{
			QuestionID: uint(section*1000 + i),
			Skill:      skill,
			Section:    section,
			IsCorrect:  i < correct,
		})
	}
	return out
}

func TestAnalyze_ThresholdIsStrict(t *testing.T) {
	var breakdown []AnswerBreakdown
	breakdown = append(breakdown, sectionAnswers(1, 2, 5)...)  // 40%
	breakdown = append(breakdown, sectionAnswers(3, 7, 10)...) // 70%
	breakdown = append(breakdown, sectionAnswers(5, 9, 10)...) // 90%

	weak := NewWeakAreaService().Analyze(breakdown)
	if len(weak) != 1 {
		t.Fatalf("expected 1 weak area, got %d: %+v", len(weak), weak)
	}
	if weak[0].Section != 1 {
		t.Errorf("expected section 1, got %d", weak[0].Section)
	}
	if weak[0].Correct != 2 || weak[0].Total != 5 {
		t.Errorf("expected 2/5, got %d/%d", weak[0].Correct, weak[0].Total)
	}
	if weak[0].Skill != string(model.SkillListening) {
		t.Errorf("expected LISTENING, got %s", weak[0].Skill)
	}
}

func TestAnalyze_ExactlyAtThresholdNotWeak(t *testing.T) {
	weak := NewWeakAreaService().Analyze(sectionAnswers(2, 6, 10)) // exactly 60%
	if len(weak) != 0 {
		t.Errorf("60%% accuracy should not be weak, got %+v", weak)
	}
}

func TestAnalyze_SortedWorstFirst(t *testing.T) {
	var breakdown []AnswerBreakdown
	breakdown = append(breakdown, sectionAnswers(5, 5, 10)...) // 50%
	breakdown = append(breakdown, sectionAnswers(2, 2, 10)...) // 20%
	breakdown = append(breakdown, sectionAnswers(7, 4, 10)...) // 40%

	weak := NewWeakAreaService().Analyze(breakdown)
	if len(weak) != 3 {
		t.Fatalf("expected 3 weak areas, got %d", len(weak))
	}
	wantSections := []int{2, 7, 5}
	for i, want := range wantSections {
		if weak[i].Section != want {
			t.Errorf("position %d: expected section %d, got %d", i, want, weak[i].Section)
		}
	}
	for i := 1; i < len(weak); i++ {
		if weak[i].AccuracyPercent < weak[i-1].AccuracyPercent {
			t.Errorf("weak areas not sorted ascending: %+v", weak)
		}
	}
}

func TestAnalyze_EmptyBreakdown(t *testing.T) {
	if weak := NewWeakAreaService().Analyze(nil); len(weak) != 0 {
		t.Errorf("expected no weak areas for empty breakdown, got %+v", weak)
	}
}
