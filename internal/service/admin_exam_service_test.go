package service

import (
	"strings"
	"testing"

	"github.com/lshigami/Margays/internal/dto"
)

func validExamCreate() dto.ExamCreateDTO {
	return dto.ExamCreateDTO{
		Title:            "Admin Created Test",
		TimeLimitMinutes: 120,
		Questions: []dto.QuestionCreateDTO{
			{
				Skill:       "LISTENING",
				Section:     1,
				Content:     "Listen and choose.",
				OrderInExam: 1,
				Choices: []dto.ChoiceCreateDTO{
					{Label: "A", Content: "first", IsCorrect: true},
					{Label: "B", Content: "second"},
				},
			},
			{
				Skill:       "READING",
				Section:     5,
				Content:     "Pick the best word.",
				OrderInExam: 2,
				Choices: []dto.ChoiceCreateDTO{
					{Label: "A", Content: "first"},
					{Label: "B", Content: "second", IsCorrect: true},
				},
			},
		},
	}
}

func TestCreateExam_Success(t *testing.T) {
	db := newTestDB(t)
	_, admin := newRecalcFixture(t, db)

	exam, err := admin.CreateExam(validExamCreate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exam.Questions) != 2 {
		t.Errorf("expected 2 questions, got %d", len(exam.Questions))
	}
	if exam.TimeLimitMinutes != 120 {
		t.Errorf("TimeLimitMinutes = %d, want 120", exam.TimeLimitMinutes)
	}
}

func TestCreateExam_Validations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*dto.ExamCreateDTO)
		wantMsg string
	}{
		{
			name: "skill does not match section",
			mutate: func(req *dto.ExamCreateDTO) {
				req.Questions[0].Section = 6 // reading part on a LISTENING question
			},
			wantMsg: "does not belong to skill",
		},
		{
			name: "no correct choice",
			mutate: func(req *dto.ExamCreateDTO) {
				req.Questions[0].Choices[0].IsCorrect = false
			},
			wantMsg: "exactly one choice",
		},
		{
			name: "two correct choices",
			mutate: func(req *dto.ExamCreateDTO) {
				req.Questions[1].Choices[0].IsCorrect = true
			},
			wantMsg: "exactly one choice",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			_, admin := newRecalcFixture(t, db)

			req := validExamCreate()
			tc.mutate(&req)
			_, err := admin.CreateExam(req)
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tc.wantMsg)
			}
		})
	}
}
