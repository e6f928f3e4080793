package service

import (
	"errors"
	"testing"

	"github.com/lshigami/Margays/config"
	"github.com/lshigami/Margays/internal/dto"
	"github.com/lshigami/Margays/internal/model"
	"github.com/lshigami/Margays/internal/repository"
	"gorm.io/gorm"
)

func newRecalcFixture(t *testing.T, db *gorm.DB) (RecalculationService, AdminExamService) {
	t.Helper()
	examRepo := repository.NewExamRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	answerRepo := repository.NewAttemptAnswerRepository(db)
	recalc := NewRecalculationService(questionRepo, attemptRepo, answerRepo, NewScoreConverterService(), db,
		&config.Config{Recalc: config.Recalc{Workers: 1}})
	admin := NewAdminExamService(examRepo, questionRepo, recalc, NewExamService(examRepo), db)
	return recalc, admin
}

// submitAll starts an attempt and answers every pool question, overriding the
// chosen label per question ID where given.
func submitAll(t *testing.T, svc AttemptService, exam *model.Exam, userID uint, mode model.AttemptMode, sections []int, overrides map[uint]string) *dto.AttemptResultDTO {
	t.Helper()
	attempt, err := svc.StartAttempt(dto.StartAttemptDTO{UserID: userID, ExamID: exam.ID, Mode: string(mode), Sections: sections})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	selected := make(map[int]bool, len(sections))
	for _, s := range sections {
		selected[s] = true
	}
	var answers []dto.AnswerSubmitDTO
	for _, q := range exam.Questions {
		if len(sections) > 0 && !selected[q.Section] {
			continue
		}
		label := "A"
		if l, ok := overrides[q.ID]; ok {
			label = l
		}
		answers = append(answers, dto.AnswerSubmitDTO{QuestionID: q.ID, ChoiceID: choiceID(t, q, label)})
	}
	result, err := svc.SubmitAttempt(attempt.ID, dto.AttemptSubmitDTO{Answers: answers})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return result
}

func reloadAttempt(t *testing.T, db *gorm.DB, id uint) *model.Attempt {
	t.Helper()
	var att model.Attempt
	if err := db.Preload("Answers").First(&att, id).Error; err != nil {
		t.Fatalf("reload attempt %d: %v", id, err)
	}
	return &att
}

func TestRecalculation_CorrectChoiceFlip(t *testing.T) {
	db := newTestDB(t)
	exam := seedExam(t, db)
	attemptSvc := newAttemptService(db)
	_, admin := newRecalcFixture(t, db)

	q0 := exam.Questions[0] // listening, section 1, "A" marked correct

	// Attempt A: everything right. Attempt B: chose "B" on q0, rest right.
	// Attempt C: practice on reading parts only, never touches q0.
	a := submitAll(t, attemptSvc, exam, 1, model.ModeFullTest, nil, nil)
	b := submitAll(t, attemptSvc, exam, 2, model.ModeFullTest, nil, map[uint]string{q0.ID: "B"})
	c := submitAll(t, attemptSvc, exam, 3, model.ModePracticeByPart, []int{5, 7}, nil)

	if a.ScorePercent != 100 || b.ScorePercent != 88 || c.ScorePercent != 100 {
		t.Fatalf("unexpected pre-flip percents: %d/%d/%d", a.ScorePercent, b.ScorePercent, c.ScorePercent)
	}

	report, err := admin.UpdateCorrectChoice(q0.ID, dto.CorrectChoiceUpdateDTO{ChoiceID: choiceID(t, q0, "B")})
	if err != nil {
		t.Fatalf("flip: %v", err)
	}
	if report.AttemptsFound != 2 || report.AttemptsRepaired != 2 || len(report.Failures) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	// A lost a point, B gained one, C is untouched.
	gotA := reloadAttempt(t, db, a.Attempt.ID)
	if gotA.ScorePercent == nil || *gotA.ScorePercent != 88 {
		t.Errorf("attempt A percent = %v, want 88", gotA.ScorePercent)
	}
	for _, row := range gotA.Answers {
		if row.QuestionID == q0.ID && row.IsCorrect {
			t.Errorf("attempt A's answer to the flipped question must now be incorrect")
		}
	}

	gotB := reloadAttempt(t, db, b.Attempt.ID)
	if gotB.ScorePercent == nil || *gotB.ScorePercent != 100 {
		t.Errorf("attempt B percent = %v, want 100", gotB.ScorePercent)
	}
	for _, row := range gotB.Answers {
		if row.QuestionID == q0.ID && !row.IsCorrect {
			t.Errorf("attempt B's answer to the flipped question must now be correct")
		}
	}

	gotC := reloadAttempt(t, db, c.Attempt.ID)
	if gotC.ScorePercent == nil || *gotC.ScorePercent != 100 {
		t.Errorf("attempt C percent = %v, want 100 (unchanged)", gotC.ScorePercent)
	}
	if gotC.ScoreReading == nil || *gotC.ScoreReading != 495 {
		t.Errorf("attempt C reading = %v, want 495 (practice regime preserved)", gotC.ScoreReading)
	}
	if gotC.SubmittedAt == nil || gotA.SubmittedAt == nil {
		t.Errorf("recalculation must never clear submitted_at")
	}
}

func TestRecalculation_PartialFailure(t *testing.T) {
	db := newTestDB(t)
	exam := seedExam(t, db)
	attemptSvc := newAttemptService(db)
	_, admin := newRecalcFixture(t, db)

	q0 := exam.Questions[0]
	broken := submitAll(t, attemptSvc, exam, 1, model.ModeFullTest, nil, nil)
	healthy := submitAll(t, attemptSvc, exam, 2, model.ModeFullTest, nil, map[uint]string{q0.ID: "B"})

	// Soft-delete one attempt. Its answer rows still reference the question,
	// so the cascade visits it and that repair fails to load the attempt.
	if err := db.Delete(&model.Attempt{}, broken.Attempt.ID).Error; err != nil {
		t.Fatalf("delete attempt: %v", err)
	}

	report, err := admin.UpdateCorrectChoice(q0.ID, dto.CorrectChoiceUpdateDTO{ChoiceID: choiceID(t, q0, "B")})
	if err != nil {
		t.Fatalf("flip must not fail on a partial repair: %v", err)
	}
	if report.AttemptsFound != 2 || report.AttemptsRepaired != 1 || len(report.Failures) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Failures[0].AttemptID != broken.Attempt.ID {
		t.Errorf("failure names attempt %d, want %d", report.Failures[0].AttemptID, broken.Attempt.ID)
	}
	if report.Failures[0].Error == "" {
		t.Errorf("failure entry carries no reason")
	}

	// The healthy attempt is still repaired: it chose "B" on the flipped
	// question, so the repair lifts it to a perfect score.
	got := reloadAttempt(t, db, healthy.Attempt.ID)
	if got.ScorePercent == nil || *got.ScorePercent != 100 {
		t.Errorf("healthy attempt percent = %v, want 100 after repair", got.ScorePercent)
	}
}

func TestRecalculation_Idempotent(t *testing.T) {
	db := newTestDB(t)
	exam := seedExam(t, db)
	attemptSvc := newAttemptService(db)
	recalc, _ := newRecalcFixture(t, db)

	q0 := exam.Questions[0]
	a := submitAll(t, attemptSvc, exam, 1, model.ModeFullTest, nil, nil)

	// No correctness change at all: the cascade still runs its
	// read-recompute-write cycle and lands on identical values.
	report, err := recalc.QuestionCorrectAnswerChanged(q0.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if report.AttemptsFound != 1 || report.AttemptsRepaired != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	got := reloadAttempt(t, db, a.Attempt.ID)
	if got.ScorePercent == nil || *got.ScorePercent != a.ScorePercent {
		t.Errorf("idempotent rerun changed percent: %v", got.ScorePercent)
	}
	if got.ScoreListening == nil || *got.ScoreListening != a.ScoreListening {
		t.Errorf("idempotent rerun changed listening score: %v", got.ScoreListening)
	}
}

func TestRecalculation_QuestionNotFound(t *testing.T) {
	db := newTestDB(t)
	recalc, _ := newRecalcFixture(t, db)
	if _, err := recalc.QuestionCorrectAnswerChanged(12345); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestRecalculation_NoReferencingAttempts(t *testing.T) {
	db := newTestDB(t)
	exam := seedExam(t, db)
	recalc, _ := newRecalcFixture(t, db)

	report, err := recalc.QuestionCorrectAnswerChanged(exam.Questions[0].ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if report.AttemptsFound != 0 || report.AttemptsRepaired != 0 {
		t.Errorf("unexpected report for untouched question: %+v", report)
	}
}

func TestUpdateCorrectChoice_ChoiceNotFound(t *testing.T) {
	db := newTestDB(t)
	exam := seedExam(t, db)
	_, admin := newRecalcFixture(t, db)

	q0, q1 := exam.Questions[0], exam.Questions[1]
	_, err := admin.UpdateCorrectChoice(q0.ID, dto.CorrectChoiceUpdateDTO{ChoiceID: choiceID(t, q1, "A")})
	if !errors.Is(err, ErrChoiceNotFound) {
		t.Errorf("expected ErrChoiceNotFound, got %v", err)
	}
}
