package dto

import "time"

// ChoiceDTO is a choice as shown to students; the correctness flag is
// deliberately absent.
type ChoiceDTO struct {
	ID      uint   `json:"id"`
	Label   string `json:"label"`
	Content string `json:"content"`
}

// QuestionDTO is a question as shown to students while taking a test.
type QuestionDTO struct {
	ID          uint        `json:"id"`
	ExamID      uint        `json:"exam_id"`
	Skill       string      `json:"skill"`
	Section     int         `json:"section"`
	Content     string      `json:"content"`
	OrderInExam int         `json:"order_in_exam"`
	Choices     []ChoiceDTO `json:"choices,omitempty"`
}

// ExamSummaryDTO is used for listing exams available to students.
type ExamSummaryDTO struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	TimeLimitMinutes int       `json:"time_limit_minutes"`
	QuestionCount    int       `json:"question_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// ExamDetailDTO is the full exam a student loads before starting an attempt.
type ExamDetailDTO struct {
	ID               uint          `json:"id"`
	Title            string        `json:"title"`
	Description      string        `json:"description,omitempty"`
	TimeLimitMinutes int           `json:"time_limit_minutes"`
	Questions        []QuestionDTO `json:"questions,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// AttemptDTO is the lifecycle view of an attempt (start / resume).
type AttemptDTO struct {
	ID             uint       `json:"id"`
	UserID         uint       `json:"user_id"`
	ExamID         uint       `json:"exam_id"`
	ExamTitle      string     `json:"exam_title,omitempty"`
	Mode           string     `json:"mode"`
	Sections       []int      `json:"sections,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	ScorePercent   *int       `json:"score_percent,omitempty"`
	ScoreListening *int       `json:"score_listening,omitempty"`
	ScoreReading   *int       `json:"score_reading,omitempty"`
}

// AnswerBreakdownDTO is one answer of a graded attempt, chosen vs. correct.
type AnswerBreakdownDTO struct {
	QuestionID      uint   `json:"question_id"`
	Skill           string `json:"skill"`
	Section         int    `json:"section"`
	ChosenChoiceID  *uint  `json:"chosen_choice_id,omitempty"` // nil when unanswered
	CorrectChoiceID uint   `json:"correct_choice_id"`
	IsCorrect       bool   `json:"is_correct"`
}

// WeakAreaDTO reports one section where accuracy fell below the threshold.
type WeakAreaDTO struct {
	Section         int     `json:"section"`
	Skill           string  `json:"skill"`
	Correct         int     `json:"correct"`
	Total           int     `json:"total"`
	AccuracyPercent float64 `json:"accuracy_percent"`
}

// AttemptResultDTO is the full graded view of an attempt.
type AttemptResultDTO struct {
	Attempt        AttemptDTO           `json:"attempt"`
	TotalQuestions int                  `json:"total_questions"`
	TotalCorrect   int                  `json:"total_correct"`
	ScorePercent   int                  `json:"score_percent"`
	ScoreListening int                  `json:"score_listening"`
	ScoreReading   int                  `json:"score_reading"`
	TotalScore     int                  `json:"total_score"`
	Breakdown      []AnswerBreakdownDTO `json:"breakdown,omitempty"`
	WeakAreas      []WeakAreaDTO        `json:"weak_areas,omitempty"`
	StudyAdvice    string               `json:"study_advice,omitempty"`
}

// AttemptSummaryDTO is one row of a student's attempt history.
type AttemptSummaryDTO struct {
	ID             uint       `json:"id"`
	ExamID         uint       `json:"exam_id"`
	ExamTitle      string     `json:"exam_title,omitempty"`
	Mode           string     `json:"mode"`
	StartedAt      time.Time  `json:"started_at"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	ScorePercent   *int       `json:"score_percent,omitempty"`
	ScoreListening *int       `json:"score_listening,omitempty"`
	ScoreReading   *int       `json:"score_reading,omitempty"`
}

// ProgressSummaryDTO aggregates a student's attempt history.
type ProgressSummaryDTO struct {
	UserID              uint                `json:"user_id"`
	TotalAttempts       int                 `json:"total_attempts"`
	CompletedAttempts   int                 `json:"completed_attempts"`
	AverageScorePercent float64             `json:"average_score_percent"`
	BestTotalScore      int                 `json:"best_total_score"`
	Attempts            []AttemptSummaryDTO `json:"attempts,omitempty"`
}

// RecalculationReportDTO summarizes one recalculation cascade run.
type RecalculationReportDTO struct {
	QuestionID       uint                      `json:"question_id"`
	AttemptsFound    int                       `json:"attempts_found"`
	AttemptsRepaired int                       `json:"attempts_repaired"`
	Failures         []RecalculationFailureDTO `json:"failures,omitempty"`
}

// RecalculationFailureDTO records one attempt the cascade could not repair;
// it stays in its pre-repair state until retried.
type RecalculationFailureDTO struct {
	AttemptID uint   `json:"attempt_id"`
	Error     string `json:"error"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
