package dto

// StartAttemptDTO is the request body for starting a new attempt.
// Sections is required (non-empty) for PRACTICE_BY_PART and ignored for
// FULL_TEST.
type StartAttemptDTO struct {
	UserID   uint   `json:"user_id" binding:"required"` // Temporary, until auth middleware supplies it
	ExamID   uint   `json:"exam_id" binding:"required"`
	Mode     string `json:"mode" binding:"required,oneof=FULL_TEST PRACTICE_BY_PART"`
	Sections []int  `json:"sections,omitempty" binding:"omitempty,dive,min=1,max=7"`
}

// AnswerSubmitDTO is one chosen choice within a submission.
type AnswerSubmitDTO struct {
	QuestionID uint `json:"question_id" binding:"required"`
	ChoiceID   uint `json:"choice_id" binding:"required"`
}

// AttemptSubmitDTO is the request body for submitting all answers of an
// attempt. Questions absent from Answers are graded as unanswered.
type AttemptSubmitDTO struct {
	Answers []AnswerSubmitDTO `json:"answers" binding:"dive"`
}
