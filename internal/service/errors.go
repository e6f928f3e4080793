package service

import "errors"

// Sentinel errors for the grading core. Services wrap these with fmt.Errorf
// and %w; controllers match with errors.Is to pick a status code.
var (
	ErrExamNotFound         = errors.New("exam not found")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAlreadySubmitted     = errors.New("attempt already submitted")
	ErrTimeExceeded         = errors.New("exam time limit exceeded")
	ErrInvalidPartSelection = errors.New("invalid part selection")
	ErrQuestionNotInExam    = errors.New("question does not belong to this exam")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrChoiceNotFound       = errors.New("choice does not belong to this question")
	ErrAttemptNotGraded     = errors.New("attempt has not been submitted yet")
)
