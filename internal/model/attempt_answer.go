package model

import (
	"time"

	"gorm.io/gorm"
)

// AttemptAnswer is one graded answer inside an attempt. ChoiceID is nil for
// questions the student left unanswered; those rows still count toward
// totals. IsCorrect is denormalized from the choice at grading time and is
// only ever rewritten by the recalculation cascade.
type AttemptAnswer struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	AttemptID  uint           `json:"attempt_id" gorm:"not null;index;uniqueIndex:idx_attempt_question"`
	QuestionID uint           `json:"question_id" gorm:"not null;index;uniqueIndex:idx_attempt_question"`
	Question   Question       `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	ChoiceID   *uint          `json:"choice_id,omitempty"`
	IsCorrect  bool           `json:"is_correct" gorm:"not null;default:false"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
