package model

import (
	"time"

	"gorm.io/gorm"
)

// Skill is one of the two top-level TOEIC divisions.
type Skill string

const (
	SkillListening Skill = "LISTENING"
	SkillReading   Skill = "READING"
)

// Sections 1-4 are listening parts, 5-7 reading parts.
const (
	MinSection = 1
	MaxSection = 7
)

// SkillForSection maps a TOEIC part number to its skill.
// Returns "" for sections outside 1-7.
func SkillForSection(section int) Skill {
	switch {
	case section >= 1 && section <= 4:
		return SkillListening
	case section >= 5 && section <= 7:
		return SkillReading
	default:
		return ""
	}
}

type Question struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	ExamID      uint           `json:"exam_id" gorm:"not null;index"`
	Skill       Skill          `json:"skill" gorm:"not null"`
	Section     int            `json:"section" gorm:"not null;index"` // TOEIC part, 1-7
	Content     string         `json:"content" gorm:"type:text;not null"`
	OrderInExam int            `json:"order_in_exam" gorm:"not null"`
	Choices     []Choice       `json:"choices,omitempty" gorm:"foreignKey:QuestionID"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// CorrectChoiceID returns the ID of the choice currently marked correct,
// or 0 if Choices is not loaded or none is marked.
func (q *Question) CorrectChoiceID() uint {
	for _, c := range q.Choices {
		if c.IsCorrect {
			return c.ID
		}
	}
	return 0
}
