package model

import (
	"time"

	"gorm.io/gorm"
)

type Exam struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	Title            string         `json:"title" gorm:"not null;uniqueIndex"` // "ETS 2024 Test 1"
	Description      string         `json:"description,omitempty"`
	TimeLimitMinutes int            `json:"time_limit_minutes" gorm:"not null"`
	Questions        []Question     `json:"questions,omitempty" gorm:"foreignKey:ExamID"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}
