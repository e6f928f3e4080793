package model

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// AttemptMode selects the scoring regime for an attempt.
type AttemptMode string

const (
	ModeFullTest       AttemptMode = "FULL_TEST"
	ModePracticeByPart AttemptMode = "PRACTICE_BY_PART"
)

// Attempt is one test-taking session by a student against an exam.
// Score fields stay nil until the attempt is graded; SubmittedAt is set
// exactly once at grading time and afterwards never reverts.
type Attempt struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	UserID         uint            `json:"user_id" gorm:"not null;index"`
	ExamID         uint            `json:"exam_id" gorm:"not null;index"`
	Exam           Exam            `json:"exam,omitempty" gorm:"foreignKey:ExamID"`
	Mode           AttemptMode     `json:"mode" gorm:"not null"`
	Sections       string          `json:"sections,omitempty"` // comma-joined part numbers, empty for FULL_TEST
	StartedAt      time.Time       `json:"started_at" gorm:"not null"`
	SubmittedAt    *time.Time      `json:"submitted_at,omitempty" gorm:"index"`
	ScorePercent   *int            `json:"score_percent,omitempty"`
	ScoreListening *int            `json:"score_listening,omitempty"`
	ScoreReading   *int            `json:"score_reading,omitempty"`
	Answers        []AttemptAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// SectionList decodes the comma-joined Sections column.
// Returns nil for a full-test attempt.
func (a *Attempt) SectionList() []int {
	if a.Sections == "" {
		return nil
	}
	parts := strings.Split(a.Sections, ",")
	sections := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		sections = append(sections, n)
	}
	return sections
}

// JoinSections encodes a part selection for the Sections column,
// deduplicated and sorted.
func JoinSections(sections []int) string {
	seen := make(map[int]bool, len(sections))
	uniq := make([]int, 0, len(sections))
	for _, s := range sections {
		if !seen[s] {
			seen[s] = true
			uniq = append(uniq, s)
		}
	}
	sort.Ints(uniq)
	strs := make([]string, len(uniq))
	for i, s := range uniq {
		strs[i] = strconv.Itoa(s)
	}
	return strings.Join(strs, ",")
}
