package repository

import (
	"github.com/lshigami/Margays/internal/model"
	"gorm.io/gorm"
)

type AttemptAnswerRepository interface {
	// CreateBatch inserts the full answer set of one attempt. Must run inside
	// the grading transaction.
	CreateBatch(tx *gorm.DB, answers []model.AttemptAnswer) error

	FindByAttemptID(attemptID uint) ([]model.AttemptAnswer, error)

	// DistinctAttemptIDs lists every attempt holding at least one answer for
	// the given question. Feeds the recalculation cascade.
	DistinctAttemptIDs(questionID uint) ([]uint, error)

	// UpdateCorrectness rewrites the denormalized is_correct flag for one
	// (attempt, question) row. Recalculation cascade only.
	UpdateCorrectness(tx *gorm.DB, attemptID, questionID uint, isCorrect bool) error
}

type attemptAnswerRepository struct {
	db *gorm.DB
}

func NewAttemptAnswerRepository(db *gorm.DB) AttemptAnswerRepository {
	return &attemptAnswerRepository{db: db}
}

func (r *attemptAnswerRepository) CreateBatch(tx *gorm.DB, answers []model.AttemptAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return tx.Create(&answers).Error
}

func (r *attemptAnswerRepository) FindByAttemptID(attemptID uint) ([]model.AttemptAnswer, error) {
	var answers []model.AttemptAnswer
	err := r.db.Preload("Question").
		Where("attempt_id = ?", attemptID).
		Find(&answers).Error
	return answers, err
}

func (r *attemptAnswerRepository) DistinctAttemptIDs(questionID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.AttemptAnswer{}).
		Distinct("attempt_id").
		Where("question_id = ?", questionID).
		Pluck("attempt_id", &ids).Error
	return ids, err
}

func (r *attemptAnswerRepository) UpdateCorrectness(tx *gorm.DB, attemptID, questionID uint, isCorrect bool) error {
	return tx.Model(&model.AttemptAnswer{}).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		Update("is_correct", isCorrect).Error
}
