package repository

import (
	"time"

	"github.com/lshigami/Margays/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(attempt *model.Attempt) error
	FindByID(id uint) (*model.Attempt, error)
	FindByIDWithExam(id uint) (*model.Attempt, error)
	FindLatestActiveByUser(userID uint) (*model.Attempt, error)
	FindAllByUser(userID uint) ([]model.Attempt, error)

	// MarkSubmitted sets submitted_at only when it is still NULL and reports
	// whether this call won the race. Must run inside the grading transaction.
	MarkSubmitted(tx *gorm.DB, attemptID uint, submittedAt time.Time) (bool, error)

	// UpdateScores writes the three score columns. Used by grading (inside
	// its transaction) and by the recalculation cascade.
	UpdateScores(tx *gorm.DB, attemptID uint, scorePercent, scoreListening, scoreReading int) error
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.Attempt) error {
	return r.db.Create(attempt).Error
}

func (r *attemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	if err := r.db.First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIDWithExam(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.
		Preload("Exam").
		First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindLatestActiveByUser(userID uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.Preload("Exam").
		Where("user_id = ? AND submitted_at IS NULL", userID).
		Order("started_at DESC").
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindAllByUser(userID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.Preload("Exam").
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) MarkSubmitted(tx *gorm.DB, attemptID uint, submittedAt time.Time) (bool, error) {
	res := tx.Model(&model.Attempt{}).
		Where("id = ? AND submitted_at IS NULL", attemptID).
		Update("submitted_at", submittedAt)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *attemptRepository) UpdateScores(tx *gorm.DB, attemptID uint, scorePercent, scoreListening, scoreReading int) error {
	return tx.Model(&model.Attempt{}).
		Where("id = ?", attemptID).
		Updates(map[string]interface{}{
			"score_percent":   scorePercent,
			"score_listening": scoreListening,
			"score_reading":   scoreReading,
		}).Error
}
