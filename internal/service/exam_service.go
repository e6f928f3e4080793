package service

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/Margays/internal/dto"
	"github.com/lshigami/Margays/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ExamService is the student-facing read surface over the exam bank.
type ExamService interface {
	GetAllExams() ([]dto.ExamSummaryDTO, error)
	GetExamDetails(examID uint) (*dto.ExamDetailDTO, error)
}

type examService struct {
	examRepo repository.ExamRepository
}

func NewExamService(examRepo repository.ExamRepository) ExamService {
	return &examService{examRepo: examRepo}
}

func (s *examService) GetAllExams() ([]dto.ExamSummaryDTO, error) {
	examsWithCount, err := s.examRepo.FindAllWithQuestionCount()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get exams with question count from repository")
		return nil, fmt.Errorf("error fetching exams: %w", err)
	}

	var dtos []dto.ExamSummaryDTO
	for _, ewc := range examsWithCount {
		dtos = append(dtos, dto.ExamSummaryDTO{
			ID:               ewc.Exam.ID,
			Title:            ewc.Exam.Title,
			Description:      ewc.Exam.Description,
			TimeLimitMinutes: ewc.Exam.TimeLimitMinutes,
			QuestionCount:    ewc.QuestionCount,
			CreatedAt:        ewc.Exam.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *examService) GetExamDetails(examID uint) (*dto.ExamDetailDTO, error) {
	exam, err := s.examRepo.FindByIDWithQuestions(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrExamNotFound, examID)
		}
		log.Error().Err(err).Uint("examID", examID).Msg("Failed to get exam details from repository")
		return nil, fmt.Errorf("error fetching exam %d: %w", examID, err)
	}

	var resp dto.ExamDetailDTO
	if err := copier.Copy(&resp, exam); err != nil {
		log.Error().Err(err).Msg("Failed to copy Exam model to ExamDetailDTO")
		return nil, fmt.Errorf("error preparing exam details response: %w", err)
	}
	// ChoiceDTO carries no correctness flag, so the copy above already strips
	// the answer key from the student view.
	return &resp, nil
}
