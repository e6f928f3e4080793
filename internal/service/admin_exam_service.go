package service

import (
	"errors"
	"fmt"

	"github.com/lshigami/Margays/internal/dto"
	"github.com/lshigami/Margays/internal/model"
	"github.com/lshigami/Margays/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AdminExamService owns the question-bank write surface. Changing a
// question's correct choice is the event that fires the recalculation
// cascade over historical attempts.
type AdminExamService interface {
	CreateExam(req dto.ExamCreateDTO) (*dto.ExamDetailDTO, error)
	UpdateCorrectChoice(questionID uint, req dto.CorrectChoiceUpdateDTO) (*dto.RecalculationReportDTO, error)
}

type adminExamService struct {
	examRepo      repository.ExamRepository
	questionRepo  repository.QuestionRepository
	recalculation RecalculationService
	examService   ExamService
	db            *gorm.DB
}

func NewAdminExamService(
	examRepo repository.ExamRepository,
	questionRepo repository.QuestionRepository,
	recalculation RecalculationService,
	examService ExamService,
	db *gorm.DB,
) AdminExamService {
	return &adminExamService{
		examRepo:      examRepo,
		questionRepo:  questionRepo,
		recalculation: recalculation,
		examService:   examService,
		db:            db,
	}
}

func (s *adminExamService) CreateExam(req dto.ExamCreateDTO) (*dto.ExamDetailDTO, error) {
	exam := model.Exam{
		Title:            req.Title,
		Description:      req.Description,
		TimeLimitMinutes: req.TimeLimitMinutes,
	}
	for i, qReq := range req.Questions {
		if model.SkillForSection(qReq.Section) != model.Skill(qReq.Skill) {
			return nil, fmt.Errorf("question %d: section %d does not belong to skill %s", i+1, qReq.Section, qReq.Skill)
		}
		correctCount := 0
		question := model.Question{
			Skill:       model.Skill(qReq.Skill),
			Section:     qReq.Section,
			Content:     qReq.Content,
			OrderInExam: qReq.OrderInExam,
		}
		for _, cReq := range qReq.Choices {
			if cReq.IsCorrect {
				correctCount++
			}
			question.Choices = append(question.Choices, model.Choice{
				Label:     cReq.Label,
				Content:   cReq.Content,
				IsCorrect: cReq.IsCorrect,
			})
		}
		if correctCount != 1 {
			return nil, fmt.Errorf("question %d: exactly one choice must be marked correct, got %d", i+1, correctCount)
		}
		exam.Questions = append(exam.Questions, question)
	}

	if err := s.examRepo.Create(&exam); err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("CreateExam: failed to create exam")
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}
	log.Info().Uint("examID", exam.ID).Int("questions", len(exam.Questions)).Msg("Exam created")
	return s.examService.GetExamDetails(exam.ID)
}

func (s *adminExamService) UpdateCorrectChoice(questionID uint, req dto.CorrectChoiceUpdateDTO) (*dto.RecalculationReportDTO, error) {
	question, err := s.questionRepo.FindByIDWithChoices(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrQuestionNotFound, questionID)
		}
		return nil, fmt.Errorf("error loading question %d: %w", questionID, err)
	}

	belongs := false
	alreadyCorrect := false
	for _, c := range question.Choices {
		if c.ID == req.ChoiceID {
			belongs = true
			alreadyCorrect = c.IsCorrect
		}
	}
	if !belongs {
		return nil, fmt.Errorf("%w: choice %d, question %d", ErrChoiceNotFound, req.ChoiceID, questionID)
	}

	if !alreadyCorrect {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&model.Choice{}).
				Where("question_id = ?", questionID).
				Update("is_correct", false).Error; err != nil {
				return err
			}
			return tx.Model(&model.Choice{}).
				Where("id = ?", req.ChoiceID).
				Update("is_correct", true).Error
		})
		if err != nil {
			log.Error().Err(err).Uint("questionID", questionID).Uint("choiceID", req.ChoiceID).
				Msg("UpdateCorrectChoice: failed to flip correct choice")
			return nil, fmt.Errorf("failed to update correct choice for question %d: %w", questionID, err)
		}
		log.Info().Uint("questionID", questionID).Uint("choiceID", req.ChoiceID).Msg("Correct choice changed, starting recalculation cascade")
	} else {
		// Idempotent re-trigger: no data change, but the cascade still runs
		// its read-recompute-write cycle.
		log.Info().Uint("questionID", questionID).Uint("choiceID", req.ChoiceID).Msg("Choice already correct, rerunning cascade anyway")
	}

	return s.recalculation.QuestionCorrectAnswerChanged(questionID)
}
