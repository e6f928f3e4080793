package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/lshigami/Margays/config"
	"github.com/lshigami/Margays/internal/dto"
	"github.com/lshigami/Margays/internal/model"
	"github.com/lshigami/Margays/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RecalculationService repairs historical attempt scores after a question's
// marked-correct choice changes. It is a consistency repair, not a grading
// event: submitted_at is never touched and weak-area analysis is not run.
type RecalculationService interface {
	// QuestionCorrectAnswerChanged walks every attempt referencing the
	// question and re-derives its denormalized correctness and scores.
	// Idempotent: re-running with no actual change rewrites the same values.
	// Per-attempt failures are collected in the report, never fatal.
	QuestionCorrectAnswerChanged(questionID uint) (*dto.RecalculationReportDTO, error)
}

type recalculationService struct {
	questionRepo   repository.QuestionRepository
	attemptRepo    repository.AttemptRepository
	answerRepo     repository.AttemptAnswerRepository
	scoreConverter ScoreConverterService
	db             *gorm.DB
	workers        int
}

func NewRecalculationService(
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AttemptAnswerRepository,
	scoreConverter ScoreConverterService,
	db *gorm.DB,
	cfg *config.Config,
) RecalculationService {
	workers := cfg.Recalc.Workers
	if workers < 1 {
		workers = 1
	}
	return &recalculationService{
		questionRepo:   questionRepo,
		attemptRepo:    attemptRepo,
		answerRepo:     answerRepo,
		scoreConverter: scoreConverter,
		db:             db,
		workers:        workers,
	}
}

// repairResult carries one attempt's outcome back from the worker goroutines.
type repairResult struct {
	attemptID uint
	err       error
}

func (s *recalculationService) QuestionCorrectAnswerChanged(questionID uint) (*dto.RecalculationReportDTO, error) {
	question, err := s.questionRepo.FindByIDWithChoices(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrQuestionNotFound, questionID)
		}
		return nil, fmt.Errorf("error loading question %d: %w", questionID, err)
	}

	attemptIDs, err := s.answerRepo.DistinctAttemptIDs(questionID)
	if err != nil {
		return nil, fmt.Errorf("error listing attempts for question %d: %w", questionID, err)
	}

	report := &dto.RecalculationReportDTO{
		QuestionID:    questionID,
		AttemptsFound: len(attemptIDs),
	}
	if len(attemptIDs) == 0 {
		log.Info().Uint("questionID", questionID).Msg("Recalculation: no attempts reference this question")
		return report, nil
	}

	log.Info().
		Uint("questionID", questionID).
		Int("attempts", len(attemptIDs)).
		Int("workers", s.workers).
		Msg("Recalculation cascade starting")

	// Each attempt's repair is independent and transactional, so the walk is
	// parallelized across attempts with a bounded worker pool.
	jobs := make(chan uint)
	results := make(chan repairResult, len(attemptIDs))
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for attemptID := range jobs {
				results <- repairResult{attemptID: attemptID, err: s.repairAttempt(attemptID, question)}
			}
		}()
	}
	for _, id := range attemptIDs {
		jobs <- id
	}
	close(jobs)
	wg.Wait()
	close(results)

	for res := range results {
		if res.err != nil {
			log.Error().Err(res.err).Uint("attemptID", res.attemptID).Uint("questionID", questionID).
				Msg("Recalculation: attempt repair failed, left in pre-repair state")
			report.Failures = append(report.Failures, dto.RecalculationFailureDTO{
				AttemptID: res.attemptID,
				Error:     res.err.Error(),
			})
			continue
		}
		report.AttemptsRepaired++
	}
	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].AttemptID < report.Failures[j].AttemptID
	})

	log.Info().
		Uint("questionID", questionID).
		Int("repaired", report.AttemptsRepaired).
		Int("failed", len(report.Failures)).
		Msg("Recalculation cascade finished")
	return report, nil
}

// repairAttempt re-derives one attempt's correctness flags and scores inside
// its own transaction. The attempt's mode is never altered; the same regime
// the original grading used applies.
func (s *recalculationService) repairAttempt(attemptID uint, changed *model.Question) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		// All reads go through the transaction so the repair sees and writes
		// one consistent snapshot of the attempt.
		var attempt model.Attempt
		if err := tx.Preload("Answers").First(&attempt, attemptID).Error; err != nil {
			return fmt.Errorf("loading attempt %d: %w", attemptID, err)
		}

		newCorrect := make(map[uint]bool, len(changed.Choices))
		for _, c := range changed.Choices {
			newCorrect[c.ID] = c.IsCorrect
		}

		// Sync the denormalized flag on every row referencing the changed
		// question. Unanswered rows stay incorrect.
		for i := range attempt.Answers {
			row := &attempt.Answers[i]
			if row.QuestionID != changed.ID {
				continue
			}
			isCorrect := row.ChoiceID != nil && newCorrect[*row.ChoiceID]
			if err := s.answerRepo.UpdateCorrectness(tx, attempt.ID, row.QuestionID, isCorrect); err != nil {
				return fmt.Errorf("updating answer correctness for attempt %d: %w", attemptID, err)
			}
			row.IsCorrect = isCorrect
		}

		// Recompute from the attempt's full current answer set, not just the
		// changed row.
		var questions []model.Question
		if err := tx.Preload("Choices").
			Where("exam_id = ?", attempt.ExamID).
			Order("order_in_exam ASC").
			Find(&questions).Error; err != nil {
			return fmt.Errorf("loading questions for exam %d: %w", attempt.ExamID, err)
		}
		breakdown := breakdownFromRows(attempt.Answers, questions)
		scores, err := computeScores(s.scoreConverter, attempt.Mode, breakdown)
		if err != nil {
			return fmt.Errorf("recomputing scores for attempt %d: %w", attemptID, err)
		}
		return s.attemptRepo.UpdateScores(tx, attempt.ID, scores.percent, scores.listening, scores.reading)
	})
}
