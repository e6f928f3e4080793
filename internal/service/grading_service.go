package service

import (
	"fmt"

	"github.com/lshigami/Margays/internal/dto"
	"github.com/lshigami/Margays/internal/model"
	"github.com/lshigami/Margays/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AnswerBreakdown is the graded view of a single question within an attempt,
// chosen vs. correct. Produced by grading, consumed by the weak-area analyzer
// and the result views.
type AnswerBreakdown struct {
	QuestionID      uint
	Skill           model.Skill
	Section         int
	ChosenChoiceID  *uint // nil when unanswered
	CorrectChoiceID uint
	IsCorrect       bool
}

// GradingResult is the aggregate outcome of grading one submission.
type GradingResult struct {
	TotalQuestions int
	TotalCorrect   int
	ScorePercent   int
	ScoreListening int
	ScoreReading   int
	Breakdown      []AnswerBreakdown
}

// GradingService grades one submission. All writes happen on the caller's
// transaction; any validation failure returns an error without writing, so
// the caller's rollback leaves no partially graded attempt behind.
type GradingService interface {
	Grade(tx *gorm.DB, attempt *model.Attempt, questions []model.Question, answers []dto.AnswerSubmitDTO) (*GradingResult, error)
}

type gradingService struct {
	answerRepo     repository.AttemptAnswerRepository
	attemptRepo    repository.AttemptRepository
	scoreConverter ScoreConverterService
}

func NewGradingService(
	answerRepo repository.AttemptAnswerRepository,
	attemptRepo repository.AttemptRepository,
	scoreConverter ScoreConverterService,
) GradingService {
	return &gradingService{
		answerRepo:     answerRepo,
		attemptRepo:    attemptRepo,
		scoreConverter: scoreConverter,
	}
}

func (s *gradingService) Grade(tx *gorm.DB, attempt *model.Attempt, questions []model.Question, answers []dto.AnswerSubmitDTO) (*GradingResult, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("attempt %d has an empty question pool", attempt.ID)
	}

	questionMap := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		questionMap[questions[i].ID] = &questions[i]
	}

	// Validate every submitted answer against the pool before writing
	// anything. Duplicate answers for the same question: last one wins.
	chosen := make(map[uint]uint, len(answers))
	for _, ans := range answers {
		question, exists := questionMap[ans.QuestionID]
		if !exists {
			return nil, fmt.Errorf("%w: question %d, attempt %d", ErrQuestionNotInExam, ans.QuestionID, attempt.ID)
		}
		found := false
		for _, c := range question.Choices {
			if c.ID == ans.ChoiceID {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: choice %d, question %d", ErrChoiceNotFound, ans.ChoiceID, ans.QuestionID)
		}
		chosen[ans.QuestionID] = ans.ChoiceID
	}

	// One row per pool question. Unanswered questions get a nil choice and
	// is_correct=false so they count toward totals.
	rows := make([]model.AttemptAnswer, 0, len(questions))
	breakdown := make([]AnswerBreakdown, 0, len(questions))
	for _, q := range questions {
		row := model.AttemptAnswer{
			AttemptID:  attempt.ID,
			QuestionID: q.ID,
		}
		entry := AnswerBreakdown{
			QuestionID:      q.ID,
			Skill:           q.Skill,
			Section:         q.Section,
			CorrectChoiceID: q.CorrectChoiceID(),
		}
		if choiceID, answered := chosen[q.ID]; answered {
			id := choiceID
			row.ChoiceID = &id
			entry.ChosenChoiceID = &id
			for _, c := range q.Choices {
				if c.ID == choiceID {
					row.IsCorrect = c.IsCorrect
					break
				}
			}
			entry.IsCorrect = row.IsCorrect
		}
		rows = append(rows, row)
		breakdown = append(breakdown, entry)
	}

	scores, err := computeScores(s.scoreConverter, attempt.Mode, breakdown)
	if err != nil {
		return nil, fmt.Errorf("score conversion failed for attempt %d: %w", attempt.ID, err)
	}

	if err := s.answerRepo.CreateBatch(tx, rows); err != nil {
		return nil, fmt.Errorf("failed to persist graded answers for attempt %d: %w", attempt.ID, err)
	}
	if err := s.attemptRepo.UpdateScores(tx, attempt.ID, scores.percent, scores.listening, scores.reading); err != nil {
		return nil, fmt.Errorf("failed to persist scores for attempt %d: %w", attempt.ID, err)
	}

	log.Info().
		Uint("attemptID", attempt.ID).
		Int("totalQuestions", len(rows)).
		Int("totalCorrect", scores.totalCorrect).
		Int("scorePercent", scores.percent).
		Msg("Attempt graded")

	return &GradingResult{
		TotalQuestions: len(rows),
		TotalCorrect:   scores.totalCorrect,
		ScorePercent:   scores.percent,
		ScoreListening: scores.listening,
		ScoreReading:   scores.reading,
		Breakdown:      breakdown,
	}, nil
}

type scoreSet struct {
	totalCorrect int
	percent      int
	listening    int
	reading      int
}

// computeScores tallies a breakdown and applies the regime selected by mode.
// Shared by grading and the recalculation cascade so both derive scores from
// identical rules.
func computeScores(sc ScoreConverterService, mode model.AttemptMode, breakdown []AnswerBreakdown) (scoreSet, error) {
	var listeningCorrect, listeningTotal, readingCorrect, readingTotal int
	for _, b := range breakdown {
		switch b.Skill {
		case model.SkillListening:
			listeningTotal++
			if b.IsCorrect {
				listeningCorrect++
			}
		case model.SkillReading:
			readingTotal++
			if b.IsCorrect {
				readingCorrect++
			}
		}
	}

	scoreListening, err := sc.ScaledScore(mode, model.SkillListening, listeningCorrect, listeningTotal)
	if err != nil {
		return scoreSet{}, err
	}
	scoreReading, err := sc.ScaledScore(mode, model.SkillReading, readingCorrect, readingTotal)
	if err != nil {
		return scoreSet{}, err
	}

	totalCorrect := listeningCorrect + readingCorrect
	return scoreSet{
		totalCorrect: totalCorrect,
		percent:      sc.ScorePercent(totalCorrect, listeningTotal+readingTotal),
		listening:    scoreListening,
		reading:      scoreReading,
	}, nil
}
