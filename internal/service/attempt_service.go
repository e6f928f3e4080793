package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lshigami/Margays/internal/dto"
	"github.com/lshigami/Margays/internal/model"
	"github.com/lshigami/Margays/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AttemptService owns the attempt lifecycle: start, resume, submit, and the
// derived result/progress views.
type AttemptService interface {
	StartAttempt(req dto.StartAttemptDTO) (*dto.AttemptDTO, error)
	GetActiveAttempt(userID uint) (*dto.AttemptDTO, error)
	SubmitAttempt(attemptID uint, req dto.AttemptSubmitDTO) (*dto.AttemptResultDTO, error)
	GetResults(attemptID uint) (*dto.AttemptResultDTO, error)
	GetProgressSummary(userID uint) (*dto.ProgressSummaryDTO, error)
}

type attemptService struct {
	examRepo     repository.ExamRepository
	questionRepo repository.QuestionRepository
	attemptRepo  repository.AttemptRepository
	answerRepo   repository.AttemptAnswerRepository
	grading      GradingService
	weakArea     WeakAreaService
	advice       AdviceService
	db           *gorm.DB // transaction scope for submissions
}

func NewAttemptService(
	examRepo repository.ExamRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AttemptAnswerRepository,
	grading GradingService,
	weakArea WeakAreaService,
	advice AdviceService,
	db *gorm.DB,
) AttemptService {
	return &attemptService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		answerRepo:   answerRepo,
		grading:      grading,
		weakArea:     weakArea,
		advice:       advice,
		db:           db,
	}
}

func (s *attemptService) StartAttempt(req dto.StartAttemptDTO) (*dto.AttemptDTO, error) {
	exam, err := s.examRepo.FindByIDWithQuestions(req.ExamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrExamNotFound, req.ExamID)
		}
		log.Error().Err(err).Uint("examID", req.ExamID).Msg("StartAttempt: failed to load exam")
		return nil, fmt.Errorf("error loading exam %d: %w", req.ExamID, err)
	}

	mode := model.AttemptMode(req.Mode)
	sections := ""
	if mode == model.ModePracticeByPart {
		if len(req.Sections) == 0 {
			return nil, fmt.Errorf("%w: part selection is empty", ErrInvalidPartSelection)
		}
		for _, sec := range req.Sections {
			if sec < model.MinSection || sec > model.MaxSection {
				return nil, fmt.Errorf("%w: unknown section %d", ErrInvalidPartSelection, sec)
			}
		}
		if len(questionPool(exam.Questions, req.Sections)) == 0 {
			return nil, fmt.Errorf("%w: exam %d has no questions in the selected sections", ErrInvalidPartSelection, exam.ID)
		}
		sections = model.JoinSections(req.Sections)
	}

	attempt := model.Attempt{
		UserID:    req.UserID,
		ExamID:    exam.ID,
		Mode:      mode,
		Sections:  sections,
		StartedAt: time.Now(),
	}
	if err := s.attemptRepo.Create(&attempt); err != nil {
		log.Error().Err(err).Uint("examID", exam.ID).Uint("userID", req.UserID).Msg("StartAttempt: failed to create attempt")
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	log.Info().Uint("attemptID", attempt.ID).Uint("examID", exam.ID).Str("mode", req.Mode).Msg("Attempt started")
	return attemptToDTO(&attempt, exam.Title), nil
}

func (s *attemptService) GetActiveAttempt(userID uint) (*dto.AttemptDTO, error) {
	attempt, err := s.attemptRepo.FindLatestActiveByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no active attempt for user %d", ErrAttemptNotFound, userID)
		}
		return nil, fmt.Errorf("error fetching active attempt for user %d: %w", userID, err)
	}
	return attemptToDTO(attempt, attempt.Exam.Title), nil
}

func (s *attemptService) SubmitAttempt(attemptID uint, req dto.AttemptSubmitDTO) (*dto.AttemptResultDTO, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrAttemptNotFound, attemptID)
		}
		return nil, fmt.Errorf("error loading attempt %d: %w", attemptID, err)
	}
	if attempt.SubmittedAt != nil {
		return nil, fmt.Errorf("%w: attempt %d submitted at %s", ErrAlreadySubmitted, attemptID, attempt.SubmittedAt.Format(time.RFC3339))
	}

	exam, err := s.examRepo.FindByIDWithQuestions(attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("error loading exam %d for attempt %d: %w", attempt.ExamID, attemptID, err)
	}
	pool := questionPool(exam.Questions, attempt.SectionList())

	now := time.Now()
	elapsed := now.Sub(attempt.StartedAt)
	if limit := time.Duration(exam.TimeLimitMinutes) * time.Minute; elapsed > limit {
		log.Warn().
			Uint("attemptID", attemptID).
			Dur("elapsed", elapsed).
			Dur("limit", limit).
			Msg("SubmitAttempt: time limit exceeded, rejecting without grading")
		return nil, fmt.Errorf("%w: elapsed %s, limit %d minutes", ErrTimeExceeded, elapsed.Round(time.Second), exam.TimeLimitMinutes)
	}

	// submitted_at is claimed with a conditional update inside the grading
	// transaction; the loser of a concurrent submit race observes
	// ErrAlreadySubmitted and nothing it wrote survives.
	var result *GradingResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		won, errMark := s.attemptRepo.MarkSubmitted(tx, attempt.ID, now)
		if errMark != nil {
			return fmt.Errorf("failed to mark attempt %d submitted: %w", attempt.ID, errMark)
		}
		if !won {
			return fmt.Errorf("%w: attempt %d", ErrAlreadySubmitted, attempt.ID)
		}
		var errGrade error
		result, errGrade = s.grading.Grade(tx, attempt, pool, req.Answers)
		return errGrade
	})
	if err != nil {
		return nil, err
	}

	attempt.SubmittedAt = &now
	attempt.ScorePercent = &result.ScorePercent
	attempt.ScoreListening = &result.ScoreListening
	attempt.ScoreReading = &result.ScoreReading

	return s.buildResultDTO(attempt, exam.Title, result), nil
}

func (s *attemptService) GetResults(attemptID uint) (*dto.AttemptResultDTO, error) {
	attempt, err := s.attemptRepo.FindByIDWithExam(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrAttemptNotFound, attemptID)
		}
		return nil, fmt.Errorf("error loading attempt %d: %w", attemptID, err)
	}
	if attempt.SubmittedAt == nil {
		return nil, fmt.Errorf("%w: attempt %d", ErrAttemptNotGraded, attemptID)
	}

	rows, err := s.answerRepo.FindByAttemptID(attemptID)
	if err != nil {
		return nil, fmt.Errorf("error loading answers for attempt %d: %w", attemptID, err)
	}
	questions, err := s.questionRepo.FindByExamID(attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("error loading questions for exam %d: %w", attempt.ExamID, err)
	}
	breakdown := breakdownFromRows(rows, questions)

	totalCorrect := 0
	for _, b := range breakdown {
		if b.IsCorrect {
			totalCorrect++
		}
	}
	result := &GradingResult{
		TotalQuestions: len(breakdown),
		TotalCorrect:   totalCorrect,
		Breakdown:      breakdown,
	}
	if attempt.ScorePercent != nil {
		result.ScorePercent = *attempt.ScorePercent
	}
	if attempt.ScoreListening != nil {
		result.ScoreListening = *attempt.ScoreListening
	}
	if attempt.ScoreReading != nil {
		result.ScoreReading = *attempt.ScoreReading
	}

	return s.buildResultDTO(attempt, attempt.Exam.Title, result), nil
}

func (s *attemptService) GetProgressSummary(userID uint) (*dto.ProgressSummaryDTO, error) {
	attempts, err := s.attemptRepo.FindAllByUser(userID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("GetProgressSummary: failed to fetch attempts")
		return nil, fmt.Errorf("error fetching attempts for user %d: %w", userID, err)
	}

	summary := &dto.ProgressSummaryDTO{UserID: userID, TotalAttempts: len(attempts)}
	percentSum := 0
	for i := range attempts {
		a := &attempts[i]
		var row dto.AttemptSummaryDTO
		if errCp := copier.Copy(&row, a); errCp != nil {
			log.Error().Err(errCp).Uint("attemptID", a.ID).Msg("GetProgressSummary: error copying attempt to summary DTO")
			continue
		}
		row.ExamTitle = a.Exam.Title
		summary.Attempts = append(summary.Attempts, row)

		if a.SubmittedAt == nil {
			continue
		}
		summary.CompletedAttempts++
		if a.ScorePercent != nil {
			percentSum += *a.ScorePercent
		}
		if a.ScoreListening != nil && a.ScoreReading != nil {
			if total := *a.ScoreListening + *a.ScoreReading; total > summary.BestTotalScore {
				summary.BestTotalScore = total
			}
		}
	}
	if summary.CompletedAttempts > 0 {
		summary.AverageScorePercent = float64(percentSum) / float64(summary.CompletedAttempts)
	}
	return summary, nil
}

func (s *attemptService) buildResultDTO(attempt *model.Attempt, examTitle string, result *GradingResult) *dto.AttemptResultDTO {
	resp := &dto.AttemptResultDTO{
		Attempt:        *attemptToDTO(attempt, examTitle),
		TotalQuestions: result.TotalQuestions,
		TotalCorrect:   result.TotalCorrect,
		ScorePercent:   result.ScorePercent,
		ScoreListening: result.ScoreListening,
		ScoreReading:   result.ScoreReading,
		TotalScore:     result.ScoreListening + result.ScoreReading,
	}
	for _, b := range result.Breakdown {
		resp.Breakdown = append(resp.Breakdown, dto.AnswerBreakdownDTO{
			QuestionID:      b.QuestionID,
			Skill:           string(b.Skill),
			Section:         b.Section,
			ChosenChoiceID:  b.ChosenChoiceID,
			CorrectChoiceID: b.CorrectChoiceID,
			IsCorrect:       b.IsCorrect,
		})
	}
	resp.WeakAreas = s.weakArea.Analyze(result.Breakdown)

	if len(resp.WeakAreas) > 0 && s.advice != nil {
		advice, err := s.advice.StudyAdvice(resp.WeakAreas)
		if err != nil {
			log.Warn().Err(err).Uint("attemptID", attempt.ID).Msg("Study advice unavailable")
		} else {
			resp.StudyAdvice = advice
		}
	}
	return resp
}

// questionPool restricts an exam's questions to the selected sections.
// A nil selection means the full exam.
func questionPool(questions []model.Question, sections []int) []model.Question {
	if len(sections) == 0 {
		return questions
	}
	selected := make(map[int]bool, len(sections))
	for _, s := range sections {
		selected[s] = true
	}
	pool := make([]model.Question, 0, len(questions))
	for _, q := range questions {
		if selected[q.Section] {
			pool = append(pool, q)
		}
	}
	return pool
}

// breakdownFromRows rebuilds the graded breakdown from persisted answer rows,
// ordered by the question's position in the exam.
func breakdownFromRows(rows []model.AttemptAnswer, questions []model.Question) []AnswerBreakdown {
	questionMap := make(map[uint]*model.Question, len(questions))
	order := make(map[uint]int, len(questions))
	for i := range questions {
		questionMap[questions[i].ID] = &questions[i]
		order[questions[i].ID] = questions[i].OrderInExam
	}

	breakdown := make([]AnswerBreakdown, 0, len(rows))
	for _, row := range rows {
		q, ok := questionMap[row.QuestionID]
		if !ok {
			continue
		}
		breakdown = append(breakdown, AnswerBreakdown{
			QuestionID:      row.QuestionID,
			Skill:           q.Skill,
			Section:         q.Section,
			ChosenChoiceID:  row.ChoiceID,
			CorrectChoiceID: q.CorrectChoiceID(),
			IsCorrect:       row.IsCorrect,
		})
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		return order[breakdown[i].QuestionID] < order[breakdown[j].QuestionID]
	})
	return breakdown
}

func attemptToDTO(attempt *model.Attempt, examTitle string) *dto.AttemptDTO {
	return &dto.AttemptDTO{
		ID:             attempt.ID,
		UserID:         attempt.UserID,
		ExamID:         attempt.ExamID,
		ExamTitle:      examTitle,
		Mode:           string(attempt.Mode),
		Sections:       attempt.SectionList(),
		StartedAt:      attempt.StartedAt,
		SubmittedAt:    attempt.SubmittedAt,
		ScorePercent:   attempt.ScorePercent,
		ScoreListening: attempt.ScoreListening,
		ScoreReading:   attempt.ScoreReading,
	}
}
