package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Margays/internal/dto"
	"github.com/lshigami/Margays/internal/service"
	"github.com/rs/zerolog/log"
)

type AttemptController struct {
	attemptService service.AttemptService
}

func NewAttemptController(attemptService service.AttemptService) *AttemptController {
	return &AttemptController{attemptService: attemptService}
}

// statusForError maps the grading core's error taxonomy to HTTP codes so a
// rejected submission is always distinguishable on the client side.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrExamNotFound),
		errors.Is(err, service.ErrAttemptNotFound),
		errors.Is(err, service.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadySubmitted),
		errors.Is(err, service.ErrAttemptNotGraded):
		return http.StatusConflict
	case errors.Is(err, service.ErrTimeExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidPartSelection),
		errors.Is(err, service.ErrQuestionNotInExam),
		errors.Is(err, service.ErrChoiceNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// StartAttempt godoc
// @Summary Start a new attempt
// @Description Creates a new attempt against an exam. PRACTICE_BY_PART requires a non-empty section selection.
// @Tags Attempts
// @Accept json
// @Produce json
// @Param attempt body dto.StartAttemptDTO true "Exam, mode and optional part selection"
// @Success 201 {object} dto.AttemptDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid body or part selection"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	var req dto.StartAttemptDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	attempt, err := c.attemptService.StartAttempt(req)
	if err != nil {
		log.Warn().Err(err).Uint("examID", req.ExamID).Msg("StartAttempt failed")
		ctx.JSON(statusForError(err), dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, attempt)
}

// GetActiveAttempt godoc
// @Summary Get the caller's active attempt
// @Description Returns the most recently started attempt that has not been submitted, for resuming after interruption.
// @Tags Attempts
// @Produce json
// @Param user_id query int true "User ID (temporary, until auth middleware)"
// @Success 200 {object} dto.AttemptDTO
// @Failure 404 {object} dto.ErrorResponse "No active attempt"
// @Router /attempts/active [get]
func (c *AttemptController) GetActiveAttempt(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Query("user_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid user_id query parameter"})
		return
	}

	attempt, err := c.attemptService.GetActiveAttempt(uint(userID))
	if err != nil {
		ctx.JSON(statusForError(err), dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// SubmitAttempt godoc
// @Summary Submit all answers for an attempt
// @Description Grades the attempt atomically. Unanswered questions count as incorrect. Rejected with an explicit reason if already submitted or past the time limit.
// @Tags Attempts
// @Accept json
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param submission body dto.AttemptSubmitDTO true "Answers"
// @Success 200 {object} dto.AttemptResultDTO
// @Failure 400 {object} dto.ErrorResponse "Answer references outside the attempt's scope"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Already submitted"
// @Failure 422 {object} dto.ErrorResponse "Time limit exceeded"
// @Router /attempts/{attempt_id}/submit [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("attempt_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Attempt ID format"})
		return
	}

	var req dto.AttemptSubmitDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	log.Info().Uint64("attemptID", attemptID).Int("answerCount", len(req.Answers)).Msg("Received attempt submission")

	result, err := c.attemptService.SubmitAttempt(uint(attemptID), req)
	if err != nil {
		log.Warn().Err(err).Uint64("attemptID", attemptID).Msg("SubmitAttempt rejected")
		ctx.JSON(statusForError(err), dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetResults godoc
// @Summary Get the graded results of an attempt
// @Description Full score breakdown, per-answer chosen vs. correct choice, and weak-area analysis.
// @Tags Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptResultDTO
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt not submitted yet"
// @Router /attempts/{attempt_id}/results [get]
func (c *AttemptController) GetResults(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("attempt_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Attempt ID format"})
		return
	}

	result, err := c.attemptService.GetResults(uint(attemptID))
	if err != nil {
		ctx.JSON(statusForError(err), dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetProgressSummary godoc
// @Summary Get a student's progress summary
// @Description Attempt history with per-attempt scores and aggregate statistics.
// @Tags Attempts
// @Produce json
// @Param user_id query int true "User ID"
// @Success 200 {object} dto.ProgressSummaryDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid user_id"
// @Router /progress [get]
func (c *AttemptController) GetProgressSummary(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Query("user_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid user_id query parameter"})
		return
	}

	summary, err := c.attemptService.GetProgressSummary(uint(userID))
	if err != nil {
		ctx.JSON(statusForError(err), dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, summary)
}
