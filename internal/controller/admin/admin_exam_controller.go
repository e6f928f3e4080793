package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Margays/internal/dto"
	"github.com/lshigami/Margays/internal/service"
	"github.com/rs/zerolog/log"
)

type AdminExamController struct {
	adminExamService service.AdminExamService
	recalculation    service.RecalculationService
}

func NewAdminExamController(adminExamService service.AdminExamService, recalculation service.RecalculationService) *AdminExamController {
	return &AdminExamController{
		adminExamService: adminExamService,
		recalculation:    recalculation,
	}
}

// CreateExam godoc
// @Summary (Admin) Create a new exam with questions and choices
// @Tags Admin - Exams
// @Accept json
// @Produce json
// @Param exam body dto.ExamCreateDTO true "Exam with questions; exactly one correct choice each"
// @Success 201 {object} dto.ExamDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /admin/exams [post]
func (c *AdminExamController) CreateExam(ctx *gin.Context) {
	var req dto.ExamCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	exam, err := c.adminExamService.CreateExam(req)
	if err != nil {
		log.Warn().Err(err).Str("title", req.Title).Msg("CreateExam failed")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, exam)
}

// UpdateCorrectChoice godoc
// @Summary (Admin) Change which choice of a question is marked correct
// @Description Flips the correctness flag and runs the score recalculation cascade over every historical attempt referencing the question.
// @Tags Admin - Exams
// @Accept json
// @Produce json
// @Param question_id path int true "Question ID"
// @Param update body dto.CorrectChoiceUpdateDTO true "New correct choice"
// @Success 200 {object} dto.RecalculationReportDTO
// @Failure 400 {object} dto.ErrorResponse "Choice does not belong to the question"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{question_id}/correct-choice [put]
func (c *AdminExamController) UpdateCorrectChoice(ctx *gin.Context) {
	questionID, err := strconv.ParseUint(ctx.Param("question_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Question ID format"})
		return
	}

	var req dto.CorrectChoiceUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	report, err := c.adminExamService.UpdateCorrectChoice(uint(questionID), req)
	if err != nil {
		log.Warn().Err(err).Uint64("questionID", questionID).Msg("UpdateCorrectChoice failed")
		ctx.JSON(statusForError(err), dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, report)
}

// RecalculateQuestionScores godoc
// @Summary (Admin) Re-run the recalculation cascade for a question
// @Description Idempotent repair trigger for operators; reports how many attempts were repaired and which failed.
// @Tags Admin - Exams
// @Produce json
// @Param question_id path int true "Question ID"
// @Success 200 {object} dto.RecalculationReportDTO
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{question_id}/recalculate [post]
func (c *AdminExamController) RecalculateQuestionScores(ctx *gin.Context) {
	questionID, err := strconv.ParseUint(ctx.Param("question_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Question ID format"})
		return
	}

	report, err := c.recalculation.QuestionCorrectAnswerChanged(uint(questionID))
	if err != nil {
		log.Error().Err(err).Uint64("questionID", questionID).Msg("RecalculateQuestionScores failed")
		ctx.JSON(statusForError(err), dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, report)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound), errors.Is(err, service.ErrExamNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrChoiceNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
