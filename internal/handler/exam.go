package handler

import (
	"quiz-forge/internal/domain"
	"quiz-forge/internal/dto"
	"quiz-forge/internal/middleware"
	"quiz-forge/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ExamHandler serves attempts and grading.
type ExamHandler struct {
	exams   service.ExamService
	grading service.GradingEngine
}

// NewExamHandler creates a new ExamHandler instance
func NewExamHandler(exams service.ExamService, grading service.GradingEngine) *ExamHandler {
	return &ExamHandler{exams: exams, grading: grading}
}

func idParam(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, domain.NewInvalidInputError("id must be a positive integer")
	}
	return int64(id), nil
}

// StartAttempt handles POST /api/exams/:id/attempts
// @Summary Start an attempt
// @Description Starts an attempt on a published exam for the calling student.
// @Tags attempts
// @Security ActorAuth
// @Produce json
// @Param id path int true "Exam ID"
// @Success 201 {object} dto.AttemptResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid input"
// @Failure 401 {object} middleware.ErrorResponse "Missing or invalid actor id"
// @Failure 404 {object} middleware.ErrorResponse "Not found"
// @Failure 409 {object} middleware.ErrorResponse "Invalid attempt state"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /api/exams/{id}/attempts [post]
func (h *ExamHandler) StartAttempt(c *fiber.Ctx) error {
	examID, err := idParam(c)
	if err != nil {
		return err
	}
	attempt, err := h.exams.StartAttempt(c.UserContext(), examID, middleware.ActorID(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewAttemptResponse(attempt))
}

// SaveAnswer handles PUT /api/attempts/:id/answers
// @Summary Save an answer
// @Description Stores or replaces the answer to one question of an in-progress attempt.
// @Tags attempts
// @Security ActorAuth
// @Accept json
// @Produce json
// @Param id path int true "Attempt ID"
// @Param request body dto.SaveAnswerRequest true "Answer"
// @Success 204
// @Failure 400 {object} middleware.ErrorResponse "Invalid input"
// @Failure 401 {object} middleware.ErrorResponse "Missing or invalid actor id"
// @Failure 403 {object} middleware.ErrorResponse "Not allowed for this actor"
// @Failure 404 {object} middleware.ErrorResponse "Not found"
// @Failure 409 {object} middleware.ErrorResponse "Invalid attempt state"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /api/attempts/{id}/answers [put]
func (h *ExamHandler) SaveAnswer(c *fiber.Ctx) error {
	attemptID, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.SaveAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if req.QuestionID <= 0 {
		return domain.NewInvalidInputError("question_id is required")
	}
	if err := h.exams.SaveAnswer(c.UserContext(), attemptID, middleware.ActorID(c), req.QuestionID, req.Answer, req.TimeSpentSeconds); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SubmitAttempt handles POST /api/exams/:id/submit
// @Summary Submit an attempt
// @Description Submits the caller's latest attempt and grades it.
// @Tags attempts
// @Security ActorAuth
// @Produce json
// @Param id path int true "Exam ID"
// @Success 200 {object} domain.AttemptDetail
// @Failure 400 {object} middleware.ErrorResponse "Invalid input"
// @Failure 401 {object} middleware.ErrorResponse "Missing or invalid actor id"
// @Failure 404 {object} middleware.ErrorResponse "Not found"
// @Failure 409 {object} middleware.ErrorResponse "Invalid attempt state"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /api/exams/{id}/submit [post]
func (h *ExamHandler) SubmitAttempt(c *fiber.Ctx) error {
	examID, err := idParam(c)
	if err != nil {
		return err
	}
	detail, err := h.exams.SubmitAttempt(c.UserContext(), examID, middleware.ActorID(c))
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

// GetAttempt handles GET /api/attempts/:id
// @Summary Get attempt detail
// @Description Returns the graded answers of an attempt to its student or the exam publisher.
// @Tags attempts
// @Security ActorAuth
// @Produce json
// @Param id path int true "Attempt ID"
// @Success 200 {object} domain.AttemptDetail
// @Failure 400 {object} middleware.ErrorResponse "Invalid input"
// @Failure 401 {object} middleware.ErrorResponse "Missing or invalid actor id"
// @Failure 403 {object} middleware.ErrorResponse "Not allowed for this actor"
// @Failure 404 {object} middleware.ErrorResponse "Not found"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /api/attempts/{id} [get]
func (h *ExamHandler) GetAttempt(c *fiber.Ctx) error {
	attemptID, err := idParam(c)
	if err != nil {
		return err
	}
	detail, err := h.grading.GetAttemptDetail(c.UserContext(), attemptID, middleware.ActorID(c))
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

// UpdateScores handles PUT /api/attempts/:id/scores
// @Summary Override answer scores
// @Description Applies teacher scores and feedback to answers of a submitted attempt.
// @Tags grading
// @Security ActorAuth
// @Accept json
// @Produce json
// @Param id path int true "Attempt ID"
// @Param request body dto.UpdateScoresRequest true "Score overrides"
// @Success 200 {object} domain.AttemptDetail
// @Failure 400 {object} middleware.ErrorResponse "Invalid input"
// @Failure 401 {object} middleware.ErrorResponse "Missing or invalid actor id"
// @Failure 403 {object} middleware.ErrorResponse "Not allowed for this actor"
// @Failure 404 {object} middleware.ErrorResponse "Not found"
// @Failure 409 {object} middleware.ErrorResponse "Invalid attempt state"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /api/attempts/{id}/scores [put]
func (h *ExamHandler) UpdateScores(c *fiber.Ctx) error {
	attemptID, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.UpdateScoresRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	detail, err := h.grading.UpdateAnswerScores(c.UserContext(), attemptID, middleware.ActorID(c), req.Updates)
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

// ConfirmGrade handles POST /api/attempts/:id/confirm
// @Summary Confirm the grade
// @Description Marks the attempt as graded by the teacher, optionally with an explicit final score.
// @Tags grading
// @Security ActorAuth
// @Accept json
// @Produce json
// @Param id path int true "Attempt ID"
// @Param request body dto.ConfirmGradeRequest false "Final score and comment"
// @Success 200 {object} domain.AttemptDetail
// @Failure 400 {object} middleware.ErrorResponse "Invalid input"
// @Failure 401 {object} middleware.ErrorResponse "Missing or invalid actor id"
// @Failure 403 {object} middleware.ErrorResponse "Not allowed for this actor"
// @Failure 404 {object} middleware.ErrorResponse "Not found"
// @Failure 409 {object} middleware.ErrorResponse "Invalid attempt state"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /api/attempts/{id}/confirm [post]
func (h *ExamHandler) ConfirmGrade(c *fiber.Ctx) error {
	attemptID, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.ConfirmGradeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.NewInvalidInputError("invalid request body")
		}
	}
	detail, err := h.grading.ConfirmGrade(c.UserContext(), attemptID, middleware.ActorID(c), req.FinalScore, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

// Statistics handles GET /api/exams/:id/statistics
// @Summary Exam grade statistics
// @Description Aggregates attempt scores for the exam publisher.
// @Tags grading
// @Security ActorAuth
// @Produce json
// @Param id path int true "Exam ID"
// @Success 200 {object} domain.GradeStatistics
// @Failure 400 {object} middleware.ErrorResponse "Invalid input"
// @Failure 401 {object} middleware.ErrorResponse "Missing or invalid actor id"
// @Failure 403 {object} middleware.ErrorResponse "Not allowed for this actor"
// @Failure 404 {object} middleware.ErrorResponse "Not found"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /api/exams/{id}/statistics [get]
func (h *ExamHandler) Statistics(c *fiber.Ctx) error {
	examID, err := idParam(c)
	if err != nil {
		return err
	}
	stats, err := h.grading.GetGradeStatistics(c.UserContext(), examID, middleware.ActorID(c))
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
