package handler

import (
	"quiz-forge/internal/domain"
	"quiz-forge/internal/dto"
	"quiz-forge/internal/logger"
	"quiz-forge/internal/middleware"
	"quiz-forge/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuestionHandler serves the generation pipeline.
type QuestionHandler struct {
	pipeline  service.GenerationPipeline
	questions domain.QuestionRepository
	tx        domain.TransactionManager
}

// NewQuestionHandler creates a new QuestionHandler instance
func NewQuestionHandler(pipeline service.GenerationPipeline, questions domain.QuestionRepository, tx domain.TransactionManager) *QuestionHandler {
	return &QuestionHandler{pipeline: pipeline, questions: questions, tx: tx}
}

// Generate handles POST /api/questions/generate
// @Summary Generate questions
// @Description Runs the full generate, validate, review and repair pipeline. With save set, approved questions are stored in the question bank.
// @Tags questions
// @Security ActorAuth
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuestionsRequest true "Generation request"
// @Success 200 {object} dto.GenerateQuestionsResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid input"
// @Failure 401 {object} middleware.ErrorResponse "Missing or invalid actor id"
// @Failure 503 {object} middleware.ErrorResponse "Generation failed"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /api/questions/generate [post]
func (h *QuestionHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateQuestionsRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	ctx := c.UserContext()
	result, err := h.pipeline.Generate(ctx, req.ToDomain())
	if err != nil {
		return err
	}

	resp := dto.GenerateQuestionsResponse{PipelineDict: result.ToDict()}
	if req.Save {
		ids, err := service.SaveApproved(ctx, h.questions, h.tx, result, middleware.ActorID(c))
		if err != nil {
			return err
		}
		resp.SavedQuestionIDs = ids
	}
	return c.JSON(resp)
}

// GenerateQuick handles POST /api/questions/generate/quick
// @Summary Generate questions without review
// @Description Generates and validates questions, skipping the AI review stage.
// @Tags questions
// @Security ActorAuth
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuestionsRequest true "Generation request"
// @Success 200 {object} dto.QuickGenerateResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid input"
// @Failure 401 {object} middleware.ErrorResponse "Missing or invalid actor id"
// @Failure 503 {object} middleware.ErrorResponse "Generation failed"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /api/questions/generate/quick [post]
func (h *QuestionHandler) GenerateQuick(c *fiber.Ctx) error {
	var req dto.GenerateQuestionsRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	questions, err := h.pipeline.GenerateQuick(c.UserContext(), req.ToDomain())
	if err != nil {
		return err
	}
	if questions == nil {
		questions = []*domain.GeneratedQuestion{}
	}
	return c.JSON(dto.QuickGenerateResponse{Questions: questions})
}

// GenerateSingle handles POST /api/questions/generate/single
// @Summary Generate one question
// @Description Generates one question and drives it through the pipeline.
// @Tags questions
// @Security ActorAuth
// @Accept json
// @Produce json
// @Param request body dto.GenerateSingleRequest true "Single question request"
// @Success 200 {object} dto.SingleQuestionResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid input"
// @Failure 401 {object} middleware.ErrorResponse "Missing or invalid actor id"
// @Failure 503 {object} middleware.ErrorResponse "Generation failed"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /api/questions/generate/single [post]
func (h *QuestionHandler) GenerateSingle(c *fiber.Ctx) error {
	var req dto.GenerateSingleRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	pq, err := h.pipeline.GenerateSingle(c.UserContext(), req.CourseName, domain.QuestionType(req.QuestionType), req.Difficulty, req.KnowledgePoint)
	if err != nil {
		return err
	}
	if pq == nil {
		logger.Get().Warn("Single generation produced no question", zap.String("course", req.CourseName))
		return domain.NewGenerationError(domain.ErrGenerationParse)
	}
	return c.JSON(dto.NewSingleQuestionResponse(pq))
}
