package service

import (
	"context"

	"quiz-forge/internal/config"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"
	"quiz-forge/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GenerationPipeline runs generate → validate → review with one bounded repair per question.
type GenerationPipeline interface {
	// Generate never returns a partially filled result. When generation fails the
	// result is empty and the error carries GENERATION_FAILED.
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.PipelineResult, error)
	// GenerateQuick skips review and returns the questions that pass validation.
	GenerateQuick(ctx context.Context, req domain.GenerationRequest) ([]*domain.GeneratedQuestion, error)
	// GenerateSingle runs the full pipeline for one question and returns it from the
	// best bucket available (approved, needs_review, rejected).
	GenerateSingle(ctx context.Context, courseName string, questionType domain.QuestionType, difficulty int, knowledgePoint string) (*domain.ProcessedQuestion, error)
}

type generationPipeline struct {
	generator   domain.QuestionGenerator
	reviewer    domain.QuestionReviewer
	concurrency int
}

// NewGenerationPipeline wires the pipeline stages. Review of one batch runs with at most
// cfg.ReviewConcurrency questions in flight.
func NewGenerationPipeline(generator domain.QuestionGenerator, reviewer domain.QuestionReviewer, cfg config.PipelineConfig) GenerationPipeline {
	concurrency := cfg.ReviewConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &generationPipeline{generator: generator, reviewer: reviewer, concurrency: concurrency}
}

// Generate implements GenerationPipeline
func (p *generationPipeline) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.PipelineResult, error) {
	return p.run(ctx, req, false)
}

// GenerateQuick implements GenerationPipeline
func (p *generationPipeline) GenerateQuick(ctx context.Context, req domain.GenerationRequest) ([]*domain.GeneratedQuestion, error) {
	result, err := p.run(ctx, req, true)
	if err != nil {
		return nil, err
	}
	return result.ApprovedQuestions(), nil
}

// GenerateSingle implements GenerationPipeline
func (p *generationPipeline) GenerateSingle(ctx context.Context, courseName string, questionType domain.QuestionType, difficulty int, knowledgePoint string) (*domain.ProcessedQuestion, error) {
	if difficulty == 0 {
		difficulty = 3
	}
	result, err := p.Generate(ctx, domain.GenerationRequest{
		CourseName:     courseName,
		QuestionType:   questionType,
		Difficulty:     difficulty,
		KnowledgePoint: knowledgePoint,
		Count:          1,
	})
	if err != nil {
		return nil, err
	}
	for _, bucket := range [][]*domain.ProcessedQuestion{result.Approved, result.NeedsReview, result.Rejected} {
		if len(bucket) > 0 {
			return bucket[0], nil
		}
	}
	return nil, nil
}

func (p *generationPipeline) run(ctx context.Context, req domain.GenerationRequest, skipReview bool) (*domain.PipelineResult, error) {
	result := &domain.PipelineResult{}
	if err := req.Validate(); err != nil {
		return result, err
	}

	l := logger.Get().With(zap.String("batch_id", util.NewULID()))
	l.Info("Pipeline started",
		zap.String("course", req.CourseName),
		zap.String("type", string(req.QuestionType)),
		zap.Int("count", req.Count),
		zap.Bool("skip_review", skipReview))

	generated, err := p.generator.Generate(ctx, req)
	if err != nil {
		l.Error("Generation failed, batch discarded", zap.Error(err))
		if domain.CodeOf(err) != domain.ErrGenerationFailed {
			err = domain.NewGenerationError(err)
		}
		return result, err
	}
	result.TotalGenerated = len(generated)

	validator := NewStructuralValidator()
	validated := validator.ValidateBatch(generated)

	processed := make([]*domain.ProcessedQuestion, len(validated))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, vq := range validated {
		i, vq := i, vq
		if !vq.Result.IsValid {
			processed[i] = &domain.ProcessedQuestion{
				Question:         vq.Question,
				Status:           domain.StatusRejected,
				ValidationResult: vq.Result,
			}
			continue
		}
		if skipReview {
			processed[i] = &domain.ProcessedQuestion{
				Question:         vq.Question,
				Status:           domain.StatusApproved,
				ValidationResult: vq.Result,
			}
			continue
		}
		g.Go(func() error {
			processed[i] = p.reviewOne(gctx, validator, vq)
			return nil
		})
	}
	_ = g.Wait()

	for _, pq := range processed {
		result.Add(pq)
	}
	l.Info("Pipeline finished",
		zap.Int("generated", result.TotalGenerated),
		zap.Int("approved", len(result.Approved)),
		zap.Int("needs_review", len(result.NeedsReview)),
		zap.Int("rejected", len(result.Rejected)))
	return result, nil
}

// reviewOne drives a structurally valid question to approved or needs_review.
// At most one repair candidate is tried, including after an unreadable verdict.
func (p *generationPipeline) reviewOne(ctx context.Context, validator *StructuralValidator, vq domain.ValidatedQuestion) *domain.ProcessedQuestion {
	review := p.reviewer.Review(ctx, vq.Question)

	if review.Outcome() == domain.OutcomeApproved {
		return &domain.ProcessedQuestion{
			Question:         vq.Question,
			Status:           domain.StatusApproved,
			ValidationResult: vq.Result,
			ReviewResult:     review,
		}
	}
	if review == nil {
		review = &domain.ReviewResult{Issues: []domain.ReviewIssue{{
			Type: domain.IssueReviewError, Description: "reviewer returned no result", Severity: domain.SeverityError,
		}}}
	}

	original := vq.Question.Clone()
	candidate := review.FixedQuestion
	if candidate == nil {
		issues := review.ErrorIssues()
		if len(issues) == 0 {
			issues = review.Issues
		}
		candidate = p.reviewer.Fix(ctx, vq.Question, issues)
	}
	if candidate == nil {
		logger.Get().Debug("No repair candidate", zap.Error(domain.ErrFixUnavailable))
		return needsReview(vq.Question, nil, vq.Result, review)
	}

	if !candidate.DifficultyPresent() && candidate.Difficulty == 0 {
		candidate.Difficulty = vq.Question.Difficulty
	}

	validator.Release(vq.Question.Stem)
	fixValidation := validator.Validate(candidate)
	if !fixValidation.IsValid {
		return needsReview(candidate, original, fixValidation, review)
	}

	fixReview := p.reviewer.Review(ctx, candidate)
	if fixReview.Outcome() == domain.OutcomeApproved {
		return &domain.ProcessedQuestion{
			Question:         candidate,
			Status:           domain.StatusApproved,
			ValidationResult: fixValidation,
			ReviewResult:     fixReview,
			OriginalQuestion: original,
		}
	}
	return needsReview(candidate, original, fixValidation, fixReview)
}

func needsReview(q, original *domain.GeneratedQuestion, validation *domain.ValidationResult, review *domain.ReviewResult) *domain.ProcessedQuestion {
	return &domain.ProcessedQuestion{
		Question:         q,
		Status:           domain.StatusNeedsReview,
		ValidationResult: validation,
		ReviewResult:     review,
		OriginalQuestion: original,
	}
}
