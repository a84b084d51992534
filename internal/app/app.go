// Package app assembles the components shared by the server and the CLI.
package app

import (
	"context"
	"fmt"

	"quiz-forge/internal/adapter"
	"quiz-forge/internal/adapter/evaluator"
	"quiz-forge/internal/adapter/llm"
	"quiz-forge/internal/adapter/quizgen"
	"quiz-forge/internal/adapter/reviewer"
	"quiz-forge/internal/cache"
	"quiz-forge/internal/config"
	"quiz-forge/internal/database"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"
	"quiz-forge/internal/repository"
	"quiz-forge/internal/service"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Components is the wired object graph.
type Components struct {
	DB    *sqlx.DB
	Redis *redis.Client
	// Cache is nil when Redis is not configured or unreachable.
	Cache domain.Cache

	Model     domain.LanguageModel
	Generator *quizgen.LLMQuestionGenerator
	Reviewer  *reviewer.LLMReviewer
	Pipeline  service.GenerationPipeline

	Tx        domain.TransactionManager
	Questions domain.QuestionRepository
	Exams     domain.ExamRepository
	Attempts  domain.AttemptRepository
	Grading   service.GradingEngine
	ExamSvc   service.ExamService
}

// Build opens the database and the optional cache, then wires the model, pipeline and grading.
func Build(ctx context.Context, cfg *config.Config) (*Components, error) {
	log := logger.Get()

	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	c := &Components{
		DB:        db,
		Tx:        repository.NewTransactionManagerAdapter(db),
		Questions: repository.NewQuestionRepository(db),
		Exams:     repository.NewExamRepository(db),
		Attempts:  repository.NewAttemptRepository(db),
	}

	if cfg.Redis.Address != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, running without grading cache", zap.Error(err))
		} else {
			c.Redis = client
			c.Cache = adapter.NewRedisCacheAdapter(client)
		}
	} else {
		log.Info("Redis is not configured, running without grading cache")
	}

	llmCfg := llm.Resolve(cfg.LLM)
	base, err := llm.NewPool(nil).Get(llmCfg)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create language model: %w", err)
	}
	c.Model = llm.NewLoggingModel(base, repository.NewLLMLogRepository(db), llmCfg.Provider, llmCfg.Model)

	c.Generator = quizgen.NewLLMQuestionGenerator(c.Model, cfg.Pipeline.GenerateTemperature, log)
	c.Reviewer = reviewer.NewLLMReviewer(c.Model,
		reviewer.WithTemperatures(cfg.Pipeline.ReviewTemperature, cfg.Pipeline.FixTemperature),
		reviewer.WithConcurrency(cfg.Pipeline.ReviewConcurrency),
		reviewer.WithLogger(log))
	c.Pipeline = service.NewGenerationPipeline(c.Generator, c.Reviewer, cfg.Pipeline)

	grader := service.NewCachedGrader(evaluator.NewLLMGrader(c.Model, cfg.Grading.Temperature), c.Cache, cfg.Grading.CacheTTL)
	c.Grading = service.NewGradingEngine(c.Exams, c.Attempts, c.Tx, grader, cfg.Grading)
	c.ExamSvc = service.NewExamService(c.Exams, c.Attempts, c.Grading)

	log.Info("Components initialized",
		zap.String("db_driver", cfg.DB.Driver),
		zap.String("llm_provider", llmCfg.Provider),
		zap.String("llm_model", llmCfg.Model),
		zap.Bool("grading_cache", c.Cache != nil))
	return c, nil
}

// Close releases the database and Redis connections.
func (c *Components) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Get().Warn("Failed to close Redis client", zap.Error(err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logger.Get().Warn("Failed to close database", zap.Error(err))
		}
	}
}
