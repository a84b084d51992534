package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"quiz-forge/internal/cache"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"

	"go.uber.org/zap"
)

const DefaultGradeCacheTTL = 24 * time.Hour

// cachedGrader memoizes AI judgments per (question, blank or short, normalized answer).
// Cache failures fall through to the wrapped grader; grading errors are never cached.
type cachedGrader struct {
	next  domain.AnswerGrader
	cache domain.Cache
	ttl   time.Duration
}

// NewCachedGrader wraps next. A nil cache returns next unchanged.
func NewCachedGrader(next domain.AnswerGrader, c domain.Cache, ttl time.Duration) domain.AnswerGrader {
	if c == nil || next == nil {
		return next
	}
	if ttl <= 0 {
		ttl = DefaultGradeCacheTTL
	}
	return &cachedGrader{next: next, cache: c, ttl: ttl}
}

// GradeShortAnswer implements domain.AnswerGrader
func (g *cachedGrader) GradeShortAnswer(ctx context.Context, req domain.ShortAnswerGradingRequest) (*domain.AIGrade, error) {
	if req.QuestionID == 0 {
		return g.next.GradeShortAnswer(ctx, req)
	}
	return g.cached(ctx, cache.ShortAnswerGradeKey(req.QuestionID, req.StudentAnswer), req.MaxScore, func() (*domain.AIGrade, error) {
		return g.next.GradeShortAnswer(ctx, req)
	})
}

// GradeBlank implements domain.AnswerGrader
func (g *cachedGrader) GradeBlank(ctx context.Context, req domain.BlankGradingRequest) (*domain.AIGrade, error) {
	if req.QuestionID == 0 {
		return g.next.GradeBlank(ctx, req)
	}
	return g.cached(ctx, cache.BlankGradeKey(req.QuestionID, req.BlankIndex, req.StudentValue), req.MaxScore, func() (*domain.AIGrade, error) {
		return g.next.GradeBlank(ctx, req)
	})
}

type cachedGrade struct {
	Grade    domain.AIGrade `json:"grade"`
	MaxScore float64        `json:"max_score"`
}

func (g *cachedGrader) cached(ctx context.Context, key string, maxScore float64, call func() (*domain.AIGrade, error)) (*domain.AIGrade, error) {
	l := logger.Get()

	raw, err := g.cache.Get(ctx, key)
	switch {
	case err == nil:
		var hit cachedGrade
		// A judgment made against a different weight is not reusable.
		if jsonErr := json.Unmarshal([]byte(raw), &hit); jsonErr == nil && hit.MaxScore == maxScore {
			l.Debug("Grading cache hit", zap.String("key", key))
			return &hit.Grade, nil
		}
	case errors.Is(err, domain.ErrCacheMiss):
	default:
		l.Warn("Grading cache read failed", zap.Error(err), zap.String("key", key))
	}

	grade, err := call()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(cachedGrade{Grade: *grade, MaxScore: maxScore})
	if err == nil {
		if setErr := g.cache.Set(ctx, key, string(data), g.ttl); setErr != nil {
			l.Warn("Grading cache write failed", zap.Error(setErr), zap.String("key", key))
		}
	}
	return grade, nil
}
