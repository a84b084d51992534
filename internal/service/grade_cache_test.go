package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"quiz-forge/internal/cache"
	"quiz-forge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCachedGrader_ShortAnswer(t *testing.T) {
	ctx := context.Background()
	req := domain.ShortAnswerGradingRequest{
		QuestionID:    7,
		Stem:          "Explain goroutines?",
		StudentAnswer: "Lightweight  THREADS",
		MaxScore:      10,
	}
	key := cache.ShortAnswerGradeKey(7, "lightweight threads")
	fresh := &domain.AIGrade{Score: 8, Feedback: "Mostly right"}

	t.Run("miss calls grader and stores the judgment", func(t *testing.T) {
		mockCache := new(MockCache)
		grader := new(MockAnswerGrader)

		mockCache.On("Get", ctx, key).Return("", domain.ErrCacheMiss).Once()
		grader.On("GradeShortAnswer", ctx, req).Return(fresh, nil).Once()
		mockCache.On("Set", ctx, key, mock.MatchedBy(func(v string) bool {
			var stored cachedGrade
			return json.Unmarshal([]byte(v), &stored) == nil && stored.Grade.Score == 8 && stored.MaxScore == 10
		}), time.Hour).Return(nil).Once()

		got, err := NewCachedGrader(grader, mockCache, time.Hour).GradeShortAnswer(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, fresh, got)
		mockCache.AssertExpectations(t)
		grader.AssertExpectations(t)
	})

	t.Run("hit skips grader", func(t *testing.T) {
		mockCache := new(MockCache)
		grader := new(MockAnswerGrader)

		data, _ := json.Marshal(cachedGrade{Grade: domain.AIGrade{Score: 6, Feedback: "cached"}, MaxScore: 10})
		mockCache.On("Get", ctx, key).Return(string(data), nil).Once()

		got, err := NewCachedGrader(grader, mockCache, time.Hour).GradeShortAnswer(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 6.0, got.Score)
		assert.Equal(t, "cached", got.Feedback)
		grader.AssertNotCalled(t, "GradeShortAnswer", mock.Anything, mock.Anything)
	})

	t.Run("judgment made for another weight is ignored", func(t *testing.T) {
		mockCache := new(MockCache)
		grader := new(MockAnswerGrader)

		data, _ := json.Marshal(cachedGrade{Grade: domain.AIGrade{Score: 4}, MaxScore: 5})
		mockCache.On("Get", ctx, key).Return(string(data), nil).Once()
		grader.On("GradeShortAnswer", ctx, req).Return(fresh, nil).Once()
		mockCache.On("Set", ctx, key, mock.Anything, time.Hour).Return(nil).Once()

		got, err := NewCachedGrader(grader, mockCache, time.Hour).GradeShortAnswer(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 8.0, got.Score)
	})

	t.Run("cache errors degrade to a direct call", func(t *testing.T) {
		mockCache := new(MockCache)
		grader := new(MockAnswerGrader)

		mockCache.On("Get", ctx, key).Return("", errors.New("connection refused")).Once()
		grader.On("GradeShortAnswer", ctx, req).Return(fresh, nil).Once()
		mockCache.On("Set", ctx, key, mock.Anything, time.Hour).Return(errors.New("connection refused")).Once()

		got, err := NewCachedGrader(grader, mockCache, time.Hour).GradeShortAnswer(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, fresh, got)
	})

	t.Run("grading errors are not cached", func(t *testing.T) {
		mockCache := new(MockCache)
		grader := new(MockAnswerGrader)

		mockCache.On("Get", ctx, key).Return("", domain.ErrCacheMiss).Once()
		grader.On("GradeShortAnswer", ctx, req).Return(nil, domain.ErrGradingUnavailable).Once()

		_, err := NewCachedGrader(grader, mockCache, time.Hour).GradeShortAnswer(ctx, req)
		assert.ErrorIs(t, err, domain.ErrGradingUnavailable)
		mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCachedGrader_Blank(t *testing.T) {
	ctx := context.Background()
	req := domain.BlankGradingRequest{QuestionID: 3, BlankIndex: 1, CorrectValue: "1889", StudentValue: "1888", MaxScore: 2.5}
	key := cache.BlankGradeKey(3, 1, "1888")

	mockCache := new(MockCache)
	grader := new(MockAnswerGrader)
	mockCache.On("Get", ctx, key).Return("", domain.ErrCacheMiss).Once()
	grader.On("GradeBlank", ctx, req).Return(&domain.AIGrade{Score: 1}, nil).Once()
	mockCache.On("Set", ctx, key, mock.Anything, DefaultGradeCacheTTL).Return(nil).Once()

	got, err := NewCachedGrader(grader, mockCache, 0).GradeBlank(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Score)
	mockCache.AssertExpectations(t)
}

func TestCachedGrader_Bypass(t *testing.T) {
	grader := new(MockAnswerGrader)
	assert.Same(t, grader, NewCachedGrader(grader, nil, time.Hour))

	// Unsaved questions have no stable identity to key on.
	mockCache := new(MockCache)
	req := domain.ShortAnswerGradingRequest{StudentAnswer: "text", MaxScore: 5}
	grader.On("GradeShortAnswer", mock.Anything, req).Return(&domain.AIGrade{Score: 2}, nil).Once()

	got, err := NewCachedGrader(grader, mockCache, time.Hour).GradeShortAnswer(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Score)
	mockCache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}
