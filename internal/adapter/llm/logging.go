package llm

import (
	"context"
	"errors"
	"time"

	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"
	"quiz-forge/internal/util"

	"go.uber.org/zap"
)

const requestSummaryLimit = 200

// LoggingModel records every call of the wrapped model as an LLMCallLog.
// Failing to persist a log entry never fails the call itself.
type LoggingModel struct {
	next     domain.LanguageModel
	repo     domain.LLMLogRepository
	provider string
	model    string
	now      func() time.Time
}

// NewLoggingModel decorates next. repo may be nil, in which case entries are only logged.
func NewLoggingModel(next domain.LanguageModel, repo domain.LLMLogRepository, provider, model string) *LoggingModel {
	return &LoggingModel{next: next, repo: repo, provider: provider, model: model, now: time.Now}
}

// Complete implements domain.LanguageModel
func (m *LoggingModel) Complete(ctx context.Context, messages []domain.Message, opts ...domain.CompletionOption) (*domain.Completion, error) {
	start := m.now()
	resp, err := m.next.Complete(ctx, messages, opts...)

	entry := m.newEntry(ctx, messages, start)
	if resp != nil {
		entry.PromptTokens = resp.Usage.PromptTokens
		entry.CompletionTokens = resp.Usage.CompletionTokens
		if resp.Model != "" {
			entry.Model = resp.Model
		}
	}
	m.finish(ctx, entry, err)
	return resp, err
}

// Stream implements domain.LanguageModel
func (m *LoggingModel) Stream(ctx context.Context, messages []domain.Message, opts ...domain.CompletionOption) (<-chan domain.StreamChunk, <-chan error) {
	start := m.now()
	inChunks, inErrs := m.next.Stream(ctx, messages, opts...)

	chunks := make(chan domain.StreamChunk)
	errs := make(chan error, 1)
	go func() {
		defer close(chunks)
		defer close(errs)

		var streamErr error
		for chunk := range inChunks {
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				streamErr = ctx.Err()
			}
			if streamErr != nil {
				break
			}
		}
		if streamErr == nil {
			streamErr = <-inErrs
		} else {
			for range inChunks {
			}
		}
		m.finish(ctx, m.newEntry(ctx, messages, start), streamErr)
		if streamErr != nil {
			errs <- streamErr
		}
	}()
	return chunks, errs
}

func (m *LoggingModel) newEntry(ctx context.Context, messages []domain.Message, start time.Time) *domain.LLMCallLog {
	return &domain.LLMCallLog{
		RequestID:      util.NewULID(),
		Scene:          domain.LLMSceneFrom(ctx),
		Provider:       m.provider,
		Model:          m.model,
		LatencyMs:      m.now().Sub(start).Milliseconds(),
		RequestSummary: summarize(messages),
		CreatedAt:      m.now(),
	}
}

func (m *LoggingModel) finish(ctx context.Context, entry *domain.LLMCallLog, err error) {
	entry.Status = domain.LLMCallSuccess
	if err != nil {
		entry.Status = domain.LLMCallFailed
		if errors.Is(err, context.DeadlineExceeded) {
			entry.Status = domain.LLMCallTimeout
		}
		entry.ErrorMessage = err.Error()
	}

	l := logger.Get()
	l.Debug("LLM call finished",
		zap.String("request_id", entry.RequestID),
		zap.String("scene", string(entry.Scene)),
		zap.String("provider", entry.Provider),
		zap.String("status", string(entry.Status)),
		zap.Int64("latency_ms", entry.LatencyMs),
		zap.Int("prompt_tokens", entry.PromptTokens),
		zap.Int("completion_tokens", entry.CompletionTokens))

	if m.repo == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if saveErr := m.repo.SaveLLMCallLog(saveCtx, entry); saveErr != nil {
		l.Warn("Failed to save LLM call log", zap.Error(saveErr), zap.String("request_id", entry.RequestID))
	}
}

// summarize keeps the head of the last user message.
func summarize(messages []domain.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != domain.RoleUser {
			continue
		}
		runes := []rune(messages[i].Content)
		if len(runes) > requestSummaryLimit {
			return string(runes[:requestSummaryLimit])
		}
		return string(runes)
	}
	return ""
}
