// Package llm adapts concrete language-model SDKs to domain.LanguageModel.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quiz-forge/internal/config"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

// ErrEmptyResponse is returned when a provider answers without any choice.
var ErrEmptyResponse = errors.New("LLM returned no choices")

// LangchainModel serves the capability through a langchaingo llms.Model.
type LangchainModel struct {
	model     llms.Model
	modelName string
	timeout   time.Duration
	defaults  domain.CompletionOptions
}

// NewLangchainModel wraps model. Temperature and max tokens from cfg apply when a call sets none.
func NewLangchainModel(model llms.Model, cfg config.LLMConfig) *LangchainModel {
	temperature := cfg.Temperature
	return &LangchainModel{
		model:     model,
		modelName: cfg.Model,
		timeout:   timeoutOrDefault(cfg.Timeout),
		defaults:  domain.CompletionOptions{Temperature: &temperature, MaxTokens: cfg.MaxTokens},
	}
}

// Complete implements domain.LanguageModel
func (m *LangchainModel) Complete(ctx context.Context, messages []domain.Message, opts ...domain.CompletionOption) (*domain.Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	resp, err := m.model.GenerateContent(ctx, toLangchainMessages(messages), m.callOptions(opts)...)
	if err != nil {
		return nil, wrapCallError(ctx, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return nil, ErrEmptyResponse
	}

	choice := resp.Choices[0]
	return &domain.Completion{
		Content: choice.Content,
		Model:   m.modelName,
		Usage: domain.TokenUsage{
			PromptTokens:     intInfo(choice.GenerationInfo, "PromptTokens"),
			CompletionTokens: intInfo(choice.GenerationInfo, "CompletionTokens"),
			TotalTokens:      intInfo(choice.GenerationInfo, "TotalTokens"),
		},
	}, nil
}

// Stream implements domain.LanguageModel. The producer goroutine exits once ctx
// is done, so a caller that stops reading must cancel ctx.
func (m *LangchainModel) Stream(ctx context.Context, messages []domain.Message, opts ...domain.CompletionOption) (<-chan domain.StreamChunk, <-chan error) {
	chunks := make(chan domain.StreamChunk)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)

		ctx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()

		callOpts := append(m.callOptions(opts), llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			select {
			case chunks <- domain.StreamChunk{Content: string(chunk)}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}))

		if _, err := m.model.GenerateContent(ctx, toLangchainMessages(messages), callOpts...); err != nil {
			logger.Get().Error("LLM stream failed", zap.Error(err))
			errs <- wrapCallError(ctx, err)
			return
		}
		select {
		case chunks <- domain.StreamChunk{Done: true}:
		case <-ctx.Done():
			errs <- wrapCallError(ctx, ctx.Err())
		}
	}()

	return chunks, errs
}

func (m *LangchainModel) callOptions(opts []domain.CompletionOption) []llms.CallOption {
	o := domain.ApplyCompletionOptions(opts...)
	temperature := m.defaults.Temperature
	if o.Temperature != nil {
		temperature = o.Temperature
	}
	maxTokens := m.defaults.MaxTokens
	if o.MaxTokens > 0 {
		maxTokens = o.MaxTokens
	}

	var callOpts []llms.CallOption
	if temperature != nil {
		callOpts = append(callOpts, llms.WithTemperature(*temperature))
	}
	if maxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(maxTokens))
	}
	return callOpts
}

func toLangchainMessages(messages []domain.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role := schema.ChatMessageTypeHuman
		switch msg.Role {
		case domain.RoleSystem:
			role = schema.ChatMessageTypeSystem
		case domain.RoleAssistant:
			role = schema.ChatMessageTypeAI
		}
		out = append(out, llms.TextParts(role, msg.Content))
	}
	return out
}

func intInfo(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// wrapCallError marks deadline expiry so callers and the call log can tell timeouts apart.
func wrapCallError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("LLM request timed out: %w", context.DeadlineExceeded)
	}
	return fmt.Errorf("LLM call failed: %w", err)
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return 60 * time.Second
	}
	return d
}
