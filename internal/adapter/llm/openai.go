package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"quiz-forge/internal/config"
	"quiz-forge/internal/domain"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIModel serves the capability through go-openai against any OpenAI-compatible endpoint.
type OpenAIModel struct {
	api       *openai.Client
	modelName string
	timeout   time.Duration
	defaults  domain.CompletionOptions
}

// NewOpenAIModel creates a client for cfg.BaseURL (or the public OpenAI API when empty).
func NewOpenAIModel(cfg config.LLMConfig, httpClient *http.Client) *OpenAIModel {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		clientCfg.HTTPClient = httpClient
	}
	temperature := cfg.Temperature
	return &OpenAIModel{
		api:       openai.NewClientWithConfig(clientCfg),
		modelName: cfg.Model,
		timeout:   timeoutOrDefault(cfg.Timeout),
		defaults:  domain.CompletionOptions{Temperature: &temperature, MaxTokens: cfg.MaxTokens},
	}
}

// Complete implements domain.LanguageModel
func (m *OpenAIModel) Complete(ctx context.Context, messages []domain.Message, opts ...domain.CompletionOption) (*domain.Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	resp, err := m.api.CreateChatCompletion(ctx, m.request(messages, opts, false))
	if err != nil {
		return nil, wrapCallError(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	model := resp.Model
	if model == "" {
		model = m.modelName
	}
	return &domain.Completion{
		Content: resp.Choices[0].Message.Content,
		Model:   model,
		Usage: domain.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// Stream implements domain.LanguageModel
func (m *OpenAIModel) Stream(ctx context.Context, messages []domain.Message, opts ...domain.CompletionOption) (<-chan domain.StreamChunk, <-chan error) {
	chunks := make(chan domain.StreamChunk)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)

		ctx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()

		stream, err := m.api.CreateChatCompletionStream(ctx, m.request(messages, opts, true))
		if err != nil {
			errs <- wrapCallError(ctx, err)
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				errs <- wrapCallError(ctx, err)
				return
			}
			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}
			select {
			case chunks <- domain.StreamChunk{Content: resp.Choices[0].Delta.Content}:
			case <-ctx.Done():
				errs <- wrapCallError(ctx, ctx.Err())
				return
			}
		}

		select {
		case chunks <- domain.StreamChunk{Done: true}:
		case <-ctx.Done():
			errs <- wrapCallError(ctx, ctx.Err())
		}
	}()

	return chunks, errs
}

func (m *OpenAIModel) request(messages []domain.Message, opts []domain.CompletionOption, stream bool) openai.ChatCompletionRequest {
	o := domain.ApplyCompletionOptions(opts...)
	temperature := m.defaults.Temperature
	if o.Temperature != nil {
		temperature = o.Temperature
	}
	maxTokens := m.defaults.MaxTokens
	if o.MaxTokens > 0 {
		maxTokens = o.MaxTokens
	}

	chatMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case domain.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case domain.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		chatMsgs = append(chatMsgs, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}

	req := openai.ChatCompletionRequest{
		Model:     m.modelName,
		Messages:  chatMsgs,
		MaxTokens: maxTokens,
		Stream:    stream,
	}
	if temperature != nil {
		req.Temperature = float32(*temperature)
	}
	return req
}
