package domain

import (
	"context"
	"time"
)

// Message roles understood by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn sent to the language model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TokenUsage reports token accounting for one completion.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the result of a synchronous completion call.
type Completion struct {
	Content string
	Model   string
	Usage   TokenUsage
}

// StreamChunk is one incremental fragment. Done marks the final chunk.
type StreamChunk struct {
	Content string
	Done    bool
}

// CompletionOptions are per-call sampling settings. Zero values use provider defaults.
type CompletionOptions struct {
	Temperature *float64
	MaxTokens   int
}

// CompletionOption mutates CompletionOptions.
type CompletionOption func(*CompletionOptions)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) CompletionOption {
	return func(o *CompletionOptions) { o.Temperature = &t }
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) CompletionOption {
	return func(o *CompletionOptions) { o.MaxTokens = n }
}

// ApplyCompletionOptions folds opts into a CompletionOptions value.
func ApplyCompletionOptions(opts ...CompletionOption) CompletionOptions {
	var o CompletionOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// LanguageModel is the abstracted language-model capability.
type LanguageModel interface {
	Complete(ctx context.Context, messages []Message, opts ...CompletionOption) (*Completion, error)
	// Stream delivers fragments on the first channel, which is closed after the Done chunk
	// or on failure. At most one error is sent on the second channel.
	Stream(ctx context.Context, messages []Message, opts ...CompletionOption) (<-chan StreamChunk, <-chan error)
}

// LLMScene tags what a model call was used for.
type LLMScene string

const (
	SceneGenerate LLMScene = "generate"
	SceneReview   LLMScene = "review"
	SceneGrade    LLMScene = "grade"
	SceneOther    LLMScene = "other"
)

// LLMCallStatus is the outcome of a logged model call.
type LLMCallStatus string

const (
	LLMCallSuccess LLMCallStatus = "success"
	LLMCallFailed  LLMCallStatus = "failed"
	LLMCallTimeout LLMCallStatus = "timeout"
)

// LLMCallLog records one model call for monitoring.
type LLMCallLog struct {
	ID               int64
	RequestID        string
	Scene            LLMScene
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMs        int64
	Status           LLMCallStatus
	ErrorMessage     string
	RequestSummary   string
	CreatedAt        time.Time
}

// LLMLogRepository persists model call logs.
type LLMLogRepository interface {
	SaveLLMCallLog(ctx context.Context, entry *LLMCallLog) error
}

type sceneKey struct{}

// WithLLMScene tags ctx so model calls made with it are logged under scene.
func WithLLMScene(ctx context.Context, scene LLMScene) context.Context {
	return context.WithValue(ctx, sceneKey{}, scene)
}

// LLMSceneFrom returns the scene carried by ctx, or SceneOther.
func LLMSceneFrom(ctx context.Context) LLMScene {
	if scene, ok := ctx.Value(sceneKey{}).(LLMScene); ok {
		return scene
	}
	return SceneOther
}
