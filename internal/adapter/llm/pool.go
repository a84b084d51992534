package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"quiz-forge/internal/config"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"

	"github.com/tmc/langchaingo/llms/ollama"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	ClientLangchain = "langchain"
	ClientNative    = "native"
)

// Base URLs of the OpenAI-compatible providers.
var defaultBaseURLs = map[string]string{
	"deepseek": "https://api.deepseek.com",
	"qwen":     "https://dashscope.aliyuncs.com/compatible-mode/v1",
	"glm":      "https://open.bigmodel.cn/api/paas/v4",
	"ollama":   "http://localhost:11434",
}

var defaultModels = map[string]string{
	"deepseek": "deepseek-chat",
	"qwen":     "qwen-plus",
	"glm":      "glm-4-flash",
	"openai":   "gpt-4o-mini",
	"ollama":   "qwen3:0.6b",
}

// Factory builds a capability client for one provider configuration.
type Factory func(cfg config.LLMConfig) (domain.LanguageModel, error)

// Resolve fills provider defaults for base URL and model.
func Resolve(cfg config.LLMConfig) config.LLMConfig {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURLs[cfg.Provider]
	}
	if cfg.Model == "" {
		cfg.Model = defaultModels[cfg.Provider]
	}
	if cfg.Client == "" {
		cfg.Client = ClientLangchain
	}
	return cfg
}

// NewModel constructs a client for cfg without pooling.
func NewModel(cfg config.LLMConfig) (domain.LanguageModel, error) {
	cfg = Resolve(cfg)
	httpClient := &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)}

	if cfg.Provider == "ollama" {
		model, err := ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return NewLangchainModel(model, cfg), nil
	}

	if _, known := defaultModels[cfg.Provider]; !known {
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for provider %q", cfg.Provider)
	}

	switch cfg.Client {
	case ClientNative:
		return NewOpenAIModel(cfg, httpClient), nil
	case ClientLangchain:
		opts := []lcopenai.Option{
			lcopenai.WithToken(cfg.APIKey),
			lcopenai.WithModel(cfg.Model),
			lcopenai.WithHTTPClient(httpClient),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, lcopenai.WithBaseURL(cfg.BaseURL))
		}
		model, err := lcopenai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai-compatible client: %w", err)
		}
		return NewLangchainModel(model, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM client: %q", cfg.Client)
	}
}

// Pool hands out one client per provider configuration and reuses it across calls.
type Pool struct {
	mu      sync.RWMutex
	clients map[string]domain.LanguageModel
	group   singleflight.Group
	factory Factory
}

// NewPool creates a pool. A nil factory uses NewModel.
func NewPool(factory Factory) *Pool {
	if factory == nil {
		factory = NewModel
	}
	return &Pool{clients: make(map[string]domain.LanguageModel), factory: factory}
}

// Get returns the pooled client for cfg, constructing it at most once even under concurrent calls.
func (p *Pool) Get(cfg config.LLMConfig) (domain.LanguageModel, error) {
	cfg = Resolve(cfg)
	key := poolKey(cfg)

	p.mu.RLock()
	client, ok := p.clients[key]
	p.mu.RUnlock()
	if ok {
		return client, nil
	}

	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		p.mu.RLock()
		existing, ok := p.clients[key]
		p.mu.RUnlock()
		if ok {
			return existing, nil
		}

		created, err := p.factory(cfg)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.clients[key] = created
		p.mu.Unlock()
		logger.Get().Info("LLM client created",
			zap.String("provider", cfg.Provider),
			zap.String("client", cfg.Client),
			zap.String("model", cfg.Model))
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(domain.LanguageModel), nil
}

// Len reports the number of pooled clients.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.clients)
}

func poolKey(cfg config.LLMConfig) string {
	sum := sha256.Sum256([]byte(cfg.APIKey))
	return strings.Join([]string{
		cfg.Provider,
		cfg.Client,
		cfg.BaseURL,
		cfg.Model,
		hex.EncodeToString(sum[:8]),
		cfg.Timeout.String(),
	}, "|")
}
