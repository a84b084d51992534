package repository

import (
	"context"
	"fmt"
	"time"

	"quiz-forge/internal/domain"
	"quiz-forge/internal/util"

	"github.com/jmoiron/sqlx"
)

type llmLogRepository struct {
	db *sqlx.DB
}

// NewLLMLogRepository creates a repository for model call logs.
func NewLLMLogRepository(db *sqlx.DB) domain.LLMLogRepository {
	return &llmLogRepository{db: db}
}

func (r *llmLogRepository) SaveLLMCallLog(ctx context.Context, entry *domain.LLMCallLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	query := `INSERT INTO llm_call_logs (request_id, scene, provider, model, prompt_tokens,
		completion_tokens, latency_ms, status, error_message, request_summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`

	var id int64
	err := r.db.GetContext(ctx, &id, r.db.Rebind(query),
		entry.RequestID, string(entry.Scene), entry.Provider, entry.Model,
		entry.PromptTokens, entry.CompletionTokens, entry.LatencyMs, string(entry.Status),
		util.StringToNullString(entry.ErrorMessage), util.StringToNullString(entry.RequestSummary), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save llm call log: %w", err)
	}
	entry.ID = id
	return nil
}
