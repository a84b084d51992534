package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"
	"quiz-forge/internal/repository/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const questionColumns = `id, type, stem, options, answer, explanation, difficulty,
	knowledge_point, keywords, rubric, created_by, created_at`

type questionRepository struct {
	db *sqlx.DB
}

// NewQuestionRepository creates a new question repository.
func NewQuestionRepository(db *sqlx.DB) domain.QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) SaveQuestion(ctx context.Context, q *domain.Question) error {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	m := questionFromDomain(q)
	query := `INSERT INTO questions (type, stem, options, answer, explanation, difficulty,
		knowledge_point, keywords, rubric, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`

	exec := GetExecutor(ctx, r.db)
	var id int64
	err := exec.GetContext(ctx, &id, exec.Rebind(query),
		m.Type, m.Stem, m.Options, m.Answer, m.Explanation, m.Difficulty,
		m.KnowledgePoint, m.Keywords, m.Rubric, m.CreatedBy, m.CreatedAt)
	if err != nil {
		logger.Get().Error("Failed to save question", zap.String("type", m.Type), zap.Error(err))
		return fmt.Errorf("failed to save question: %w", err)
	}
	q.ID = id
	return nil
}

func (r *questionRepository) GetQuestionByID(ctx context.Context, id int64) (*domain.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = ?`

	exec := GetExecutor(ctx, r.db)
	var m models.Question
	if err := exec.GetContext(ctx, &m, exec.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question %d: %w", id, err)
	}
	return questionToDomain(&m), nil
}
