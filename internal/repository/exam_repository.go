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

type examRepository struct {
	db *sqlx.DB
}

// NewExamRepository creates a new exam repository.
func NewExamRepository(db *sqlx.DB) domain.ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) GetExamByID(ctx context.Context, id int64) (*domain.Exam, error) {
	query := `SELECT id, title, status, total_score, published_by, created_at FROM exams WHERE id = ?`

	exec := GetExecutor(ctx, r.db)
	var m models.Exam
	if err := exec.GetContext(ctx, &m, exec.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exam %d: %w", id, err)
	}
	return examToDomain(&m), nil
}

// GetExamQuestions returns the exam's questions in sort order.
func (r *examRepository) GetExamQuestions(ctx context.Context, examID int64) ([]*domain.ExamQuestion, error) {
	query := `SELECT eq.exam_id, eq.score, eq.sort_order,
		q.id, q.type, q.stem, q.options, q.answer, q.explanation, q.difficulty,
		q.knowledge_point, q.keywords, q.rubric, q.created_by, q.created_at
		FROM exam_questions eq
		JOIN questions q ON q.id = eq.question_id
		WHERE eq.exam_id = ?
		ORDER BY eq.sort_order, q.id`

	exec := GetExecutor(ctx, r.db)
	var rows []models.ExamQuestion
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query), examID); err != nil {
		return nil, fmt.Errorf("failed to get questions of exam %d: %w", examID, err)
	}

	out := make([]*domain.ExamQuestion, 0, len(rows))
	for i := range rows {
		out = append(out, &domain.ExamQuestion{
			ExamID:    rows[i].ExamID,
			Question:  questionToDomain(&rows[i].Question),
			Points:    rows[i].Points,
			SortOrder: rows[i].SortOrder,
		})
	}
	return out, nil
}

// CreateExam must run inside a transaction to keep the exam and its bindings together.
func (r *examRepository) CreateExam(ctx context.Context, exam *domain.Exam, questions []*domain.ExamQuestion) error {
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = time.Now()
	}
	exec := GetExecutor(ctx, r.db)

	insertExam := `INSERT INTO exams (title, status, total_score, published_by, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`
	var id int64
	if err := exec.GetContext(ctx, &id, exec.Rebind(insertExam),
		exam.Title, string(exam.Status), exam.TotalScore, exam.PublishedBy, exam.CreatedAt); err != nil {
		logger.Get().Error("Failed to create exam", zap.String("title", exam.Title), zap.Error(err))
		return fmt.Errorf("failed to create exam: %w", err)
	}
	exam.ID = id

	bind := exec.Rebind(`INSERT INTO exam_questions (exam_id, question_id, score, sort_order) VALUES (?, ?, ?, ?)`)
	for _, eq := range questions {
		if eq.Question == nil {
			return fmt.Errorf("exam question without question")
		}
		if _, err := exec.ExecContext(ctx, bind, id, eq.Question.ID, eq.Points, eq.SortOrder); err != nil {
			return fmt.Errorf("failed to bind question %d to exam %d: %w", eq.Question.ID, id, err)
		}
		eq.ExamID = id
	}
	return nil
}
