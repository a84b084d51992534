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

const (
	attemptColumns = `id, exam_id, student_id, status, started_at, submitted_at, total_score,
		final_score, is_graded_by_teacher, graded_at, graded_by, teacher_comment`
	answerColumns = `id, attempt_id, question_id, student_answer, is_correct, score, ai_score,
		ai_feedback, teacher_score, teacher_feedback, feedback, time_spent_seconds, updated_at`
)

type attemptRepository struct {
	db *sqlx.DB
}

// NewAttemptRepository creates a new attempt repository.
func NewAttemptRepository(db *sqlx.DB) domain.AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) GetAttemptByID(ctx context.Context, id int64) (*domain.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM attempts WHERE id = ?`

	exec := GetExecutor(ctx, r.db)
	var m models.Attempt
	if err := exec.GetContext(ctx, &m, exec.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attempt %d: %w", id, err)
	}
	return attemptToDomain(&m), nil
}

func (r *attemptRepository) GetLatestAttempt(ctx context.Context, examID, studentID int64) (*domain.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM attempts
		WHERE exam_id = ? AND student_id = ?
		ORDER BY id DESC LIMIT 1`

	exec := GetExecutor(ctx, r.db)
	var m models.Attempt
	if err := exec.GetContext(ctx, &m, exec.Rebind(query), examID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest attempt: %w", err)
	}
	return attemptToDomain(&m), nil
}

func (r *attemptRepository) ListAttemptsByExam(ctx context.Context, examID int64) ([]*domain.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM attempts WHERE exam_id = ? ORDER BY id`

	exec := GetExecutor(ctx, r.db)
	var rows []models.Attempt
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query), examID); err != nil {
		return nil, fmt.Errorf("failed to list attempts of exam %d: %w", examID, err)
	}
	out := make([]*domain.Attempt, 0, len(rows))
	for i := range rows {
		out = append(out, attemptToDomain(&rows[i]))
	}
	return out, nil
}

func (r *attemptRepository) CreateAttempt(ctx context.Context, a *domain.Attempt) error {
	if a.StartedAt.IsZero() {
		a.StartedAt = time.Now()
	}
	m := attemptFromDomain(a)
	query := `INSERT INTO attempts (exam_id, student_id, status, started_at, total_score, is_graded_by_teacher)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`

	exec := GetExecutor(ctx, r.db)
	var id int64
	if err := exec.GetContext(ctx, &id, exec.Rebind(query),
		m.ExamID, m.StudentID, m.Status, m.StartedAt, m.TotalScore, m.IsGradedByTeacher); err != nil {
		logger.Get().Error("Failed to create attempt",
			zap.Int64("exam_id", a.ExamID), zap.Int64("student_id", a.StudentID), zap.Error(err))
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	a.ID = id
	return nil
}

func (r *attemptRepository) UpdateAttempt(ctx context.Context, a *domain.Attempt) error {
	m := attemptFromDomain(a)
	query := `UPDATE attempts SET status = ?, submitted_at = ?, total_score = ?, final_score = ?,
		is_graded_by_teacher = ?, graded_at = ?, graded_by = ?, teacher_comment = ?
		WHERE id = ?`

	exec := GetExecutor(ctx, r.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(query),
		m.Status, m.SubmittedAt, m.TotalScore, m.FinalScore,
		m.IsGradedByTeacher, m.GradedAt, m.GradedBy, m.TeacherComment, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update attempt %d: %w", a.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("attempt %d not found", a.ID)
	}
	return nil
}

func (r *attemptRepository) GetAnswers(ctx context.Context, attemptID int64) ([]*domain.AttemptAnswer, error) {
	query := `SELECT ` + answerColumns + ` FROM attempt_answers WHERE attempt_id = ? ORDER BY id`

	exec := GetExecutor(ctx, r.db)
	var rows []models.AttemptAnswer
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query), attemptID); err != nil {
		return nil, fmt.Errorf("failed to get answers of attempt %d: %w", attemptID, err)
	}
	out := make([]*domain.AttemptAnswer, 0, len(rows))
	for i := range rows {
		out = append(out, answerToDomain(&rows[i]))
	}
	return out, nil
}

// UpsertAnswer writes only the student input; grading columns of an existing row are kept.
func (r *attemptRepository) UpsertAnswer(ctx context.Context, ans *domain.AttemptAnswer) error {
	ans.UpdatedAt = time.Now()
	m := answerFromDomain(ans)
	query := `INSERT INTO attempt_answers (attempt_id, question_id, student_answer, time_spent_seconds, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (attempt_id, question_id) DO UPDATE SET
			student_answer = excluded.student_answer,
			time_spent_seconds = excluded.time_spent_seconds,
			updated_at = excluded.updated_at
		RETURNING id`

	exec := GetExecutor(ctx, r.db)
	var id int64
	if err := exec.GetContext(ctx, &id, exec.Rebind(query),
		m.AttemptID, m.QuestionID, m.StudentAnswer, m.TimeSpentSeconds, m.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save answer for question %d: %w", ans.QuestionID, err)
	}
	ans.ID = id
	return nil
}

func (r *attemptRepository) UpdateAnswerGrading(ctx context.Context, ans *domain.AttemptAnswer) error {
	ans.UpdatedAt = time.Now()
	m := answerFromDomain(ans)
	query := `UPDATE attempt_answers SET is_correct = ?, score = ?, ai_score = ?, ai_feedback = ?,
		teacher_score = ?, teacher_feedback = ?, feedback = ?, updated_at = ?
		WHERE attempt_id = ? AND question_id = ?`

	exec := GetExecutor(ctx, r.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(query),
		m.IsCorrect, m.Score, m.AIScore, m.AIFeedback,
		m.TeacherScore, m.TeacherFeedback, m.Feedback, m.UpdatedAt,
		m.AttemptID, m.QuestionID)
	if err != nil {
		return fmt.Errorf("failed to update grading of question %d: %w", ans.QuestionID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("answer for question %d in attempt %d not found", ans.QuestionID, ans.AttemptID)
	}
	return nil
}
