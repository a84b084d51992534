package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"quiz-forge/internal/domain"
	"quiz-forge/internal/repository/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExamRepository_GetExamByID(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewExamRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM exams WHERE id = ?")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "total_score", "published_by", "created_at"}).
			AddRow(1, "Networking", "published", 100.0, 900, now))

	exam, err := repo.GetExamByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Networking", exam.Title)
	assert.Equal(t, domain.ExamPublished, exam.Status)
	assert.Equal(t, 100.0, exam.TotalScore)
	assert.Equal(t, int64(900), exam.PublishedBy)

	mock.ExpectQuery(regexp.QuoteMeta("FROM exams WHERE id = ?")).
		WithArgs(int64(2)).
		WillReturnError(sql.ErrNoRows)
	exam, err = repo.GetExamByID(context.Background(), 2)
	assert.NoError(t, err)
	assert.Nil(t, exam)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepository_GetExamQuestions(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewExamRepository(db)
	now := time.Now()

	cols := []string{"exam_id", "score", "sort_order", "id", "type", "stem", "options", "answer",
		"explanation", "difficulty", "knowledge_point", "keywords", "rubric", "created_by", "created_at"}
	rows := sqlmock.NewRows(cols).
		AddRow(1, 5.0, 1, 11, "single", "Which layer?", `{"A":"L3","B":"L4"}`, `"B"`, nil, 2, "osi", `["tcp"]`, nil, 900, now).
		AddRow(1, 10.0, 2, 12, "short", "Explain TCP", nil, `"reliable stream"`, "why", 3, nil, nil, "mention acks", 900, now)
	mock.ExpectQuery("FROM exam_questions eq.*JOIN questions q ON q.id = eq.question_id.*ORDER BY eq.sort_order").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	got, err := repo.GetExamQuestions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, 5.0, first.Points)
	assert.Equal(t, 1, first.SortOrder)
	assert.Equal(t, int64(11), first.Question.ID)
	assert.Equal(t, domain.QuestionTypeSingle, first.Question.Type)
	assert.Equal(t, map[string]string{"A": "L3", "B": "L4"}, first.Question.Options)
	assert.JSONEq(t, `"B"`, string(first.Question.Answer))
	assert.Equal(t, []string{"tcp"}, first.Question.Keywords)

	second := got[1]
	assert.Equal(t, domain.QuestionTypeShort, second.Question.Type)
	assert.Nil(t, second.Question.Options)
	assert.Empty(t, second.Question.Keywords)
	assert.Equal(t, "mention acks", second.Question.Rubric)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepository_CreateExam(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewExamRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO exams")+".*RETURNING id").
		WithArgs("Networking", "published", 15.0, int64(900), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exam_questions")).
		WithArgs(int64(3), int64(11), 5.0, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exam_questions")).
		WithArgs(int64(3), int64(12), 10.0, int64(2)).
		WillReturnError(errors.New("fk violation"))

	exam := &domain.Exam{Title: "Networking", Status: domain.ExamPublished, TotalScore: 15, PublishedBy: 900}
	questions := []*domain.ExamQuestion{
		{Question: &domain.Question{ID: 11}, Points: 5, SortOrder: 1},
		{Question: &domain.Question{ID: 12}, Points: 10, SortOrder: 2},
	}
	err := repo.CreateExam(context.Background(), exam, questions)
	assert.ErrorContains(t, err, "fk violation")
	assert.Equal(t, int64(3), exam.ID)
	assert.Equal(t, int64(3), questions[0].ExamID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()

	t.Run("save", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO questions")+".*RETURNING id").
			WithArgs("blank", "TCP uses a ___ handshake", nil, []byte(`["three-way"]`), nil, int64(2),
				"tcp", `["handshake"]`, nil, int64(900), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))

		q := &domain.Question{
			Type: domain.QuestionTypeBlank, Stem: "TCP uses a ___ handshake", Answer: json.RawMessage(`["three-way"]`),
			Difficulty: 2, KnowledgePoint: "tcp", Keywords: []string{"handshake"}, CreatedBy: 900,
		}
		require.NoError(t, repo.SaveQuestion(ctx, q))
		assert.Equal(t, int64(21), q.ID)
		assert.False(t, q.CreatedAt.IsZero())
	})

	t.Run("get missing", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM questions WHERE id = ?")).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)
		q, err := repo.GetQuestionByID(ctx, 99)
		assert.NoError(t, err)
		assert.Nil(t, q)
	})

	t.Run("get failure", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM questions WHERE id = ?")).
			WithArgs(int64(5)).
			WillReturnError(errors.New("connection reset"))
		_, err := repo.GetQuestionByID(ctx, 5)
		assert.ErrorContains(t, err, "connection reset")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLLMLogRepository(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewLLMLogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO llm_call_logs")+".*RETURNING id").
		WithArgs("req-1", "grade", "openai", "gpt-4o-mini", int64(120), int64(40), int64(850), "failed",
			"rate limited", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	entry := &domain.LLMCallLog{
		RequestID: "req-1", Scene: domain.SceneGrade, Provider: "openai", Model: "gpt-4o-mini",
		PromptTokens: 120, CompletionTokens: 40, LatencyMs: 850, Status: domain.LLMCallFailed,
		ErrorMessage: "rate limited",
	}
	require.NoError(t, repo.SaveLLMCallLog(context.Background(), entry))
	assert.Equal(t, int64(1), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionConverters(t *testing.T) {
	now := time.Now()
	q := &domain.Question{
		ID: 7, Type: domain.QuestionTypeMultiple, Stem: "Pick transport protocols",
		Options: map[string]string{"A": "TCP", "B": "IP", "C": "UDP"},
		Answer:  json.RawMessage(`["A","C"]`), Explanation: "IP is network layer",
		Difficulty: 3, Keywords: []string{"transport"}, CreatedBy: 900, CreatedAt: now,
	}

	m := questionFromDomain(q)
	assert.Equal(t, "multiple", m.Type)
	assert.True(t, m.Explanation.Valid)
	assert.False(t, m.KnowledgePoint.Valid)
	assert.Equal(t, q, questionToDomain(m))

	empty := questionFromDomain(&domain.Question{Type: domain.QuestionTypeShort})
	assert.Equal(t, types.JSONText("null"), empty.Answer)
}

func TestAnswerConverters(t *testing.T) {
	score := 3
	ai := 2.6
	wrong := false
	a := &domain.AttemptAnswer{
		ID: 1, AttemptID: 10, QuestionID: 2, StudentAnswer: json.RawMessage(`["x","y"]`),
		IsCorrect: &wrong, Score: &score, AIScore: &ai, AIFeedback: "close", Feedback: "1/2 blanks correct",
	}
	m := answerFromDomain(a)
	assert.True(t, m.StudentAnswer.Valid)
	assert.False(t, m.TeacherScore.Valid)
	assert.Equal(t, a, answerToDomain(m))

	assert.Nil(t, answerToDomain(&models.AttemptAnswer{}).StudentAnswer)
}
