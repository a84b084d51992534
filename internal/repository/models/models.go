package models

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Question is a row of questions.
type Question struct {
	ID             int64          `db:"id"`
	Type           string         `db:"type"`
	Stem           string         `db:"stem"`
	Options        StringMap      `db:"options"`
	Answer         types.JSONText `db:"answer"`
	Explanation    sql.NullString `db:"explanation"`
	Difficulty     int            `db:"difficulty"`
	KnowledgePoint sql.NullString `db:"knowledge_point"`
	Keywords       StringSlice    `db:"keywords"`
	Rubric         sql.NullString `db:"rubric"`
	CreatedBy      int64          `db:"created_by"`
	CreatedAt      time.Time      `db:"created_at"`
}

// Exam is a row of exams.
type Exam struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Status      string    `db:"status"`
	TotalScore  float64   `db:"total_score"`
	PublishedBy int64     `db:"published_by"`
	CreatedAt   time.Time `db:"created_at"`
}

// ExamQuestion is an exam_questions row joined with its question.
type ExamQuestion struct {
	ExamID    int64   `db:"exam_id"`
	Points    float64 `db:"score"`
	SortOrder int     `db:"sort_order"`
	Question
}

// Attempt is a row of attempts.
type Attempt struct {
	ID                int64           `db:"id"`
	ExamID            int64           `db:"exam_id"`
	StudentID         int64           `db:"student_id"`
	Status            string          `db:"status"`
	StartedAt         time.Time       `db:"started_at"`
	SubmittedAt       sql.NullTime    `db:"submitted_at"`
	TotalScore        int             `db:"total_score"`
	FinalScore        sql.NullFloat64 `db:"final_score"`
	IsGradedByTeacher bool            `db:"is_graded_by_teacher"`
	GradedAt          sql.NullTime    `db:"graded_at"`
	GradedBy          sql.NullInt64   `db:"graded_by"`
	TeacherComment    sql.NullString  `db:"teacher_comment"`
}

// AttemptAnswer is a row of attempt_answers.
type AttemptAnswer struct {
	ID               int64              `db:"id"`
	AttemptID        int64              `db:"attempt_id"`
	QuestionID       int64              `db:"question_id"`
	StudentAnswer    types.NullJSONText `db:"student_answer"`
	IsCorrect        sql.NullBool       `db:"is_correct"`
	Score            sql.NullInt64      `db:"score"`
	AIScore          sql.NullFloat64    `db:"ai_score"`
	AIFeedback       sql.NullString     `db:"ai_feedback"`
	TeacherScore     sql.NullFloat64    `db:"teacher_score"`
	TeacherFeedback  sql.NullString     `db:"teacher_feedback"`
	Feedback         sql.NullString     `db:"feedback"`
	TimeSpentSeconds int                `db:"time_spent_seconds"`
	UpdatedAt        time.Time          `db:"updated_at"`
}

// LLMCallLog is a row of llm_call_logs.
type LLMCallLog struct {
	ID               int64          `db:"id"`
	RequestID        string         `db:"request_id"`
	Scene            string         `db:"scene"`
	Provider         string         `db:"provider"`
	Model            string         `db:"model"`
	PromptTokens     int            `db:"prompt_tokens"`
	CompletionTokens int            `db:"completion_tokens"`
	LatencyMs        int64          `db:"latency_ms"`
	Status           string         `db:"status"`
	ErrorMessage     sql.NullString `db:"error_message"`
	RequestSummary   sql.NullString `db:"request_summary"`
	CreatedAt        time.Time      `db:"created_at"`
}
