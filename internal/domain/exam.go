package domain

import (
	"context"
	"encoding/json"
	"math"
	"time"
)

// ExamStatus is the lifecycle state of an exam.
type ExamStatus string

const (
	ExamDraft     ExamStatus = "draft"
	ExamPublished ExamStatus = "published"
	ExamClosed    ExamStatus = "closed"
)

// AttemptStatus is the lifecycle state of a student's attempt.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptAIGraded   AttemptStatus = "ai_graded"
	AttemptGraded     AttemptStatus = "graded"
)

// Question is a persisted question bank item.
type Question struct {
	ID             int64
	Type           QuestionType
	Stem           string
	Options        map[string]string
	Answer         json.RawMessage
	Explanation    string
	Difficulty     int
	KnowledgePoint string
	Keywords       []string
	Rubric         string
	CreatedBy      int64
	CreatedAt      time.Time
}

// NewQuestionFromGenerated converts an approved pipeline question for persistence.
func NewQuestionFromGenerated(g *GeneratedQuestion, createdBy int64) *Question {
	return &Question{
		Type:           g.Type,
		Stem:           g.Stem,
		Options:        g.Options,
		Answer:         g.Answer,
		Explanation:    g.Explanation,
		Difficulty:     g.Difficulty,
		KnowledgePoint: g.KnowledgePoint,
		Keywords:       g.Keywords,
		Rubric:         g.Rubric,
		CreatedBy:      createdBy,
		CreatedAt:      time.Now(),
	}
}

// Exam is a published set of weighted questions.
type Exam struct {
	ID          int64
	Title       string
	Status      ExamStatus
	TotalScore  float64
	PublishedBy int64
	CreatedAt   time.Time
}

// ExamQuestion binds a question to an exam with its weight.
type ExamQuestion struct {
	ExamID    int64
	Question  *Question
	Points    float64
	SortOrder int
}

// Attempt is one student's run through an exam.
type Attempt struct {
	ID                int64
	ExamID            int64
	StudentID         int64
	Status            AttemptStatus
	StartedAt         time.Time
	SubmittedAt       *time.Time
	TotalScore        int
	FinalScore        *float64
	IsGradedByTeacher bool
	GradedAt          *time.Time
	GradedBy          *int64
	TeacherComment    string
}

// AttemptAnswer is the student's answer to one question and its grading state.
type AttemptAnswer struct {
	ID               int64
	AttemptID        int64
	QuestionID       int64
	StudentAnswer    json.RawMessage
	IsCorrect        *bool
	Score            *int
	AIScore          *float64
	AIFeedback       string
	TeacherScore     *float64
	TeacherFeedback  string
	Feedback         string
	TimeSpentSeconds int
	UpdatedAt        time.Time
}

// RoundScore converts a fractional score to its stored integer snapshot (half away from zero).
func RoundScore(f float64) int {
	return int(math.Round(f))
}

// RecomputeScore refreshes Score and Feedback with precedence teacher > ai > previous.
func (a *AttemptAnswer) RecomputeScore() {
	switch {
	case a.TeacherScore != nil:
		s := RoundScore(*a.TeacherScore)
		a.Score = &s
	case a.AIScore != nil:
		s := RoundScore(*a.AIScore)
		a.Score = &s
	}
	switch {
	case a.TeacherFeedback != "":
		a.Feedback = a.TeacherFeedback
	case a.AIFeedback != "":
		a.Feedback = a.AIFeedback
	}
}

// SumScores totals the score snapshots; ungraded answers count as zero.
func SumScores(answers []*AttemptAnswer) int {
	total := 0
	for _, a := range answers {
		if a.Score != nil {
			total += *a.Score
		}
	}
	return total
}

// ScoreUpdate is one teacher override.
type ScoreUpdate struct {
	QuestionID      int64   `json:"question_id"`
	TeacherScore    float64 `json:"teacher_score"`
	TeacherFeedback string  `json:"teacher_feedback,omitempty"`
}

// AnswerDetail is the per-answer grading view.
type AnswerDetail struct {
	QuestionID      int64           `json:"question_id"`
	QuestionType    QuestionType    `json:"question_type"`
	StudentAnswer   json.RawMessage `json:"student_answer"`
	IsCorrect       *bool           `json:"is_correct"`
	Score           *int            `json:"score"`
	AIScore         *float64        `json:"ai_score"`
	TeacherScore    *float64        `json:"teacher_score"`
	Feedback        string          `json:"feedback"`
	AIFeedback      string          `json:"ai_feedback"`
	TeacherFeedback string          `json:"teacher_feedback"`
}

// AttemptDetail is the grading output for one attempt.
type AttemptDetail struct {
	AttemptID         int64          `json:"attempt_id"`
	ExamID            int64          `json:"exam_id"`
	StudentID         int64          `json:"student_id"`
	Status            AttemptStatus  `json:"status"`
	TotalScore        int            `json:"total_score"`
	FinalScore        *float64       `json:"final_score"`
	IsGradedByTeacher bool           `json:"is_graded_by_teacher"`
	Answers           []AnswerDetail `json:"answers"`
}

// GradeStatistics aggregates attempt scores for an exam.
type GradeStatistics struct {
	ExamID         int64   `json:"exam_id"`
	TotalAttempts  int     `json:"total_attempts"`
	SubmittedCount int     `json:"submitted_count"`
	GradedCount    int     `json:"graded_count"`
	AverageScore   float64 `json:"average_score"`
	HighestScore   float64 `json:"highest_score"`
	LowestScore    float64 `json:"lowest_score"`
	PassRate       float64 `json:"pass_rate"`
}

// ExamRepository reads exams and their weighted questions.
type ExamRepository interface {
	// GetExamByID returns nil, nil when the exam does not exist.
	GetExamByID(ctx context.Context, id int64) (*Exam, error)
	GetExamQuestions(ctx context.Context, examID int64) ([]*ExamQuestion, error)
	// CreateExam inserts the exam with its question bindings and sets exam.ID.
	CreateExam(ctx context.Context, exam *Exam, questions []*ExamQuestion) error
}

// QuestionRepository persists question bank items.
type QuestionRepository interface {
	SaveQuestion(ctx context.Context, q *Question) error
	// GetQuestionByID returns nil, nil when the question does not exist.
	GetQuestionByID(ctx context.Context, id int64) (*Question, error)
}

// AttemptRepository persists attempts and their answers.
type AttemptRepository interface {
	// GetAttemptByID returns nil, nil when the attempt does not exist.
	GetAttemptByID(ctx context.Context, id int64) (*Attempt, error)
	// GetLatestAttempt returns the newest attempt of a student on an exam, or nil, nil.
	GetLatestAttempt(ctx context.Context, examID, studentID int64) (*Attempt, error)
	ListAttemptsByExam(ctx context.Context, examID int64) ([]*Attempt, error)
	CreateAttempt(ctx context.Context, a *Attempt) error
	UpdateAttempt(ctx context.Context, a *Attempt) error

	GetAnswers(ctx context.Context, attemptID int64) ([]*AttemptAnswer, error)
	// UpsertAnswer inserts or replaces the student input for (attempt, question).
	UpsertAnswer(ctx context.Context, ans *AttemptAnswer) error
	UpdateAnswerGrading(ctx context.Context, ans *AttemptAnswer) error
}

// TransactionManager runs fn in a single transaction carried on ctx.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
