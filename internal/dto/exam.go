package dto

import (
	"encoding/json"
	"time"

	"quiz-forge/internal/domain"
)

// AttemptResponse describes an attempt without its answers.
type AttemptResponse struct {
	ID          int64      `json:"id"`
	ExamID      int64      `json:"exam_id"`
	StudentID   int64      `json:"student_id"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

func NewAttemptResponse(a *domain.Attempt) AttemptResponse {
	return AttemptResponse{
		ID:          a.ID,
		ExamID:      a.ExamID,
		StudentID:   a.StudentID,
		Status:      string(a.Status),
		StartedAt:   a.StartedAt,
		SubmittedAt: a.SubmittedAt,
	}
}

// SaveAnswerRequest is the body of PUT /api/attempts/:id/answers.
type SaveAnswerRequest struct {
	QuestionID       int64           `json:"question_id"`
	Answer           json.RawMessage `json:"answer"`
	TimeSpentSeconds int             `json:"time_spent_seconds"`
}

// UpdateScoresRequest is the body of PUT /api/attempts/:id/scores.
type UpdateScoresRequest struct {
	Updates []domain.ScoreUpdate `json:"updates"`
}

// ConfirmGradeRequest is the body of POST /api/attempts/:id/confirm.
type ConfirmGradeRequest struct {
	FinalScore *float64 `json:"final_score"`
	Comment    string   `json:"comment"`
}

// HealthResponse reports dependency status.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
