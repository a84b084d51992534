package domain

import "context"

// NoAnswerFeedback is recorded for empty student input.
const NoAnswerFeedback = "No answer submitted"

// PendingManualFeedback is recorded when AI grading could not complete.
const PendingManualFeedback = "AI grading unavailable, pending manual grading"

// ShortAnswerGradingRequest carries everything the AI grader sees for a short answer.
type ShortAnswerGradingRequest struct {
	QuestionID      int64
	Stem            string
	ReferenceAnswer string
	Rubric          string
	Explanation     string
	Keywords        []string
	StudentAnswer   string
	MaxScore        float64
}

// BlankGradingRequest asks for a partial score on one blank.
type BlankGradingRequest struct {
	QuestionID   int64
	Stem         string
	BlankIndex   int
	CorrectValue string
	StudentValue string
	MaxScore     float64
}

// AIGrade is a judgment returned by the AI grader, already clamped to [0, MaxScore].
type AIGrade struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
	Analysis string  `json:"analysis,omitempty"`
}

// AnswerGrader is the AI grading capability.
type AnswerGrader interface {
	GradeShortAnswer(ctx context.Context, req ShortAnswerGradingRequest) (*AIGrade, error)
	GradeBlank(ctx context.Context, req BlankGradingRequest) (*AIGrade, error)
}
