package domain

import (
	"context"
	"encoding/json"
	"math"
	"strings"
)

// QuestionStatus is a terminal bucket of the generation pipeline.
type QuestionStatus string

const (
	StatusApproved    QuestionStatus = "approved"
	StatusNeedsReview QuestionStatus = "needs_review"
	StatusRejected    QuestionStatus = "rejected"
)

const (
	DefaultKnowledgePoint = "通用"
	DefaultLanguage       = "zh"
	MaxGenerationCount    = 10
)

var languageNames = map[string]string{
	"zh": "中文",
	"en": "English",
}

// GenerationRequest describes one generation batch.
type GenerationRequest struct {
	CourseName             string       `json:"course_name"`
	KnowledgePoint         string       `json:"knowledge_point,omitempty"`
	QuestionType           QuestionType `json:"question_type"`
	Difficulty             int          `json:"difficulty"`
	Count                  int          `json:"count"`
	Language               string       `json:"language,omitempty"`
	AdditionalRequirements string       `json:"additional_requirements,omitempty"`
}

// Validate checks the request bounds before any model call.
func (r *GenerationRequest) Validate() error {
	if strings.TrimSpace(r.CourseName) == "" {
		return NewInvalidInputError("course_name is required")
	}
	if !r.QuestionType.Valid() {
		return NewInvalidInputError("unknown question_type: " + string(r.QuestionType))
	}
	if r.Difficulty < 1 || r.Difficulty > 5 {
		return NewInvalidInputError("difficulty must be between 1 and 5")
	}
	if r.Count < 1 || r.Count > MaxGenerationCount {
		return NewInvalidInputError("count must be between 1 and 10")
	}
	return nil
}

// EffectiveKnowledgePoint falls back to the general topic marker.
func (r *GenerationRequest) EffectiveKnowledgePoint() string {
	if strings.TrimSpace(r.KnowledgePoint) == "" {
		return DefaultKnowledgePoint
	}
	return r.KnowledgePoint
}

// LanguageName maps a language code to the name used in prompts.
func (r *GenerationRequest) LanguageName() string {
	lang := r.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	if name, ok := languageNames[lang]; ok {
		return name
	}
	return lang
}

// QuestionGenerator is the GenerationClient port.
type QuestionGenerator interface {
	// Generate fails as a whole; it never returns a partial batch.
	Generate(ctx context.Context, req GenerationRequest) ([]*GeneratedQuestion, error)
}

// ProcessedQuestion is a question with its terminal classification.
type ProcessedQuestion struct {
	Question         *GeneratedQuestion
	Status           QuestionStatus
	ValidationResult *ValidationResult
	ReviewResult     *ReviewResult
	// OriginalQuestion is set only when a fix was attempted.
	OriginalQuestion *GeneratedQuestion
}

// PipelineResult buckets every generated question.
type PipelineResult struct {
	Approved    []*ProcessedQuestion
	NeedsReview []*ProcessedQuestion
	Rejected    []*ProcessedQuestion
	// TotalGenerated counts questions returned by the generation call.
	TotalGenerated int
}

// Add appends pq to the bucket named by its status.
func (r *PipelineResult) Add(pq *ProcessedQuestion) {
	switch pq.Status {
	case StatusApproved:
		r.Approved = append(r.Approved, pq)
	case StatusNeedsReview:
		r.NeedsReview = append(r.NeedsReview, pq)
	default:
		r.Rejected = append(r.Rejected, pq)
	}
}

// SuccessRate is the approved share of generated questions.
func (r *PipelineResult) SuccessRate() float64 {
	if r.TotalGenerated == 0 {
		return 0
	}
	return float64(len(r.Approved)) / float64(r.TotalGenerated)
}

// ApprovedQuestions returns the approved questions in generation order.
func (r *PipelineResult) ApprovedQuestions() []*GeneratedQuestion {
	out := make([]*GeneratedQuestion, 0, len(r.Approved))
	for _, pq := range r.Approved {
		out = append(out, pq.Question)
	}
	return out
}

// PipelineSummary is the summary block of the serialized result.
type PipelineSummary struct {
	Total       int     `json:"total"`
	Approved    int     `json:"approved"`
	NeedsReview int     `json:"needs_review"`
	Rejected    int     `json:"rejected"`
	SuccessRate float64 `json:"success_rate"`
}

type approvedEntry struct {
	Question      *GeneratedQuestion `json:"question"`
	ReviewComment string             `json:"review_comment"`
}

type issueEntry struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type needsReviewEntry struct {
	Question *GeneratedQuestion `json:"question"`
	Original *GeneratedQuestion `json:"original"`
	Issues   []issueEntry       `json:"issues"`
}

type rejectedEntry struct {
	Question         *GeneratedQuestion `json:"question"`
	ValidationErrors []FieldIssue       `json:"validation_errors"`
}

// PipelineDict is the stable serialized shape consumed by the API layer.
type PipelineDict struct {
	Summary              PipelineSummary    `json:"summary"`
	ApprovedQuestions    []approvedEntry    `json:"approved_questions"`
	NeedsReviewQuestions []needsReviewEntry `json:"needs_review_questions"`
	RejectedQuestions    []rejectedEntry    `json:"rejected_questions"`
}

// ToDict builds the serialized shape. success_rate is a percentage with one decimal.
func (r *PipelineResult) ToDict() PipelineDict {
	d := PipelineDict{
		Summary: PipelineSummary{
			Total:       r.TotalGenerated,
			Approved:    len(r.Approved),
			NeedsReview: len(r.NeedsReview),
			Rejected:    len(r.Rejected),
			SuccessRate: math.Round(r.SuccessRate()*1000) / 10,
		},
		ApprovedQuestions:    make([]approvedEntry, 0, len(r.Approved)),
		NeedsReviewQuestions: make([]needsReviewEntry, 0, len(r.NeedsReview)),
		RejectedQuestions:    make([]rejectedEntry, 0, len(r.Rejected)),
	}
	for _, pq := range r.Approved {
		entry := approvedEntry{Question: pq.Question}
		if pq.ReviewResult != nil {
			entry.ReviewComment = pq.ReviewResult.Comment
		}
		d.ApprovedQuestions = append(d.ApprovedQuestions, entry)
	}
	for _, pq := range r.NeedsReview {
		entry := needsReviewEntry{Question: pq.Question, Original: pq.OriginalQuestion, Issues: []issueEntry{}}
		if pq.ReviewResult != nil {
			for _, issue := range pq.ReviewResult.Issues {
				entry.Issues = append(entry.Issues, issueEntry{Type: issue.Type, Description: issue.Description})
			}
		}
		d.NeedsReviewQuestions = append(d.NeedsReviewQuestions, entry)
	}
	for _, pq := range r.Rejected {
		entry := rejectedEntry{Question: pq.Question, ValidationErrors: []FieldIssue{}}
		if pq.ValidationResult != nil {
			entry.ValidationErrors = append(entry.ValidationErrors, pq.ValidationResult.Errors...)
		}
		d.RejectedQuestions = append(d.RejectedQuestions, entry)
	}
	return d
}

// MarshalJSON serializes the result in its dict shape.
func (r *PipelineResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToDict())
}
