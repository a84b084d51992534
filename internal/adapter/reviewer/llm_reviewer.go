// Package reviewer asks a language model to audit and repair generated questions.
package reviewer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"quiz-forge/internal/domain"
	"quiz-forge/internal/llmjson"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	reviewSystemPrompt = "You are a strict exam question reviewer who is good at finding problems in questions."
	fixSystemPrompt    = "You are a professional question editor. Correct the question according to the reported problems."
)

const reviewPrompt = `Review the quality of the following question carefully.

Question:
- Type: %s
- Stem: %s
- Options: %s
- Answer: %s
- Explanation: %s
- Knowledge point: %s
- Difficulty: %d/5

Check:
1. Factual correctness: are the content and the answer correct?
2. Answer uniqueness: for objective questions, is there exactly the required set of correct answers?
3. Clarity: are the stem and options clear and unambiguous?
4. Difficulty match: does the question match the stated difficulty?
5. Explanation: is the explanation correct and helpful?

Respond with ONLY JSON in this format:
` + "```json" + `
{
  "is_correct": true or false,
  "issues": [
    {
      "type": "fact_error | answer_ambiguous | unclear_stem | difficulty_mismatch | explanation_error | other",
      "description": "what is wrong",
      "severity": "error or warning"
    }
  ],
  "comment": "one sentence overall assessment",
  "fixed_question": null or the complete corrected question object
}
` + "```" + `

If there is no problem, issues is an empty array and is_correct is true.
If the problems can be fixed, put the complete corrected question in fixed_question.
If the problems are too serious to fix, fixed_question is null.`

const fixPrompt = `Fix the following question.

Original question:
%s

Problems found:
%s

Return the complete corrected question, keeping the original format and changing only what is wrong.
Respond with ONLY JSON in this format:
` + "```json" + `
{
  "type": "%s",
  "stem": "corrected stem",
  "options": {"A": "...", "B": "..."},
  "answer": "corrected answer",
  "explanation": "corrected explanation",
  "difficulty": %d,
  "knowledge_point": "%s"
}
` + "```"

var reviewSchema = llmjson.MustSchema(`{
  "type": "object",
  "properties": {
    "is_correct": {"type": "boolean"},
    "issues": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "type": {"type": "string"},
          "description": {"type": "string"},
          "severity": {"type": "string"}
        }
      }
    },
    "comment": {"type": ["string", "null"]},
    "fixed_question": {"type": ["object", "null"]}
  }
}`)

type reviewResponse struct {
	IsCorrect bool `json:"is_correct"`
	Issues    []struct {
		Type        string  `json:"type"`
		Description string  `json:"description"`
		Severity    *string `json:"severity"`
	} `json:"issues"`
	Comment       string          `json:"comment"`
	FixedQuestion json.RawMessage `json:"fixed_question"`
}

// ReviewedQuestion pairs a question with its latest review in ReviewBatch.
type ReviewedQuestion struct {
	Question *domain.GeneratedQuestion
	Review   *domain.ReviewResult
}

// LLMReviewer implements domain.QuestionReviewer.
type LLMReviewer struct {
	model             domain.LanguageModel
	reviewTemperature float64
	fixTemperature    float64
	concurrency       int
	logger            *zap.Logger
}

// Option configures an LLMReviewer.
type Option func(*LLMReviewer)

func WithTemperatures(review, fix float64) Option {
	return func(r *LLMReviewer) {
		r.reviewTemperature = review
		r.fixTemperature = fix
	}
}

func WithConcurrency(n int) Option {
	return func(r *LLMReviewer) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *LLMReviewer) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewLLMReviewer reviews at temperature 0.3 and fixes at 0.5 unless overridden.
func NewLLMReviewer(model domain.LanguageModel, opts ...Option) *LLMReviewer {
	r := &LLMReviewer{
		model:             model,
		reviewTemperature: 0.3,
		fixTemperature:    0.5,
		concurrency:       4,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Review implements domain.QuestionReviewer. Model and parse failures come back as
// an unapproved result carrying a review_error or parse_error issue.
func (r *LLMReviewer) Review(ctx context.Context, q *domain.GeneratedQuestion) *domain.ReviewResult {
	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: reviewSystemPrompt},
		{Role: domain.RoleUser, Content: buildReviewPrompt(q)},
	}

	resp, err := r.model.Complete(domain.WithLLMScene(ctx, domain.SceneReview), messages, domain.WithTemperature(r.reviewTemperature))
	if err != nil {
		r.logger.Warn("Review call failed", zap.Error(err), zap.String("type", string(q.Type)))
		return failedReview(domain.IssueReviewError, fmt.Sprintf("Review failed: %v", err))
	}

	result, err := parseReview(resp.Content)
	if err != nil {
		r.logger.Warn("Review response unparseable", zap.Error(err))
		return failedReview(domain.IssueParseError, fmt.Sprintf("Failed to parse review response: %v", err))
	}
	return result
}

// Fix implements domain.QuestionReviewer. It returns nil on any failure.
func (r *LLMReviewer) Fix(ctx context.Context, q *domain.GeneratedQuestion, issues []domain.ReviewIssue) *domain.GeneratedQuestion {
	original, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		r.logger.Warn("Cannot encode question for fix", zap.Error(err))
		return nil
	}

	var errorIssues []domain.ReviewIssue
	for _, issue := range issues {
		if issue.Severity == domain.SeverityError {
			errorIssues = append(errorIssues, issue)
		}
	}
	// is_correct=false with only warnings still needs something to act on.
	if len(errorIssues) == 0 {
		errorIssues = issues
	}

	questionType := q.Type
	if questionType == "" {
		questionType = domain.QuestionTypeSingle
	}
	difficulty := q.Difficulty
	if difficulty == 0 {
		difficulty = 3
	}
	prompt := fmt.Sprintf(fixPrompt, original, domain.FormatIssues(errorIssues), questionType, difficulty, q.KnowledgePoint)
	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: fixSystemPrompt},
		{Role: domain.RoleUser, Content: prompt},
	}

	resp, err := r.model.Complete(domain.WithLLMScene(ctx, domain.SceneReview), messages, domain.WithTemperature(r.fixTemperature))
	if err != nil {
		r.logger.Warn("Fix call failed", zap.Error(err))
		return nil
	}

	raw, err := llmjson.ExtractObject(resp.Content)
	if err != nil {
		r.logger.Warn("Fix response unparseable", zap.Error(err))
		return nil
	}
	var fixed domain.GeneratedQuestion
	if err := json.Unmarshal(raw, &fixed); err != nil {
		r.logger.Warn("Fix response is not a question", zap.Error(err))
		return nil
	}
	return &fixed
}

// ReviewBatch reviews every question with bounded concurrency. With autoFix, an
// unapproved question is replaced by the review's fixed_question or a Fix result
// and reviewed once more. Results keep input order.
func (r *LLMReviewer) ReviewBatch(ctx context.Context, questions []*domain.GeneratedQuestion, autoFix bool) []ReviewedQuestion {
	results := make([]ReviewedQuestion, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, q := range questions {
		i, q := i, q
		g.Go(func() error {
			current := q
			review := r.Review(gctx, current)
			if autoFix && !review.IsApproved {
				candidate := review.FixedQuestion
				if candidate == nil {
					candidate = r.Fix(gctx, current, review.Issues)
				}
				if candidate != nil {
					current = candidate
					review = r.Review(gctx, current)
				}
			}
			results[i] = ReviewedQuestion{Question: current, Review: review}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func failedReview(issueType, description string) *domain.ReviewResult {
	return &domain.ReviewResult{
		IsApproved: false,
		Issues: []domain.ReviewIssue{{
			Type:        issueType,
			Description: description,
			Severity:    domain.SeverityError,
		}},
	}
}

func parseReview(text string) (*domain.ReviewResult, error) {
	var resp reviewResponse
	if err := reviewSchema.DecodeObject(text, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReviewParse, err)
	}

	result := &domain.ReviewResult{Comment: resp.Comment, Issues: []domain.ReviewIssue{}}
	hasError := false
	for _, item := range resp.Issues {
		issue := domain.ReviewIssue{
			Type:        item.Type,
			Description: item.Description,
			Severity:    parseSeverity(item.Severity),
		}
		if issue.Type == "" {
			issue.Type = domain.IssueOther
		}
		if issue.Severity == domain.SeverityError {
			hasError = true
		}
		result.Issues = append(result.Issues, issue)
	}
	result.IsApproved = resp.IsCorrect && !hasError

	if len(resp.FixedQuestion) > 0 && string(resp.FixedQuestion) != "null" {
		var fixed domain.GeneratedQuestion
		if err := json.Unmarshal(resp.FixedQuestion, &fixed); err == nil {
			result.FixedQuestion = &fixed
		}
	}
	return result, nil
}

// parseSeverity defaults an absent severity to error; unrecognized values count as warnings.
func parseSeverity(s *string) domain.IssueSeverity {
	if s == nil {
		return domain.SeverityError
	}
	switch domain.IssueSeverity(strings.ToLower(strings.TrimSpace(*s))) {
	case domain.SeverityError:
		return domain.SeverityError
	default:
		return domain.SeverityWarning
	}
}

func buildReviewPrompt(q *domain.GeneratedQuestion) string {
	explanation := q.Explanation
	if explanation == "" {
		explanation = "none"
	}
	knowledgePoint := q.KnowledgePoint
	if knowledgePoint == "" {
		knowledgePoint = "unspecified"
	}
	difficulty := q.Difficulty
	if difficulty == 0 {
		difficulty = 3
	}
	questionType := string(q.Type)
	if questionType == "" {
		questionType = "unknown"
	}
	return fmt.Sprintf(reviewPrompt, questionType, q.Stem, formatOptions(q.Options), formatAnswer(q.Answer), explanation, knowledgePoint, difficulty)
}

func formatOptions(options map[string]string) string {
	if len(options) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("  %s: %s", k, options[k]))
	}
	return "\n" + strings.Join(lines, "\n")
}

func formatAnswer(raw json.RawMessage) string {
	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, v := range list {
			parts = append(parts, fmt.Sprint(v))
		}
		return strings.Join(parts, ", ")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if len(raw) == 0 {
		return "none"
	}
	return string(raw)
}

var _ domain.QuestionReviewer = (*LLMReviewer)(nil)
