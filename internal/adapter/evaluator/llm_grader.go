package evaluator

import (
	"context"
	"fmt"
	"math"
	"strings"

	"quiz-forge/internal/domain"
	"quiz-forge/internal/llmjson"
	"quiz-forge/internal/logger"

	"go.uber.org/zap"
)

const graderSystemPrompt = "You are an experienced teacher grading student answers fairly and consistently."

var gradeSchema = llmjson.MustSchema(`{
  "type": "object",
  "required": ["score"],
  "properties": {
    "score": {"type": "number"},
    "feedback": {"type": ["string", "null"]},
    "analysis": {"type": ["string", "null"]}
  }
}`)

type gradeResponse struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
	Analysis string  `json:"analysis"`
}

// llmGrader implements domain.AnswerGrader
type llmGrader struct {
	model       domain.LanguageModel
	temperature float64
}

// NewLLMGrader creates a grader that samples at temperature.
func NewLLMGrader(model domain.LanguageModel, temperature float64) domain.AnswerGrader {
	return &llmGrader{model: model, temperature: temperature}
}

// GradeShortAnswer implements domain.AnswerGrader
func (g *llmGrader) GradeShortAnswer(ctx context.Context, req domain.ShortAnswerGradingRequest) (*domain.AIGrade, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Grade the student's answer to a short-answer question.\n\n## Question\n%s\n\n## Reference answer\n%s\n", req.Stem, req.ReferenceAnswer)
	if req.Explanation != "" {
		fmt.Fprintf(&b, "\n## Explanation\n%s\n", req.Explanation)
	}
	if req.Rubric != "" {
		fmt.Fprintf(&b, "\n## Rubric\n%s\n", req.Rubric)
	}
	if len(req.Keywords) > 0 {
		fmt.Fprintf(&b, "\n## Key points\n%s\n", strings.Join(req.Keywords, ", "))
	}
	fmt.Fprintf(&b, `
## Student answer
%s

## Grading rules
- The maximum score is %s
- Score by how well the answer matches the reference and covers the key points
- Accept different wording when the meaning is correct
- Give partial credit for partially correct answers

Respond with ONLY a JSON object:
{"score": <number between 0 and %s>, "feedback": "<short comment explaining the score>", "analysis": "<strengths and weaknesses of the answer>"}`,
		req.StudentAnswer, formatScore(req.MaxScore), formatScore(req.MaxScore))

	return g.grade(ctx, b.String(), req.MaxScore)
}

// GradeBlank implements domain.AnswerGrader
func (g *llmGrader) GradeBlank(ctx context.Context, req domain.BlankGradingRequest) (*domain.AIGrade, error) {
	prompt := fmt.Sprintf(`Grade one blank of a fill-in-the-blank question.

## Question
%s

## Blank
Blank number %d

## Correct answer
%s

## Student answer
%s

## Grading rules
- This blank is worth %s
- Accept synonyms and equivalent wording
- Tolerate minor spelling mistakes when the meaning is clear
- Partial credit is allowed

Respond with ONLY a JSON object:
{"score": <number between 0 and %s>, "feedback": "<short comment>"}`,
		req.Stem, req.BlankIndex+1, req.CorrectValue, req.StudentValue, formatScore(req.MaxScore), formatScore(req.MaxScore))

	return g.grade(ctx, prompt, req.MaxScore)
}

func (g *llmGrader) grade(ctx context.Context, prompt string, maxScore float64) (*domain.AIGrade, error) {
	l := logger.Get()
	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: graderSystemPrompt},
		{Role: domain.RoleUser, Content: prompt},
	}

	resp, err := g.model.Complete(domain.WithLLMScene(ctx, domain.SceneGrade), messages, domain.WithTemperature(g.temperature))
	if err != nil {
		l.Error("AI grading call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrGradingUnavailable, err)
	}

	var parsed gradeResponse
	if err := gradeSchema.DecodeObject(resp.Content, &parsed); err != nil {
		l.Error("AI grading response unparseable", zap.Error(err), zap.String("raw_response", resp.Content))
		return nil, fmt.Errorf("%w: %v", domain.ErrGradingUnavailable, err)
	}

	grade := &domain.AIGrade{
		Score:    clamp(parsed.Score, maxScore),
		Feedback: parsed.Feedback,
		Analysis: parsed.Analysis,
	}
	l.Debug("AI grade parsed", zap.Float64("score", grade.Score), zap.Float64("max_score", maxScore))
	return grade, nil
}

func clamp(score, maxScore float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

func formatScore(v float64) string {
	return fmt.Sprintf("%g points", math.Round(v*100)/100)
}
