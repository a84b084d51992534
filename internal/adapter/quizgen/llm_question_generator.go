package quizgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"quiz-forge/internal/domain"
	"quiz-forge/internal/llmjson"

	"go.uber.org/zap"
)

// SystemPrompt is the persona sent with every generation request.
const SystemPrompt = "You are a professional exam question writer who produces accurate, unambiguous, high-quality test questions."

const promptHeader = `Generate {{.Count}} {{.Kind}} question(s) for the following requirements.

Course: {{.Course}}
Knowledge point: {{.KnowledgePoint}}
Difficulty: {{.Difficulty}}/5 (1 easiest, 5 hardest)
Language: {{.Language}}
{{- if .Additional}}
Additional requirements: {{.Additional}}
{{- end}}

Respond with ONLY a JSON array in exactly this format:
` + "```json\n"

var generationTemplates = map[domain.QuestionType]*template.Template{
	domain.QuestionTypeSingle: template.Must(template.New("single").Parse(promptHeader + `[
  {
    "type": "single",
    "stem": "question text",
    "options": {"A": "option A", "B": "option B", "C": "option C", "D": "option D"},
    "answer": "the correct option key (A/B/C/D)",
    "explanation": "why the answer is correct",
    "difficulty": {{.Difficulty}},
    "knowledge_point": "{{.KnowledgePoint}}"
  }
]
` + "```" + `

Rules:
1. The question must be accurate and unambiguous.
2. Distractors must be plausible but exactly one option is correct.
3. The explanation must justify the correct answer.
4. Match the requested difficulty.
5. The output must be a valid JSON array.`)),

	domain.QuestionTypeMultiple: template.Must(template.New("multiple").Parse(promptHeader + `[
  {
    "type": "multiple",
    "stem": "question text that states it is a multiple-answer question",
    "options": {"A": "option A", "B": "option B", "C": "option C", "D": "option D"},
    "answer": ["first correct key", "second correct key"],
    "explanation": "why each correct option is correct",
    "difficulty": {{.Difficulty}},
    "knowledge_point": "{{.KnowledgePoint}}"
  }
]
` + "```" + `

Rules:
1. Two or three options are correct, never all of them.
2. The stem must say that more than one answer applies.
3. The explanation must cover every correct option.`)),

	domain.QuestionTypeBlank: template.Must(template.New("blank").Parse(promptHeader + `[
  {
    "type": "blank",
    "stem": "question text using ____ for each blank",
    "options": null,
    "answer": ["first blank", "second blank"],
    "explanation": "explanation of the answers",
    "difficulty": {{.Difficulty}},
    "knowledge_point": "{{.KnowledgePoint}}"
  }
]
` + "```" + `

Rules:
1. Mark every blank with ____ (four underscores).
2. The answer array follows the order of the blanks.
3. Each blank answer must be short and precise.`)),

	domain.QuestionTypeShort: template.Must(template.New("short").Parse(promptHeader + `[
  {
    "type": "short",
    "stem": "question text",
    "options": null,
    "answer": "complete reference answer",
    "explanation": "explanation and grading points",
    "difficulty": {{.Difficulty}},
    "knowledge_point": "{{.KnowledgePoint}}",
    "keywords": ["keyword 1", "keyword 2", "keyword 3"],
    "rubric": "grading rubric, e.g. 2 points for mentioning keyword 1 ..."
  }
]
` + "```" + `

Rules:
1. The question must be clear and the reference answer complete.
2. Provide grading keywords and a rubric.
3. The explanation must be detailed.`)),
}

var typeKinds = map[domain.QuestionType]string{
	domain.QuestionTypeSingle:   "single-choice",
	domain.QuestionTypeMultiple: "multiple-choice",
	domain.QuestionTypeBlank:    "fill-in-the-blank",
	domain.QuestionTypeShort:    "short-answer",
}

type promptData struct {
	Count          int
	Kind           string
	Course         string
	KnowledgePoint string
	Difficulty     int
	Language       string
	Additional     string
}

// EventType tags a streaming generation event.
type EventType string

const (
	EventChunk    EventType = "chunk"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is emitted by GenerateStream.
type Event struct {
	Type      EventType                   `json:"type"`
	Content   string                      `json:"content,omitempty"`
	Questions []*domain.GeneratedQuestion `json:"questions,omitempty"`
	Message   string                      `json:"message,omitempty"`
}

// LLMQuestionGenerator implements domain.QuestionGenerator on top of a language model.
type LLMQuestionGenerator struct {
	model       domain.LanguageModel
	temperature float64
	logger      *zap.Logger
}

// NewLLMQuestionGenerator creates a generator sampling at temperature.
func NewLLMQuestionGenerator(model domain.LanguageModel, temperature float64, logger *zap.Logger) *LLMQuestionGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMQuestionGenerator{model: model, temperature: temperature, logger: logger}
}

// BuildPrompt renders the type-specific instruction for req.
func BuildPrompt(req domain.GenerationRequest) (string, error) {
	tmpl, ok := generationTemplates[req.QuestionType]
	if !ok {
		return "", domain.NewInvalidInputError("unknown question_type: " + string(req.QuestionType))
	}
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, promptData{
		Count:          req.Count,
		Kind:           typeKinds[req.QuestionType],
		Course:         req.CourseName,
		KnowledgePoint: req.EffectiveKnowledgePoint(),
		Difficulty:     req.Difficulty,
		Language:       req.LanguageName(),
		Additional:     strings.TrimSpace(req.AdditionalRequirements),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render generation prompt: %w", err)
	}
	return buf.String(), nil
}

// Generate implements domain.QuestionGenerator. Any model or parse failure fails the
// whole batch with a GENERATION_FAILED error.
func (g *LLMQuestionGenerator) Generate(ctx context.Context, req domain.GenerationRequest) ([]*domain.GeneratedQuestion, error) {
	messages, err := g.messages(req)
	if err != nil {
		return nil, err
	}

	ctx = domain.WithLLMScene(ctx, domain.SceneGenerate)
	g.logger.Info("Generating questions",
		zap.String("course", req.CourseName),
		zap.String("type", string(req.QuestionType)),
		zap.Int("count", req.Count),
		zap.Int("difficulty", req.Difficulty))

	resp, err := g.model.Complete(ctx, messages, domain.WithTemperature(g.temperature))
	if err != nil {
		g.logger.Error("Generation call failed", zap.Error(err))
		return nil, domain.NewGenerationError(err)
	}

	questions, err := ParseQuestions(resp.Content, req)
	if err != nil {
		g.logger.Error("Failed to parse generated questions", zap.Error(err))
		return nil, domain.NewGenerationError(err)
	}
	g.logger.Info("Questions generated", zap.Int("requested", req.Count), zap.Int("generated", len(questions)))
	return questions, nil
}

// GenerateStream relays model output as chunk events and finishes with exactly one
// complete or error event. The returned channel is closed afterwards, once the
// model stream has stopped. Cancelling ctx ends the stream early.
func (g *LLMQuestionGenerator) GenerateStream(ctx context.Context, req domain.GenerationRequest) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		emit := func(ev Event) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		messages, err := g.messages(req)
		if err != nil {
			emit(Event{Type: EventError, Message: err.Error()})
			return
		}

		chunks, errs := g.model.Stream(domain.WithLLMScene(ctx, domain.SceneGenerate), messages, domain.WithTemperature(g.temperature))
		defer func() {
			// The producer selects on ctx, so after cancel it drops out promptly.
			cancel()
			for range chunks {
			}
		}()
		var full strings.Builder
		for chunk := range chunks {
			if chunk.Done || chunk.Content == "" {
				continue
			}
			full.WriteString(chunk.Content)
			if !emit(Event{Type: EventChunk, Content: chunk.Content}) {
				return
			}
		}
		if err := <-errs; err != nil {
			g.logger.Error("Generation stream failed", zap.Error(err))
			emit(Event{Type: EventError, Message: err.Error()})
			return
		}

		questions, err := ParseQuestions(full.String(), req)
		if err != nil {
			emit(Event{Type: EventError, Message: err.Error()})
			return
		}
		emit(Event{Type: EventComplete, Questions: questions})
	}()

	return events
}

func (g *LLMQuestionGenerator) messages(req domain.GenerationRequest) ([]domain.Message, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}
	return []domain.Message{
		{Role: domain.RoleSystem, Content: SystemPrompt},
		{Role: domain.RoleUser, Content: prompt},
	}, nil
}

// ParseQuestions extracts the question list from model text and backfills
// type, difficulty and knowledge point from req.
func ParseQuestions(text string, req domain.GenerationRequest) ([]*domain.GeneratedQuestion, error) {
	items, err := llmjson.ExtractList(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationParse, err)
	}

	questions := make([]*domain.GeneratedQuestion, 0, len(items))
	for i, item := range items {
		var q domain.GeneratedQuestion
		if err := json.Unmarshal(item, &q); err != nil {
			return nil, fmt.Errorf("%w: item %d is not a question object: %v", domain.ErrGenerationParse, i, err)
		}
		if q.Type == "" {
			q.Type = req.QuestionType
		}
		if !q.DifficultyPresent() {
			q.Difficulty = req.Difficulty
		}
		if q.KnowledgePoint == "" {
			q.KnowledgePoint = req.EffectiveKnowledgePoint()
		}
		questions = append(questions, &q)
	}
	return questions, nil
}

var _ domain.QuestionGenerator = (*LLMQuestionGenerator)(nil)
