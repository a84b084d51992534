package service

import (
	"encoding/json"
	"sync"
	"testing"

	"quiz-forge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseQuestion(t *testing.T, raw string) *domain.GeneratedQuestion {
	t.Helper()
	var q domain.GeneratedQuestion
	require.NoError(t, json.Unmarshal([]byte(raw), &q))
	return &q
}

func errorFields(r *domain.ValidationResult) []string {
	fields := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		fields = append(fields, e.Field)
	}
	return fields
}

func TestValidate_SingleChoiceAnswerMembership(t *testing.T) {
	options := `{"A": "Paris", "B": "Rome", "C": "Berlin", "D": "Madrid"}`
	for _, answer := range []string{"A", "b", " c ", "D"} {
		q := parseQuestion(t, `{"type": "single", "stem": "What is the capital of France?", "options": `+options+`, "answer": "`+answer+`", "explanation": "Paris is the capital and largest city of France."}`)
		result := NewStructuralValidator().Validate(q)
		assert.True(t, result.IsValid, "answer %q should be valid: %v", answer, result.Errors)
	}

	for _, answer := range []string{"E", "Z", "AB"} {
		q := parseQuestion(t, `{"type": "single", "stem": "What is the capital of France?", "options": `+options+`, "answer": "`+answer+`"}`)
		result := NewStructuralValidator().Validate(q)
		assert.False(t, result.IsValid)
		assert.Equal(t, []string{"answer"}, errorFields(result))
	}
}

func TestValidate_Table(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantValid    bool
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:       "missing required fields",
			raw:        `{"options": {"A": "x"}}`,
			wantErrors: []string{"type", "stem", "answer"},
		},
		{
			name:       "short stem and bad difficulty",
			raw:        `{"type": "single", "stem": "Why", "answer": "A", "difficulty": 9, "explanation": "long enough explanation text"}`,
			wantErrors: []string{"stem", "difficulty"},
		},
		{
			name:       "fractional difficulty",
			raw:        `{"type": "single", "stem": "What is two plus two?", "answer": "A", "difficulty": 2.5}`,
			wantErrors: []string{"difficulty"},
		},
		{
			name:       "explicit zero difficulty",
			raw:        `{"type": "single", "stem": "What is two plus two?", "options": {"A": "4", "B": "5"}, "answer": "A", "difficulty": 0, "explanation": "Two plus two is four."}`,
			wantErrors: []string{"difficulty"},
		},
		{
			name:       "negative difficulty",
			raw:        `{"type": "single", "stem": "What is two plus two?", "options": {"A": "4", "B": "5"}, "answer": "A", "difficulty": -1, "explanation": "Two plus two is four."}`,
			wantErrors: []string{"difficulty"},
		},
		{
			name:       "null difficulty counts as absent",
			raw:        `{"type": "single", "stem": "What is two plus two?", "options": {"A": "4", "B": "5"}, "answer": "A", "difficulty": null, "explanation": "Two plus two is four."}`,
			wantValid:  true,
			wantErrors: []string{},
		},
		{
			name:       "structure errors stop before shape checks",
			raw:        `{"type": "single", "stem": 12, "answer": "Z", "options": {"A": "x", "B": "y"}}`,
			wantErrors: []string{"stem"},
		},
		{
			name:       "unknown type",
			raw:        `{"type": "essay", "stem": "Discuss the causes of war?", "answer": "text"}`,
			wantErrors: []string{"type"},
		},
		{
			name:       "single choice collects every shape error",
			raw:        `{"type": "single", "stem": "Pick the right one here?", "options": {"A": "", "B": "y"}, "answer": ["A"]}`,
			wantErrors: []string{"options", "answer"},
		},
		{
			name:       "multiple choice valid",
			raw:        `{"type": "multiple", "stem": "Which are prime numbers?", "options": {"A": "2", "B": "3", "C": "4", "D": "6"}, "answer": ["a", "B"], "explanation": "2 and 3 have no divisors other than 1 and themselves."}`,
			wantValid:  true,
			wantErrors: []string{},
		},
		{
			name:       "multiple choice all options correct",
			raw:        `{"type": "multiple", "stem": "Which are prime numbers?", "options": {"A": "2", "B": "3", "C": "5"}, "answer": ["A", "B", "C"]}`,
			wantErrors: []string{"answer"},
		},
		{
			name:       "multiple choice needs two answers and three options",
			raw:        `{"type": "multiple", "stem": "Which are prime numbers?", "options": {"A": "2", "B": "4"}, "answer": ["A"]}`,
			wantErrors: []string{"options", "answer"},
		},
		{
			name:       "multiple choice string answer",
			raw:        `{"type": "multiple", "stem": "Which are prime numbers?", "options": {"A": "2", "B": "3", "C": "4"}, "answer": "A"}`,
			wantErrors: []string{"answer"},
		},
		{
			name:       "multiple choice unknown key",
			raw:        `{"type": "multiple", "stem": "Which are prime numbers?", "options": {"A": "2", "B": "3", "C": "4"}, "answer": ["A", "E"]}`,
			wantErrors: []string{"answer"},
		},
		{
			name:       "fill blank valid",
			raw:        `{"type": "blank", "stem": "The capital of France is ____ and the tower was finished in ____.", "answer": ["Paris", 1889], "explanation": "Paris; the Eiffel Tower opened in 1889."}`,
			wantValid:  true,
			wantErrors: []string{},
		},
		{
			name:       "fill blank count mismatch",
			raw:        `{"type": "blank", "stem": "The capital of France is ____ and the tower was finished in ____.", "answer": ["Paris"]}`,
			wantErrors: []string{"answer"},
		},
		{
			name:       "fill blank single string for two blanks",
			raw:        `{"type": "blank", "stem": "The capital of France is ____ and the tower was finished in ____.", "answer": "Paris"}`,
			wantErrors: []string{"answer"},
		},
		{
			name:       "fill blank without blanks",
			raw:        `{"type": "blank", "stem": "The capital of France is what", "answer": ["Paris"]}`,
			wantErrors: []string{"stem"},
		},
		{
			name:       "fill blank empty value",
			raw:        `{"type": "blank", "stem": "Water boils at ____ degrees.", "answer": [" "]}`,
			wantErrors: []string{"answer"},
		},
		{
			name:         "short answer without hints only warns",
			raw:          `{"type": "short", "stem": "Explain what a goroutine is?", "answer": "A lightweight thread managed by the Go runtime.", "explanation": "Goroutines are multiplexed onto OS threads."}`,
			wantValid:    true,
			wantErrors:   []string{},
			wantWarnings: []string{"keywords"},
		},
		{
			name:       "short answer reference too short",
			raw:        `{"type": "short", "stem": "Explain what a goroutine is?", "answer": "thread", "keywords": ["a", "b"]}`,
			wantErrors: []string{"answer"},
		},
		{
			name:         "quality warnings",
			raw:          `{"type": "single", "stem": "Pick one", "options": {"A": "x", "B": "y"}, "answer": "A", "explanation": "Because."}`,
			wantValid:    true,
			wantErrors:   []string{},
			wantWarnings: []string{"stem", "stem", "explanation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewStructuralValidator().Validate(parseQuestion(t, tt.raw))
			assert.Equal(t, tt.wantValid, result.IsValid, "errors: %v", result.Errors)
			assert.ElementsMatch(t, tt.wantErrors, errorFields(result))
			if tt.wantWarnings != nil {
				var fields []string
				for _, w := range result.Warnings {
					fields = append(fields, w.Field)
				}
				assert.ElementsMatch(t, tt.wantWarnings, fields)
			}
		})
	}
}

func TestValidateBatch_DuplicatesScopedToBatch(t *testing.T) {
	first := parseQuestion(t, `{"type": "single", "stem": "What is 2+2?", "options": {"A": "4", "B": "5"}, "answer": "A"}`)
	second := parseQuestion(t, `{"type": "single", "stem": "what is  2+2?", "options": {"A": "4", "B": "5"}, "answer": "A"}`)

	v := NewStructuralValidator()
	results := v.ValidateBatch([]*domain.GeneratedQuestion{first, second})
	require.Len(t, results, 2)
	assert.True(t, results[0].Result.IsValid)
	assert.False(t, results[1].Result.IsValid)
	require.Len(t, results[1].Result.Errors, 1)
	assert.Contains(t, results[1].Result.Errors[0].Message, "Duplicate")

	// Separate batches never see each other's stems.
	fresh := NewStructuralValidator()
	assert.True(t, fresh.ValidateBatch([]*domain.GeneratedQuestion{first})[0].Result.IsValid)
	assert.True(t, fresh.ValidateBatch([]*domain.GeneratedQuestion{second})[0].Result.IsValid)
}

func TestValidate_InvalidQuestionDoesNotRecordStem(t *testing.T) {
	v := NewStructuralValidator()
	bad := parseQuestion(t, `{"type": "single", "stem": "What is 2+2?", "options": {"A": "4", "B": "5"}, "answer": "Z"}`)
	good := parseQuestion(t, `{"type": "single", "stem": "What is 2+2?", "options": {"A": "4", "B": "5"}, "answer": "A"}`)

	assert.False(t, v.Validate(bad).IsValid)
	assert.True(t, v.Validate(good).IsValid)
}

func TestRelease(t *testing.T) {
	v := NewStructuralValidator()
	q := parseQuestion(t, `{"type": "single", "stem": "What is 2+2?", "options": {"A": "4", "B": "5"}, "answer": "A"}`)

	require.True(t, v.Validate(q).IsValid)
	require.False(t, v.Validate(q).IsValid)
	v.Release("WHAT IS 2+2?")
	assert.True(t, v.Validate(q).IsValid)
}

func TestValidate_ConcurrentUse(t *testing.T) {
	v := NewStructuralValidator()
	q := parseQuestion(t, `{"type": "single", "stem": "What is 2+2?", "options": {"A": "4", "B": "5"}, "answer": "A"}`)

	var wg sync.WaitGroup
	valid := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			valid <- v.Validate(q.Clone()).IsValid
		}()
	}
	wg.Wait()
	close(valid)

	count := 0
	for ok := range valid {
		if ok {
			count++
		}
	}
	assert.Equal(t, 1, count, "exactly one copy of a stem is accepted")
}
