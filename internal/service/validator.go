package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"quiz-forge/internal/domain"
)

const (
	minStemLength        = 5
	minShortAnswerLength = 10
	goodStemLength       = 15
	goodExplanationLen   = 20
)

// StructuralValidator applies the rule-based checks to generated questions and
// remembers the stems it has seen until Reset. Give each independent batch its
// own validator (or call Reset) so duplicate tracking never leaks across batches.
type StructuralValidator struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewStructuralValidator creates a validator with empty duplicate state.
func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{seen: make(map[string]struct{})}
}

// Reset forgets every recorded stem.
func (v *StructuralValidator) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seen = make(map[string]struct{})
}

// Release forgets one stem so a replacement of that question can be validated.
func (v *StructuralValidator) Release(stem string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.seen, stemHash(stem))
}

// ValidateBatch resets duplicate tracking and validates questions in order.
func (v *StructuralValidator) ValidateBatch(questions []*domain.GeneratedQuestion) []domain.ValidatedQuestion {
	v.Reset()
	out := make([]domain.ValidatedQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, domain.ValidatedQuestion{Question: q, Result: v.Validate(q)})
	}
	return out
}

// Validate runs required-field checks, type-specific shape checks, duplicate
// detection and quality warnings, stopping after the first step that reports errors.
func (v *StructuralValidator) Validate(q *domain.GeneratedQuestion) *domain.ValidationResult {
	result := domain.NewValidationResult()
	if q == nil {
		result.AddError("question", "Question is empty")
		return result
	}

	validateStructure(q, result)
	if !result.IsValid {
		return result
	}

	if check, ok := shapeChecks[q.Type]; ok {
		check(q, result)
	} else {
		result.AddError("type", fmt.Sprintf("Unknown question type: %s", q.Type))
	}
	if !result.IsValid {
		return result
	}

	v.checkDuplicate(q, result)
	if !result.IsValid {
		return result
	}

	checkContentQuality(q, result)
	return result
}

func (v *StructuralValidator) checkDuplicate(q *domain.GeneratedQuestion, result *domain.ValidationResult) {
	h := stemHash(q.Stem)
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, dup := v.seen[h]; dup {
		result.AddError("stem", "Duplicate question detected (same or very similar stem)")
		return
	}
	v.seen[h] = struct{}{}
}

func stemHash(stem string) string {
	sum := sha256.Sum256([]byte(domain.NormalizeText(stem)))
	return hex.EncodeToString(sum[:])
}

func validateStructure(q *domain.GeneratedQuestion, result *domain.ValidationResult) {
	switch {
	case q.Malformed("type"):
		result.AddError("type", "Type must be a string")
	case q.Type == "":
		result.AddError("type", "Missing required field: type")
	}

	switch {
	case q.Malformed("stem"):
		result.AddError("stem", "Stem must be a string")
	case strings.TrimSpace(q.Stem) == "":
		result.AddError("stem", "Missing required field: stem")
	case utf8.RuneCountInString(strings.TrimSpace(q.Stem)) < minStemLength:
		result.AddError("stem", "Stem is too short (minimum 5 characters)")
	}

	if !q.HasAnswer() {
		result.AddError("answer", "Missing required field: answer")
	}

	if q.Malformed("difficulty") || ((q.DifficultyPresent() || q.Difficulty != 0) && (q.Difficulty < 1 || q.Difficulty > 5)) {
		result.AddError("difficulty", "Difficulty must be an integer between 1 and 5")
	}

	if strings.TrimSpace(q.Explanation) == "" {
		result.AddWarning("explanation", "Missing explanation")
	}
}

var shapeChecks = map[domain.QuestionType]func(*domain.GeneratedQuestion, *domain.ValidationResult){
	domain.QuestionTypeSingle:   validateSingleChoice,
	domain.QuestionTypeMultiple: validateMultipleChoice,
	domain.QuestionTypeBlank:    validateFillBlank,
	domain.QuestionTypeShort:    validateShortAnswer,
}

// optionKeys validates the option map and returns its normalized keys, or nil when unusable.
func optionKeys(q *domain.GeneratedQuestion, minOptions int, result *domain.ValidationResult) map[string]bool {
	if q.Malformed("options") || q.Options == nil {
		result.AddError("options", "Options must be a dictionary (e.g., {'A': '...', 'B': '...'})")
		return nil
	}
	if len(q.Options) < minOptions {
		result.AddError("options", fmt.Sprintf("Must have at least %d options", minOptions))
		return nil
	}
	keys := make(map[string]bool, len(q.Options))
	for _, k := range sortedKeys(q.Options) {
		if strings.TrimSpace(q.Options[k]) == "" {
			result.AddError("options", fmt.Sprintf("Option %s is empty", k))
		}
		keys[domain.NormalizeKey(k)] = true
	}
	return keys
}

func validateSingleChoice(q *domain.GeneratedQuestion, result *domain.ValidationResult) {
	keys := optionKeys(q, 2, result)

	answer, err := domain.DecodeAnswer(domain.QuestionTypeSingle, q.Answer)
	if err != nil {
		result.AddError("answer", capitalize(err.Error()))
		return
	}
	key := answer.(domain.SingleChoiceAnswer).Key
	if keys != nil && !keys[key] {
		result.AddError("answer", fmt.Sprintf("Answer '%s' is not in options: %v", key, sortedKeys(q.Options)))
	}
}

func validateMultipleChoice(q *domain.GeneratedQuestion, result *domain.ValidationResult) {
	keys := optionKeys(q, 3, result)

	if !isJSONArray(q.Answer) {
		result.AddError("answer", "Answer must be a list of option keys")
		return
	}
	answer, err := domain.DecodeAnswer(domain.QuestionTypeMultiple, q.Answer)
	if err != nil {
		result.AddError("answer", capitalize(err.Error()))
		return
	}
	chosen := answer.(domain.MultipleChoiceAnswer).Keys
	if len(chosen) < 2 {
		result.AddError("answer", "Multiple choice must have at least 2 correct answers")
	}
	if keys == nil {
		return
	}

	var invalid []string
	for _, k := range chosen {
		if !keys[k] {
			invalid = append(invalid, k)
		}
	}
	if len(invalid) > 0 {
		result.AddError("answer", fmt.Sprintf("Invalid answer options: %v", invalid))
	}
	if len(invalid) == 0 && len(chosen) == len(keys) {
		result.AddError("answer", "All options are marked as correct")
	}
}

func validateFillBlank(q *domain.GeneratedQuestion, result *domain.ValidationResult) {
	blanks := domain.CountBlanks(q.Stem)
	if blanks == 0 {
		result.AddError("stem", "No blanks found in stem (use ____ to mark blanks)")
	}

	answer, err := domain.DecodeAnswer(domain.QuestionTypeBlank, q.Answer)
	if err != nil {
		result.AddError("answer", capitalize(err.Error()))
		return
	}
	values := answer.(domain.FillBlankAnswer).Values

	if !isJSONArray(q.Answer) {
		if blanks > 1 {
			result.AddError("answer", fmt.Sprintf("Expected %d answers (list), got single string", blanks))
		}
	} else if blanks > 0 && len(values) != blanks {
		result.AddError("answer", fmt.Sprintf("Blank count (%d) doesn't match answer count (%d)", blanks, len(values)))
	}

	for i, value := range values {
		if strings.TrimSpace(value) == "" {
			result.AddError("answer", fmt.Sprintf("Answer %d is empty", i+1))
		}
	}
}

func validateShortAnswer(q *domain.GeneratedQuestion, result *domain.ValidationResult) {
	answer, err := domain.DecodeAnswer(domain.QuestionTypeShort, q.Answer)
	if err != nil || utf8.RuneCountInString(strings.TrimSpace(answer.(domain.ShortAnswer).Text)) < minShortAnswerLength {
		result.AddError("answer", "Short answer must have a reference answer (at least 10 characters)")
	}

	hasRubric := strings.TrimSpace(q.Rubric) != ""
	switch {
	case q.Malformed("keywords"):
		result.AddWarning("keywords", "Keywords must be a list")
	case len(q.Keywords) == 0 && !hasRubric:
		result.AddWarning("keywords", "Missing keywords or rubric for grading")
	case len(q.Keywords) == 1:
		result.AddWarning("keywords", "Should have at least 2 keywords for proper grading")
	}
}

func checkContentQuality(q *domain.GeneratedQuestion, result *domain.ValidationResult) {
	if utf8.RuneCountInString(q.Stem) < goodStemLength {
		result.AddWarning("stem", "Stem seems too short for a good question")
	}
	if q.Type != domain.QuestionTypeBlank &&
		!strings.Contains(q.Stem, "?") && !strings.Contains(q.Stem, "？") && !strings.Contains(q.Stem, "____") {
		result.AddWarning("stem", "Stem might be missing a question mark")
	}
	if q.Explanation != "" && utf8.RuneCountInString(q.Explanation) < goodExplanationLen {
		result.AddWarning("explanation", "Explanation seems too brief")
	}
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "[")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
