package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Answer is the typed form of a question's (or a student's) answer.
// There is exactly one variant per QuestionType.
type Answer interface {
	QuestionType() QuestionType
}

// SingleChoiceAnswer holds one normalized option label.
type SingleChoiceAnswer struct {
	Key string
}

// MultipleChoiceAnswer holds normalized, sorted, de-duplicated option labels.
type MultipleChoiceAnswer struct {
	Keys []string
}

// FillBlankAnswer holds one value per blank, in stem order.
type FillBlankAnswer struct {
	Values []string
}

// ShortAnswer holds free text.
type ShortAnswer struct {
	Text string
}

func (SingleChoiceAnswer) QuestionType() QuestionType   { return QuestionTypeSingle }
func (MultipleChoiceAnswer) QuestionType() QuestionType { return QuestionTypeMultiple }
func (FillBlankAnswer) QuestionType() QuestionType      { return QuestionTypeBlank }
func (ShortAnswer) QuestionType() QuestionType          { return QuestionTypeShort }

func (a SingleChoiceAnswer) MarshalJSON() ([]byte, error)   { return json.Marshal(a.Key) }
func (a MultipleChoiceAnswer) MarshalJSON() ([]byte, error) { return json.Marshal(nonNil(a.Keys)) }
func (a FillBlankAnswer) MarshalJSON() ([]byte, error)      { return json.Marshal(nonNil(a.Values)) }
func (a ShortAnswer) MarshalJSON() ([]byte, error)          { return json.Marshal(a.Text) }

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var blankPattern = regexp.MustCompile(`_{2,}`)

// CountBlanks counts runs of two or more underscores in stem.
func CountBlanks(stem string) int {
	return len(blankPattern.FindAllStringIndex(stem, -1))
}

// NormalizeKey upper-cases and trims an option label.
func NormalizeKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeText lower-cases, trims and collapses internal whitespace.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// BlankEqual is the exact-scoring rule for a single blank.
func BlankEqual(correct, student string) bool {
	return NormalizeText(correct) == NormalizeText(student)
}

type answerCodec struct {
	decode func(raw json.RawMessage) (Answer, error)
	equal  func(correct, student Answer) bool
}

var answerCodecs = map[QuestionType]answerCodec{
	QuestionTypeSingle: {
		decode: decodeSingle,
		equal: func(correct, student Answer) bool {
			return correct.(SingleChoiceAnswer).Key == student.(SingleChoiceAnswer).Key
		},
	},
	QuestionTypeMultiple: {
		decode: decodeMultiple,
		equal: func(correct, student Answer) bool {
			c, s := correct.(MultipleChoiceAnswer).Keys, student.(MultipleChoiceAnswer).Keys
			if len(c) != len(s) {
				return false
			}
			for i := range c {
				if c[i] != s[i] {
					return false
				}
			}
			return true
		},
	},
	QuestionTypeBlank: {
		decode: decodeBlank,
		equal: func(correct, student Answer) bool {
			c, s := correct.(FillBlankAnswer).Values, student.(FillBlankAnswer).Values
			if len(c) != len(s) {
				return false
			}
			for i := range c {
				if !BlankEqual(c[i], s[i]) {
					return false
				}
			}
			return true
		},
	},
	QuestionTypeShort: {
		decode: decodeShort,
		equal: func(correct, student Answer) bool {
			return NormalizeText(correct.(ShortAnswer).Text) == NormalizeText(student.(ShortAnswer).Text)
		},
	},
}

// DecodeAnswer decodes raw into the Answer variant for t.
// Besides bare values it accepts the stored wrappers {"correct": ...} and {"blanks": [...]}.
func DecodeAnswer(t QuestionType, raw json.RawMessage) (Answer, error) {
	codec, ok := answerCodecs[t]
	if !ok {
		return nil, fmt.Errorf("unknown question type: %q", t)
	}
	raw = unwrapStoredAnswer(raw)
	if len(bytes.TrimSpace(raw)) == 0 || isNull(raw) {
		return nil, fmt.Errorf("answer is missing")
	}
	return codec.decode(raw)
}

// AnswersEqual applies the equality rule of the correct answer's type.
// Answers of different types are never equal.
func AnswersEqual(correct, student Answer) bool {
	if correct == nil || student == nil || correct.QuestionType() != student.QuestionType() {
		return false
	}
	return answerCodecs[correct.QuestionType()].equal(correct, student)
}

// AnswerIsEmpty reports whether raw carries no usable student input:
// null, blank strings, empty lists or lists of blank strings.
func AnswerIsEmpty(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s) == ""
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if !AnswerIsEmpty(item) {
				return false
			}
		}
		return true
	}
	return false
}

func unwrapStoredAnswer(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return raw
	}
	for _, key := range []string{"correct", "blanks", "reference"} {
		if v, ok := wrapper[key]; ok {
			return v
		}
	}
	return raw
}

func decodeSingle(raw json.RawMessage) (Answer, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("answer must be a string (option key like 'A', 'B', etc.)")
	}
	return SingleChoiceAnswer{Key: NormalizeKey(s)}, nil
}

func decodeMultiple(raw json.RawMessage) (Answer, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		var s string
		if errStr := json.Unmarshal(raw, &s); errStr != nil {
			return nil, fmt.Errorf("answer must be a list of option keys")
		}
		items = []json.RawMessage{raw}
	}
	seen := make(map[string]bool, len(items))
	keys := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, fmt.Errorf("answer must be a list of option keys")
		}
		k := NormalizeKey(s)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return MultipleChoiceAnswer{Keys: keys}, nil
}

func decodeBlank(raw json.RawMessage) (Answer, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return FillBlankAnswer{Values: []string{s}}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("answer must be a string or list of strings")
	}
	values := make([]string, 0, len(items))
	for _, item := range items {
		v, ok := scalarText(item)
		if !ok {
			return nil, fmt.Errorf("answer must be a string or list of strings")
		}
		values = append(values, v)
	}
	return FillBlankAnswer{Values: values}, nil
}

func decodeShort(raw json.RawMessage) (Answer, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("answer must be a reference text")
	}
	return ShortAnswer{Text: s}, nil
}

// scalarText renders strings as-is and numbers/bools as their JSON text; null is "".
func scalarText(v json.RawMessage) (string, bool) {
	if isNull(v) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String(), true
	}
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return fmt.Sprint(b), true
	}
	return "", false
}
