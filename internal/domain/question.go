package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// QuestionType identifies one of the four question kinds.
type QuestionType string

const (
	QuestionTypeSingle   QuestionType = "single"
	QuestionTypeMultiple QuestionType = "multiple"
	QuestionTypeBlank    QuestionType = "blank"
	QuestionTypeShort    QuestionType = "short"
)

var questionTypeAliases = map[string]QuestionType{
	"single":          QuestionTypeSingle,
	"single_choice":   QuestionTypeSingle,
	"multiple":        QuestionTypeMultiple,
	"multiple_choice": QuestionTypeMultiple,
	"blank":           QuestionTypeBlank,
	"fill_blank":      QuestionTypeBlank,
	"fill-blank":      QuestionTypeBlank,
	"short":           QuestionTypeShort,
	"short_answer":    QuestionTypeShort,
}

// ParseQuestionType accepts the canonical names and their long aliases.
func ParseQuestionType(s string) (QuestionType, bool) {
	t, ok := questionTypeAliases[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

// Valid reports whether t is one of the four canonical types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeSingle, QuestionTypeMultiple, QuestionTypeBlank, QuestionTypeShort:
		return true
	}
	return false
}

// Objective reports whether answers of this type are graded without the AI capability.
func (t QuestionType) Objective() bool {
	return t == QuestionTypeSingle || t == QuestionTypeMultiple
}

// GeneratedQuestion is a question as produced by the model, before persistence.
//
// Answer keeps its raw JSON because its shape depends on Type; DecodeAnswer turns it
// into a typed Answer. Fields the model sent with the wrong JSON type are left at their
// zero value and reported by Malformed so the validator can flag them.
type GeneratedQuestion struct {
	Type           QuestionType      `json:"type"`
	Stem           string            `json:"stem"`
	Options        map[string]string `json:"options,omitempty"`
	Answer         json.RawMessage   `json:"answer"`
	Explanation    string            `json:"explanation,omitempty"`
	Difficulty     int               `json:"difficulty,omitempty"`
	KnowledgePoint string            `json:"knowledge_point,omitempty"`
	Keywords       []string          `json:"keywords,omitempty"`
	Rubric         string            `json:"rubric,omitempty"`

	malformed     map[string]bool
	difficultySet bool
}

// Malformed reports whether field arrived with a JSON type that could not be decoded.
func (q *GeneratedQuestion) Malformed(field string) bool {
	return q.malformed[field]
}

// DifficultyPresent reports whether the decoded JSON carried a non-null difficulty,
// which tells an explicit 0 apart from an omitted field.
func (q *GeneratedQuestion) DifficultyPresent() bool {
	return q.difficultySet
}

// HasAnswer reports whether an answer value is present and not JSON null.
func (q *GeneratedQuestion) HasAnswer() bool {
	trimmed := bytes.TrimSpace(q.Answer)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Clone returns a deep copy.
func (q *GeneratedQuestion) Clone() *GeneratedQuestion {
	if q == nil {
		return nil
	}
	c := *q
	if q.Options != nil {
		c.Options = make(map[string]string, len(q.Options))
		for k, v := range q.Options {
			c.Options[k] = v
		}
	}
	if q.Answer != nil {
		c.Answer = append(json.RawMessage(nil), q.Answer...)
	}
	if q.Keywords != nil {
		c.Keywords = append([]string(nil), q.Keywords...)
	}
	if q.malformed != nil {
		c.malformed = make(map[string]bool, len(q.malformed))
		for k, v := range q.malformed {
			c.malformed[k] = v
		}
	}
	return &c
}

// UnmarshalJSON decodes leniently: a field of the wrong JSON type never fails the
// whole question, it is zeroed and marked malformed instead.
func (q *GeneratedQuestion) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*q = GeneratedQuestion{}

	mark := func(field string) {
		if q.malformed == nil {
			q.malformed = make(map[string]bool)
		}
		q.malformed[field] = true
	}

	if v, ok := raw["type"]; ok {
		s, ok := decodeString(v)
		if !ok {
			mark("type")
		}
		if t, known := ParseQuestionType(s); known {
			q.Type = t
		} else {
			q.Type = QuestionType(strings.TrimSpace(s))
		}
	}
	if v, ok := raw["stem"]; ok {
		s, ok := decodeString(v)
		if !ok {
			mark("stem")
		}
		q.Stem = s
	}
	if v, ok := raw["explanation"]; ok {
		q.Explanation, _ = decodeString(v)
	}
	if v, ok := raw["knowledge_point"]; ok {
		q.KnowledgePoint, _ = decodeString(v)
	}
	if v, ok := raw["rubric"]; ok {
		q.Rubric, _ = decodeString(v)
	}
	if v, ok := raw["answer"]; ok {
		q.Answer = append(json.RawMessage(nil), v...)
	}
	if v, ok := raw["options"]; ok && !isNull(v) {
		opts, ok := decodeOptions(v)
		if !ok {
			mark("options")
		}
		q.Options = opts
	}
	if v, ok := raw["difficulty"]; ok && !isNull(v) {
		q.difficultySet = true
		d, ok := decodeInt(v)
		if !ok {
			mark("difficulty")
		}
		q.Difficulty = d
	}
	if v, ok := raw["keywords"]; ok && !isNull(v) {
		var kws []string
		if err := json.Unmarshal(v, &kws); err != nil {
			mark("keywords")
		} else {
			q.Keywords = kws
		}
	}
	return nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func decodeString(v json.RawMessage) (string, bool) {
	if isNull(v) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeInt(v json.RawMessage) (int, bool) {
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return int(i), true
}

// decodeOptions accepts an object of scalar values. Non-string scalars keep their JSON text.
func decodeOptions(v json.RawMessage) (map[string]string, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(v, &raw); err != nil {
		return nil, false
	}
	opts := make(map[string]string, len(raw))
	for k, val := range raw {
		if s, ok := decodeString(val); ok {
			opts[k] = s
			continue
		}
		opts[k] = string(bytes.TrimSpace(val))
	}
	return opts, true
}
