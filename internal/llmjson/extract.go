// Package llmjson pulls a JSON payload out of free-form model output.
//
// Extraction runs an ordered list of strategies: fenced code block, bracket-matching
// scan, whole text. The first strategy whose candidate parses as JSON wins.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when no strategy yields valid JSON.
var ErrNoJSON = errors.New("no valid JSON found in model output")

// Strategy proposes a JSON candidate from text. ok is false when the strategy does not apply.
type Strategy struct {
	Name    string
	Extract func(text string) (candidate string, ok bool)
}

var fencePattern = regexp.MustCompile("```(?:json|JSON)?\\s*([\\s\\S]*?)```")

// FencedBlock returns the body of the first ``` fenced block.
var FencedBlock = Strategy{
	Name: "fenced_block",
	Extract: func(text string) (string, bool) {
		m := fencePattern.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return strings.TrimSpace(m[1]), true
	},
}

// BracketScan returns the first balanced {...} span or [...] span of objects,
// skipping brackets inside strings.
var BracketScan = Strategy{
	Name: "bracket_scan",
	Extract: func(text string) (string, bool) {
		for i := 0; i < len(text); i++ {
			if text[i] != '[' && text[i] != '{' {
				continue
			}
			if end, ok := matchBracket(text, i); ok {
				candidate := text[i : end+1]
				if holdsObjects(candidate) && json.Valid([]byte(candidate)) {
					return candidate, true
				}
			}
		}
		return "", false
	},
}

// WholeText treats the trimmed text as the candidate.
var WholeText = Strategy{
	Name: "whole_text",
	Extract: func(text string) (string, bool) {
		t := strings.TrimSpace(text)
		return t, t != ""
	},
}

// DefaultStrategies is the extraction order used by Extract.
var DefaultStrategies = []Strategy{FencedBlock, BracketScan, WholeText}

// Result carries the extracted payload and the strategy that produced it.
type Result struct {
	Raw      json.RawMessage
	Strategy string
}

// Extract runs DefaultStrategies on text after stripping reasoning blocks.
func Extract(text string) (*Result, error) {
	return ExtractWith(text, DefaultStrategies...)
}

// ExtractWith runs the given strategies in order.
func ExtractWith(text string, strategies ...Strategy) (*Result, error) {
	cleaned := StripThinking(text)
	for _, s := range strategies {
		candidate, ok := s.Extract(cleaned)
		if !ok {
			continue
		}
		if json.Valid([]byte(candidate)) {
			return &Result{Raw: json.RawMessage(candidate), Strategy: s.Name}, nil
		}
		// A fenced block that is not itself JSON may still wrap a JSON span.
		if s.Name == FencedBlock.Name {
			if inner, ok := BracketScan.Extract(candidate); ok {
				return &Result{Raw: json.RawMessage(inner), Strategy: BracketScan.Name}, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoJSON, preview(cleaned, 200))
}

// ExtractObject extracts a JSON object. If the payload is an array, its first object is used.
func ExtractObject(text string) (json.RawMessage, error) {
	res, err := Extract(text)
	if err != nil {
		return nil, err
	}
	switch firstByte(res.Raw) {
	case '{':
		return res.Raw, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(res.Raw, &items); err == nil {
			for _, item := range items {
				if firstByte(item) == '{' {
					return item, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("%w: expected an object", ErrNoJSON)
}

// ExtractList extracts a JSON array of objects. A single object becomes a one-element list.
func ExtractList(text string) ([]json.RawMessage, error) {
	res, err := Extract(text)
	if err != nil {
		return nil, err
	}
	switch firstByte(res.Raw) {
	case '{':
		return []json.RawMessage{res.Raw}, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(res.Raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
		}
		return items, nil
	}
	return nil, fmt.Errorf("%w: expected an array or object", ErrNoJSON)
}

// StripThinking removes <think>...</think> blocks emitted by reasoning models.
func StripThinking(text string) string {
	cleaned := strings.TrimSpace(text)
	for {
		start := strings.Index(cleaned, "<think>")
		if start == -1 {
			return cleaned
		}
		end := strings.Index(cleaned[start:], "</think>")
		if end == -1 {
			return cleaned
		}
		cleaned = strings.TrimSpace(cleaned[:start] + cleaned[start+end+len("</think>"):])
	}
}

func matchBracket(text string, start int) (int, bool) {
	open := text[start]
	closeCh := byte(']')
	if open == '{' {
		closeCh = '}'
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// holdsObjects accepts an object or an array whose first element is an object.
func holdsObjects(candidate string) bool {
	if candidate[0] == '{' {
		return true
	}
	inner := strings.TrimSpace(candidate[1:])
	return strings.HasPrefix(inner, "{")
}

func firstByte(raw json.RawMessage) byte {
	t := strings.TrimSpace(string(raw))
	if t == "" {
		return 0
	}
	return t[0]
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
