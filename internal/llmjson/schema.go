package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrSchemaMismatch wraps every validation failure reported by Schema.Validate.
var ErrSchemaMismatch = errors.New("model output does not match the expected schema")

// Schema is a compiled JSON schema for model responses.
type Schema struct {
	compiled *gojsonschema.Schema
}

// MustSchema compiles a JSON schema document and panics on a malformed schema.
func MustSchema(doc string) *Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("llmjson: invalid schema: %v", err))
	}
	return &Schema{compiled: compiled}
}

// Validate checks raw against the schema.
func (s *Schema) Validate(raw json.RawMessage) error {
	result, err := s.compiled.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.Join(msgs, "; "))
}

// DecodeObject extracts an object from text, validates it against s and unmarshals it into v.
func (s *Schema) DecodeObject(text string, v any) error {
	raw, err := ExtractObject(text)
	if err != nil {
		return err
	}
	if err := s.Validate(raw); err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
