package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrForbidden    ErrorCode = "FORBIDDEN"
	ErrInvalidState ErrorCode = "INVALID_STATE"

	// Pipeline and grading errors
	ErrGenerationFailed ErrorCode = "GENERATION_FAILED"
	ErrLLMServiceError  ErrorCode = "LLM_SERVICE_ERROR"
)

// Sentinel causes wrapped by DomainError. Match them with errors.Is.
var (
	// ErrGenerationParse: model output could not be parsed after every extraction strategy.
	ErrGenerationParse = errors.New("generation response is not valid JSON")
	// ErrReviewParse is converted into a parse_error issue and never leaves the reviewer.
	ErrReviewParse = errors.New("review response is not valid JSON")
	// ErrFixUnavailable means a repair call produced nothing usable.
	ErrFixUnavailable = errors.New("fix produced no usable question")
	// ErrGradingUnavailable leaves the answer pending manual grading.
	ErrGradingUnavailable = errors.New("ai grading unavailable")
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewForbiddenError(message string) *DomainError {
	return NewError(ErrForbidden, message, nil)
}

func NewInvalidStateError(message string) *DomainError {
	return NewError(ErrInvalidState, message, nil)
}

func NewGenerationError(err error) *DomainError {
	return NewError(ErrGenerationFailed, "Question generation failed", err)
}

func NewLLMServiceError(err error) *DomainError {
	return NewError(ErrLLMServiceError, "Failed to process with LLM service", err)
}

// CodeOf returns the ErrorCode carried by err, or ErrInternal when err is not a DomainError.
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrInternal
}
