package models

import (
	"errors"
	"strings"
)

// Error taxonomy shared by services and handlers
var (
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrNotFound        = errors.New("not found")
	ErrMissingContact  = errors.New("visitor has no email on file")
	ErrExpired         = errors.New("code expired")
	ErrIncorrectCode   = errors.New("incorrect code")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrStorage         = errors.New("storage unavailable")
	ErrDelivery        = errors.New("delivery failed")
	ErrRender          = errors.New("render failed")
)

// FieldError is a single rejected input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field rejected in a payload.
// errors.Is(err, ErrInvalidPayload) holds for it.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError creates an empty ValidationError
func NewValidationError() *ValidationError {
	return &ValidationError{}
}

// Add records a rejected field
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any field was rejected
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Error implements error
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrInvalidPayload.Error() + ": " + strings.Join(parts, "; ")
}

// Is lets errors.Is match ErrInvalidPayload
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidPayload
}
