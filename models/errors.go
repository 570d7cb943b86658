package models

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrBadRequest   = errors.New("bad request")
)

// Error pairs one of the sentinel errors above with a message that is safe
// to show to the caller.
type Error struct {
	Kind    error
	Message string
}

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// ValidationError carries field-level messages for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records the first message for a field.
func (v *ValidationError) Add(field, message string) {
	if _, exists := v.Fields[field]; !exists {
		v.Fields[field] = message
	}
}

func (v *ValidationError) HasErrors() bool {
	return len(v.Fields) > 0
}

// Err returns nil when no field failed, so callers can `return v.Err()`.
func (v *ValidationError) Err() error {
	if v.HasErrors() {
		return v
	}
	return nil
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
