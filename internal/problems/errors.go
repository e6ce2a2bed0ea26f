package problems

import (
	"errors"
	"strings"
)

var ErrNotFound = errors.New("problem not found")

// FieldError describes one rejected input field.
// Loc follows the ["body", "<field>"] / ["path", "<param>"] convention.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError is returned when a request fails schema or type constraints.
// The store is never mutated when it is returned.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, strings.Join(f.Loc, ".")+": "+f.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field ValidationError.
func NewValidationError(loc []string, msg, typ string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Loc: loc, Msg: msg, Type: typ}}}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
