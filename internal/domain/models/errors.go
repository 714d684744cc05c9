package models

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("data entry not found")

	// ErrForbidden indicates the actor may not modify the record.
	ErrForbidden = errors.New("not authorized to modify this entry")

	// ErrUnauthenticated indicates a missing or invalid credential.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrNothingToExport indicates an export was requested over an empty store.
	ErrNothingToExport = errors.New("no data to export")
)

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError from field messages.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
