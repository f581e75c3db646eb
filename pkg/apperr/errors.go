// Package apperr holds the error taxonomy shared by the ledger and payment
// engines: caller-correctable validation failures with field-level messages,
// and scoped lookups that missed.
package apperr

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries one message per offending field. Handlers surface
// it as an HTTP 422 with the field map intact; it is never retried.
type ValidationError struct {
	Fields map[string]string
}

// NewValidation builds a single-field validation error.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return strings.Join(parts, "; ")
}

// Add records another field failure and returns the error for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = message
	return e
}

// NotFoundError means a referenced entity does not exist or is not owned by
// the caller's landlord. Both cases look identical to the caller.
type NotFoundError struct {
	Resource string
	ID       any
}

func NewNotFound(resource string, id any) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}
