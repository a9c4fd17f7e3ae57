package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/kotbarbarossa/yamdb-final/internal/policy"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrDuplicateIdentity = errors.New("username or email already taken")
	ErrDuplicateReview   = errors.New("review already exists")
	ErrInvalidScore      = errors.New("score out of range")
	ErrInvalidToken      = errors.New("invalid confirmation code")
	ErrDelivery          = errors.New("confirmation code delivery failed")

	ErrUnauthenticated = policy.ErrUnauthenticated
	ErrForbidden       = policy.ErrForbidden
)

// ValidationError carries per field messages. It matches ErrValidation and,
// when set, the more specific Kind.
type ValidationError struct {
	Fields map[string][]string
	Kind   error
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

// OrNil returns e if any field was reported.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() []error {
	if e.Kind != nil {
		return []error{ErrValidation, e.Kind}
	}
	return []error{ErrValidation}
}

func fieldError(kind error, field, msg string) *ValidationError {
	ve := &ValidationError{Kind: kind}
	ve.Add(field, msg)
	return ve
}
