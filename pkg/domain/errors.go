package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a document or a sub-document path does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConnectionPending is returned when a caller stops waiting for the first
	// backend connection. It never originates from the backend itself.
	ErrConnectionPending = errors.New("backend connection pending")
)

// ValidationError reports semantically invalid input that reached the core.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StoreError wraps a failure reported by the backend.
type StoreError struct {
	Op      string // repository or composer operation
	Code    string // backend error code, if the backend exposes one
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Op, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// CodedError is implemented by backend errors that carry a backend status code.
type CodedError interface {
	error
	Code() string
}

// NewStoreError wraps err as a StoreError for op. An err that already is a
// StoreError is returned unchanged.
func NewStoreError(op string, err error) *StoreError {
	var se *StoreError
	if errors.As(err, &se) {
		return se
	}
	out := &StoreError{Op: op, Message: err.Error(), Err: err}
	var coded CodedError
	if errors.As(err, &coded) {
		out.Code = coded.Code()
	}
	return out
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStoreError reports whether err is, or wraps, a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
