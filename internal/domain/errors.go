package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation signals that a builder rejected its input.
	ErrValidation = errors.New("validation failed")
	// ErrRequestConversion signals that a request value could not be turned into a transport request.
	ErrRequestConversion = errors.New("request conversion failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbedderNotConfigured signals a kNN text query without an embedder.
	ErrEmbedderNotConfigured = errors.New("embedder not configured")
)

// MissingRequiredFieldError is returned by Build when a mandatory field is unset.
type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", ErrValidation, e.Field)
}

func (e *MissingRequiredFieldError) Unwrap() error { return ErrValidation }

// AtLeastOneFieldRequiredError is returned by Build when none of a group of fields is set.
type AtLeastOneFieldRequiredError struct {
	Fields []string
}

func (e *AtLeastOneFieldRequiredError) Error() string {
	return fmt.Sprintf("%s: at least one of [%s] is required", ErrValidation, strings.Join(e.Fields, ", "))
}

func (e *AtLeastOneFieldRequiredError) Unwrap() error { return ErrValidation }

// AtLeastOneElementRequiredError is returned by Build when a collection is empty.
type AtLeastOneElementRequiredError struct {
	Field string
}

func (e *AtLeastOneElementRequiredError) Error() string {
	return fmt.Sprintf("%s: %q requires at least one element", ErrValidation, e.Field)
}

func (e *AtLeastOneElementRequiredError) Unwrap() error { return ErrValidation }

// InvalidFieldError is returned by Build when a field is set to an unacceptable value.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("%s: %q %s", ErrValidation, e.Field, e.Reason)
}

func (e *InvalidFieldError) Unwrap() error { return ErrValidation }

// RequestConversionError wraps a body serialization failure with the request it came from.
type RequestConversionError struct {
	Request string
	Err     error
}

func (e *RequestConversionError) Error() string {
	return fmt.Sprintf("%s for %s: %v", ErrRequestConversion, e.Request, e.Err)
}

// Is matches ErrRequestConversion in addition to the wrapped cause.
func (e *RequestConversionError) Is(target error) bool { return target == ErrRequestConversion }

func (e *RequestConversionError) Unwrap() error { return e.Err }

// NewMissingRequiredField creates a missing-field error.
func NewMissingRequiredField(field string) error {
	return &MissingRequiredFieldError{Field: field}
}
