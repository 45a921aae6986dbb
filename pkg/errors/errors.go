package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

var (
	// ErrRootUnavailable means the top-level category listing could not be obtained.
	ErrRootUnavailable = errors.New("root category listing unavailable")
	// ErrResourceUnavailable means a non-root resource could not be fetched.
	ErrResourceUnavailable = errors.New("resource unavailable")
	// ErrMissingIdentifier means a listing entry or path level lacks a slug or id.
	ErrMissingIdentifier = errors.New("missing identifier")
	// ErrMalformedScale means a srcset descriptor could not be parsed as a number.
	ErrMalformedScale = errors.New("malformed scale descriptor")
	// ErrDecodeFailure means a persisted artifact is not valid JSON.
	ErrDecodeFailure = errors.New("decode failure")
	// ErrInvalidBaseURL means no host could be derived from the base URL.
	ErrInvalidBaseURL = errors.New("invalid base URL")
)

// Error represents a forum API error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	URL     string
	Err     error
}

func (e *Error) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("%s error (code %d) for %s: %s", e.Type, e.Code, e.URL, e.Message)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// Unwrap exposes the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes every API error match ErrResourceUnavailable.
func (e *Error) Is(target error) bool {
	return target == ErrResourceUnavailable
}

// FieldError reports which identifying field an entity is missing.
type FieldError struct {
	Entity string
	Field  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s without %s", ErrMissingIdentifier, e.Entity, e.Field)
}

func (e *FieldError) Unwrap() error {
	return ErrMissingIdentifier
}

// Missing builds a FieldError for entity lacking field.
func Missing(entity, field string) error {
	return &FieldError{Entity: entity, Field: field}
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Type
	}
	return ErrorTypeUnknown
}

// TypeForStatus maps an HTTP status code onto an ErrorType
func TypeForStatus(statusCode int) ErrorType {
	switch {
	case statusCode == 0:
		return ErrorTypeNetwork
	case statusCode == 404:
		return ErrorTypeNotFound
	case statusCode == 429:
		return ErrorTypeRateLimit
	case statusCode >= 500:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}

// IsRetryable reports whether a failure of this type may go away on its own
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// Is, As and Join re-export the standard helpers so callers need one import.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
	New  = errors.New
)
