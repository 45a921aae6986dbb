package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesResourceUnavailable(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &Error{Type: ErrorTypeServerError, Code: 503, Message: "server error"})

	assert.True(t, Is(err, ErrResourceUnavailable))
	assert.False(t, Is(err, ErrRootUnavailable))
	assert.Equal(t, ErrorTypeServerError, TypeOf(err))
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := New("connection refused")
	err := &Error{Type: ErrorTypeNetwork, Message: "network error", URL: "http://forum/x", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "http://forum/x")
}

func TestFieldError(t *testing.T) {
	err := Missing("topic", "id")

	assert.ErrorIs(t, err, ErrMissingIdentifier)
	assert.Equal(t, "missing identifier: topic without id", err.Error())

	var fe *FieldError
	if assert.True(t, As(err, &fe)) {
		assert.Equal(t, "id", fe.Field)
	}
}

func TestTypeForStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorType
	}{
		{0, ErrorTypeNetwork},
		{404, ErrorTypeNotFound},
		{429, ErrorTypeRateLimit},
		{500, ErrorTypeServerError},
		{503, ErrorTypeServerError},
		{403, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, TypeForStatus(tt.code))
		})
	}
}

func TestTypeOfPlainError(t *testing.T) {
	assert.Equal(t, ErrorTypeUnknown, TypeOf(New("plain")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeNetwork))
	assert.True(t, IsRetryable(ErrorTypeRateLimit))
	assert.True(t, IsRetryable(ErrorTypeServerError))
	assert.False(t, IsRetryable(ErrorTypeNotFound))
	assert.False(t, IsRetryable(ErrorTypeParsing))
	assert.False(t, IsRetryable(ErrorTypeUnknown))
}
