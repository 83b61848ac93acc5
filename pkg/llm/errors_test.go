package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectedType  ErrorType
		expectedRetry bool
	}{
		{
			name:          "nil error",
			err:           nil,
			expectedType:  "",
			expectedRetry: false,
		},
		{
			name:          "401 unauthorized",
			err:           errors.New("error, status code: 401, message: invalid api key"),
			expectedType:  ErrorTypeAuth,
			expectedRetry: false,
		},
		{
			name:          "rate limit",
			err:           errors.New("error, status code: 429, message: Too many requests"),
			expectedType:  ErrorTypeRateLimit,
			expectedRetry: true,
		},
		{
			name:          "context deadline",
			err:           errors.New("context deadline exceeded"),
			expectedType:  ErrorTypeTimeout,
			expectedRetry: true,
		},
		{
			name:          "connection refused",
			err:           errors.New("dial tcp 127.0.0.1:11434: connection refused"),
			expectedType:  ErrorTypeConnection,
			expectedRetry: true,
		},
		{
			name:          "model not found",
			err:           errors.New("error, status code: 404, message: model does not exist"),
			expectedType:  ErrorTypeModel,
			expectedRetry: false,
		},
		{
			name:          "server error",
			err:           errors.New("error, status code: 503, message: overloaded"),
			expectedType:  ErrorTypeServer,
			expectedRetry: true,
		},
		{
			name:          "unknown",
			err:           errors.New("something odd happened"),
			expectedType:  ErrorTypeUnknown,
			expectedRetry: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := ClassifyError(tt.err)
			if tt.err == nil {
				assert.Nil(t, classified)
				return
			}

			require.NotNil(t, classified)
			assert.Equal(t, tt.expectedType, classified.Type)
			assert.Equal(t, tt.expectedRetry, classified.Retryable)
			assert.ErrorIs(t, classified, tt.err)
		})
	}
}

func TestClassifyErrorPreservesStructured(t *testing.T) {
	original := &Error{Type: ErrorTypeRateLimit, Message: "rate limited", Retryable: true}
	wrapped := fmt.Errorf("outer: %w", original)

	classified := ClassifyError(wrapped)
	assert.Same(t, original, classified)
}

func TestErrorString(t *testing.T) {
	err := &Error{
		Type:       ErrorTypeAuth,
		Message:    "authentication failed",
		StatusCode: 401,
		Cause:      errors.New("bad key"),
	}

	assert.Contains(t, err.Error(), "auth")
	assert.Contains(t, err.Error(), "HTTP 401")
	assert.Contains(t, err.Error(), "bad key")
}
