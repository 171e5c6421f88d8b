// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_UnwrapAndAs(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")
	err := fmt.Errorf("load session: %w", NewSessionStoreUnavailableError("load", cause))

	stdErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeSessionStoreUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, ErrCodeSessionStoreUnavailable))
	assert.False(t, HasCode(cause, ErrCodeSessionStoreUnavailable))
	assert.Contains(t, stdErr.Error(), "SESSION_STORE_UNAVAILABLE")
}

func TestNormalize(t *testing.T) {
	stdErr := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, stdErr.Code)
	assert.False(t, stdErr.Retryable)

	original := NewPolicyNotFoundError("p-1")
	assert.Same(t, original, Normalize(original))
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name    string
		err     *StandardError
		code    string
		retries int
	}{
		{"retryable store error", NewSessionStoreUnavailableError("save", stderrors.New("x")), "SESSION_STORE_UNAVAILABLE", 3},
		{"search timeout", NewSearchTimeoutError("policies"), "SEARCH_TIMEOUT", 2},
		{"business error", NewProfileValidationFailedError("age: must be <= 150"), "PROFILE_VALIDATION_FAILED", 0},
		{"unmapped code falls back", NewRateLimitedError("/chat"), "RATE_LIMITED", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.code, bpmn.Code)
			assert.Equal(t, tt.retries, bpmn.Retries)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
			assert.Equal(t, tt.err.Message, vars["errorMessage"])
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeInvalidRequest))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrCodeProfileNotFound))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(ErrCodeRateLimited))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(ErrCodeSessionStoreUnavailable))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeInternal))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "SESSION", GetErrorCategory(ErrCodeSessionDecodeFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexNotFound))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeProfileValidationFailed))
	assert.Equal(t, "NOT_FOUND", GetErrorCategory(ErrCodePolicyNotFound))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryExecutionFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeEventPublishFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidRequest))
}
