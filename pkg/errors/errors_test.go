package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection reset")
	err := Wrap(CodeDependency, cause, "failed to reach smtp server")

	assert.Equal(t, CodeDependency, err.Code())
	assert.Equal(t, "failed to reach smtp server", err.Message())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "DEPENDENCY_ERROR: failed to reach smtp server", err.Error())
}

func TestWrapNilCause(t *testing.T) {
	err := Wrap(CodeNotFound, nil, "Product not found")
	assert.Equal(t, CodeNotFound, err.Code())
	assert.NoError(t, err.Unwrap())
}

func TestAsUnwrapsNestedError(t *testing.T) {
	inner := New(CodeConflict, "User already exists")
	wrapped := fmt.Errorf("register: %w", inner)

	typed := As(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, CodeConflict, typed.Code())

	assert.Nil(t, As(stdErrors.New("plain error")))
	assert.Nil(t, As(nil))
}

func TestWithDetails(t *testing.T) {
	details := map[string]string{"quantity": "must be positive"}
	err := New(CodeValidation, "Missing fields").WithDetails(details)
	assert.Equal(t, details, err.Details())
}

func TestMetadataForKnownCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeInsufficientStock, http.StatusBadRequest},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodePendingApproval, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeRateLimit, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{CodeDependency, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, MetadataFor(tc.code).HTTPStatus, "code %s", tc.code)
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestNilReceiverIsSafe(t *testing.T) {
	var err *Error
	assert.Equal(t, CodeInternal, err.Code())
	assert.Empty(t, err.Message())
	assert.Nil(t, err.Details())
	assert.Nil(t, err.WithDetails("ignored"))
	assert.Empty(t, err.Error())
	assert.NoError(t, err.Unwrap())
}
