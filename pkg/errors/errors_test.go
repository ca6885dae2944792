package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errShort = New(ErrCodeInsufficientStock, "insufficient stock")

func TestWithData_KeepsIdentity(t *testing.T) {
	withData := errShort.WithData([]int{1, 2})

	assert.True(t, errors.Is(withData, errShort))
	assert.Nil(t, errShort.Data, "sentinel is not mutated")
	assert.Equal(t, []int{1, 2}, withData.Data)
}

func TestWithf(t *testing.T) {
	detailed := errShort.Withf("product %d", 7)

	assert.Equal(t, "insufficient stock: product 7", detailed.Message)
	assert.True(t, errors.Is(detailed, errShort))
	assert.Equal(t, "insufficient stock", errShort.Message)

	wrapped := fmt.Errorf("create order: %w", detailed)
	assert.True(t, errors.Is(wrapped, errShort))
	assert.True(t, IsAppError(wrapped))
	assert.Equal(t, ErrCodeInsufficientStock, GetAppError(wrapped).Code)
}

func TestIs_DifferentCode(t *testing.T) {
	assert.False(t, errors.Is(errShort, ErrNotFound))
	assert.False(t, errors.Is(errShort, errors.New("insufficient stock")))
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, "query order failed")

	assert.Equal(t, ErrCodeInternal, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[50000] query order failed: connection refused", err.Error())

	err = Wrapf(cause, "query order %d failed", 3)
	assert.Equal(t, "query order 3 failed", err.Message)
}

func TestGetAppError_Plain(t *testing.T) {
	appErr := GetAppError(errors.New("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrCodeInternal, appErr.Code)
	assert.Equal(t, "internal error", appErr.Message)
	assert.False(t, IsAppError(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code int
		want int
	}{
		{0, http.StatusOK},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeOrderNotFound, http.StatusNotFound},
		{ErrCodeOrderExists, http.StatusConflict},
		{ErrCodeAlreadyPaid, http.StatusConflict},
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{ErrCodeExceedsBalance, http.StatusUnprocessableEntity},
		{ErrCodeRefundResolved, http.StatusUnprocessableEntity},
		{ErrCodeInvalidParams, http.StatusBadRequest},
		{ErrCodeBusinessError, http.StatusBadRequest},
		{ErrCodeDatabaseError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.code), "code %d", tt.code)
	}
}
