package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesOnCode(t *testing.T) {
	detailed := ErrInsufficientStock.WithDetails(map[string]interface{}{"available": 2})
	wrapped := fmt.Errorf("checkout: %w", detailed)

	assert.True(t, errors.Is(wrapped, ErrInsufficientStock))
	assert.False(t, errors.Is(wrapped, ErrEmptyCart))
	assert.Nil(t, ErrInsufficientStock.Details, "sentinel must not be mutated")
}

func TestError_As(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("repo: %w", ErrInternal.Wrap(cause))

	appErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, err, cause)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestError_WithMessage(t *testing.T) {
	err := ErrInsufficientStock.WithMessage("Insufficient stock for %s", "Mug")

	assert.Equal(t, "Insufficient stock for Mug", err.Message)
	assert.Equal(t, "INSUFFICIENT_STOCK: Insufficient stock for Mug", err.Error())
	assert.ErrorIs(t, err, ErrInsufficientStock)
}
