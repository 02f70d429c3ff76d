package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"wanderly/internal/shared/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status     string    `json:"status"`
	StatusCode int       `json:"status_code"`
	Message    string    `json:"message"`
	Errors     ErrorBody `json:"errors"`
}

func perform(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/x", nil)
	fn(c)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestRespondError_AppError(t *testing.T) {
	err := fmt.Errorf("add to cart: %w", apperrors.ErrInsufficientStock.WithDetails(map[string]interface{}{
		"available": 3,
	}))

	w, body := perform(t, func(c *gin.Context) { RespondError(c, err) })

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Errors.Code)
	assert.Equal(t, float64(3), body.Errors.Details["available"])
}

func TestRespondError_UnknownErrorIsHidden(t *testing.T) {
	w, body := perform(t, func(c *gin.Context) { RespondError(c, errors.New("pq: connection refused")) })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", body.Message)
	assert.Equal(t, "INTERNAL_ERROR", body.Errors.Code)
}

func TestRespondValidation_FieldNames(t *testing.T) {
	type req struct {
		PassengerName string `validate:"required"`
	}
	verr := validator.New().Struct(&req{})
	require.Error(t, verr)

	w, body := perform(t, func(c *gin.Context) { RespondValidation(c, verr) })

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", body.Errors.Code)
	assert.Equal(t, "required", body.Errors.Details["passenger_name"])
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 21)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 0, NewPagination(1, 0, 5).TotalPages)
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"", 1, 10},
		{"?page=3&limit=25", 3, 25},
		{"?page=-2&limit=0", 1, 10},
		{"?page=abc&limit=500", 1, 50},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/trips"+tt.query, nil)
		page, limit := ParsePagination(c, 10, 50)
		assert.Equal(t, tt.wantPage, page, tt.query)
		assert.Equal(t, tt.wantLimit, limit, tt.query)
	}
}
