package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"wanderly/internal/shared/apperrors"
	"wanderly/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

func Success(c *gin.Context, code int, message string, data interface{}) {
	RespondJSON(c, "success", code, message, data, nil)
}

// RespondError renders err in the standard envelope. Code-tagged errors keep
// their status and code; anything else is logged and hidden behind a 500.
func RespondError(c *gin.Context, err error) {
	if appErr, ok := apperrors.As(err); ok {
		if appErr.Status >= http.StatusInternalServerError {
			logger.GetDefault().LogHTTPError(c, err, appErr.Status)
		}
		RespondJSON(c, "error", appErr.Status, appErr.Message, nil, ErrorBody{
			Code:    appErr.Code,
			Details: appErr.Details,
		})
		return
	}

	logger.GetDefault().LogHTTPError(c, err, http.StatusInternalServerError)
	RespondJSON(c, "error", http.StatusInternalServerError, "Internal server error", nil, ErrorBody{
		Code: apperrors.ErrInternal.Code,
	})
}

// RespondValidation renders binding and validator failures as VALIDATION_FAILED
// with one entry per offending field.
func RespondValidation(c *gin.Context, err error) {
	details := map[string]interface{}{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			details[toSnake(fe.Field())] = fe.Tag()
		}
	} else {
		details["body"] = err.Error()
	}

	logger.GetDefault().Debug("request validation failed", slog.String("path", c.Request.URL.Path), slog.Any("details", details))
	RespondJSON(c, "error", http.StatusBadRequest, apperrors.ErrValidation.Message, nil, ErrorBody{
		Code:    apperrors.ErrValidation.Code,
		Details: details,
	})
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
