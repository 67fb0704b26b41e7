package response

import (
	"errors"
	"net/http"

	"github.com/example/psychly/internal/apperr"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondAppError maps the shared error kinds to a status and a user facing message
func RespondAppError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, apperr.ErrNotToday):
		status, code = http.StatusConflict, "not_today"
	case errors.Is(err, apperr.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, apperr.ErrAuthRequired):
		status, code = http.StatusUnauthorized, "auth_required"
	case errors.Is(err, apperr.ErrGeneration), errors.Is(err, apperr.ErrParse):
		status, code = http.StatusServiceUnavailable, "generation_failed"
	case errors.Is(err, apperr.ErrRetrieval):
		status, code = http.StatusServiceUnavailable, "store_unavailable"
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: apperr.Message(err),
			Code:    code,
		},
	})
}
