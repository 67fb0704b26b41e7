package handlers

import (
	"fmt"

	"github.com/example/psychly/internal/apperr"
	"github.com/example/psychly/internal/datekey"
	"github.com/example/psychly/pkg/models"
	"github.com/gin-gonic/gin"
)

// dateParam reads :date, accepting "today" or YYYY-MM-DD
func dateParam(c *gin.Context, clock datekey.Clock) (string, error) {
	t, err := datekey.Resolve(clock, c.Param("date"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return datekey.Key(t), nil
}

// typeParam reads :type, accepting singular and plural forms
func typeParam(c *gin.Context) (models.ContentType, error) {
	t, ok := models.ParseContentType(c.Param("type"))
	if !ok {
		return "", fmt.Errorf("%w: unknown content type %q", apperr.ErrInvalidInput, c.Param("type"))
	}
	return t, nil
}
