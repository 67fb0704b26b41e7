package handlers

import (
	"fmt"
	"net/http"

	"github.com/example/psychly/internal/api/middleware"
	"github.com/example/psychly/internal/api/response"
	"github.com/example/psychly/internal/apperr"
	"github.com/example/psychly/internal/datekey"
	"github.com/example/psychly/internal/quiz"
	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	quiz  *quiz.Service
	clock datekey.Clock
}

func NewContentHandler(quiz *quiz.Service, clock datekey.Clock) *ContentHandler {
	return &ContentHandler{quiz: quiz, clock: clock}
}

// GET /content/:type/:date
func (h *ContentHandler) GetDay(c *gin.Context) {
	t, err := typeParam(c)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	key, err := dateParam(c, h.clock)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	day, err := h.quiz.Day(c.Request.Context(), middleware.UserID(c), t, key)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, day)
}

// POST /content/:type/:date/guess
// body: { "guess": "..." }
func (h *ContentHandler) SubmitGuess(c *gin.Context) {
	t, err := typeParam(c)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	key, err := dateParam(c, h.clock)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	var req struct {
		Guess string `json:"guess" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAppError(c, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err))
		return
	}

	result, err := h.quiz.SubmitGuess(c.Request.Context(), middleware.UserID(c), t, key, req.Guess)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, result)
}

// GET /calendar/:type
func (h *ContentHandler) Calendar(c *gin.Context) {
	t, err := typeParam(c)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	days, err := h.quiz.Calendar(c.Request.Context(), t)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": t, "days": days})
}
