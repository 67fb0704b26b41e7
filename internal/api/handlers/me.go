package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/example/psychly/internal/api/middleware"
	"github.com/example/psychly/internal/api/response"
	"github.com/example/psychly/internal/apperr"
	"github.com/example/psychly/internal/datekey"
	"github.com/example/psychly/internal/ledger"
	"github.com/example/psychly/internal/quiz"
	"github.com/example/psychly/pkg/models"
	"github.com/gin-gonic/gin"
)

// UserStore saves API users so the leaderboard can show their names
type UserStore interface {
	Upsert(ctx context.Context, user *models.User) error
}

type MeHandler struct {
	ledger *ledger.Ledger
	quiz   *quiz.Service
	users  UserStore
	clock  datekey.Clock
}

func NewMeHandler(ledger *ledger.Ledger, quiz *quiz.Service, users UserStore, clock datekey.Clock) *MeHandler {
	return &MeHandler{ledger: ledger, quiz: quiz, users: users, clock: clock}
}

// requireUser answers 204 for anonymous callers, matching the silent no-op of stats and votes
func requireUser(c *gin.Context) (string, bool) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.Status(http.StatusNoContent)
		return "", false
	}
	return userID, true
}

// PUT /me
// body: { "username": "..." }
func (h *MeHandler) UpdateMe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req struct {
		Username string `json:"username" binding:"max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAppError(c, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err))
		return
	}

	user := &models.User{ID: userID, Username: req.Username}
	if err := h.users.Upsert(c.Request.Context(), user); err != nil {
		response.RespondAppError(c, fmt.Errorf("%w: %v", apperr.ErrRetrieval, err))
		return
	}
	response.RespondOK(c, gin.H{"id": userID, "username": req.Username})
}

// GET /me/stats
func (h *MeHandler) GetStats(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	snap, err := h.ledger.Stats(c.Request.Context(), userID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, snap)
}

// POST /me/views/:date
func (h *MeHandler) RecordView(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	key, err := dateParam(c, h.clock)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	if err := h.ledger.RecordView(c.Request.Context(), userID, key); err != nil {
		response.RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /me/badges/:type
func (h *MeHandler) GetBadges(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	t, err := typeParam(c)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	badges, err := h.quiz.Badges(c.Request.Context(), userID, t)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": t, "badges": badges})
}
