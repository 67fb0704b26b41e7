package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/example/psychly/internal/api/middleware"
	"github.com/example/psychly/internal/api/response"
	"github.com/example/psychly/internal/apperr"
	"github.com/example/psychly/internal/datekey"
	"github.com/example/psychly/internal/ledger"
	"github.com/example/psychly/internal/votes"
	"github.com/example/psychly/pkg/models"
	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *votes.Service
	clock datekey.Clock
}

func NewVoteHandler(votes *votes.Service, clock datekey.Clock) *VoteHandler {
	return &VoteHandler{votes: votes, clock: clock}
}

// GET /votes/:date
func (h *VoteHandler) GetVotes(c *gin.Context) {
	key, err := dateParam(c, h.clock)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	tally, err := h.votes.Load(c.Request.Context(), key, middleware.UserID(c))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, tally)
}

// PUT /votes/:date
// body: { "vote": "like" | "dislike" | "none" }
func (h *VoteHandler) PutVote(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	key, err := dateParam(c, h.clock)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	var req struct {
		Vote string `json:"vote"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAppError(c, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err))
		return
	}
	vote, ok := models.ParseVoteType(req.Vote)
	if !ok {
		response.RespondAppError(c, fmt.Errorf("%w: unknown vote %q", apperr.ErrInvalidInput, req.Vote))
		return
	}

	tally, err := h.votes.Vote(c.Request.Context(), key, userID, vote)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, tally)
}

type LeaderboardHandler struct {
	ledger *ledger.Ledger
}

func NewLeaderboardHandler(ledger *ledger.Ledger) *LeaderboardHandler {
	return &LeaderboardHandler{ledger: ledger}
}

// GET /leaderboard?limit=10
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, err := h.ledger.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
