// Package api serves the quiz over HTTP for the mobile client.
package api

import (
	"github.com/example/psychly/internal/api/handlers"
	"github.com/example/psychly/internal/api/middleware"
	"github.com/example/psychly/internal/logger"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Log *logger.Logger

	HealthHandler      *handlers.HealthHandler
	ContentHandler     *handlers.ContentHandler
	MeHandler          *handlers.MeHandler
	VoteHandler        *handlers.VoteHandler
	LeaderboardHandler *handlers.LeaderboardHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.AttachRequestContext())
	r.Use(middleware.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api/v1")
	{
		if cfg.ContentHandler != nil {
			api.GET("/content/:type/:date", cfg.ContentHandler.GetDay)
			api.POST("/content/:type/:date/guess", cfg.ContentHandler.SubmitGuess)
			api.GET("/calendar/:type", cfg.ContentHandler.Calendar)
		}

		if cfg.MeHandler != nil {
			api.PUT("/me", cfg.MeHandler.UpdateMe)
			api.GET("/me/stats", cfg.MeHandler.GetStats)
			api.POST("/me/views/:date", cfg.MeHandler.RecordView)
			api.GET("/me/badges/:type", cfg.MeHandler.GetBadges)
		}

		if cfg.LeaderboardHandler != nil {
			api.GET("/leaderboard", cfg.LeaderboardHandler.GetLeaderboard)
		}

		if cfg.VoteHandler != nil {
			api.GET("/votes/:date", cfg.VoteHandler.GetVotes)
			api.PUT("/votes/:date", cfg.VoteHandler.PutVote)
		}
	}

	return r
}
