package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/psychly/internal/ai"
	"github.com/example/psychly/internal/api/handlers"
	"github.com/example/psychly/internal/badge"
	"github.com/example/psychly/internal/content"
	"github.com/example/psychly/internal/database"
	"github.com/example/psychly/internal/datekey"
	"github.com/example/psychly/internal/ledger"
	"github.com/example/psychly/internal/logger"
	"github.com/example/psychly/internal/quiz"
	"github.com/example/psychly/internal/votes"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.InitializeSchema(ctx, db))

	log := logger.Nop()
	clock := datekey.FixedClock{T: time.Date(2026, 1, 20, 8, 0, 0, 0, time.Local)}
	pools := badge.DefaultPools()
	gen := ai.NewFallback(pools.Categories())

	contentRepo := database.NewContentRepository(db)
	statsRepo := database.NewStatsRepository(db)
	userRepo := database.NewUserRepository(db)

	resolver := content.NewResolver(contentRepo, gen, pools, clock, log)
	l := ledger.New(statsRepo, clock, log)
	q := quiz.NewService(resolver, gen, l, contentRepo, statsRepo, log)
	v := votes.NewService(database.NewVoteRepository(db), log)

	return NewRouter(RouterConfig{
		Log:                log,
		HealthHandler:      handlers.NewHealthHandler(),
		ContentHandler:     handlers.NewContentHandler(q, clock),
		MeHandler:          handlers.NewMeHandler(l, q, userRepo, clock),
		VoteHandler:        handlers.NewVoteHandler(v, clock),
		LeaderboardHandler: handlers.NewLeaderboardHandler(l),
	})
}

func do(t *testing.T, r http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthcheck(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestGuessFlow(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/content/experiment/today", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	day := decode(t, w)
	assert.Equal(t, false, day["revealed"])

	w = do(t, r, http.MethodPost, "/api/v1/content/experiments/2026-01-20/guess", "alice", map[string]string{"guess": "stanford prison"})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode(t, w)
	assert.Equal(t, true, res["correct"])
	stats := res["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["streak"])

	w = do(t, r, http.MethodGet, "/api/v1/me/stats", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["day_count"])

	w = do(t, r, http.MethodGet, "/api/v1/me/badges/experiment", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["badges"], 1)

	w = do(t, r, http.MethodGet, "/api/v1/calendar/experiment", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["days"], 1)
}

func TestGuessErrors(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/content/experiment/2026-01-19/guess", "alice", map[string]string{"guess": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/content/poem/today/guess", "alice", map[string]string{"guess": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/content/theory/today/guess", "alice", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/content/theory/2025-12-01", "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	errBody := decode(t, w)["error"].(map[string]any)
	assert.Equal(t, "not_found", errBody["code"])
}

func TestAnonymousCallsAreNoContent(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodGet, "/api/v1/me/stats", "", nil).Code)
	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodPost, "/api/v1/me/views/today", "", nil).Code)
	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodPut, "/api/v1/votes/today", "", map[string]string{"vote": "like"}).Code)
}

func TestVotes(t *testing.T) {
	r := newTestRouter(t)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodPut, "/api/v1/votes/today", "alice", map[string]string{"vote": "like"}).Code)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPut, "/api/v1/votes/today", "bob", map[string]string{"vote": "like"}).Code)
	w := do(t, r, http.MethodPut, "/api/v1/votes/2026-01-20", "bob", map[string]string{"vote": "dislike"})
	require.Equal(t, http.StatusOK, w.Code)
	tally := decode(t, w)
	assert.EqualValues(t, 1, tally["like_count"])
	assert.EqualValues(t, 1, tally["dislike_count"])
	assert.Equal(t, "dislike", tally["user_vote"])

	w = do(t, r, http.MethodGet, "/api/v1/votes/today", "alice", nil)
	assert.Equal(t, "like", decode(t, w)["user_vote"])

	w = do(t, r, http.MethodPut, "/api/v1/votes/today", "alice", map[string]string{"vote": "love"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeaderboardShowsUsernames(t *testing.T) {
	r := newTestRouter(t)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodPut, "/api/v1/me", "alice", map[string]string{"username": "Alice"}).Code)
	require.Equal(t, http.StatusNoContent, do(t, r, http.MethodPost, "/api/v1/me/views/today", "alice", nil).Code)

	w := do(t, r, http.MethodGet, "/api/v1/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode(t, w)["entries"].([]any)
	require.Len(t, entries, 1)
	first := entries[0].(map[string]any)
	assert.Equal(t, "Alice", first["username"])
	assert.EqualValues(t, 1, first["rank"])
}
