package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/psychly/internal/database"
	"github.com/example/psychly/internal/datekey"
	"github.com/example/psychly/internal/logger"
	"github.com/example/psychly/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 1, 20, 12, 0, 0, 0, time.Local)

func newTestLedger(t *testing.T) (*Ledger, *database.StatsRepository) {
	t.Helper()
	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.InitializeSchema(ctx, db))

	store := database.NewStatsRepository(db)
	return New(store, datekey.FixedClock{T: today}, logger.Nop()), store
}

func TestRecordAnswerFirstWins(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	snap, err := l.RecordAnswer(ctx, "userA", models.Experiment, "2026-01-20", true, "milgram")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.DayCount)
	assert.Equal(t, 1, snap.Streak)
	assert.Equal(t, 1, snap.Rank)
	assert.False(t, snap.Pending)

	_, err = l.RecordAnswer(ctx, "userA", models.Experiment, "2026-01-20", false, "asch")
	require.NoError(t, err)

	a, err := l.Answer(ctx, "userA", models.Experiment, "2026-01-20")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.True(t, a.Correct)
	assert.Equal(t, "milgram", a.Guess)
}

func TestRecordAnswerStreakScenario(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	var snap Snapshot
	var err error
	for _, day := range []string{"2026-01-18", "2026-01-19", "2026-01-20"} {
		snap, err = l.RecordAnswer(ctx, "userA", models.Experiment, day, true, "guess")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, snap.DayCount)
	assert.Equal(t, 3, snap.Streak)
	assert.Equal(t, 3, snap.CorrectExperiments)

	_, err = l.RecordAnswer(ctx, "userA", models.Theory, "2026-01-20", false, "freud")
	require.NoError(t, err)
	stats, err := l.Stats(ctx, "userA")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.DayCount)
	assert.Equal(t, 3, stats.Streak)
	assert.Zero(t, stats.CorrectTheories)
}

func TestRankAcrossUsers(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	for _, day := range []string{"2026-01-18", "2026-01-19", "2026-01-20"} {
		_, err := l.RecordAnswer(ctx, "busy", models.Theory, day, false, "x")
		require.NoError(t, err)
	}
	snap, err := l.RecordAnswer(ctx, "new", models.Theory, "2026-01-20", true, "x")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Rank)

	board, err := l.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "busy", board[0].UserID)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, 3, board[0].Days)
	assert.Equal(t, 2, board[1].Rank)
}

func TestLeaderboardTiesShareRank(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	for _, user := range []string{"a", "b", "c"} {
		require.NoError(t, l.RecordView(ctx, user, "2026-01-20"))
	}
	require.NoError(t, l.RecordView(ctx, "c", "2026-01-19"))

	board, err := l.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, []int{1, 2, 2}, []int{board[0].Rank, board[1].Rank, board[2].Rank})
}

func TestEmptyUserIsNoop(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()

	snap, err := l.RecordAnswer(ctx, "", models.Experiment, "2026-01-20", true, "x")
	require.NoError(t, err)
	assert.Equal(t, Snapshot{}, snap)
	require.NoError(t, l.RecordView(ctx, "", "2026-01-20"))

	counts, err := store.DayCounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

type failingWrites struct {
	*database.StatsRepository
}

func (failingWrites) RecordAnswer(context.Context, models.Answer) (bool, error) {
	return false, errors.New("disk full")
}

func TestRecordAnswerWriteFailureIsPending(t *testing.T) {
	_, store := newTestLedger(t)
	l := New(failingWrites{store}, datekey.FixedClock{T: today}, logger.Nop())

	snap, err := l.RecordAnswer(context.Background(), "userA", models.Experiment, "2026-01-20", true, "milgram")
	require.NoError(t, err)
	assert.True(t, snap.Pending)
	assert.Equal(t, 1, snap.DayCount)
	assert.Equal(t, 1, snap.Streak)
}
