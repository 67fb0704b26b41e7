// Package ledger keeps each user's answers and viewed days and derives day count, streak and
// world rank from them.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/example/psychly/internal/apperr"
	"github.com/example/psychly/internal/datekey"
	"github.com/example/psychly/internal/logger"
	"github.com/example/psychly/pkg/models"
)

// Store is the persistence the ledger needs
type Store interface {
	Load(ctx context.Context, userID string) (*models.UserStats, error)
	GetAnswer(ctx context.Context, userID string, t models.ContentType, dateKey string) (*models.Answer, error)
	RecordAnswer(ctx context.Context, a models.Answer) (bool, error)
	AddViewedDate(ctx context.Context, userID, dateKey string) error
	DayCounts(ctx context.Context) ([]int, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// Snapshot is a user's derived stats at one point in time
type Snapshot struct {
	UserID             string `json:"user_id"`
	DayCount           int    `json:"day_count"`
	Streak             int    `json:"streak"`
	Rank               int    `json:"rank"`
	CorrectExperiments int    `json:"correct_experiments"`
	CorrectTheories    int    `json:"correct_theories"`
	// Pending is set when the local update could not be written to the store
	Pending bool `json:"pending,omitempty"`
}

// Ledger records answers and views
type Ledger struct {
	store Store
	clock datekey.Clock
	log   *logger.Logger
}

// New creates a ledger
func New(store Store, clock datekey.Clock, log *logger.Logger) *Ledger {
	return &Ledger{store: store, clock: clock, log: log}
}

// RecordAnswer stores the first answer of a user for (t, dateKey) and returns the updated
// snapshot. Later answers for the same key leave the stored one untouched. A failed write is
// logged and reported through Snapshot.Pending rather than as an error. Without a user the
// call does nothing.
func (l *Ledger) RecordAnswer(ctx context.Context, userID string, t models.ContentType, dateKey string, correct bool, guess string) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, nil
	}

	stats, err := l.store.Load(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", apperr.ErrRetrieval, err)
	}
	if _, ok := stats.Answers(t)[dateKey]; ok {
		return l.snapshot(ctx, stats), nil
	}

	a := models.Answer{
		UserID:     userID,
		Type:       t,
		DateKey:    dateKey,
		Correct:    correct,
		Guess:      guess,
		AnsweredAt: time.Now(),
	}
	stats.Answers(t)[dateKey] = a
	stats.ViewedDates[dateKey] = true

	pending := false
	inserted, err := l.store.RecordAnswer(ctx, a)
	switch {
	case err != nil:
		l.log.Error("failed to save answer", "user", userID, "type", t, "date", dateKey, "error", err)
		pending = true
	case !inserted:
		// another request answered first; its answer is the one that counts
		if fresh, err := l.store.Load(ctx, userID); err == nil {
			stats = fresh
		}
	}

	snap := l.snapshot(ctx, stats)
	snap.Pending = pending
	return snap, nil
}

// RecordView marks dateKey as viewed by the user
func (l *Ledger) RecordView(ctx context.Context, userID, dateKey string) error {
	if userID == "" {
		return nil
	}
	if err := l.store.AddViewedDate(ctx, userID, dateKey); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrRetrieval, err)
	}
	return nil
}

// Stats returns the current snapshot of a user
func (l *Ledger) Stats(ctx context.Context, userID string) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, nil
	}
	stats, err := l.store.Load(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", apperr.ErrRetrieval, err)
	}
	return l.snapshot(ctx, stats), nil
}

// Answer returns the user's stored answer for (t, dateKey), or nil
func (l *Ledger) Answer(ctx context.Context, userID string, t models.ContentType, dateKey string) (*models.Answer, error) {
	if userID == "" {
		return nil, nil
	}
	a, err := l.store.GetAnswer(ctx, userID, t, dateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrRetrieval, err)
	}
	return a, nil
}

// Leaderboard returns the top users by day count; tied users share a rank
func (l *Ledger) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	entries, err := l.store.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrRetrieval, err)
	}

	for i := range entries {
		if i > 0 && entries[i].Days == entries[i-1].Days {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
	return entries, nil
}

func (l *Ledger) snapshot(ctx context.Context, stats *models.UserStats) Snapshot {
	snap := Snapshot{
		UserID:   stats.UserID,
		DayCount: len(stats.ViewedDates),
		Streak:   Streak(datekey.Today(l.clock), stats),
	}
	for _, a := range stats.ExperimentAnswers {
		if a.Correct {
			snap.CorrectExperiments++
		}
	}
	for _, a := range stats.TheoryAnswers {
		if a.Correct {
			snap.CorrectTheories++
		}
	}

	counts, err := l.store.DayCounts(ctx)
	if err != nil {
		l.log.Warn("failed to load day counts for rank", "user", stats.UserID, "error", err)
		return snap
	}
	snap.Rank = WorldRank(counts, snap.DayCount)
	return snap
}
