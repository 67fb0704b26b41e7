// Package votes keeps the per-day like/dislike tally, one vote per user.
package votes

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/psychly/internal/apperr"
	"github.com/example/psychly/internal/database"
	"github.com/example/psychly/internal/logger"
	"github.com/example/psychly/pkg/models"
)

const maxAttempts = 5

// Store is the persistence the tally needs
type Store interface {
	Get(ctx context.Context, dateKey, userID string) (models.VoteTally, error)
	Apply(ctx context.Context, dateKey, userID string, next models.VoteType, mutate database.VoteMutation) error
}

// Service records votes
type Service struct {
	store Store
	log   *logger.Logger
}

// NewService creates a vote service
func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// Transition moves the user's vote from previous to next in the tally.
// Counters never go below zero.
func Transition(tally models.VoteTally, previous, next models.VoteType) models.VoteTally {
	if previous == next {
		return tally
	}

	switch previous {
	case models.VoteLike:
		tally.LikeCount = max(tally.LikeCount-1, 0)
	case models.VoteDislike:
		tally.DislikeCount = max(tally.DislikeCount-1, 0)
	}

	switch next {
	case models.VoteLike:
		tally.LikeCount++
	case models.VoteDislike:
		tally.DislikeCount++
	}
	return tally
}

// Vote sets the user's vote for dateKey and returns the refreshed tally.
// Concurrent voters are serialized through the store's version check; a lost race is retried.
// Without a user the call does nothing and returns the current tally.
func (s *Service) Vote(ctx context.Context, dateKey, userID string, vote models.VoteType) (models.VoteTally, error) {
	if userID == "" {
		return s.Load(ctx, dateKey, "")
	}

	mutate := func(current models.VoteTally, previous models.VoteType) models.VoteTally {
		return Transition(current, previous, vote)
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = s.store.Apply(ctx, dateKey, userID, vote, mutate)
		if !errors.Is(err, database.ErrVoteConflict) {
			break
		}
		s.log.Debug("vote conflict, retrying", "date", dateKey, "attempt", attempt)
	}
	if err != nil {
		return models.VoteTally{}, fmt.Errorf("%w: failed to save vote: %w", apperr.ErrRetrieval, err)
	}

	return s.Load(ctx, dateKey, userID)
}

// Load returns the tally for dateKey with the user's own vote
func (s *Service) Load(ctx context.Context, dateKey, userID string) (models.VoteTally, error) {
	tally, err := s.store.Get(ctx, dateKey, userID)
	if err != nil {
		return models.VoteTally{}, fmt.Errorf("%w: %v", apperr.ErrRetrieval, err)
	}
	return tally, nil
}
