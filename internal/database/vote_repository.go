package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/psychly/pkg/models"
	"github.com/jmoiron/sqlx"
)

// ErrVoteConflict is returned when the tally changed between read and write
var ErrVoteConflict = errors.New("vote tally was modified concurrently")

// VoteMutation computes the next tally from the current one and the user's previous vote
type VoteMutation func(current models.VoteTally, previous models.VoteType) models.VoteTally

// VoteRepository handles database operations for daily like/dislike tallies
type VoteRepository struct {
	db *sqlx.DB
}

// NewVoteRepository creates a new repository instance
func NewVoteRepository(db *sqlx.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Get returns the tally for dateKey with the user's own vote filled in.
// A date nobody voted on yields a zero tally.
func (r *VoteRepository) Get(ctx context.Context, dateKey, userID string) (models.VoteTally, error) {
	tally := models.VoteTally{DateKey: dateKey}

	query := r.db.Rebind(`SELECT date_key, like_count, dislike_count FROM daily_votes WHERE date_key = ?`)
	err := r.db.GetContext(ctx, &tally, query, dateKey)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return tally, fmt.Errorf("failed to get votes: %w", err)
	}

	if userID != "" {
		vote, err := userVote(ctx, r.db, dateKey, userID)
		if err != nil {
			return tally, err
		}
		tally.UserVote = vote
	}
	return tally, nil
}

// Apply runs one read-modify-write of the tally for dateKey in a transaction.
// The update is guarded by the row version; ErrVoteConflict means another writer won
// and the caller should retry.
func (r *VoteRepository) Apply(ctx context.Context, dateKey, userID string, next models.VoteType, mutate VoteMutation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO daily_votes (date_key, like_count, dislike_count, version, updated_at)
		VALUES (?, 0, 0, 0, ?)
		ON CONFLICT (date_key) DO NOTHING
	`), dateKey, time.Now())
	if err != nil {
		return fmt.Errorf("failed to create tally: %w", err)
	}

	var row struct {
		models.VoteTally
		Version int64 `db:"version"`
	}
	err = tx.GetContext(ctx, &row, tx.Rebind(`
		SELECT date_key, like_count, dislike_count, version FROM daily_votes WHERE date_key = ?
	`), dateKey)
	if err != nil {
		return fmt.Errorf("failed to read tally: %w", err)
	}

	previous, err := userVote(ctx, tx, dateKey, userID)
	if err != nil {
		return err
	}

	updated := mutate(row.VoteTally, previous)

	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE daily_votes
		SET like_count = ?, dislike_count = ?, version = version + 1, updated_at = ?
		WHERE date_key = ? AND version = ?
	`), updated.LikeCount, updated.DislikeCount, time.Now(), dateKey, row.Version)
	if err != nil {
		return fmt.Errorf("failed to update tally: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrVoteConflict
	}

	if next == models.VoteNone {
		_, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM user_votes WHERE date_key = ? AND user_id = ?`), dateKey, userID)
	} else {
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO user_votes (date_key, user_id, vote) VALUES (?, ?, ?)
			ON CONFLICT (date_key, user_id) DO UPDATE SET vote = excluded.vote
		`), dateKey, userID, next)
	}
	if err != nil {
		return fmt.Errorf("failed to store user vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func userVote(ctx context.Context, ext sqlx.ExtContext, dateKey, userID string) (models.VoteType, error) {
	var votes []string
	query := ext.Rebind(`SELECT vote FROM user_votes WHERE date_key = ? AND user_id = ?`)
	if err := sqlx.SelectContext(ctx, ext, &votes, query, dateKey, userID); err != nil {
		return models.VoteNone, fmt.Errorf("failed to get user vote: %w", err)
	}
	if len(votes) == 0 {
		return models.VoteNone, nil
	}
	return models.VoteType(votes[0]), nil
}
