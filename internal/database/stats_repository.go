package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/psychly/pkg/models"
	"github.com/jmoiron/sqlx"
)

// StatsRepository handles database operations for the per-user answer ledger
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new repository instance
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Load returns the viewed dates and answers of a user; unknown users get empty stats
func (r *StatsRepository) Load(ctx context.Context, userID string) (*models.UserStats, error) {
	stats := models.NewUserStats(userID)

	var dates []string
	query := r.db.Rebind(`SELECT date_key FROM viewed_dates WHERE user_id = ?`)
	if err := r.db.SelectContext(ctx, &dates, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get viewed dates: %w", err)
	}
	for _, d := range dates {
		stats.ViewedDates[d] = true
	}

	var answers []models.Answer
	query = r.db.Rebind(`
		SELECT user_id, content_type, date_key, correct, guess, answered_at
		FROM answers
		WHERE user_id = ?
	`)
	if err := r.db.SelectContext(ctx, &answers, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}
	for _, a := range answers {
		stats.Answers(a.Type)[a.DateKey] = a
	}

	return stats, nil
}

// GetAnswer returns the stored answer for (user, type, date), or nil
func (r *StatsRepository) GetAnswer(ctx context.Context, userID string, t models.ContentType, dateKey string) (*models.Answer, error) {
	var answers []models.Answer
	query := r.db.Rebind(`
		SELECT user_id, content_type, date_key, correct, guess, answered_at
		FROM answers
		WHERE user_id = ? AND content_type = ? AND date_key = ?
	`)
	if err := r.db.SelectContext(ctx, &answers, query, userID, t, dateKey); err != nil {
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	if len(answers) == 0 {
		return nil, nil
	}
	return &answers[0], nil
}

// RecordAnswer stores the first answer for (user, type, date) and marks the date viewed.
// A second answer for the same key is ignored; the result reports whether this call stored it.
func (r *StatsRepository) RecordAnswer(ctx context.Context, a models.Answer) (bool, error) {
	if a.AnsweredAt.IsZero() {
		a.AnsweredAt = time.Now()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO answers (user_id, content_type, date_key, correct, guess, answered_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, content_type, date_key) DO NOTHING
	`), a.UserID, a.Type, a.DateKey, a.Correct, a.Guess, a.AnsweredAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert answer: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	if err := addViewedDate(ctx, tx, a.UserID, a.DateKey); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// AddViewedDate marks dateKey as viewed by the user
func (r *StatsRepository) AddViewedDate(ctx context.Context, userID, dateKey string) error {
	return addViewedDate(ctx, r.db, userID, dateKey)
}

func addViewedDate(ctx context.Context, ext sqlx.ExtContext, userID, dateKey string) error {
	query := ext.Rebind(`
		INSERT INTO viewed_dates (user_id, date_key) VALUES (?, ?)
		ON CONFLICT (user_id, date_key) DO NOTHING
	`)
	if _, err := ext.ExecContext(ctx, query, userID, dateKey); err != nil {
		return fmt.Errorf("failed to record viewed date: %w", err)
	}
	return nil
}

// DayCounts returns the number of viewed dates of every user that has viewed at least one
func (r *StatsRepository) DayCounts(ctx context.Context) ([]int, error) {
	var counts []int
	query := `SELECT COUNT(*) FROM viewed_dates GROUP BY user_id`
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("failed to get day counts: %w", err)
	}
	return counts, nil
}

// Leaderboard returns the users with the most viewed dates
func (r *StatsRepository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	query := r.db.Rebind(`
		SELECT v.user_id, COALESCE(u.username, '') AS username, COUNT(*) AS days
		FROM viewed_dates v
		LEFT JOIN users u ON u.id = v.user_id
		GROUP BY v.user_id, u.username
		ORDER BY days DESC, v.user_id
		LIMIT ?
	`)
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return entries, nil
}

// CorrectDates lists the dates on which the user answered content of type t correctly
func (r *StatsRepository) CorrectDates(ctx context.Context, userID string, t models.ContentType) ([]string, error) {
	var dates []string
	query := r.db.Rebind(`
		SELECT date_key FROM answers
		WHERE user_id = ? AND content_type = ? AND correct = ?
		ORDER BY date_key DESC
	`)
	if err := r.db.SelectContext(ctx, &dates, query, userID, t, true); err != nil {
		return nil, fmt.Errorf("failed to get correct dates: %w", err)
	}
	return dates, nil
}
