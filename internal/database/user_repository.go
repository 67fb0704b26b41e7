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

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a user by ID, or nil when unknown
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`
		SELECT id, chat_id, username, first_name, notification_enabled, created_at, updated_at
		FROM users WHERE id = ?
	`)
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return &user, nil
}

// Upsert inserts a new user or refreshes the profile fields of an existing one.
// The notification preference of an existing user is left untouched, as is a known chat ID
// when the update carries none.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	now := time.Now()
	query := r.db.Rebind(`
		INSERT INTO users (id, chat_id, username, first_name, notification_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			chat_id = CASE WHEN excluded.chat_id <> 0 THEN excluded.chat_id ELSE users.chat_id END,
			username = excluded.username,
			first_name = excluded.first_name,
			updated_at = excluded.updated_at
	`)
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.ChatID, user.Username, user.FirstName, user.NotificationEnabled, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create/update user: %w", err)
	}
	return nil
}

// SetNotifications turns the daily broadcast on or off for a user
func (r *UserRepository) SetNotifications(ctx context.Context, id string, enabled bool) error {
	query := r.db.Rebind(`UPDATE users SET notification_enabled = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, enabled, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update notifications: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %s not found", id)
	}
	return nil
}

// GetUsersForNotification returns users with a chat and notifications enabled
func (r *UserRepository) GetUsersForNotification(ctx context.Context) ([]models.User, error) {
	var users []models.User
	query := r.db.Rebind(`
		SELECT id, chat_id, username, first_name, notification_enabled, created_at, updated_at
		FROM users
		WHERE notification_enabled = ? AND chat_id <> 0
		ORDER BY created_at
	`)
	if err := r.db.SelectContext(ctx, &users, query, true); err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %w", err)
	}
	return users, nil
}
