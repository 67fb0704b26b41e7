package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/psychly/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens the database selected by cfg and makes sure the schema exists
func Connect(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.DBType {
	case "postgres":
		db, err = sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	default:
		if dir := filepath.Dir(cfg.DBPath); dir != "." && cfg.DBPath != ":memory:" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		db, err = OpenSQLite(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
	}

	if err := InitializeSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens a SQLite database; ":memory:" gives a private in-memory database
func OpenSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// SQLite doesn't support multiple writers, and every in-memory connection
	// would otherwise see its own empty database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return db, nil
}

// schema is valid for both SQLite and PostgreSQL
var schema = []struct {
	name string
	ddl  string
}{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			chat_id BIGINT NOT NULL DEFAULT 0,
			username TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{"content", `
		CREATE TABLE IF NOT EXISTS content (
			content_type TEXT NOT NULL,
			date_key TEXT NOT NULL,
			name TEXT NOT NULL,
			info TEXT NOT NULL DEFAULT '',
			period TEXT NOT NULL DEFAULT '',
			people TEXT NOT NULL DEFAULT '',
			hypothesis TEXT NOT NULL DEFAULT '',
			rejected BOOLEAN NOT NULL DEFAULT FALSE,
			question TEXT NOT NULL DEFAULT '',
			badge_icon TEXT,
			badge_category TEXT,
			schema_version INTEGER NOT NULL DEFAULT 3,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (content_type, date_key)
		)`},
	{"answers", `
		CREATE TABLE IF NOT EXISTS answers (
			user_id TEXT NOT NULL,
			content_type TEXT NOT NULL,
			date_key TEXT NOT NULL,
			correct BOOLEAN NOT NULL,
			guess TEXT NOT NULL DEFAULT '',
			answered_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, content_type, date_key)
		)`},
	{"viewed_dates", `
		CREATE TABLE IF NOT EXISTS viewed_dates (
			user_id TEXT NOT NULL,
			date_key TEXT NOT NULL,
			PRIMARY KEY (user_id, date_key)
		)`},
	{"daily_votes", `
		CREATE TABLE IF NOT EXISTS daily_votes (
			date_key TEXT PRIMARY KEY,
			like_count INTEGER NOT NULL DEFAULT 0,
			dislike_count INTEGER NOT NULL DEFAULT 0,
			version BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{"user_votes", `
		CREATE TABLE IF NOT EXISTS user_votes (
			date_key TEXT NOT NULL,
			user_id TEXT NOT NULL,
			vote TEXT NOT NULL,
			PRIMARY KEY (date_key, user_id)
		)`},
}

// InitializeSchema creates necessary tables if they don't exist
func InitializeSchema(ctx context.Context, db *sqlx.DB) error {
	for _, table := range schema {
		if _, err := db.ExecContext(ctx, table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}
	return nil
}
