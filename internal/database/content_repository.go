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

const contentColumns = `content_type, date_key, name, info, period, people, hypothesis, rejected,
	question, badge_icon, badge_category, schema_version, created_at, updated_at`

// ContentRepository handles database operations for daily content records
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository creates a new repository instance
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Get returns the record stored at (t, dateKey), or nil when there is none
func (r *ContentRepository) Get(ctx context.Context, t models.ContentType, dateKey string) (*models.Content, error) {
	var c models.Content
	query := r.db.Rebind(`SELECT ` + contentColumns + ` FROM content WHERE content_type = ? AND date_key = ?`)
	err := r.db.GetContext(ctx, &c, query, t, dateKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s for %s: %w", t, dateKey, err)
	}
	return &c, nil
}

// GetMany returns the records of type t stored at any of dateKeys, newest first
func (r *ContentRepository) GetMany(ctx context.Context, t models.ContentType, dateKeys []string) ([]models.Content, error) {
	if len(dateKeys) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+contentColumns+` FROM content
		WHERE content_type = ? AND date_key IN (?)
		ORDER BY date_key DESC`, t, dateKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to build content query: %w", err)
	}

	var out []models.Content
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get %s records: %w", t, err)
	}
	return out, nil
}

// CreateIfAbsent inserts c unless a record already exists at its key.
// It reports whether this call created the record.
func (r *ContentRepository) CreateIfAbsent(ctx context.Context, c *models.Content) (bool, error) {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	query := r.db.Rebind(`
		INSERT INTO content (` + contentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (content_type, date_key) DO NOTHING
	`)
	res, err := r.db.ExecContext(ctx, query,
		c.Type, c.DateKey, c.Name, c.Info, c.Period, c.People, c.Hypothesis, c.Rejected,
		c.Question, c.BadgeIcon, c.BadgeCategory, c.SchemaVersion, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create %s for %s: %w", c.Type, c.DateKey, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// Upsert creates or fully replaces the record at c's key and reports whether it was created
func (r *ContentRepository) Upsert(ctx context.Context, c *models.Content) (bool, error) {
	existing, err := r.Get(ctx, c.Type, c.DateKey)
	if err != nil {
		return false, err
	}
	if existing == nil {
		created, err := r.CreateIfAbsent(ctx, c)
		if err != nil || created {
			return created, err
		}
	}

	query := r.db.Rebind(`
		UPDATE content SET
			name = ?, info = ?, period = ?, people = ?, hypothesis = ?, rejected = ?,
			question = ?, badge_icon = ?, badge_category = ?, schema_version = ?, updated_at = ?
		WHERE content_type = ? AND date_key = ?
	`)
	_, err = r.db.ExecContext(ctx, query,
		c.Name, c.Info, c.Period, c.People, c.Hypothesis, c.Rejected,
		c.Question, c.BadgeIcon, c.BadgeCategory, c.SchemaVersion, time.Now(),
		c.Type, c.DateKey,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update %s for %s: %w", c.Type, c.DateKey, err)
	}
	return false, nil
}

// ApplyMigration merge-writes the fields a migration may fill in. The write only lands
// when the stored schema version still equals fromVersion, so a record is migrated once.
func (r *ContentRepository) ApplyMigration(ctx context.Context, c *models.Content, fromVersion int) (bool, error) {
	query := r.db.Rebind(`
		UPDATE content SET
			hypothesis = ?, rejected = ?, question = ?,
			badge_icon = ?, badge_category = ?,
			schema_version = ?, updated_at = ?
		WHERE content_type = ? AND date_key = ? AND schema_version = ?
	`)
	res, err := r.db.ExecContext(ctx, query,
		c.Hypothesis, c.Rejected, c.Question,
		c.BadgeIcon, c.BadgeCategory,
		c.SchemaVersion, time.Now(),
		c.Type, c.DateKey, fromVersion,
	)
	if err != nil {
		return false, fmt.Errorf("failed to migrate %s for %s: %w", c.Type, c.DateKey, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// Outdated returns every record stored below schema version, oldest first
func (r *ContentRepository) Outdated(ctx context.Context, version int) ([]models.Content, error) {
	var out []models.Content
	query := r.db.Rebind(`SELECT ` + contentColumns + ` FROM content WHERE schema_version < ? ORDER BY date_key, content_type`)
	if err := r.db.SelectContext(ctx, &out, query, version); err != nil {
		return nil, fmt.Errorf("failed to get outdated records: %w", err)
	}
	return out, nil
}

// Names returns the names of every stored record of type t
func (r *ContentRepository) Names(ctx context.Context, t models.ContentType) ([]string, error) {
	var names []string
	query := r.db.Rebind(`SELECT name FROM content WHERE content_type = ? ORDER BY date_key`)
	if err := r.db.SelectContext(ctx, &names, query, t); err != nil {
		return nil, fmt.Errorf("failed to get %s names: %w", t, err)
	}
	return names, nil
}

// UsedIcons returns the badge icons already assigned to records of type t
func (r *ContentRepository) UsedIcons(ctx context.Context, t models.ContentType) (map[string]bool, error) {
	var icons []string
	query := r.db.Rebind(`SELECT badge_icon FROM content WHERE content_type = ? AND badge_icon IS NOT NULL`)
	if err := r.db.SelectContext(ctx, &icons, query, t); err != nil {
		return nil, fmt.Errorf("failed to get used %s icons: %w", t, err)
	}

	used := make(map[string]bool, len(icons))
	for _, icon := range icons {
		used[icon] = true
	}
	return used, nil
}

// Calendar lists the dates that have a record of type t along with their badge icons
func (r *ContentRepository) Calendar(ctx context.Context, t models.ContentType) ([]models.CalendarDay, error) {
	var days []models.CalendarDay
	query := r.db.Rebind(`
		SELECT date_key, COALESCE(badge_icon, '') AS badge_icon
		FROM content
		WHERE content_type = ?
		ORDER BY date_key
	`)
	if err := r.db.SelectContext(ctx, &days, query, t); err != nil {
		return nil, fmt.Errorf("failed to get %s calendar: %w", t, err)
	}
	return days, nil
}
