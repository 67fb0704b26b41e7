package content

import (
	"context"
	"fmt"

	"github.com/example/psychly/internal/ai"
	"github.com/example/psychly/internal/badge"
	"github.com/example/psychly/internal/logger"
	"github.com/example/psychly/pkg/models"
)

// Migration upgrades a record from version From to From+1 in memory
type Migration struct {
	From  int
	Name  string
	Apply func(ctx context.Context, c *models.Content) error
}

// Migrator runs the versioned migrations of content records.
// Each record is written back once, guarded by its stored schema version.
type Migrator struct {
	store      Store
	migrations []Migration
	log        *logger.Logger
}

// NewMigrator creates a migrator with the built-in migrations
func NewMigrator(store Store, gen ai.Generator, pools badge.Pools, log *logger.Logger) *Migrator {
	return &Migrator{
		store: store,
		log:   log,
		migrations: []Migration{
			{From: 1, Name: "hypothesis", Apply: hypothesisMigration(gen)},
			{From: 2, Name: "badge", Apply: badgeMigration(store, gen, pools)},
		},
	}
}

// Migrate brings c to the current schema version and stores the result.
// When another writer migrated the record first, the stored record is returned instead.
func (m *Migrator) Migrate(ctx context.Context, c *models.Content) (*models.Content, error) {
	from := c.SchemaVersion
	out := *c

	for _, mig := range m.migrations {
		if out.SchemaVersion != mig.From {
			continue
		}
		if err := mig.Apply(ctx, &out); err != nil {
			return nil, fmt.Errorf("migration %q of %s %s failed: %w", mig.Name, c.Type, c.DateKey, err)
		}
		out.SchemaVersion = mig.From + 1
	}
	if out.SchemaVersion == from {
		return &out, nil
	}

	applied, err := m.store.ApplyMigration(ctx, &out, from)
	if err != nil {
		return nil, err
	}
	if !applied {
		stored, err := m.store.Get(ctx, c.Type, c.DateKey)
		if err != nil {
			return nil, err
		}
		if stored != nil {
			return stored, nil
		}
	}

	m.log.Info("migrated content record",
		"type", c.Type, "date", c.DateKey, "from", from, "to", out.SchemaVersion)
	return &out, nil
}

// hypothesisMigration replaces the legacy question of an experiment with a generated hypothesis
func hypothesisMigration(gen ai.Generator) func(context.Context, *models.Content) error {
	return func(ctx context.Context, c *models.Content) error {
		if c.Type != models.Experiment || c.Hypothesis != "" {
			c.Question = ""
			return nil
		}
		h, err := gen.GenerateHypothesis(ctx, c.Name, c.Info)
		if err != nil {
			return err
		}
		c.Hypothesis = h.Text
		c.Rejected = h.Rejected
		c.Question = ""
		return nil
	}
}

// badgeMigration categorizes the record and assigns an unused icon
func badgeMigration(store Store, gen ai.Generator, pools badge.Pools) func(context.Context, *models.Content) error {
	return func(ctx context.Context, c *models.Content) error {
		if c.HasBadge() {
			return nil
		}
		used, err := store.UsedIcons(ctx, c.Type)
		if err != nil {
			return err
		}
		category, err := gen.Categorize(ctx, c.Type, c.Name, c.Info)
		if err != nil {
			return err
		}
		c.SetBadge(pools.For(c.Type).Assign(category, used), category)
		return nil
	}
}
