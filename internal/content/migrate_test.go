package content

import (
	"context"
	"testing"

	"github.com/example/psychly/internal/apperr"
	"github.com/example/psychly/internal/badge"
	"github.com/example/psychly/internal/logger"
	"github.com/example/psychly/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMigratesLegacyExperimentOnce(t *testing.T) {
	gen := &fakeGenerator{category: "social"}
	r, store := newTestResolver(t, gen)
	ctx := context.Background()

	_, err := store.CreateIfAbsent(ctx, &models.Content{
		Type: models.Experiment, DateKey: "2026-01-10", Name: "Stanford Prison Experiment",
		Question: "What shapes behavior?", SchemaVersion: 1,
	})
	require.NoError(t, err)

	c, err := r.ResolveKey(ctx, "2026-01-10", models.Experiment)
	require.NoError(t, err)
	assert.Equal(t, "Roles shape behavior.", c.Hypothesis)
	assert.Empty(t, c.Question)
	assert.Equal(t, "social", *c.BadgeCategory)
	assert.Equal(t, "person.2.fill", *c.BadgeIcon)
	assert.Equal(t, models.CurrentSchemaVersion, c.SchemaVersion)

	_, err = r.ResolveKey(ctx, "2026-01-10", models.Experiment)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.hypotheses)
	assert.Equal(t, 1, gen.categorized)

	stored, err := store.Get(ctx, models.Experiment, "2026-01-10")
	require.NoError(t, err)
	assert.Equal(t, models.CurrentSchemaVersion, stored.SchemaVersion)
	assert.Equal(t, "Roles shape behavior.", stored.Hypothesis)
}

func TestMigrateBadgeOnlyForTheory(t *testing.T) {
	gen := &fakeGenerator{category: "humanistic"}
	r, store := newTestResolver(t, gen)
	ctx := context.Background()

	_, err := store.CreateIfAbsent(ctx, &models.Content{
		Type: models.Theory, DateKey: "2026-01-11", Name: "Maslow's Hierarchy of Needs", SchemaVersion: 2,
	})
	require.NoError(t, err)

	c, err := r.ResolveKey(ctx, "2026-01-11", models.Theory)
	require.NoError(t, err)
	assert.Equal(t, "sun.max.fill", *c.BadgeIcon)
	assert.Zero(t, gen.hypotheses)
}

func TestMigrationFailureServesDefaultsWithoutWriting(t *testing.T) {
	gen := &fakeGenerator{err: apperr.ErrGeneration}
	r, store := newTestResolver(t, gen)
	ctx := context.Background()

	_, err := store.CreateIfAbsent(ctx, &models.Content{
		Type: models.Experiment, DateKey: "2026-01-12", Name: "Little Albert Experiment",
		Question: "How do fears form?", SchemaVersion: 1,
	})
	require.NoError(t, err)

	c, err := r.ResolveKey(ctx, "2026-01-12", models.Experiment)
	require.NoError(t, err)
	assert.Equal(t, "How do fears form?", c.Hypothesis)
	assert.Equal(t, "flask.fill", *c.BadgeIcon)
	assert.Equal(t, "default", *c.BadgeCategory)

	stored, err := store.Get(ctx, models.Experiment, "2026-01-12")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.SchemaVersion)
	assert.Nil(t, stored.BadgeIcon)
}

func TestMigrateLosesToConcurrentMigration(t *testing.T) {
	gen := &fakeGenerator{category: "social"}
	store := newTestStore(t)
	ctx := context.Background()

	legacy := &models.Content{
		Type: models.Theory, DateKey: "2026-01-13", Name: "Social Learning Theory", SchemaVersion: 2,
	}
	_, err := store.CreateIfAbsent(ctx, legacy)
	require.NoError(t, err)

	done := *legacy
	done.SchemaVersion = models.CurrentSchemaVersion
	done.SetBadge("book.fill", "learning")
	applied, err := store.ApplyMigration(ctx, &done, 2)
	require.NoError(t, err)
	require.True(t, applied)

	m := NewMigrator(store, gen, badge.DefaultPools(), logger.Nop())
	m.migrations = m.migrations[:1]
	legacy.SchemaVersion = 1
	got, err := m.Migrate(ctx, legacy)
	require.NoError(t, err)
	assert.Equal(t, "book.fill", *got.BadgeIcon)
}
