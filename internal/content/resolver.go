// Package content resolves the experiment or theory of a day, generating today's record on
// first access and bringing older records up to the current schema.
package content

import (
	"context"
	"fmt"
	"time"

	"github.com/example/psychly/internal/ai"
	"github.com/example/psychly/internal/apperr"
	"github.com/example/psychly/internal/badge"
	"github.com/example/psychly/internal/datekey"
	"github.com/example/psychly/internal/logger"
	"github.com/example/psychly/pkg/models"
	"golang.org/x/sync/singleflight"
)

// resolveTimeout bounds a shared lookup and generation once no single caller owns it
const resolveTimeout = 2 * time.Minute

// Store is the persistence the resolver needs
type Store interface {
	Get(ctx context.Context, t models.ContentType, dateKey string) (*models.Content, error)
	CreateIfAbsent(ctx context.Context, c *models.Content) (bool, error)
	ApplyMigration(ctx context.Context, c *models.Content, fromVersion int) (bool, error)
	Names(ctx context.Context, t models.ContentType) ([]string, error)
	UsedIcons(ctx context.Context, t models.ContentType) (map[string]bool, error)
}

// Resolver looks up, generates and migrates daily content
type Resolver struct {
	store    Store
	gen      ai.Generator
	pools    badge.Pools
	clock    datekey.Clock
	migrator *Migrator
	log      *logger.Logger
	group    singleflight.Group
}

// NewResolver creates a resolver
func NewResolver(store Store, gen ai.Generator, pools badge.Pools, clock datekey.Clock, log *logger.Logger) *Resolver {
	return &Resolver{
		store:    store,
		gen:      gen,
		pools:    pools,
		clock:    clock,
		migrator: NewMigrator(store, gen, pools, log),
		log:      log,
	}
}

// Today returns the key of the resolver's current day
func (r *Resolver) Today() string {
	return datekey.Today(r.clock)
}

// Resolve returns the record of type t for date.
// It returns nil, nil when the date has no record and is not today.
func (r *Resolver) Resolve(ctx context.Context, date time.Time, t models.ContentType) (*models.Content, error) {
	return r.ResolveKey(ctx, datekey.Key(date), t)
}

// ResolveKey is Resolve for a canonical date key
func (r *Resolver) ResolveKey(ctx context.Context, key string, t models.ContentType) (*models.Content, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown content type %q", apperr.ErrInvalidInput, t)
	}
	if _, err := datekey.Parse(key); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}

	// concurrent callers for the same record share one lookup, and one generation.
	// The shared work outlives any one caller; each caller waits only on its own ctx.
	ch := r.group.DoChan(string(t)+"/"+key, func() (interface{}, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resolveTimeout)
		defer cancel()
		return r.resolve(sctx, key, t)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	c, _ := res.Val.(*models.Content)
	if c == nil {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (r *Resolver) resolve(ctx context.Context, key string, t models.ContentType) (*models.Content, error) {
	c, err := r.store.Get(ctx, t, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrRetrieval, err)
	}

	if c != nil {
		if c.SchemaVersion >= models.CurrentSchemaVersion {
			return c, nil
		}
		migrated, err := r.migrator.Migrate(ctx, c)
		if err != nil {
			r.log.Warn("migration failed, serving record with defaults",
				"type", t, "date", key, "version", c.SchemaVersion, "error", err)
			return withDefaults(c), nil
		}
		return migrated, nil
	}

	if key != r.Today() {
		return nil, nil
	}
	return r.generate(ctx, key, t)
}

func (r *Resolver) generate(ctx context.Context, key string, t models.ContentType) (*models.Content, error) {
	names, err := r.store.Names(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrRetrieval, err)
	}

	c, err := r.gen.GenerateContent(ctx, t, names)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", t, err)
	}
	c.Type = t
	c.DateKey = key
	c.SchemaVersion = models.CurrentSchemaVersion

	category, err := r.gen.Categorize(ctx, t, c.Name, c.Info)
	if err != nil {
		return nil, fmt.Errorf("failed to categorize %s: %w", t, err)
	}
	used, err := r.store.UsedIcons(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrRetrieval, err)
	}
	c.SetBadge(r.pools.For(t).Assign(category, used), category)

	created, err := r.store.CreateIfAbsent(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrRetrieval, err)
	}
	if created {
		r.log.Info("generated daily content", "type", t, "date", key, "name", c.Name, "badge", *c.BadgeIcon)
	} else {
		r.log.Info("daily content was generated concurrently, using stored record", "type", t, "date", key)
	}

	stored, err := r.store.Get(ctx, t, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrRetrieval, err)
	}
	if stored == nil {
		return nil, fmt.Errorf("%w: %s for %s vanished after write", apperr.ErrRetrieval, t, key)
	}
	return stored, nil
}

// withDefaults fills what a failed migration could not, without persisting it
func withDefaults(c *models.Content) *models.Content {
	out := *c
	if out.Type == models.Experiment && out.Hypothesis == "" {
		out.Hypothesis = out.Question
	}
	if !out.HasBadge() {
		out.SetBadge(models.DefaultBadgeIcon(out.Type), "default")
	}
	return &out
}
