// Package scheduler runs the daily background jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/psychly/internal/logger"
	"github.com/example/psychly/pkg/models"
	"github.com/go-co-op/gocron"
)

// PregenerateAt is when today's content is generated, just after local midnight
const PregenerateAt = "00:00:30"

// Resolver generates today's content on first access
type Resolver interface {
	ResolveKey(ctx context.Context, key string, t models.ContentType) (*models.Content, error)
	Today() string
}

// UserStore lists who gets the daily broadcast
type UserStore interface {
	GetUsersForNotification(ctx context.Context) ([]models.User, error)
}

// Notifier interface for sending notifications
type Notifier interface {
	SendDaily(ctx context.Context, user models.User) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	resolver  Resolver
	users     UserStore
	notifier  Notifier
	hour      int
	timeout   time.Duration
	log       *logger.Logger
}

// New creates a new scheduler instance; notifier may be nil when no chat front end runs
func New(resolver Resolver, users UserStore, notifier Notifier, notificationHour int, log *logger.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		resolver:  resolver,
		users:     users,
		notifier:  notifier,
		hour:      notificationHour,
		timeout:   5 * time.Minute,
		log:       log,
	}
}

// Start registers the daily jobs and runs them in the background
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Day().At(PregenerateAt).Do(s.runPregenerate); err != nil {
		return fmt.Errorf("failed to schedule content generation: %w", err)
	}

	if s.notifier != nil {
		at := fmt.Sprintf("%02d:00", s.hour)
		if _, err := s.scheduler.Every(1).Day().At(at).Do(s.runBroadcast); err != nil {
			return fmt.Errorf("failed to schedule daily broadcast: %w", err)
		}
		s.log.Info("daily broadcast scheduled", "at", at)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runPregenerate() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.Pregenerate(ctx); err != nil {
		s.log.Error("content generation failed", "error", err)
	}
}

func (s *Scheduler) runBroadcast() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.Broadcast(ctx); err != nil {
		s.log.Error("daily broadcast failed", "error", err)
	}
}

// Pregenerate resolves today's record of every content type so the first visitor doesn't wait
func (s *Scheduler) Pregenerate(ctx context.Context) error {
	today := s.resolver.Today()

	var errs []error
	for _, t := range models.ContentTypes {
		c, err := s.resolver.ResolveKey(ctx, today, t)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t, err))
			continue
		}
		if c == nil {
			continue
		}
		s.log.Info("daily content ready", "type", t, "date", today, "name", c.Name)
	}
	return errors.Join(errs...)
}

// Broadcast sends the daily message to every user with notifications enabled.
// A failure for one user does not stop the others.
func (s *Scheduler) Broadcast(ctx context.Context) error {
	if s.notifier == nil {
		return nil
	}

	users, err := s.users.GetUsersForNotification(ctx)
	if err != nil {
		return fmt.Errorf("failed to get users for notification: %w", err)
	}

	sent := 0
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.notifier.SendDaily(ctx, user); err != nil {
			s.log.Warn("failed to send daily message", "user", user.ID, "error", err)
			continue
		}
		sent++
	}
	s.log.Info("daily broadcast finished", "sent", sent, "users", len(users))
	return nil
}
