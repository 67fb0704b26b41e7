// Package quiz ties content, grading and the ledger together into the daily guessing game.
package quiz

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/example/psychly/internal/ai"
	"github.com/example/psychly/internal/apperr"
	"github.com/example/psychly/internal/ledger"
	"github.com/example/psychly/internal/logger"
	"github.com/example/psychly/pkg/models"
)

const maxGuessLength = 200

// Resolver returns the content of a day
type Resolver interface {
	ResolveKey(ctx context.Context, key string, t models.ContentType) (*models.Content, error)
	Today() string
}

// Ledger records answers
type Ledger interface {
	RecordAnswer(ctx context.Context, userID string, t models.ContentType, dateKey string, correct bool, guess string) (ledger.Snapshot, error)
	Answer(ctx context.Context, userID string, t models.ContentType, dateKey string) (*models.Answer, error)
	Stats(ctx context.Context, userID string) (ledger.Snapshot, error)
}

// ContentStore lists stored content
type ContentStore interface {
	GetMany(ctx context.Context, t models.ContentType, dateKeys []string) ([]models.Content, error)
	Calendar(ctx context.Context, t models.ContentType) ([]models.CalendarDay, error)
}

// AnswerStore lists the dates a user answered correctly
type AnswerStore interface {
	CorrectDates(ctx context.Context, userID string, t models.ContentType) ([]string, error)
}

// Service runs the guessing game
type Service struct {
	resolver Resolver
	gen      ai.Generator
	ledger   Ledger
	content  ContentStore
	answers  AnswerStore
	log      *logger.Logger
}

// NewService creates a quiz service
func NewService(resolver Resolver, gen ai.Generator, ledger Ledger, content ContentStore, answers AnswerStore, log *logger.Logger) *Service {
	return &Service{
		resolver: resolver,
		gen:      gen,
		ledger:   ledger,
		content:  content,
		answers:  answers,
		log:      log,
	}
}

// Day is a day's content as one user sees it
type Day struct {
	Content  *models.Content `json:"content"`
	Answer   *models.Answer  `json:"answer,omitempty"`
	Revealed bool            `json:"revealed"`
	IsToday  bool            `json:"is_today"`
}

// GuessResult is the outcome of a guess
type GuessResult struct {
	Correct         bool            `json:"correct"`
	Reasoning       string          `json:"reasoning,omitempty"`
	AlreadyAnswered bool            `json:"already_answered"`
	Answer          models.Answer   `json:"answer"`
	Content         *models.Content `json:"content"`
	Stats           ledger.Snapshot `json:"stats"`
}

// Day returns the content of dateKey. Today's name stays hidden until the user has answered.
func (s *Service) Day(ctx context.Context, userID string, t models.ContentType, dateKey string) (*Day, error) {
	c, err := s.resolver.ResolveKey(ctx, dateKey, t)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s for %s", apperr.ErrNotFound, t, dateKey)
	}

	answer, err := s.ledger.Answer(ctx, userID, t, dateKey)
	if err != nil {
		return nil, err
	}

	day := &Day{
		Content:  c,
		Answer:   answer,
		IsToday:  dateKey == s.resolver.Today(),
		Revealed: true,
	}
	if day.IsToday && answer == nil {
		hidden := *c
		hidden.Name = ""
		day.Content = &hidden
		day.Revealed = false
	}
	return day, nil
}

// SubmitGuess grades a guess for today's content and records the first answer.
// A user who already answered gets the stored answer back unchanged.
func (s *Service) SubmitGuess(ctx context.Context, userID string, t models.ContentType, dateKey, guess string) (*GuessResult, error) {
	guess = strings.TrimSpace(guess)
	if guess == "" || utf8.RuneCountInString(guess) > maxGuessLength {
		return nil, fmt.Errorf("%w: guess must be between 1 and %d characters", apperr.ErrInvalidInput, maxGuessLength)
	}
	if dateKey != s.resolver.Today() {
		return nil, apperr.ErrNotToday
	}

	c, err := s.resolver.ResolveKey(ctx, dateKey, t)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s for %s", apperr.ErrNotFound, t, dateKey)
	}

	existing, err := s.ledger.Answer(ctx, userID, t, dateKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		stats, err := s.ledger.Stats(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &GuessResult{
			Correct:         existing.Correct,
			AlreadyAnswered: true,
			Answer:          *existing,
			Content:         c,
			Stats:           stats,
		}, nil
	}

	verdict, err := s.gen.CheckGuess(ctx, t, guess, c.Name)
	if err != nil {
		s.log.Warn("failed to check guess, counting it as incorrect", "type", t, "date", dateKey, "error", err)
		verdict = models.Verdict{Correct: false, Reasoning: "We couldn't check your guess. The answer was " + c.Name + "."}
	}

	snap, err := s.ledger.RecordAnswer(ctx, userID, t, dateKey, verdict.Correct, guess)
	if err != nil {
		return nil, err
	}

	result := &GuessResult{
		Correct:   verdict.Correct,
		Reasoning: verdict.Reasoning,
		Answer: models.Answer{
			UserID:  userID,
			Type:    t,
			DateKey: dateKey,
			Correct: verdict.Correct,
			Guess:   guess,
		},
		Content: c,
		Stats:   snap,
	}

	// a concurrent request may have stored a different first answer
	if stored, err := s.ledger.Answer(ctx, userID, t, dateKey); err == nil && stored != nil {
		result.Answer = *stored
		result.Correct = stored.Correct
	}
	return result, nil
}

// Badges lists the badges a user earned for content of type t, newest first
func (s *Service) Badges(ctx context.Context, userID string, t models.ContentType) ([]models.Badge, error) {
	if userID == "" {
		return nil, nil
	}

	dates, err := s.answers.CorrectDates(ctx, userID, t)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrRetrieval, err)
	}
	records, err := s.content.GetMany(ctx, t, dates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrRetrieval, err)
	}

	badges := make([]models.Badge, 0, len(records))
	for _, c := range records {
		category := "default"
		if c.BadgeCategory != nil && *c.BadgeCategory != "" {
			category = *c.BadgeCategory
		}
		badges = append(badges, models.Badge{
			DateKey:  c.DateKey,
			Type:     t,
			Name:     c.Name,
			Icon:     c.DisplayBadgeIcon(),
			Category: category,
		})
	}
	return badges, nil
}

// Calendar lists the days that have content of type t with their badge icons
func (s *Service) Calendar(ctx context.Context, t models.ContentType) ([]models.CalendarDay, error) {
	days, err := s.content.Calendar(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrRetrieval, err)
	}
	for i := range days {
		if days[i].BadgeIcon == "" {
			days[i].BadgeIcon = models.DefaultBadgeIcon(t)
		}
	}
	return days, nil
}
