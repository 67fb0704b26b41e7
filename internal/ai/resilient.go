package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/psychly/internal/apperr"
	"github.com/example/psychly/internal/logger"
	"github.com/example/psychly/pkg/models"
)

// Resilient runs every call on the primary generator and answers from the fallback when the
// primary is unreachable or replies with something unparseable
type Resilient struct {
	primary  Generator
	fallback Generator
	log      *logger.Logger
}

// WithFallback wraps primary so its failures are served by fallback
func WithFallback(primary, fallback Generator, log *logger.Logger) *Resilient {
	return &Resilient{primary: primary, fallback: fallback, log: log}
}

func withFallback[T any](ctx context.Context, r *Resilient, op string, primary, fallback func() (T, error)) (T, error) {
	v, err := primary()
	if err == nil {
		return v, nil
	}

	var zero T
	if ctx.Err() != nil {
		return zero, fmt.Errorf("%w: %v", apperr.ErrGeneration, ctx.Err())
	}
	if !errors.Is(err, apperr.ErrGeneration) && !errors.Is(err, apperr.ErrParse) {
		return zero, err
	}

	r.log.Warn("generator failed, using fallback", "op", op, "error", err)
	return fallback()
}

// GenerateContent implements Generator
func (r *Resilient) GenerateContent(ctx context.Context, t models.ContentType, exclude []string) (*models.Content, error) {
	return withFallback(ctx, r, "generate",
		func() (*models.Content, error) { return r.primary.GenerateContent(ctx, t, exclude) },
		func() (*models.Content, error) { return r.fallback.GenerateContent(ctx, t, exclude) },
	)
}

// Categorize implements Generator
func (r *Resilient) Categorize(ctx context.Context, t models.ContentType, name, info string) (string, error) {
	return withFallback(ctx, r, "categorize",
		func() (string, error) { return r.primary.Categorize(ctx, t, name, info) },
		func() (string, error) { return r.fallback.Categorize(ctx, t, name, info) },
	)
}

// CheckGuess implements Generator
func (r *Resilient) CheckGuess(ctx context.Context, t models.ContentType, guess, actual string) (models.Verdict, error) {
	return withFallback(ctx, r, "check_guess",
		func() (models.Verdict, error) { return r.primary.CheckGuess(ctx, t, guess, actual) },
		func() (models.Verdict, error) { return r.fallback.CheckGuess(ctx, t, guess, actual) },
	)
}

// GenerateHypothesis implements Generator
func (r *Resilient) GenerateHypothesis(ctx context.Context, name, info string) (models.Hypothesis, error) {
	return withFallback(ctx, r, "hypothesis",
		func() (models.Hypothesis, error) { return r.primary.GenerateHypothesis(ctx, name, info) },
		func() (models.Hypothesis, error) { return r.fallback.GenerateHypothesis(ctx, name, info) },
	)
}
