// Package ai wraps the generative models that write, categorize and grade the daily content.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/psychly/internal/apperr"
	"github.com/example/psychly/pkg/models"
)

// Generator produces and grades daily content
type Generator interface {
	// GenerateContent returns a new record of type t whose name is not in exclude
	GenerateContent(ctx context.Context, t models.ContentType, exclude []string) (*models.Content, error)
	// Categorize returns the badge category of a record
	Categorize(ctx context.Context, t models.ContentType, name, info string) (string, error)
	// CheckGuess decides whether guess names the same thing as actual
	CheckGuess(ctx context.Context, t models.ContentType, guess, actual string) (models.Verdict, error)
	// GenerateHypothesis returns the tested hypothesis of an experiment and whether it was rejected
	GenerateHypothesis(ctx context.Context, name, info string) (models.Hypothesis, error)
}

// Completer sends a single prompt to a text model and returns its reply
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLM implements Generator on top of any Completer
type LLM struct {
	completer  Completer
	categories map[models.ContentType][]string
}

// NewLLM creates a generator; categories lists the allowed badge categories per content type
func NewLLM(completer Completer, categories map[models.ContentType][]string) *LLM {
	return &LLM{completer: completer, categories: categories}
}

type generatedContent struct {
	Name        string `json:"name"`
	Info        string `json:"info"`
	Date        string `json:"date"`
	YearCreated string `json:"yearCreated"`
	Researchers string `json:"researchers"`
	Theorists   string `json:"theorists"`
	Hypothesis  string `json:"hypothesis"`
	Rejected    bool   `json:"rejected"`
}

// GenerateContent asks the model for a new experiment or theory
func (g *LLM) GenerateContent(ctx context.Context, t models.ContentType, exclude []string) (*models.Content, error) {
	reply, err := g.complete(ctx, contentPrompt(t, exclude))
	if err != nil {
		return nil, err
	}

	var out generatedContent
	if err := decodeJSON(reply, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Name) == "" {
		return nil, fmt.Errorf("%w: generated %s has no name", apperr.ErrParse, t)
	}
	// a current-version experiment is never revisited by the hypothesis migration
	if t == models.Experiment && strings.TrimSpace(out.Hypothesis) == "" {
		return nil, fmt.Errorf("%w: generated experiment has no hypothesis", apperr.ErrParse)
	}

	c := &models.Content{
		Type:          t,
		Name:          strings.TrimSpace(out.Name),
		Info:          strings.TrimSpace(out.Info),
		SchemaVersion: models.CurrentSchemaVersion,
	}
	if t == models.Theory {
		c.Period = out.YearCreated
		c.People = out.Theorists
	} else {
		c.Period = out.Date
		c.People = out.Researchers
		c.Hypothesis = strings.TrimSpace(out.Hypothesis)
		c.Rejected = out.Rejected
	}
	return c, nil
}

// Categorize asks the model to pick one of the configured categories.
// Anything outside the list is reported as "default".
func (g *LLM) Categorize(ctx context.Context, t models.ContentType, name, info string) (string, error) {
	allowed := g.categories[t]
	reply, err := g.complete(ctx, categoryPrompt(t, name, info, allowed))
	if err != nil {
		return "", err
	}

	category := strings.ToLower(strings.Trim(strings.TrimSpace(reply), `."'`))
	for _, c := range allowed {
		if c == category {
			return category, nil
		}
	}
	return "default", nil
}

// CheckGuess asks the model to grade a guess
func (g *LLM) CheckGuess(ctx context.Context, t models.ContentType, guess, actual string) (models.Verdict, error) {
	reply, err := g.complete(ctx, guessPrompt(t, guess, actual))
	if err != nil {
		return models.Verdict{}, err
	}

	var v models.Verdict
	if err := decodeJSON(reply, &v); err != nil {
		return models.Verdict{}, err
	}
	return v, nil
}

// GenerateHypothesis asks the model for the hypothesis an experiment tested
func (g *LLM) GenerateHypothesis(ctx context.Context, name, info string) (models.Hypothesis, error) {
	reply, err := g.complete(ctx, hypothesisPrompt(name, info))
	if err != nil {
		return models.Hypothesis{}, err
	}

	var h models.Hypothesis
	if err := decodeJSON(reply, &h); err != nil {
		return models.Hypothesis{}, err
	}
	if strings.TrimSpace(h.Text) == "" {
		return models.Hypothesis{}, fmt.Errorf("%w: empty hypothesis", apperr.ErrParse)
	}
	return h, nil
}

func (g *LLM) complete(ctx context.Context, prompt string) (string, error) {
	reply, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, apperr.ErrGeneration) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", apperr.ErrGeneration, err)
	}
	return reply, nil
}
