package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/example/psychly/internal/apperr"
	"github.com/example/psychly/internal/logger"
	"github.com/example/psychly/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	replies []string
	err     error
	prompts []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}

var testCategories = map[models.ContentType][]string{
	models.Experiment: {"social", "obedience", "default"},
	models.Theory:     {"humanistic", "default"},
}

func TestCleanJSONStripsFences(t *testing.T) {
	in := "Sure! ```json\n{\"name\": \"Asch\"}\n``` hope this helps"
	assert.Equal(t, `{"name": "Asch"}`, cleanJSON(in))
}

func TestLLMGenerateExperiment(t *testing.T) {
	stub := &stubCompleter{replies: []string{"```json\n" + `{
		"name": "Milgram Obedience Study",
		"info": "Shocks.",
		"date": "1961",
		"researchers": "Stanley Milgram",
		"hypothesis": "Few would obey.",
		"rejected": true
	}` + "\n```"}}
	g := NewLLM(stub, testCategories)

	c, err := g.GenerateContent(context.Background(), models.Experiment, []string{"Asch Conformity Experiments"})
	require.NoError(t, err)
	assert.Equal(t, "Milgram Obedience Study", c.Name)
	assert.Equal(t, "1961", c.Period)
	assert.Equal(t, "Stanley Milgram", c.People)
	assert.Equal(t, "Few would obey.", c.Hypothesis)
	assert.True(t, c.Rejected)
	assert.Equal(t, models.CurrentSchemaVersion, c.SchemaVersion)
	assert.Contains(t, stub.prompts[0], "Asch Conformity Experiments")
}

func TestLLMGenerateTheory(t *testing.T) {
	stub := &stubCompleter{replies: []string{`{"name":"Attachment Theory","info":"Bonds.","yearCreated":"1958","theorists":"John Bowlby"}`}}
	g := NewLLM(stub, testCategories)

	c, err := g.GenerateContent(context.Background(), models.Theory, nil)
	require.NoError(t, err)
	assert.Equal(t, models.Theory, c.Type)
	assert.Equal(t, "1958", c.Period)
	assert.Equal(t, "John Bowlby", c.People)
	assert.Empty(t, c.Hypothesis)
	assert.Contains(t, stub.prompts[0], "none")
}

func TestLLMParseError(t *testing.T) {
	g := NewLLM(&stubCompleter{replies: []string{"I cannot help with that"}}, testCategories)

	_, err := g.GenerateContent(context.Background(), models.Experiment, nil)
	assert.ErrorIs(t, err, apperr.ErrParse)
}

func TestLLMExperimentWithoutHypothesisIsParseError(t *testing.T) {
	reply := `{"name":"Milgram Obedience Study","info":"Shocks.","date":"1961","researchers":"Stanley Milgram","hypothesis":"  "}`
	g := NewLLM(&stubCompleter{replies: []string{reply}}, testCategories)

	_, err := g.GenerateContent(context.Background(), models.Experiment, nil)
	assert.ErrorIs(t, err, apperr.ErrParse)

	fb := WithFallback(NewLLM(&stubCompleter{replies: []string{reply}}, testCategories), NewFallback(testCategories), logger.Nop())
	c, err := fb.GenerateContent(context.Background(), models.Experiment, nil)
	require.NoError(t, err)
	assert.Equal(t, "Stanford Prison Experiment", c.Name)
	assert.NotEmpty(t, c.Hypothesis)
}

func TestLLMCompleterErrorIsGenerationError(t *testing.T) {
	g := NewLLM(&stubCompleter{err: errors.New("connection refused")}, testCategories)

	_, err := g.CheckGuess(context.Background(), models.Experiment, "milgram", "Milgram Obedience Study")
	assert.ErrorIs(t, err, apperr.ErrGeneration)
}

func TestLLMCategorizeUnknownIsDefault(t *testing.T) {
	g := NewLLM(&stubCompleter{replies: []string{"Obedience.", "astrology"}}, testCategories)

	got, err := g.Categorize(context.Background(), models.Experiment, "Milgram", "")
	require.NoError(t, err)
	assert.Equal(t, "obedience", got)

	got, err = g.Categorize(context.Background(), models.Experiment, "Milgram", "")
	require.NoError(t, err)
	assert.Equal(t, "default", got)
}

func TestLLMHypothesis(t *testing.T) {
	g := NewLLM(&stubCompleter{replies: []string{`{"hypothesis":"Roles shape behavior.","rejected":false}`, `{"hypothesis":""}`}}, testCategories)

	h, err := g.GenerateHypothesis(context.Background(), "Stanford Prison Experiment", "")
	require.NoError(t, err)
	assert.Equal(t, "Roles shape behavior.", h.Text)

	_, err = g.GenerateHypothesis(context.Background(), "Stanford Prison Experiment", "")
	assert.ErrorIs(t, err, apperr.ErrParse)
}

func TestResilientFallsBackOnParseError(t *testing.T) {
	primary := NewLLM(&stubCompleter{replies: []string{"not json"}}, testCategories)
	g := WithFallback(primary, NewFallback(testCategories), logger.Nop())

	c, err := g.GenerateContent(context.Background(), models.Experiment, nil)
	require.NoError(t, err)
	assert.Equal(t, "Stanford Prison Experiment", c.Name)
}

func TestResilientDoesNotFallBackWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primary := NewLLM(&stubCompleter{err: context.Canceled}, testCategories)
	g := WithFallback(primary, NewFallback(testCategories), logger.Nop())

	_, err := g.GenerateContent(ctx, models.Experiment, nil)
	assert.ErrorIs(t, err, apperr.ErrGeneration)
}
