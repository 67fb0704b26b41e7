package ai

import (
	"context"
	"testing"

	"github.com/example/psychly/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackSkipsExcludedNames(t *testing.T) {
	f := NewFallback(nil)
	ctx := context.Background()

	c, err := f.GenerateContent(ctx, models.Experiment, []string{"stanford prison experiment"})
	require.NoError(t, err)
	assert.Equal(t, "Milgram Obedience Study", c.Name)
	assert.NotEmpty(t, c.Hypothesis)

	again, err := f.GenerateContent(ctx, models.Experiment, []string{"stanford prison experiment"})
	require.NoError(t, err)
	assert.Equal(t, c.Name, again.Name)
}

func TestFallbackAllExcludedReturnsFirst(t *testing.T) {
	var all []string
	for _, r := range cannedTheories {
		all = append(all, r.Name)
	}

	c, err := NewFallback(nil).GenerateContent(context.Background(), models.Theory, all)
	require.NoError(t, err)
	assert.Equal(t, cannedTheories[0].Name, c.Name)
	assert.Empty(t, c.Hypothesis)
}

func TestFallbackCategorize(t *testing.T) {
	f := NewFallback(map[models.ContentType][]string{
		models.Experiment: {"social", "obedience", "memory", "default"},
	})
	ctx := context.Background()

	got, _ := f.Categorize(ctx, models.Experiment, "Milgram Obedience Study", "")
	assert.Equal(t, "obedience", got)

	got, _ = f.Categorize(ctx, models.Experiment, "Serial Position", "Participants tried to recall word lists")
	assert.Equal(t, "memory", got)

	got, _ = f.Categorize(ctx, models.Experiment, "Something", "Nothing recognizable")
	assert.Equal(t, "default", got)
}

func TestFallbackCheckGuess(t *testing.T) {
	f := NewFallback(nil)
	ctx := context.Background()

	tests := []struct {
		guess   string
		actual  string
		correct bool
	}{
		{"milgram", "Milgram Obedience Study", true},
		{"The Milgram experiment!", "Milgram Obedience Study", true},
		{"asch", "Milgram Obedience Study", false},
		{"study", "Milgram Obedience Study", false},
		{"", "Milgram Obedience Study", false},
		{"bobo doll", "Bobo Doll Experiment", true},
	}
	for _, tt := range tests {
		v, err := f.CheckGuess(ctx, models.Experiment, tt.guess, tt.actual)
		require.NoError(t, err)
		assert.Equal(t, tt.correct, v.Correct, "guess %q", tt.guess)
	}
}

func TestFallbackHypothesis(t *testing.T) {
	f := NewFallback(nil)

	h, err := f.GenerateHypothesis(context.Background(), "Asch Conformity Experiments", "")
	require.NoError(t, err)
	assert.False(t, h.Rejected)
	assert.Contains(t, h.Text, "majority")

	h, err = f.GenerateHypothesis(context.Background(), "Unknown Study", "")
	require.NoError(t, err)
	assert.Contains(t, h.Text, "Unknown Study")
}
