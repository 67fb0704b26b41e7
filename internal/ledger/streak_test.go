package ledger

import (
	"testing"

	"github.com/example/psychly/pkg/models"
	"github.com/stretchr/testify/assert"
)

func statsWith(experiments, theories map[string]bool) *models.UserStats {
	s := models.NewUserStats("u1")
	for day, correct := range experiments {
		s.ExperimentAnswers[day] = models.Answer{Type: models.Experiment, DateKey: day, Correct: correct}
		s.ViewedDates[day] = true
	}
	for day, correct := range theories {
		s.TheoryAnswers[day] = models.Answer{Type: models.Theory, DateKey: day, Correct: correct}
		s.ViewedDates[day] = true
	}
	return s
}

func TestStreak(t *testing.T) {
	tests := []struct {
		name        string
		experiments map[string]bool
		theories    map[string]bool
		want        int
	}{
		{
			name:        "three correct days",
			experiments: map[string]bool{"2026-01-18": true, "2026-01-19": true, "2026-01-20": true},
			want:        3,
		},
		{
			name:        "today wrong",
			experiments: map[string]bool{"2026-01-19": true, "2026-01-20": false},
			want:        0,
		},
		{
			name:        "today unanswered",
			experiments: map[string]bool{"2026-01-19": true},
			want:        0,
		},
		{
			name:        "either type counts",
			experiments: map[string]bool{"2026-01-20": false, "2026-01-19": true},
			theories:    map[string]bool{"2026-01-20": true, "2026-01-18": true},
			want:        3,
		},
		{
			name:        "gap stops the walk",
			experiments: map[string]bool{"2026-01-20": true, "2026-01-19": true, "2026-01-17": true},
			want:        2,
		},
		{
			name:        "crosses month boundary",
			experiments: map[string]bool{"2026-02-01": true, "2026-01-31": true},
			want:        0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streak("2026-01-20", statsWith(tt.experiments, tt.theories)))
		})
	}

	assert.Equal(t, 2, Streak("2026-02-01", statsWith(map[string]bool{"2026-02-01": true, "2026-01-31": true}, nil)))
}

func TestStreakIsOnePlusYesterday(t *testing.T) {
	s := statsWith(
		map[string]bool{"2026-01-15": true, "2026-01-16": true, "2026-01-17": false, "2026-01-18": true, "2026-01-19": true, "2026-01-20": true},
		map[string]bool{"2026-01-17": true},
	)
	days := []string{"2026-01-16", "2026-01-17", "2026-01-18", "2026-01-19", "2026-01-20"}
	for i := 1; i < len(days); i++ {
		assert.Equal(t, 1+Streak(days[i-1], s), Streak(days[i], s), days[i])
	}
}

func TestWorldRank(t *testing.T) {
	tests := []struct {
		counts []int
		mine   int
		want   int
	}{
		{[]int{5, 3, 9}, 9, 1},
		{[]int{5, 3, 9}, 5, 2},
		{[]int{9, 5, 5, 3}, 5, 2},
		{[]int{9, 5, 3}, 4, 3},
		{[]int{9, 5}, 1, 3},
		{nil, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WorldRank(tt.counts, tt.mine), "counts %v mine %d", tt.counts, tt.mine)
	}
}
