package ledger

import (
	"sort"

	"github.com/example/psychly/internal/datekey"
	"github.com/example/psychly/pkg/models"
)

// Streak counts consecutive days ending at today on which the experiment or the theory was
// answered correctly. It is 0 when today has no correct answer.
func Streak(today string, stats *models.UserStats) int {
	streak := 0
	day := today
	for correctOn(stats, day) {
		streak++
		prev, err := datekey.Previous(day)
		if err != nil {
			break
		}
		day = prev
	}
	return streak
}

func correctOn(stats *models.UserStats, day string) bool {
	if a, ok := stats.ExperimentAnswers[day]; ok && a.Correct {
		return true
	}
	if a, ok := stats.TheoryAnswers[day]; ok && a.Correct {
		return true
	}
	return false
}

// WorldRank is 1 + the index of the first count not above mine once counts are sorted in
// descending order, so tied users share a rank. With no such count the rank is len(counts)+1.
func WorldRank(counts []int, mine int) int {
	sorted := append([]int(nil), counts...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	for i, c := range sorted {
		if c <= mine {
			return i + 1
		}
	}
	return len(sorted) + 1
}
