package models

import "time"

// Answer is a user's first guess for one content type on one date
type Answer struct {
	UserID     string      `json:"-" db:"user_id"`
	Type       ContentType `json:"type" db:"content_type"`
	DateKey    string      `json:"date_key" db:"date_key"`
	Correct    bool        `json:"correct" db:"correct"`
	Guess      string      `json:"guess" db:"guess"`
	AnsweredAt time.Time   `json:"timestamp" db:"answered_at"`
}

// UserStats is the persisted per-user ledger
type UserStats struct {
	UserID            string            `json:"user_id"`
	ViewedDates       map[string]bool   `json:"viewed_dates"`
	ExperimentAnswers map[string]Answer `json:"experiment_answers"`
	TheoryAnswers     map[string]Answer `json:"theory_answers"`
}

// NewUserStats returns empty stats for userID
func NewUserStats(userID string) *UserStats {
	return &UserStats{
		UserID:            userID,
		ViewedDates:       make(map[string]bool),
		ExperimentAnswers: make(map[string]Answer),
		TheoryAnswers:     make(map[string]Answer),
	}
}

// Answers returns the answer map for a content type
func (s *UserStats) Answers(t ContentType) map[string]Answer {
	if t == Theory {
		return s.TheoryAnswers
	}
	return s.ExperimentAnswers
}

// LeaderboardEntry is one row of the day-count leaderboard
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id" db:"user_id"`
	Username string `json:"username" db:"username"`
	Days     int    `json:"days" db:"days"`
}
