package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Long polling timeout in seconds
	UpdateTimeout int
	// How long a pending guess or upload prompt stays valid
	StateTTL time.Duration
	// Number of most recent days listed by /calendar
	CalendarDays int
	// Number of users listed by /leaderboard
	LeaderboardSize int
	// Largest accepted import upload in bytes
	MaxImportSize int64
	// Time allowed for downloading and importing a file
	ImportTimeout time.Duration
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		UpdateTimeout:   60,
		StateTTL:        15 * time.Minute,
		CalendarDays:    14,
		LeaderboardSize: 10,
		MaxImportSize:   5 << 20,
		ImportTimeout:   time.Minute,
	}
}
