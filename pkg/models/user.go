package models

import "time"

// User is someone playing the daily quiz, either through the API or Telegram
type User struct {
	ID                  string    `json:"id" db:"id"`
	ChatID              int64     `json:"-" db:"chat_id"`
	Username            string    `json:"username" db:"username"`
	FirstName           string    `json:"first_name" db:"first_name"`
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
