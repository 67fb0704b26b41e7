package models

import "time"

// ContentType distinguishes the two daily puzzles
type ContentType string

const (
	// Experiment is a famous psychology experiment or study
	Experiment ContentType = "experiment"
	// Theory is a psychology theory
	Theory ContentType = "theory"
)

// ContentTypes lists every content type in display order
var ContentTypes = []ContentType{Experiment, Theory}

// Valid reports whether t is a known content type
func (t ContentType) Valid() bool {
	return t == Experiment || t == Theory
}

// ParseContentType accepts singular and plural forms ("experiments", "theories")
func ParseContentType(s string) (ContentType, bool) {
	switch s {
	case "experiment", "experiments":
		return Experiment, true
	case "theory", "theories":
		return Theory, true
	}
	return "", false
}

// CurrentSchemaVersion is the version of a complete content record
const CurrentSchemaVersion = 3

// Content is the day's experiment or theory.
//
// Period holds the date label of an experiment or the year-created label of a theory,
// People holds the researchers or the theorists. Hypothesis and Rejected are only used
// by experiments.
type Content struct {
	Type          ContentType `json:"type" db:"content_type"`
	DateKey       string      `json:"date_key" db:"date_key"`
	Name          string      `json:"name" db:"name"`
	Info          string      `json:"info" db:"info"`
	Period        string      `json:"period" db:"period"`
	People        string      `json:"people" db:"people"`
	Hypothesis    string      `json:"hypothesis,omitempty" db:"hypothesis"`
	Rejected      bool        `json:"rejected" db:"rejected"`
	Question      string      `json:"-" db:"question"`
	BadgeIcon     *string     `json:"badge_icon,omitempty" db:"badge_icon"`
	BadgeCategory *string     `json:"badge_category,omitempty" db:"badge_category"`
	SchemaVersion int         `json:"-" db:"schema_version"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// HasBadge reports whether both badge fields are populated
func (c *Content) HasBadge() bool {
	return c.BadgeIcon != nil && *c.BadgeIcon != "" && c.BadgeCategory != nil
}

// SetBadge stores the icon and category
func (c *Content) SetBadge(icon, category string) {
	c.BadgeIcon = &icon
	c.BadgeCategory = &category
}

// DisplayBadgeIcon returns the badge icon or the type's default icon
func (c *Content) DisplayBadgeIcon() string {
	if c.BadgeIcon != nil && *c.BadgeIcon != "" {
		return *c.BadgeIcon
	}
	return DefaultBadgeIcon(c.Type)
}

// DefaultBadgeIcon is shown for records that have no badge yet
func DefaultBadgeIcon(t ContentType) string {
	if t == Theory {
		return "lightbulb.fill"
	}
	return "flask.fill"
}

// Hypothesis is the generated hypothesis of an experiment and whether it was rejected
type Hypothesis struct {
	Text     string `json:"hypothesis"`
	Rejected bool   `json:"rejected"`
}

// Verdict is the result of checking a user's guess
type Verdict struct {
	Correct   bool   `json:"correct"`
	Reasoning string `json:"reasoning,omitempty"`
}

// Badge is a collectible earned by answering a day's content correctly
type Badge struct {
	DateKey  string      `json:"date_key"`
	Type     ContentType `json:"type"`
	Name     string      `json:"name"`
	Icon     string      `json:"icon"`
	Category string      `json:"category"`
}

// CalendarDay is one date that has content, with its badge icon if assigned
type CalendarDay struct {
	DateKey   string `json:"date_key" db:"date_key"`
	BadgeIcon string `json:"badge_icon,omitempty" db:"badge_icon"`
}
