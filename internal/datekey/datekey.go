// Package datekey converts calendar dates to the canonical YYYY-MM-DD lookup key.
//
// Keys are always computed in the local timezone, so a record generated just after local
// midnight belongs to the new day no matter what zone the caller's time value carries.
package datekey

import (
	"fmt"
	"time"
)

// Layout is the canonical key format
const Layout = "2006-01-02"

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Key returns the local-timezone key of t
func Key(t time.Time) string {
	return t.In(time.Local).Format(Layout)
}

// Today returns the key of the clock's current day
func Today(c Clock) string {
	return Key(c.Now())
}

// IsToday reports whether t falls on the clock's current local calendar day
func IsToday(c Clock, t time.Time) bool {
	return Key(t) == Today(c)
}

// Parse turns a key back into local midnight of that day
func Parse(key string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", key)
	}
	return t, nil
}

// Previous returns the key of the day before key
func Previous(key string) (string, error) {
	t, err := Parse(key)
	if err != nil {
		return "", err
	}
	return Key(t.AddDate(0, 0, -1)), nil
}

// Resolve accepts "today" or a YYYY-MM-DD key and returns the matching local date
func Resolve(c Clock, s string) (time.Time, error) {
	if s == "" || s == "today" {
		return c.Now(), nil
	}
	return Parse(s)
}
