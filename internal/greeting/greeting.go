// Package greeting picks the dashboard salutation for a time of day.
package greeting

import "time"

const (
	Morning = "Доброе утро"
	Day     = "Добрый день"
	Evening = "Добрый вечер"
	Night   = "Доброй ночи"
)

// ForHour returns the greeting for an hour of the day (0-23).
func ForHour(hour int) string {
	switch {
	case hour >= 4 && hour < 12:
		return Morning
	case hour >= 12 && hour < 18:
		return Day
	case hour >= 18 && hour < 23:
		return Evening
	default:
		return Night
	}
}

// At returns the greeting for the local hour of t.
func At(t time.Time) string {
	return ForHour(t.Hour())
}
