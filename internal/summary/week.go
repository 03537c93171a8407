package summary

import (
	"time"
	"unicode/utf8"

	"thoughtforest/internal/models"
)

// WeekStart returns the Monday on or before d.
func WeekStart(d models.Date) models.Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// WeekWindow returns [start, end) for the Monday-anchored week containing d.
func WeekWindow(d models.Date) (start, end models.Date) {
	start = WeekStart(d)
	return start, start.AddDays(7)
}

// IsWeekStart reports whether t falls on a Monday.
func IsWeekStart(t time.Time) bool {
	return t.Weekday() == time.Monday
}

const (
	maxBullets      = 15
	charsPerBullet  = 100
	fixedBulletsMin = 1000
)

// BulletCount derives how many bullet points to ask for from the length of
// the pooled text, counted in characters: 0 for empty text, one per started
// hundred below 1000 characters, and a flat 15 from 1000 on.
func BulletCount(text string) int {
	n := utf8.RuneCountInString(text)
	switch {
	case n == 0:
		return 0
	case n < fixedBulletsMin:
		return (n + charsPerBullet - 1) / charsPerBullet
	default:
		return maxBullets
	}
}
