package pipeline

import "time"

// Locale selects the weekday vocabulary of the canonical jour column.
// Names come from fixed tables so output never depends on platform
// locale data.
type Locale string

const (
	LocaleFR Locale = "fr"
	LocaleEN Locale = "en"
)

var weekdayNames = map[Locale][7]string{
	// Indexed by time.Weekday (Sunday = 0).
	LocaleFR: {"DIMANCHE", "LUNDI", "MARDI", "MERCREDI", "JEUDI", "VENDREDI", "SAMEDI"},
	LocaleEN: {"SUNDAY", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY"},
}

// RoundToHalfHour buckets a timestamp onto a 30-minute boundary:
// minute < 15 floors to :00, 15..44 lands on :30, 45+ advances to the
// next hour's :00. Seconds and sub-seconds are dropped. Idempotent.
func RoundToHalfHour(t time.Time) time.Time {
	minute := t.Minute()
	switch {
	case minute < 15:
		minute = 0
	case minute < 45:
		minute = 30
	default:
		t = t.Add(time.Hour)
		minute = 0
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), minute, 0, 0, t.Location())
}

// WeekdayName returns the upper-cased weekday label for the canonical
// jour column. Unknown locales fall back to French, the vocabulary the
// source data already uses.
func WeekdayName(t time.Time, locale Locale) string {
	names, ok := weekdayNames[locale]
	if !ok {
		names = weekdayNames[LocaleFR]
	}
	return names[t.Weekday()]
}
