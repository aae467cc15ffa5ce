package recur

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a time of day extracted from free text.
type ClockTime struct {
	Hours   int
	Minutes int
}

// Patterns ordered by specificity: "2:30pm" before "2pm" before "14:00".
var (
	reClock12Full = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(am|pm)\b`)
	reClock12Hour = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(am|pm)\b`)
	reClock24     = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
)

// ParseTimeOfDay extracts an hour/minute from free text ("10am", "2:30pm",
// "14:00"). The second return is false when no valid time was found; callers
// are expected to fall back to their own default start time.
func ParseTimeOfDay(text string) (ClockTime, bool) {
	if m := reClock12Full.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if h >= 1 && h <= 12 && mm <= 59 {
			return ClockTime{Hours: to24Hour(h, m[3]), Minutes: mm}, true
		}
	}
	if m := reClock12Hour.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h >= 1 && h <= 12 {
			return ClockTime{Hours: to24Hour(h, m[2])}, true
		}
	}
	if m := reClock24.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if h <= 23 && mm <= 59 {
			return ClockTime{Hours: h, Minutes: mm}, true
		}
	}
	return ClockTime{}, false
}

// to24Hour converts a 12-hour clock hour into 24-hour form: "pm" adds 12
// unless the hour is already >= 12, and "12am" maps to hour 0.
func to24Hour(hour int, meridiem string) int {
	switch strings.ToLower(meridiem) {
	case "pm":
		if hour < 12 {
			return hour + 12
		}
	case "am":
		if hour == 12 {
			return 0
		}
	}
	return hour
}

// AnchorDate resolves a coarse start-date anchor from free text. It is a
// best-effort heuristic, not a date parser: "starting today"/"from today"
// anchor on the current date, "starting tomorrow"/"from tomorrow" on the
// next day, and anything else defaults to the current date.
func AnchorDate(text string, now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	lower := strings.ToLower(text)
	if strings.Contains(lower, "starting tomorrow") || strings.Contains(lower, "from tomorrow") {
		return day.AddDate(0, 0, 1)
	}
	return day
}

// ParseClock parses a strict "HH:MM" configuration string (e.g. a peak-hours
// bound). Unlike ParseTimeOfDay this is for configuration, not free text,
// so malformed input is an error.
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return ClockTime{}, err
	}
	return ClockTime{Hours: t.Hour(), Minutes: t.Minute()}, nil
}

// MinuteOfDay flattens a clock time for window comparisons.
func (c ClockTime) MinuteOfDay() int {
	return c.Hours*60 + c.Minutes
}
