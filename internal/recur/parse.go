// Package recur turns free-text scheduling phrases into normalized
// recurrence patterns and materializes them into concrete timeline items.
package recur

import (
	"regexp"
	"strconv"
	"strings"

	"tempocal/internal/model"
)

// recognizer is one tagged phrase matcher. The set of recognizers is closed
// and ordered by specificity; adding a phrase means adding a variant here
// and a test next to it, not appending an untyped regex somewhere else.
type recognizer struct {
	name  string
	re    *regexp.Regexp
	build func(match []string) *model.RecurrencePattern
}

var recognizers = []recognizer{
	{
		name: "every-second-day",
		re:   regexp.MustCompile(`(?i)\bevery\s+(?:second|other)\s+day\b`),
		build: func([]string) *model.RecurrencePattern {
			return &model.RecurrencePattern{Frequency: model.FreqDaily, Interval: 2}
		},
	},
	{
		name: "every-n-days",
		re:   regexp.MustCompile(`(?i)\bevery\s+(\d+)\s+days?\b`),
		build: func(m []string) *model.RecurrencePattern {
			n, _ := strconv.Atoi(m[1])
			if n < 1 {
				n = 1
			}
			return &model.RecurrencePattern{Frequency: model.FreqDaily, Interval: n}
		},
	},
	{
		name: "daily",
		re:   regexp.MustCompile(`(?i)\bdaily\b|\bevery\s+day\b`),
		build: func([]string) *model.RecurrencePattern {
			return &model.RecurrencePattern{Frequency: model.FreqDaily, Interval: 1}
		},
	},
	{
		name: "weekly",
		re:   regexp.MustCompile(`(?i)\bweekly\b|\bevery\s+week\b`),
		build: func([]string) *model.RecurrencePattern {
			return &model.RecurrencePattern{Frequency: model.FreqWeekly, Interval: 1}
		},
	},
	{
		name: "every-n-weeks",
		re:   regexp.MustCompile(`(?i)\bevery\s+(\d+)\s+weeks?\b`),
		build: func(m []string) *model.RecurrencePattern {
			n, _ := strconv.Atoi(m[1])
			if n < 1 {
				n = 1
			}
			return &model.RecurrencePattern{Frequency: model.FreqWeekly, Interval: n}
		},
	},
	{
		name: "monthly",
		re:   regexp.MustCompile(`(?i)\bmonthly\b|\bevery\s+month\b`),
		build: func([]string) *model.RecurrencePattern {
			return &model.RecurrencePattern{Frequency: model.FreqMonthly, Interval: 1}
		},
	},
}

// Parse extracts a recurrence pattern from free text. A nil result means the
// text describes a one-time event; malformed text is never an error.
func Parse(text string) *model.RecurrencePattern {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	for _, rec := range recognizers {
		if m := rec.re.FindStringSubmatch(text); m != nil {
			return rec.build(m)
		}
	}
	return nil
}

// Describe renders a pattern as a short human-readable phrase, e.g.
// "Recurring daily (every 2 day(s))". A nil pattern is a one-time event.
func Describe(p *model.RecurrencePattern) string {
	if p == nil {
		return "One-time event"
	}
	unit := "day"
	label := "daily"
	switch p.Frequency {
	case model.FreqWeekly:
		unit, label = "week", "weekly"
	case model.FreqMonthly:
		unit, label = "month", "monthly"
	}
	interval := p.Interval
	if interval < 1 {
		interval = 1
	}
	return "Recurring " + label + " (every " + strconv.Itoa(interval) + " " + unit + "(s))"
}
