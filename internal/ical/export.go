// Package ical exports timeline items as an iCalendar document for external
// calendar systems.
package ical

import (
	"time"

	ics "github.com/arran4/golang-ical"

	"tempocal/internal/model"
	"tempocal/internal/recur"
)

const prodID = "-//tempocal//timeline export//EN"

// Export serializes items into a VCALENDAR. One-off items become plain
// VEVENTs. For a recurring series only the head occurrence (first seen per
// series id) is emitted, carrying the series RRULE, so an external calendar
// re-expands the recurrence itself instead of receiving 30 clones.
func Export(items []model.TimelineItem, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(prodID)

	seenSeries := make(map[string]bool)

	for _, it := range items {
		if it.RecurringSeriesID != "" {
			if seenSeries[it.RecurringSeriesID] {
				continue
			}
			seenSeries[it.RecurringSeriesID] = true
		}

		ev := cal.AddEvent(uid(it))
		ev.SetDtStampTime(now.UTC())
		ev.SetStartAt(it.StartTime)
		ev.SetEndAt(it.EndTime())
		ev.SetSummary(it.Title)

		if it.RecurringSeriesID != "" {
			if body := recur.RuleBody(it.RecurrencePattern); body != "" {
				ev.AddRrule(body)
			}
		}
	}

	return cal.Serialize()
}

func uid(it model.TimelineItem) string {
	if it.RecurringSeriesID != "" {
		return it.RecurringSeriesID + "@tempocal"
	}
	return it.ID + "@tempocal"
}
