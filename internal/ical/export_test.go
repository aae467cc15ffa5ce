package ical

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tempocal/internal/model"
)

func TestExportOneOffItems(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	items := []model.TimelineItem{
		{ID: "one", LayerID: "work", Title: "Write report", StartTime: start, DurationMinutes: 60, Status: model.StatusActive},
		{ID: "two", LayerID: "work", Title: "Review budget", StartTime: start.Add(2 * time.Hour), DurationMinutes: 30, Status: model.StatusActive},
	}

	doc := Export(items, start)

	assert.Contains(t, doc, "BEGIN:VCALENDAR")
	assert.Contains(t, doc, "END:VCALENDAR")
	assert.Equal(t, 2, strings.Count(doc, "BEGIN:VEVENT"))
	assert.Contains(t, doc, "Write report")
	assert.Contains(t, doc, "Review budget")
	assert.NotContains(t, doc, "RRULE")
}

func TestExportRecurringSeriesCollapsesToHead(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	pattern := &model.RecurrencePattern{Frequency: model.FreqDaily, Interval: 2}

	items := make([]model.TimelineItem, 0, 3)
	for i := 0; i < 3; i++ {
		items = append(items, model.TimelineItem{
			ID:                "occ" + string(rune('a'+i)),
			LayerID:           "work",
			Title:             "Morning pages",
			StartTime:         start.AddDate(0, 0, 2*i),
			DurationMinutes:   45,
			RecurringSeriesID: "series-1",
			RecurrencePattern: pattern,
			Status:            model.StatusActive,
		})
	}

	doc := Export(items, start)

	// One VEVENT for the whole series, carrying the rule.
	assert.Equal(t, 1, strings.Count(doc, "BEGIN:VEVENT"))
	assert.Contains(t, doc, "RRULE:FREQ=DAILY")
	assert.Contains(t, doc, "INTERVAL=2")
	assert.Contains(t, doc, "series-1@tempocal")
}

func TestExportMixedContent(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	items := []model.TimelineItem{
		{ID: "solo", LayerID: "work", Title: "One-off", StartTime: start, DurationMinutes: 60, Status: model.StatusActive},
		{
			ID: "head", LayerID: "work", Title: "Weekly sync",
			StartTime: start, DurationMinutes: 30,
			RecurringSeriesID: "series-2",
			RecurrencePattern: &model.RecurrencePattern{Frequency: model.FreqWeekly, Interval: 1},
			Status:            model.StatusActive,
		},
	}

	doc := Export(items, start)
	assert.Equal(t, 2, strings.Count(doc, "BEGIN:VEVENT"))
	assert.Equal(t, 1, strings.Count(doc, "RRULE:"))
	assert.Contains(t, doc, "FREQ=WEEKLY")
}
