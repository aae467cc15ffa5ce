package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		hours   int
		minutes int
		found   bool
	}{
		{name: "12h with minutes", text: "deep work at 2:30pm", hours: 14, minutes: 30, found: true},
		{name: "12h hour only", text: "standup 10am", hours: 10, found: true},
		{name: "midnight", text: "12am", hours: 0, found: true},
		{name: "noon", text: "lunch at 12pm", hours: 12, found: true},
		{name: "24h", text: "review 14:00", hours: 14, found: true},
		{name: "24h evening", text: "at 23:45", hours: 23, minutes: 45, found: true},
		{name: "empty", text: "", found: false},
		{name: "no time", text: "sometime soonish", found: false},
		{name: "out of range 24h", text: "30:99", found: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseTimeOfDay(tt.text)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.hours, got.Hours)
				assert.Equal(t, tt.minutes, got.Minutes)
			}
		})
	}
}

func TestAnchorDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 10, 16, 45, 0, 0, time.UTC)
	today := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	assert.Equal(t, today, AnchorDate("starting today", now))
	assert.Equal(t, today, AnchorDate("from today", now))
	assert.Equal(t, tomorrow, AnchorDate("starting tomorrow", now))
	assert.Equal(t, tomorrow, AnchorDate("gym from tomorrow", now))
	assert.Equal(t, today, AnchorDate("no anchor here", now))
	assert.Equal(t, today, AnchorDate("", now))
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	c, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, c.Hours)
	assert.Equal(t, 30, c.Minutes)
	assert.Equal(t, 570, c.MinuteOfDay())

	_, err = ParseClock("25:00")
	assert.Error(t, err)
	_, err = ParseClock("not a clock")
	assert.Error(t, err)
}
