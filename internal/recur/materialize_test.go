package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tempocal/internal/model"
)

func baseSpec(start time.Time, p *model.RecurrencePattern) DraftSpec {
	return DraftSpec{
		Title:           "Deep work",
		LayerID:         "layer-1",
		AttentionType:   model.AttentionCreate,
		Start:           start,
		DurationMinutes: 90,
		Pattern:         p,
	}
}

func TestMaterializeOneOff(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	items, seriesID, err := Materialize(baseSpec(start, nil))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Empty(t, seriesID)
	assert.Empty(t, items[0].RecurringSeriesID)
	assert.Nil(t, items[0].RecurrencePattern)
	assert.Equal(t, start, items[0].StartTime)
	assert.Equal(t, model.StatusActive, items[0].Status)
	assert.NotEmpty(t, items[0].ID)
}

func TestMaterializeDailySeries(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	spec := baseSpec(start, &model.RecurrencePattern{Frequency: model.FreqDaily, Interval: 1})
	spec.Cap = 5

	items, seriesID, err := Materialize(spec)
	require.NoError(t, err)
	require.Len(t, items, 5)
	require.NotEmpty(t, seriesID)

	for i, it := range items {
		assert.Equal(t, seriesID, it.RecurringSeriesID, "item %d", i)
		if i > 0 {
			assert.Equal(t, 24*time.Hour, it.StartTime.Sub(items[i-1].StartTime), "item %d", i)
		}
	}
}

func TestMaterializeWeeklyAdvancesBySevenTimesInterval(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	spec := baseSpec(start, &model.RecurrencePattern{Frequency: model.FreqWeekly, Interval: 2})
	spec.Cap = 3

	items, _, err := Materialize(spec)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, start.AddDate(0, 0, 14), items[1].StartTime)
	assert.Equal(t, start.AddDate(0, 0, 28), items[2].StartTime)
}

// Monthly advancement uses plain AddDate: Jan 31 + 1 month normalizes into
// early March on a non-leap year. This pins that policy down.
func TestMaterializeMonthlyRollsOverShortMonths(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.January, 31, 9, 0, 0, 0, time.UTC)
	spec := baseSpec(start, &model.RecurrencePattern{Frequency: model.FreqMonthly, Interval: 1})
	spec.Cap = 2

	items, _, err := Materialize(spec)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC), items[1].StartTime)
}

func TestMaterializeEndDateBound(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)
	spec := baseSpec(start, &model.RecurrencePattern{
		Frequency: model.FreqDaily,
		Interval:  1,
		EndDate:   &end,
	})

	items, _, err := Materialize(spec)
	require.NoError(t, err)
	// Anchor day plus three more days, inclusive of the end date.
	assert.Len(t, items, 4)
	last := items[len(items)-1]
	assert.False(t, last.StartTime.After(end))
}

func TestMaterializeDefaultCap(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	spec := baseSpec(start, &model.RecurrencePattern{Frequency: model.FreqDaily, Interval: 1})

	items, _, err := Materialize(spec)
	require.NoError(t, err)
	assert.Len(t, items, DefaultOccurrenceCap)
}

func TestMaterializeRejectsInvalidDuration(t *testing.T) {
	t.Parallel()

	spec := baseSpec(time.Now(), nil)
	spec.DurationMinutes = 0

	_, _, err := Materialize(spec)
	require.Error(t, err)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "durationMinutes", verr.Field)
}
