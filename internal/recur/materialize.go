package recur

import (
	"time"

	"github.com/google/uuid"

	"tempocal/internal/model"
)

// DefaultOccurrenceCap bounds generation for unbounded patterns. A far-away
// endDate must never produce an unbounded series; the cap guarantees
// termination regardless of the pattern.
const DefaultOccurrenceCap = 30

// DraftSpec describes the series (or one-off item) to materialize.
type DraftSpec struct {
	Title           string
	OwnerID         string
	LayerID         string
	AttentionType   model.AttentionType
	Start           time.Time
	DurationMinutes int
	Pattern         *model.RecurrencePattern
	Cap             int
}

// Materialize produces concrete TimelineItem drafts for the given spec.
//
// With a nil pattern it returns exactly one draft and an empty series id.
// With a pattern it returns up to min(cap, bounded-by-endDate) occurrences,
// all sharing one freshly generated series id. Successive starts advance by
// interval days (daily), interval*7 days (weekly) or interval months
// (monthly). Monthly arithmetic is Go's AddDate: an anchor day missing from
// the destination month rolls forward into the next one (Jan 31 + 1 month
// lands in early March); that is the documented policy, not an accident.
//
// This is a pure computation; persisting the drafts is the caller's concern.
func Materialize(spec DraftSpec) ([]model.TimelineItem, string, error) {
	if err := model.ValidateDuration(spec.DurationMinutes); err != nil {
		return nil, "", err
	}

	if spec.Pattern == nil {
		return []model.TimelineItem{newDraft(spec, spec.Start, "")}, "", nil
	}

	limit := spec.Cap
	if limit <= 0 {
		limit = DefaultOccurrenceCap
	}
	interval := spec.Pattern.Interval
	if interval < 1 {
		interval = 1
	}

	seriesID := uuid.NewString()
	items := make([]model.TimelineItem, 0, limit)
	start := spec.Start

	for len(items) < limit {
		if spec.Pattern.EndDate != nil && start.After(*spec.Pattern.EndDate) {
			break
		}
		items = append(items, newDraft(spec, start, seriesID))

		switch spec.Pattern.Frequency {
		case model.FreqDaily:
			start = start.AddDate(0, 0, interval)
		case model.FreqWeekly:
			start = start.AddDate(0, 0, 7*interval)
		case model.FreqMonthly:
			start = start.AddDate(0, interval, 0)
		default:
			// Unknown frequency: stop after the anchor occurrence rather
			// than looping forever in place.
			return items, seriesID, nil
		}
	}

	return items, seriesID, nil
}

func newDraft(spec DraftSpec, start time.Time, seriesID string) model.TimelineItem {
	item := model.TimelineItem{
		ID:              uuid.NewString(),
		OwnerID:         spec.OwnerID,
		LayerID:         spec.LayerID,
		Title:           spec.Title,
		StartTime:       start,
		DurationMinutes: spec.DurationMinutes,
		AttentionType:   spec.AttentionType,
		Status:          model.StatusActive,
	}
	if seriesID != "" {
		item.RecurringSeriesID = seriesID
		item.RecurrencePattern = spec.Pattern
	}
	return item
}
