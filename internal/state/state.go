// Package state aggregates the "right now" view of a timeline: status and
// proximity buckets, conflicts over the active set, and count-threshold
// recommendations.
package state

import (
	"fmt"
	"time"

	"tempocal/internal/conflict"
	"tempocal/internal/model"
)

const (
	approachingWindow = 2 * time.Hour
	completedWindow   = 24 * time.Hour
)

// Thresholds are the recommendation trigger counts, hoisted out of the
// aggregation code so they can be tuned from configuration.
type Thresholds struct {
	ApproachingWarn int
	ActiveWarn      int
}

// DefaultThresholds returns the long-standing trigger counts.
func DefaultThresholds() Thresholds {
	return Thresholds{ApproachingWarn: 3, ActiveWarn: 20}
}

// Snapshot is the aggregated current-time view. Derived on every read,
// never stored.
type Snapshot struct {
	Active          []model.TimelineItem `json:"active"`
	Approaching     []model.TimelineItem `json:"approaching"`
	Logjammed       []model.TimelineItem `json:"logjammed"`
	CompletedToday  []model.TimelineItem `json:"completedToday"`
	Conflicts       []conflict.Pair      `json:"conflicts"`
	Recommendations []string             `json:"recommendations"`
}

// Sweep applies the overdue transition: an active item whose end has passed
// becomes a logjam. Returns a new slice; the input is not mutated.
func Sweep(items []model.TimelineItem, now time.Time) []model.TimelineItem {
	out := make([]model.TimelineItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].Status == model.StatusActive && out[i].EndTime().Before(now) {
			out[i].Status = model.StatusLogjam
		}
	}
	return out
}

// Aggregate buckets items by status and time proximity relative to now and
// derives recommendations. Zero-valued thresholds fall back to the defaults.
func Aggregate(items []model.TimelineItem, now time.Time, th Thresholds) Snapshot {
	if th.ApproachingWarn <= 0 {
		th.ApproachingWarn = DefaultThresholds().ApproachingWarn
	}
	if th.ActiveWarn <= 0 {
		th.ActiveWarn = DefaultThresholds().ActiveWarn
	}

	snap := Snapshot{
		Active:         make([]model.TimelineItem, 0),
		Approaching:    make([]model.TimelineItem, 0),
		Logjammed:      make([]model.TimelineItem, 0),
		CompletedToday: make([]model.TimelineItem, 0),
	}

	for _, it := range items {
		switch it.Status {
		case model.StatusActive, model.StatusLogjam:
			snap.Active = append(snap.Active, it)
			if it.StartTime.After(now) && it.StartTime.Sub(now) <= approachingWindow {
				snap.Approaching = append(snap.Approaching, it)
			}
			if it.Status == model.StatusLogjam {
				snap.Logjammed = append(snap.Logjammed, it)
			}
		case model.StatusCompleted:
			if it.CompletedAt != nil && now.Sub(*it.CompletedAt) <= completedWindow {
				snap.CompletedToday = append(snap.CompletedToday, it)
			}
		}
	}

	snap.Conflicts = conflict.FindConflicts(snap.Active)
	snap.Recommendations = recommendations(snap, th)
	return snap
}

func recommendations(snap Snapshot, th Thresholds) []string {
	recs := make([]string, 0, 4)
	if n := len(snap.Logjammed); n > 0 {
		recs = append(recs, fmt.Sprintf("%d item(s) are overdue: complete or reschedule them", n))
	}
	if len(snap.Approaching) > th.ApproachingWarn {
		recs = append(recs, "Several items start within two hours: decide what matters most first")
	}
	if n := len(snap.Conflicts); n > 0 {
		recs = append(recs, fmt.Sprintf("%d scheduling conflict(s) need resolving", n))
	}
	if len(snap.Active) > th.ActiveWarn {
		recs = append(recs, "Your timeline is overloaded: consider trimming active items")
	}
	if len(recs) == 0 {
		recs = append(recs, "You're on track: nothing needs attention right now")
	}
	return recs
}
