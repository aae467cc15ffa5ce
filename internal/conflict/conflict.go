// Package conflict reports overlapping timeline items on the same layer.
package conflict

import (
	"time"

	"tempocal/internal/model"
)

// Pair is one unordered conflict between two items. Conflicts are reported,
// never auto-resolved.
type Pair struct {
	Item1ID string `json:"item1Id"`
	Item2ID string `json:"item2Id"`
}

// Overlaps is the half-open interval overlap test shared with the focus
// analyzer: [aStart, aEnd) strictly overlaps [bStart, bEnd). Ranges that
// merely touch do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// FindConflicts returns every pair of distinct items that share a layer and
// whose time ranges overlap. Pairwise O(n^2); inputs are bounded to items in
// view (a day or a week), so this stays cheap.
func FindConflicts(items []model.TimelineItem) []Pair {
	pairs := make([]Pair, 0)
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			a, b := items[i], items[j]
			if a.LayerID != b.LayerID || a.ID == b.ID {
				continue
			}
			if Overlaps(a.StartTime, a.EndTime(), b.StartTime, b.EndTime()) {
				pairs = append(pairs, Pair{Item1ID: a.ID, Item2ID: b.ID})
			}
		}
	}
	return pairs
}
