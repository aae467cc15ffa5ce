// Package focus classifies candidate focus blocks and diagnoses what
// threatens them.
package focus

import (
	"fmt"
	"time"

	"tempocal/internal/conflict"
	"tempocal/internal/model"
	"tempocal/internal/recur"
)

// Policy holds the tunables for focus-block analysis. The defaults mirror
// long-standing product behavior; they are hoisted here so policy changes
// never touch the scoring code.
type Policy struct {
	// MinFocusDurationMinutes is the candidate lower bound: only create-typed
	// items at least this long are treated as focus blocks.
	MinFocusDurationMinutes int

	// PeakStart / PeakEnd bound the user's peak-hours window; a block
	// starting outside [PeakStart, PeakEnd) draws an interruption_risk threat.
	PeakStart recur.ClockTime
	PeakEnd   recur.ClockTime

	// AdjacencyWindow is how close a meeting may sit before/after a block
	// before it counts as adjacent.
	AdjacencyWindow time.Duration

	// ContextSwitchWindow is how recently other (non-create, non-meeting)
	// work may have ended before the block starts.
	ContextSwitchWindow time.Duration
}

// DefaultPolicy returns the observed product defaults: 60-minute candidate
// floor and a 9-12 peak window.
func DefaultPolicy() Policy {
	return Policy{
		MinFocusDurationMinutes: 60,
		PeakStart:               recur.ClockTime{Hours: 9},
		PeakEnd:                 recur.ClockTime{Hours: 12},
		AdjacencyWindow:         30 * time.Minute,
		ContextSwitchWindow:     60 * time.Minute,
	}
}

// Severity deductions for the effectiveness score. Multiple threats of one
// type compound linearly; that is an accepted simplification.
var severityDeduction = map[model.ThreatSeverity]int{
	model.SeverityCritical: 25,
	model.SeverityHigh:     15,
	model.SeverityMedium:   10,
	model.SeverityLow:      5,
}

// Analyze selects focus-block candidates from a day's items and scores each
// one. Pure and stateless: identical input yields identical output.
func Analyze(items []model.TimelineItem, pol Policy) []model.FocusBlock {
	def := DefaultPolicy()
	if pol.MinFocusDurationMinutes <= 0 {
		pol.MinFocusDurationMinutes = def.MinFocusDurationMinutes
	}
	if pol.PeakStart.MinuteOfDay() == 0 && pol.PeakEnd.MinuteOfDay() == 0 {
		pol.PeakStart = def.PeakStart
		pol.PeakEnd = def.PeakEnd
	}
	if pol.AdjacencyWindow <= 0 {
		pol.AdjacencyWindow = 30 * time.Minute
	}
	if pol.ContextSwitchWindow <= 0 {
		pol.ContextSwitchWindow = 60 * time.Minute
	}

	blocks := make([]model.FocusBlock, 0)
	for _, it := range items {
		if it.AttentionType != model.AttentionCreate || it.DurationMinutes < pol.MinFocusDurationMinutes {
			continue
		}
		blocks = append(blocks, analyzeBlock(it, items, pol))
	}
	return blocks
}

func analyzeBlock(cand model.TimelineItem, items []model.TimelineItem, pol Policy) model.FocusBlock {
	level, bufBefore, bufAfter := protectionTier(cand.DurationMinutes)

	threats := make([]model.FocusThreat, 0)
	for _, other := range items {
		if other.ID == cand.ID {
			continue
		}
		if t, ok := adjacentMeetingThreat(cand, other, pol.AdjacencyWindow); ok {
			threats = append(threats, t)
			continue
		}
		if t, ok := contextSwitchThreat(cand, other, pol.ContextSwitchWindow); ok {
			threats = append(threats, t)
		}
	}

	if cand.DurationMinutes < 90 {
		threats = append(threats, model.FocusThreat{
			Type:        model.ThreatFragmentation,
			Severity:    model.SeverityMedium,
			Description: fmt.Sprintf("%d minutes is short for deep work and fragments easily", cand.DurationMinutes),
			Suggestion:  "Extend this block to at least 90 minutes",
		})
	}

	startMin := cand.StartTime.Hour()*60 + cand.StartTime.Minute()
	if startMin < pol.PeakStart.MinuteOfDay() || startMin >= pol.PeakEnd.MinuteOfDay() {
		threats = append(threats, model.FocusThreat{
			Type:        model.ThreatInterruptionRisk,
			Severity:    model.SeverityLow,
			Description: "This block starts outside your peak hours",
			Suggestion:  "Move deep work into your peak window when possible",
		})
	}

	return model.FocusBlock{
		Item:                    cand,
		ProtectionLevel:         level,
		RecommendedBufferBefore: bufBefore,
		RecommendedBufferAfter:  bufAfter,
		Threats:                 threats,
		Effectiveness:           effectiveness(cand, threats),
	}
}

// protectionTier maps duration onto a tier and its fixed buffer pair.
func protectionTier(durationMinutes int) (model.ProtectionLevel, int, int) {
	switch {
	case durationMinutes >= 180:
		return model.ProtectionMaximum, 30, 30
	case durationMinutes >= 120:
		return model.ProtectionStrict, 20, 15
	case durationMinutes >= 90:
		return model.ProtectionNormal, 15, 10
	default:
		return model.ProtectionMinimal, 5, 5
	}
}

// adjacentMeetingThreat fires when a meeting ends shortly before the block
// starts or starts shortly after it ends. Overlapping meetings are left to
// the conflict detector; only non-overlapping neighbors count as adjacent.
func adjacentMeetingThreat(cand, other model.TimelineItem, window time.Duration) (model.FocusThreat, bool) {
	if other.AttentionType != model.AttentionConnect {
		return model.FocusThreat{}, false
	}
	if conflict.Overlaps(cand.StartTime, cand.EndTime(), other.StartTime, other.EndTime()) {
		return model.FocusThreat{}, false
	}

	gapBefore := cand.StartTime.Sub(other.EndTime())
	gapAfter := other.StartTime.Sub(cand.EndTime())

	var gap time.Duration
	var desc string
	switch {
	case gapBefore >= 0 && gapBefore < window:
		gap = gapBefore
		desc = fmt.Sprintf("A meeting ends %d minutes before this block", int(gap.Minutes()))
	case gapAfter >= 0 && gapAfter < window:
		gap = gapAfter
		desc = fmt.Sprintf("A meeting starts %d minutes after this block", int(gap.Minutes()))
	default:
		return model.FocusThreat{}, false
	}

	severity := model.SeverityMedium
	switch {
	case gap < 10*time.Minute:
		severity = model.SeverityCritical
	case gap < 20*time.Minute:
		severity = model.SeverityHigh
	}

	return model.FocusThreat{
		Type:         model.ThreatAdjacentMeeting,
		Severity:     severity,
		Description:  desc,
		Suggestion:   "Add a buffer between the meeting and this block",
		ThreatItemID: other.ID,
	}, true
}

// contextSwitchThreat fires for non-create work ending within the switch
// window before the block starts. A meeting close enough to count as
// adjacent_meeting never reaches this check, so meetings only show up here
// when they fall in the 30-60 minute band.
func contextSwitchThreat(cand, other model.TimelineItem, window time.Duration) (model.FocusThreat, bool) {
	if other.AttentionType == model.AttentionCreate {
		return model.FocusThreat{}, false
	}
	gap := cand.StartTime.Sub(other.EndTime())
	if gap < 0 || gap >= window {
		return model.FocusThreat{}, false
	}
	return model.FocusThreat{
		Type:         model.ThreatContextSwitch,
		Severity:     model.SeverityMedium,
		Description:  fmt.Sprintf("Other work ends %d minutes before this block", int(gap.Minutes())),
		Suggestion:   "Leave more recovery time before switching into deep work",
		ThreatItemID: other.ID,
	}, true
}

// effectiveness starts at 100, deducts per threat by severity, adds duration
// and non-negotiable bonuses and clamps to [0,100].
func effectiveness(cand model.TimelineItem, threats []model.FocusThreat) int {
	score := 100
	for _, t := range threats {
		score -= severityDeduction[t.Severity]
	}
	if cand.DurationMinutes >= 120 {
		score += 10
	}
	if cand.DurationMinutes >= 180 {
		score += 5
	}
	if cand.IsNonNegotiable {
		score += 15
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
