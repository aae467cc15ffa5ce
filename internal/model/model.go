package model

import (
	"fmt"
	"time"
)

// AttentionType categorizes the nature of work a timeline item holds.
type AttentionType string

const (
	AttentionCreate  AttentionType = "create"
	AttentionDecide  AttentionType = "decide"
	AttentionConnect AttentionType = "connect"
	AttentionReview  AttentionType = "review"
	AttentionRecover AttentionType = "recover"
)

// KnownAttentionTypes lists every recognized attention type, in a stable order.
var KnownAttentionTypes = []AttentionType{
	AttentionCreate,
	AttentionDecide,
	AttentionConnect,
	AttentionReview,
	AttentionRecover,
}

// ItemStatus is the lifecycle state of a timeline item.
type ItemStatus string

const (
	StatusActive    ItemStatus = "active"
	StatusLogjam    ItemStatus = "logjam"
	StatusCompleted ItemStatus = "completed"
	StatusCancelled ItemStatus = "cancelled"
)

// Frequency is the unit a recurrence pattern advances by.
type Frequency string

const (
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
)

// RoleMode is the declared personal work archetype used by the role-fit scorer.
type RoleMode string

const (
	RoleMaker      RoleMode = "maker"
	RoleMarker     RoleMode = "marker"
	RoleMultiplier RoleMode = "multiplier"
)

// RecurrencePattern is a normalized recurrence rule.
//
// DaysOfWeek (0=Sunday..6=Saturday) and DayOfMonth are export-only metadata:
// occurrence generation advances by Interval units from the anchor and does
// not fan out across DaysOfWeek. They do surface in the exported rule string
// (BYDAY / BYMONTHDAY).
type RecurrencePattern struct {
	Frequency  Frequency  `json:"frequency"`
	Interval   int        `json:"interval"`
	DaysOfWeek []int      `json:"daysOfWeek,omitempty"`
	DayOfMonth int        `json:"dayOfMonth,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
}

// TimelineItem is a single scheduled block of time on a layer.
// EndTime is always derived from StartTime + DurationMinutes, never stored.
type TimelineItem struct {
	ID                string             `json:"id"`
	OwnerID           string             `json:"ownerId,omitempty"`
	LayerID           string             `json:"layerId"`
	Title             string             `json:"title"`
	StartTime         time.Time          `json:"startTime"`
	DurationMinutes   int                `json:"durationMinutes"`
	AttentionType     AttentionType      `json:"attentionType,omitempty"`
	IsNonNegotiable   bool               `json:"isNonNegotiable"`
	RecurringSeriesID string             `json:"recurringSeriesId,omitempty"`
	RecurrencePattern *RecurrencePattern `json:"recurrencePattern,omitempty"`
	Status            ItemStatus         `json:"status"`
	CompletedAt       *time.Time         `json:"completedAt,omitempty"`
}

// EndTime returns the derived exclusive end of the item's time range.
func (it TimelineItem) EndTime() time.Time {
	return it.StartTime.Add(time.Duration(it.DurationMinutes) * time.Minute)
}

// Layer is a named lane partitioning timeline items. Conflicts are only
// meaningful between items on the same layer.
type Layer struct {
	ID        string `json:"id"`
	OwnerID   string `json:"ownerId,omitempty"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
}

// ProtectionLevel is the tier assigned to a focus block by duration.
type ProtectionLevel string

const (
	ProtectionMinimal ProtectionLevel = "minimal"
	ProtectionNormal  ProtectionLevel = "normal"
	ProtectionStrict  ProtectionLevel = "strict"
	ProtectionMaximum ProtectionLevel = "maximum"
)

// ThreatType names a category of risk to a focus block.
type ThreatType string

const (
	ThreatAdjacentMeeting  ThreatType = "adjacent_meeting"
	ThreatContextSwitch    ThreatType = "context_switch"
	ThreatFragmentation    ThreatType = "fragmentation"
	ThreatInterruptionRisk ThreatType = "interruption_risk"
)

// ThreatSeverity grades how much a threat endangers the block.
type ThreatSeverity string

const (
	SeverityLow      ThreatSeverity = "low"
	SeverityMedium   ThreatSeverity = "medium"
	SeverityHigh     ThreatSeverity = "high"
	SeverityCritical ThreatSeverity = "critical"
)

// FocusThreat is a single diagnostic against a focus block.
type FocusThreat struct {
	Type         ThreatType     `json:"type"`
	Severity     ThreatSeverity `json:"severity"`
	Description  string         `json:"description"`
	Suggestion   string         `json:"suggestion"`
	ThreatItemID string         `json:"threatItemId,omitempty"`
}

// FocusBlock is a derived, non-persisted view over a create-typed item:
// its protection tier, recommended buffers, threats and effectiveness.
// Recomputed fresh on every read.
type FocusBlock struct {
	Item                    TimelineItem    `json:"item"`
	ProtectionLevel         ProtectionLevel `json:"protectionLevel"`
	RecommendedBufferBefore int             `json:"recommendedBufferBefore"`
	RecommendedBufferAfter  int             `json:"recommendedBufferAfter"`
	Threats                 []FocusThreat   `json:"threats"`
	Effectiveness           int             `json:"effectiveness"`
}

// RoleFitBreakdown holds the four named sub-scores of a role-fit result.
type RoleFitBreakdown struct {
	RoleAlignment           int `json:"role_alignment"`
	AttentionDistribution   int `json:"attention_distribution"`
	FocusProtection         int `json:"focus_protection"`
	DelegationOpportunities int `json:"delegation_opportunities"`
}

// RoleFitScore is the weekly 0-100 fit result. Ephemeral; the audit store
// may keep snapshots, but this struct is never the source of truth.
type RoleFitScore struct {
	Score           int              `json:"score"`
	Breakdown       RoleFitBreakdown `json:"breakdown"`
	Recommendations []string         `json:"recommendations"`
	Role            RoleMode         `json:"role"`
	Zone            string           `json:"zone,omitempty"`
}

// ValidationError reports a rejected field at the engine boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// ValidateDuration enforces the durationMinutes > 0 invariant shared by the
// materializer and the transport layer.
func ValidateDuration(minutes int) error {
	if minutes <= 0 {
		return &ValidationError{
			Field:   "durationMinutes",
			Message: fmt.Sprintf("must be a positive number of minutes, got %d", minutes),
		}
	}
	return nil
}
