// Package rolefit computes the weekly 0-100 role-fit score.
package rolefit

import (
	"math"

	"tempocal/internal/model"
)

// NoActivityRecommendation is the fixed message for an empty week.
const NoActivityRecommendation = "No scheduled activities found for this week"

// Input is one week of items plus the declared work context. Zone context
// is recorded on the result but does not participate in the formula.
type Input struct {
	Items []model.TimelineItem
	Role  model.RoleMode
	Zone  string
}

// Score computes the four sub-scores, the aggregate and the recommendation
// list. Pure: identical input yields identical output.
func Score(in Input) model.RoleFitScore {
	if len(in.Items) == 0 {
		return model.RoleFitScore{
			Score: 50,
			Breakdown: model.RoleFitBreakdown{
				RoleAlignment:           50,
				AttentionDistribution:   50,
				FocusProtection:         50,
				DelegationOpportunities: 50,
			},
			Recommendations: []string{NoActivityRecommendation},
			Role:            in.Role,
			Zone:            in.Zone,
		}
	}

	hoursByType := make(map[model.AttentionType]float64)
	totalHours := 0.0
	for _, it := range in.Items {
		h := float64(it.DurationMinutes) / 60.0
		totalHours += h
		if it.AttentionType != "" {
			hoursByType[it.AttentionType] += h
		}
	}

	breakdown := model.RoleFitBreakdown{
		RoleAlignment:           roleAlignment(in.Role, hoursByType, totalHours),
		AttentionDistribution:   attentionDistribution(hoursByType),
		FocusProtection:         focusProtection(in.Items),
		DelegationOpportunities: delegationOpportunities(in.Items),
	}

	sum := breakdown.RoleAlignment + breakdown.AttentionDistribution +
		breakdown.FocusProtection + breakdown.DelegationOpportunities

	return model.RoleFitScore{
		Score:           int(math.Round(float64(sum) / 4.0)),
		Breakdown:       breakdown,
		Recommendations: recommendations(in.Role, breakdown),
		Role:            in.Role,
		Zone:            in.Zone,
	}
}

// roleAlignment scales the role's core attention-type share of the week.
// An unknown role mode contributes a neutral 50 so analytics stay available
// for partially-configured accounts.
func roleAlignment(role model.RoleMode, hoursByType map[model.AttentionType]float64, totalHours float64) int {
	if totalHours <= 0 {
		return 50
	}
	pct := func(t model.AttentionType) float64 {
		return hoursByType[t] / totalHours * 100
	}
	var raw float64
	switch role {
	case model.RoleMaker:
		raw = 2 * pct(model.AttentionCreate)
	case model.RoleMarker:
		raw = 3 * pct(model.AttentionDecide)
	case model.RoleMultiplier:
		raw = 2.5 * pct(model.AttentionConnect)
	default:
		return 50
	}
	return int(math.Round(math.Min(95, math.Max(10, raw))))
}

// attentionDistribution rewards spreading time across attention types:
// 20 points per type with any scheduled hours, capped at 95.
func attentionDistribution(hoursByType map[model.AttentionType]float64) int {
	kinds := 0
	for _, t := range model.KnownAttentionTypes {
		if hoursByType[t] > 0 {
			kinds++
		}
	}
	score := 20 * kinds
	if score > 95 {
		score = 95
	}
	return score
}

// focusProtection is the share of create blocks long enough (>=120min) to
// be defensible. With no create work at all it defaults to 70.
func focusProtection(items []model.TimelineItem) int {
	createCount, longCount := 0, 0
	for _, it := range items {
		if it.AttentionType != model.AttentionCreate {
			continue
		}
		createCount++
		if it.DurationMinutes >= 120 {
			longCount++
		}
	}
	if createCount == 0 {
		return 70
	}
	score := math.Round(100 * float64(longCount) / float64(createCount))
	return int(math.Min(95, score))
}

// delegationOpportunities penalizes a week dominated by hour-plus items.
// Defaults to 80 with no items at all.
func delegationOpportunities(items []model.TimelineItem) int {
	if len(items) == 0 {
		return 80
	}
	over := 0
	for _, it := range items {
		if it.DurationMinutes >= 60 {
			over++
		}
	}
	score := math.Round(100 - 60*float64(over)/float64(len(items)))
	return int(math.Min(95, score))
}

// coreTypeByRole names each role's core attention type for recommendations.
var coreTypeByRole = map[model.RoleMode]string{
	model.RoleMaker:      "create",
	model.RoleMarker:     "decide",
	model.RoleMultiplier: "connect",
}

// recommendations runs the independent threshold checks; they are not
// mutually exclusive.
func recommendations(role model.RoleMode, b model.RoleFitBreakdown) []string {
	recs := make([]string, 0, 4)
	if b.RoleAlignment < 60 {
		if core, ok := coreTypeByRole[role]; ok {
			recs = append(recs, "Schedule more "+core+" time to match your "+string(role)+" role")
		}
	}
	if b.FocusProtection < 70 {
		recs = append(recs, "Protect longer focus blocks of two hours or more for your deep work")
	}
	if b.DelegationOpportunities < 60 {
		recs = append(recs, "Look for tasks over an hour you could delegate")
	}
	if b.AttentionDistribution < 40 {
		recs = append(recs, "Balance your week across more kinds of attention")
	}
	if len(recs) == 0 {
		recs = append(recs, "Your week lines up well with your selected role")
	}
	return recs
}
