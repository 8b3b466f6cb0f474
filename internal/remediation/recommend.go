package remediation

import (
	"fmt"
	"sort"

	"github.com/vaultsentry/vaultsentry/internal/threat"
)

// Urgency buckets a recommendation by how soon it should be acted on.
type Urgency string

const (
	UrgencyImmediate Urgency = "immediate"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyImportant Urgency = "important"
	UrgencyRoutine   Urgency = "routine"
)

// Recommendation is one surfaced remediation suggestion. Priority is a
// monotonically increasing counter assigned in generation order: lower
// numbers were emitted first and matter more.
type Recommendation struct {
	Priority    int                   `json:"priority"`
	Urgency     Urgency               `json:"urgency"`
	Title       string                `json:"title"`
	Detail      string                `json:"detail"`
	Category    threat.ThreatCategory `json:"category,omitempty"`
	InferenceID string                `json:"inference_id,omitempty"`
}

// Category thresholds that trigger category-specific recommendations.
const (
	recommendComposite  = 80.0
	recommendExternal   = 80.0
	recommendCompliance = 60.0
	recommendGeographic = 75.0

	maxInferenceRecommendations = 5
)

// Generate builds the ordered recommendation list for one assessment:
// the composite rule first, then the category rules, then up to five
// actionable inferences ranked by confidence.
func Generate(scores threat.GranularThreatScores, inferences []threat.Inference) []Recommendation {
	recs := []Recommendation{}
	priority := 0
	next := func() int { priority++; return priority }

	if scores.Composite >= recommendComposite {
		recs = append(recs, Recommendation{
			Priority: next(),
			Urgency:  UrgencyImmediate,
			Title:    "Lock the vault and require dual-key approval",
			Detail:   fmt.Sprintf("Composite threat score %.1f is at emergency level", scores.Composite),
		})
	}

	if scores.Category.ExternalThreat > recommendExternal {
		recs = append(recs, Recommendation{
			Priority: next(),
			Urgency:  UrgencyImmediate,
			Title:    "Investigate external threat indicators",
			Detail:   fmt.Sprintf("External threat score %.1f exceeds the critical threshold", scores.Category.ExternalThreat),
			Category: threat.CategoryExternalThreat,
		})
	}
	if scores.Category.Compliance > recommendCompliance {
		recs = append(recs, Recommendation{
			Priority: next(),
			Urgency:  UrgencyImportant,
			Title:    "Review compliance posture of stored documents",
			Detail:   fmt.Sprintf("Compliance score %.1f warrants a retention review", scores.Category.Compliance),
			Category: threat.CategoryCompliance,
		})
	}
	if scores.Category.Geographic > recommendGeographic {
		recs = append(recs, Recommendation{
			Priority: next(),
			Urgency:  UrgencyUrgent,
			Title:    "Verify recent access locations",
			Detail:   fmt.Sprintf("Geographic risk score %.1f indicates anomalous access locations", scores.Category.Geographic),
			Category: threat.CategoryGeographic,
		})
	}

	for _, inf := range topActionable(inferences) {
		recs = append(recs, Recommendation{
			Priority:    next(),
			Urgency:     urgencyForConfidence(inf.Confidence),
			Title:       inf.Actionable,
			Detail:      inf.Conclusion,
			Category:    threat.CategorizeConclusion(inf.Conclusion),
			InferenceID: inf.ID,
		})
	}

	return recs
}

// topActionable returns up to five actionable inferences, highest
// confidence first. Ties keep input order so output stays deterministic.
func topActionable(inferences []threat.Inference) []threat.Inference {
	var actionable []threat.Inference
	for _, inf := range inferences {
		if inf.Actionable != "" {
			actionable = append(actionable, inf)
		}
	}
	sort.SliceStable(actionable, func(i, j int) bool {
		return actionable[i].Confidence > actionable[j].Confidence
	})
	if len(actionable) > maxInferenceRecommendations {
		actionable = actionable[:maxInferenceRecommendations]
	}
	return actionable
}

func urgencyForConfidence(confidence float64) Urgency {
	switch {
	case confidence >= 0.85:
		return UrgencyUrgent
	case confidence >= 0.7:
		return UrgencyImportant
	default:
		return UrgencyRoutine
	}
}
