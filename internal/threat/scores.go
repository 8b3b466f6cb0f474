package threat

// ImpactTier buckets a single inference contribution by magnitude.
type ImpactTier string

const (
	ImpactLow      ImpactTier = "low"
	ImpactMedium   ImpactTier = "medium"
	ImpactHigh     ImpactTier = "high"
	ImpactCritical ImpactTier = "critical"
)

// ImpactForScore maps a contribution score to its impact tier.
func ImpactForScore(contribution float64) ImpactTier {
	switch {
	case contribution >= 76:
		return ImpactCritical
	case contribution >= 51:
		return ImpactHigh
	case contribution >= 26:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// InferenceContribution records how much one inference contributed to the
// assessment, for explainability and audit.
type InferenceContribution struct {
	InferenceID       string         `json:"inference_id"`
	LogicType         LogicType      `json:"logic_type"`
	Category          ThreatCategory `json:"category"`
	ContributionScore float64        `json:"contribution_score"`
	Confidence        float64        `json:"confidence"`
	Impact            ImpactTier     `json:"impact"`
}

// GranularThreatScores is the atomic output of one assessment run.
// Composite is a pure function of the logic and category components;
// Delta and Velocity stay nil until the vault has at least two historical
// snapshots, so callers can tell "no data" apart from "no change".
type GranularThreatScores struct {
	Composite     float64                 `json:"composite"`
	Logic         LogicComponentScores    `json:"logic"`
	Category      ThreatCategoryScores    `json:"category"`
	Contributions []InferenceContribution `json:"contributions"`

	// Delta is the change in composite since the previous snapshot.
	Delta *float64 `json:"delta,omitempty"`

	// Velocity is the rate of change of the composite in points per hour.
	Velocity *float64 `json:"velocity,omitempty"`
}

// VelocityOrZero returns the velocity, or 0 when no trend data exists yet.
func (s GranularThreatScores) VelocityOrZero() float64 {
	if s.Velocity == nil {
		return 0
	}
	return *s.Velocity
}
