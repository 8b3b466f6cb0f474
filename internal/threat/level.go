package threat

// GranularThreatLevel is one of ten ordered severity tiers derived from
// the composite score. The tiers partition [0,100]: every score maps to
// exactly one level.
type GranularThreatLevel int

const (
	LevelMinimal GranularThreatLevel = iota + 1
	LevelVeryLow
	LevelLow
	LevelLowMedium
	LevelMedium
	LevelMediumHigh
	LevelHigh
	LevelHighCritical
	LevelCritical
	LevelExtreme
)

// levelUpperBounds holds the exclusive upper bound of each tier in rank
// order. A score below levelUpperBounds[i] (and not below any earlier
// bound) has rank i+1. LevelExtreme covers everything up to and
// including 100.
var levelUpperBounds = [9]float64{10.1, 20.1, 30.1, 40.1, 50.1, 60.1, 70.1, 80.1, 90.1}

// ClassifyScore maps a composite score to its threat level. The input is
// clamped to [0,100] first, so the function is total.
func ClassifyScore(score float64) GranularThreatLevel {
	score = Clamp(score, 0, 100)
	for i, bound := range levelUpperBounds {
		if score < bound {
			return GranularThreatLevel(i + 1)
		}
	}
	return LevelExtreme
}

// Rank returns the 1-based severity rank (Minimal=1 … Extreme=10).
func (l GranularThreatLevel) Rank() int { return int(l) }

// RequiresAction reports whether the level is severe enough that some
// protective response is warranted (MediumHigh and above).
func (l GranularThreatLevel) RequiresAction() bool { return l >= LevelMediumHigh }

// RequiresImmediateAction reports whether the level demands an immediate
// response (HighCritical and above).
func (l GranularThreatLevel) RequiresImmediateAction() bool { return l >= LevelHighCritical }

// String returns the snake_case name of the level.
func (l GranularThreatLevel) String() string {
	switch l {
	case LevelMinimal:
		return "minimal"
	case LevelVeryLow:
		return "very_low"
	case LevelLow:
		return "low"
	case LevelLowMedium:
		return "low_medium"
	case LevelMedium:
		return "medium"
	case LevelMediumHigh:
		return "medium_high"
	case LevelHigh:
		return "high"
	case LevelHighCritical:
		return "high_critical"
	case LevelCritical:
		return "critical"
	case LevelExtreme:
		return "extreme"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so levels serialise as
// their names in JSON payloads.
func (l GranularThreatLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}
