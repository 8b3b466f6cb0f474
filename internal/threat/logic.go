package threat

// LogicType identifies which of the seven reasoning strategies produced an
// inference. The set is closed; every switch over it must be exhaustive.
type LogicType string

const (
	Deductive   LogicType = "deductive"
	Inductive   LogicType = "inductive"
	Abductive   LogicType = "abductive"
	Statistical LogicType = "statistical"
	Analogical  LogicType = "analogical"
	Temporal    LogicType = "temporal"
	Modal       LogicType = "modal"
)

// LogicTypes lists all seven logic types in descending weight order.
var LogicTypes = []LogicType{
	Deductive, Statistical, Inductive, Temporal, Abductive, Modal, Analogical,
}

// Logic-type weights used when composing the logic component scores into a
// single composite. These are fixed, security-relevant constants; changing
// them silently shifts every downstream threshold, so they are never
// derived or tuned at runtime. The sum is LogicWeightTotal.
const (
	WeightDeductive   = 1.0
	WeightStatistical = 0.9
	WeightInductive   = 0.8
	WeightTemporal    = 0.75
	WeightAbductive   = 0.7
	WeightModal       = 0.65
	WeightAnalogical  = 0.6

	// LogicWeightTotal is the sum of the seven weights above.
	LogicWeightTotal = 5.4
)

// Weight returns the fixed composition weight for the logic type.
func (t LogicType) Weight() float64 {
	switch t {
	case Deductive:
		return WeightDeductive
	case Statistical:
		return WeightStatistical
	case Inductive:
		return WeightInductive
	case Temporal:
		return WeightTemporal
	case Abductive:
		return WeightAbductive
	case Modal:
		return WeightModal
	case Analogical:
		return WeightAnalogical
	default:
		return 0
	}
}

// Valid reports whether t is one of the seven known logic types.
func (t LogicType) Valid() bool {
	return t.Weight() > 0
}

// LogicComponentScores holds one score in [0,100] per logic type,
// recomputed on every assessment.
type LogicComponentScores struct {
	Deductive   float64 `json:"deductive"`
	Inductive   float64 `json:"inductive"`
	Abductive   float64 `json:"abductive"`
	Statistical float64 `json:"statistical"`
	Analogical  float64 `json:"analogical"`
	Temporal    float64 `json:"temporal"`
	Modal       float64 `json:"modal"`
}

// Get returns the score for the given logic type.
func (s LogicComponentScores) Get(t LogicType) float64 {
	switch t {
	case Deductive:
		return s.Deductive
	case Inductive:
		return s.Inductive
	case Abductive:
		return s.Abductive
	case Statistical:
		return s.Statistical
	case Analogical:
		return s.Analogical
	case Temporal:
		return s.Temporal
	case Modal:
		return s.Modal
	default:
		return 0
	}
}

// Set overwrites the score for the given logic type, clamped to [0,100].
func (s *LogicComponentScores) Set(t LogicType, v float64) {
	v = Clamp(v, 0, 100)
	switch t {
	case Deductive:
		s.Deductive = v
	case Inductive:
		s.Inductive = v
	case Abductive:
		s.Abductive = v
	case Statistical:
		s.Statistical = v
	case Analogical:
		s.Analogical = v
	case Temporal:
		s.Temporal = v
	case Modal:
		s.Modal = v
	}
}

// WeightedComposite folds the seven component scores into one [0,100]
// value using the fixed logic-type weights.
func (s LogicComponentScores) WeightedComposite() float64 {
	sum := 0.0
	for _, t := range LogicTypes {
		sum += s.Get(t) * t.Weight()
	}
	return Clamp(sum/LogicWeightTotal, 0, 100)
}
