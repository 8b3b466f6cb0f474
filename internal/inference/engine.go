// Package inference applies seven reasoning strategies over observations
// and facts to produce threat inferences. Strategies are independent and
// all run over the full observation set; the same inputs always produce
// the same inferences in the same order.
package inference

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/vaultsentry/vaultsentry/internal/threat"
)

// Strategy is one reasoning mode. Implementations must be pure: no
// retained state, no randomness, no clock reads.
type Strategy interface {
	// LogicType identifies which reasoning mode this strategy implements.
	LogicType() threat.LogicType

	// Infer derives zero or more inferences from the inputs.
	Infer(obs []threat.Observation, facts []threat.Fact) []threat.Inference
}

// Engine runs a fixed set of strategies over one observation set.
type Engine struct {
	strategies []Strategy
}

// New returns an Engine loaded with all seven default strategies.
func New() *Engine {
	return &Engine{strategies: []Strategy{
		deductiveStrategy{},
		statisticalStrategy{},
		inductiveStrategy{},
		temporalStrategy{},
		abductiveStrategy{},
		modalStrategy{},
		analogicalStrategy{},
	}}
}

// Infer runs every strategy and concatenates the results in strategy
// order. Strategies never suppress each other; several may draw
// conclusions from the same observation.
func (e *Engine) Infer(obs []threat.Observation, facts []threat.Fact) []threat.Inference {
	var out []threat.Inference
	for _, s := range e.strategies {
		for _, inf := range s.Infer(obs, facts) {
			inf.Confidence = threat.Clamp(inf.Confidence, 0, 1)
			out = append(out, inf)
		}
	}
	return out
}

// newInference builds an inference with a deterministic ID derived from
// its content, so repeated runs over the same inputs are reproducible for
// audit.
func newInference(t threat.LogicType, obsRef, conclusion string, confidence float64, actionable string) threat.Inference {
	sum := sha256.Sum256([]byte(string(t) + "|" + obsRef + "|" + conclusion))
	return threat.Inference{
		ID:             hex.EncodeToString(sum[:6]),
		LogicType:      t,
		ObservationRef: obsRef,
		Conclusion:     conclusion,
		Confidence:     confidence,
		Actionable:     actionable,
	}
}

// byProperty groups observations by property name.
func byProperty(obs []threat.Observation) map[string][]threat.Observation {
	groups := make(map[string][]threat.Observation, len(obs))
	for _, o := range obs {
		groups[o.Property] = append(groups[o.Property], o)
	}
	return groups
}

// sortedProperties returns the group keys in lexical order so iteration
// over the map is deterministic.
func sortedProperties(groups map[string][]threat.Observation) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
