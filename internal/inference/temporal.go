package inference

import (
	"fmt"
	"sort"
	"time"

	"github.com/vaultsentry/vaultsentry/internal/threat"
)

// temporalStrategy reasons over the time ordering of observations:
// security signals arriving in rapid succession are more alarming than
// the same signals spread over days.
type temporalStrategy struct{}

func (temporalStrategy) LogicType() threat.LogicType { return threat.Temporal }

const (
	temporalChainGap = 5 * time.Minute
	temporalChainMin = 3
)

func (temporalStrategy) Infer(obs []threat.Observation, _ []threat.Fact) []threat.Inference {
	if len(obs) < temporalChainMin {
		return nil
	}

	sorted := make([]threat.Observation, len(obs))
	copy(sorted, obs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Property < sorted[j].Property
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var out []threat.Inference
	chainStart := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i].Timestamp.Sub(sorted[i-1].Timestamp) <= temporalChainGap {
			continue
		}
		chainLen := i - chainStart
		if chainLen >= temporalChainMin {
			span := sorted[i-1].Timestamp.Sub(sorted[chainStart].Timestamp)
			out = append(out, newInference(threat.Temporal,
				sorted[chainStart].Property,
				fmt.Sprintf("Rapid succession of %d security signals within %s suggests a coordinated session", chainLen, span.Round(time.Second)),
				0.75,
				"Enable enhanced monitoring",
			))
		}
		chainStart = i
	}

	return out
}
