package inference

import (
	"fmt"

	"github.com/vaultsentry/vaultsentry/internal/threat"
)

// statisticalStrategy draws probability-style conclusions from signal
// frequency: which properties dominate the observation set and whether
// the overall signal volume is abnormal.
type statisticalStrategy struct{}

func (statisticalStrategy) LogicType() threat.LogicType { return threat.Statistical }

// Frequency thresholds. A property must both repeat and account for a
// meaningful share of all signals before it is reported.
const (
	statMinCount = 2
	statMinRatio = 0.3

	statVolumeThreshold = 10
)

func (statisticalStrategy) Infer(obs []threat.Observation, _ []threat.Fact) []threat.Inference {
	if len(obs) == 0 {
		return nil
	}

	groups := byProperty(obs)
	total := float64(len(obs))
	var out []threat.Inference

	for _, prop := range sortedProperties(groups) {
		group := groups[prop]
		if len(group) < statMinCount {
			continue
		}
		ratio := float64(len(group)) / total
		if ratio < statMinRatio {
			continue
		}
		conf := threat.Clamp(0.5+ratio/2, 0, 0.95)
		out = append(out, newInference(threat.Statistical,
			prop,
			fmt.Sprintf("Signal distribution is dominated by %s (%d of %d observations)", prop, len(group), len(obs)),
			conf,
			"",
		))
	}

	if len(obs) >= statVolumeThreshold {
		out = append(out, newInference(threat.Statistical,
			"*",
			fmt.Sprintf("Aggregate signal volume of %d observations is statistically elevated for a single vault", len(obs)),
			threat.Clamp(0.6+float64(len(obs))/100, 0, 0.9),
			"Review recent vault activity",
		))
	}

	return out
}
