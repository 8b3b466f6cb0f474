package inference

import (
	"fmt"

	"github.com/vaultsentry/vaultsentry/internal/threat"
)

// inductiveStrategy generalises from repetition: a property observed
// several times is treated as an established pattern that is likely to
// recur. Confidence grows with the number of repetitions but never
// reaches certainty.
type inductiveStrategy struct{}

func (inductiveStrategy) LogicType() threat.LogicType { return threat.Inductive }

const inductiveMinRepeats = 3

func (inductiveStrategy) Infer(obs []threat.Observation, _ []threat.Fact) []threat.Inference {
	groups := byProperty(obs)
	var out []threat.Inference

	for _, prop := range sortedProperties(groups) {
		group := groups[prop]
		if len(group) < inductiveMinRepeats {
			continue
		}
		conf := threat.Clamp(0.6+0.05*float64(len(group)), 0, 0.9)
		actionable := ""
		if prop == "night_access" || prop == "rapid_access" {
			actionable = "Restrict access outside normal usage windows"
		}
		out = append(out, newInference(threat.Inductive,
			prop,
			fmt.Sprintf("Recurring %s events (%d occurrences) form an established pattern likely to continue", prop, len(group)),
			conf,
			actionable,
		))
	}

	return out
}
