package inference

import (
	"fmt"

	"github.com/vaultsentry/vaultsentry/internal/threat"
)

// analogicalStrategy compares the current signal set against known prior
// threat patterns. A partial match yields a proportionally weaker
// conclusion; analogy is the weakest of the seven reasoning modes and is
// weighted accordingly downstream.
type analogicalStrategy struct{}

func (analogicalStrategy) LogicType() threat.LogicType { return threat.Analogical }

// threatProfile is a named set of observation properties that together
// characterise a previously seen attack.
type threatProfile struct {
	name    string
	markers []string
}

// knownProfiles is the fixed catalogue of prior threat patterns. Order
// matters for output determinism.
var knownProfiles = []threatProfile{
	{name: "credential stuffing", markers: []string{"rapid_access", "night_access"}},
	{name: "smash-and-grab", markers: []string{"impossible_travel", "rapid_access", "high_value_content"}},
	{name: "insider exfiltration", markers: []string{"confidential_document", "rapid_access", "unusual_location"}},
}

// analogicalMinMatch is the marker overlap below which no analogy is drawn.
const analogicalMinMatch = 0.5

func (analogicalStrategy) Infer(obs []threat.Observation, _ []threat.Fact) []threat.Inference {
	groups := byProperty(obs)
	var out []threat.Inference

	for _, p := range knownProfiles {
		matched := 0
		for _, m := range p.markers {
			if len(groups[m]) > 0 {
				matched++
			}
		}
		ratio := float64(matched) / float64(len(p.markers))
		if ratio < analogicalMinMatch {
			continue
		}
		conf := threat.Clamp(0.4+0.45*ratio, 0, 0.85)
		out = append(out, newInference(threat.Analogical,
			p.name,
			fmt.Sprintf("Activity resembles the known %q attack pattern (%d of %d markers present)", p.name, matched, len(p.markers)),
			conf,
			"Compare against the recorded incident playbook",
		))
	}

	return out
}
