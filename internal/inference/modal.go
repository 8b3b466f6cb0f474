package inference

import (
	"fmt"

	"github.com/vaultsentry/vaultsentry/internal/threat"
)

// modalStrategy reasons about necessity and possibility over access
// rights: what must hold for observed access to be legitimate, and what
// possibly violated it.
type modalStrategy struct{}

func (modalStrategy) LogicType() threat.LogicType { return threat.Modal }

func (modalStrategy) Infer(obs []threat.Observation, facts []threat.Fact) []threat.Inference {
	groups := byProperty(obs)
	var out []threat.Inference

	if len(groups["confidential_document"]) > 0 && len(groups["night_access"]) > 0 {
		out = append(out, newInference(threat.Modal,
			"confidential_document+night_access",
			"Confidential material necessarily requires an owner session; a night session possibly violated that requirement",
			0.65,
			"Verify the owner performed the night accesses",
		))
	}

	// Topic facts bind documents to retention regimes regardless of what
	// was observed at runtime.
	topics := make(map[string]int)
	for _, f := range facts {
		if f.Predicate == "has-tag" {
			topics[f.Object]++
		}
	}
	for _, topic := range []string{"medical", "financial", "legal"} {
		if n := topics[topic]; n > 0 {
			out = append(out, newInference(threat.Modal,
				"has-tag:"+topic,
				fmt.Sprintf("%d %s records necessarily fall under compliance retention policy", n, topic),
				0.65,
				"",
			))
		}
	}

	return out
}
