package inference

import "github.com/vaultsentry/vaultsentry/internal/threat"

// abductiveStrategy proposes the best available explanation for an
// anomaly. Its conclusions are hypotheses, not proofs, so they carry
// lower confidence than deductive rules over the same signals.
type abductiveStrategy struct{}

func (abductiveStrategy) LogicType() threat.LogicType { return threat.Abductive }

func (abductiveStrategy) Infer(obs []threat.Observation, _ []threat.Fact) []threat.Inference {
	groups := byProperty(obs)
	var out []threat.Inference

	if len(groups["unusual_location"]) > 0 && len(groups["night_access"]) > 0 {
		out = append(out, newInference(threat.Abductive,
			"unusual_location+night_access",
			"Best explanation: the credential was hijacked and is used from an unfamiliar place",
			0.7,
			"Require dual-key approval for further access",
		))
	}

	if len(groups["high_value_content"]) > 0 && len(groups["rapid_access"]) > 0 {
		out = append(out, newInference(threat.Abductive,
			"high_value_content+rapid_access",
			"Best explanation: targeted bulk extraction of high-value records is in progress",
			0.72,
			"Lock the vault pending owner review",
		))
	}

	if len(groups["unusual_location"]) > 0 && len(groups["impossible_travel"]) == 0 && len(groups["night_access"]) == 0 {
		out = append(out, newInference(threat.Abductive,
			"unusual_location",
			"Best explanation: the owner is travelling to an unrecognised location",
			0.4,
			"",
		))
	}

	return out
}
