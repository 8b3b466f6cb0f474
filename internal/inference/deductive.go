package inference

import "github.com/vaultsentry/vaultsentry/internal/threat"

// deductiveStrategy instantiates certain, rule-based conclusions: if the
// premises hold, the conclusion follows. These carry the highest
// downstream weight, so each rule requires unambiguous premises.
type deductiveStrategy struct{}

func (deductiveStrategy) LogicType() threat.LogicType { return threat.Deductive }

func (deductiveStrategy) Infer(obs []threat.Observation, _ []threat.Fact) []threat.Inference {
	groups := byProperty(obs)
	var out []threat.Inference

	if hits := groups["malicious_hash"]; len(hits) > 0 {
		out = append(out, newInference(threat.Deductive,
			"malicious_hash",
			"Vault stores content matching a known malicious hash",
			0.95,
			"Quarantine and redact the matching documents",
		))
	}

	if hits := groups["impossible_travel"]; len(hits) > 0 {
		out = append(out, newInference(threat.Deductive,
			"impossible_travel",
			"Impossible travel between consecutive accesses proves the credential is used from more than one place",
			0.9,
			"Revoke all active sessions",
		))
	}

	if len(groups["night_access"]) > 0 && len(groups["rapid_access"]) > 0 {
		out = append(out, newInference(threat.Deductive,
			"night_access+rapid_access",
			"Rapid access bursts during night hours indicate automated tooling, not the owner",
			0.85,
			"Enable enhanced monitoring",
		))
	}

	return out
}
