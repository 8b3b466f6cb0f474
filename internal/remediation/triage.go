package remediation

import (
	"github.com/google/uuid"
	"github.com/vaultsentry/vaultsentry/internal/threat"
)

// TriageResult is the executable half of an assessment: the actions the
// engine proposes for the owner (Recommended) and the actions it will run
// itself once validated (Auto), plus the verification questions an owner
// should answer before approving anything.
type TriageResult struct {
	Severity    string              `json:"severity"`
	Priority    int                 `json:"priority"`
	Questions   []string            `json:"questions,omitempty"`
	Recommended []RemediationAction `json:"recommended"`
	Auto        []RemediationAction `json:"auto"`
}

// BuildTriage maps the selected protective action (plus the inference set
// that justified it) onto concrete remediation actions. Locking actions
// severe enough to be automatic land in Auto; everything reversible or
// judgement-dependent lands in Recommended.
func BuildTriage(vaultID uuid.UUID, level threat.GranularThreatLevel, selected ProtectiveAction, inferences []threat.Inference) TriageResult {
	result := TriageResult{
		Severity:    level.String(),
		Priority:    level.Rank(),
		Recommended: []RemediationAction{},
		Auto:        []RemediationAction{},
	}

	switch selected {
	case ActionImmediateLock:
		result.Auto = append(result.Auto, LockVault(vaultID))
	case ActionLockWithDualKey:
		result.Auto = append(result.Auto, LockVault(vaultID))
		result.Recommended = append(result.Recommended, RequireDualKey(vaultID))
	case ActionPreventiveLock:
		result.Auto = append(result.Auto, LockVault(vaultID))
	case ActionRequireDualKey:
		result.Recommended = append(result.Recommended, RequireDualKey(vaultID))
	case ActionEnhancedMonitoring, ActionMonitorClosely:
		result.Recommended = append(result.Recommended, EnableMonitoring(vaultID))
	case ActionNone:
		// No baseline action; inference-derived actions below may still apply.
	}

	for _, inf := range inferences {
		switch inf.ObservationRef {
		case "malicious_hash":
			result.Recommended = append(result.Recommended, RedactDocuments(vaultID, nil))
			result.Questions = append(result.Questions, "Do you recognise the flagged documents?")
		case "impossible_travel":
			result.Recommended = append(result.Recommended, RevokeSession(vaultID, uuid.Nil))
			result.Questions = append(result.Questions, "Were you travelling when these accesses occurred?")
		case "night_access+rapid_access":
			result.Questions = append(result.Questions, "Did you access the vault between 1 AM and 5 AM?")
		}
	}

	result.Recommended = dedupe(result.Recommended)
	result.Auto = dedupe(result.Auto)
	return result
}

// dedupe removes structurally equal duplicates while preserving order.
func dedupe(actions []RemediationAction) []RemediationAction {
	out := actions[:0]
	for _, a := range actions {
		dup := false
		for _, kept := range out {
			if kept.Equal(a) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, a)
		}
	}
	return out
}
