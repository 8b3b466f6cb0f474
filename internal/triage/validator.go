// Package triage gates remediation actions against live external state.
// An action that passed scoring may still be impossible right now (vault
// already locked, session expired, documents gone); the validator filters
// those out before anything reaches the caller, so the engine never
// discovers a dead action at execution time.
package triage

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/vaultsentry/vaultsentry/internal/remediation"
)

// Vault lock states as reported by the storage collaborator.
const (
	StatusLocked   = "locked"
	StatusUnlocked = "unlocked"
)

// VaultState is the live external state a validation runs against. It is
// fetched by the caller immediately before validation; the validator
// itself performs no I/O.
type VaultState struct {
	VaultID         uuid.UUID
	Status          string
	OwnerID         uuid.UUID
	CallerID        uuid.UUID
	SessionToken    string
	DocumentIDs     map[uuid.UUID]struct{}
	RevokedNominees map[uuid.UUID]struct{}
	RevokedSessions map[uuid.UUID]struct{}
}

// Validator checks per-action preconditions. Sessions are represented as
// signed tokens; the validator needs the signing key to tell an active
// session from an expired or forged one.
type Validator struct {
	sessions *SessionVerifier
}

// New creates a Validator whose session checks use the given HMAC key.
func New(sessionKey []byte) *Validator {
	return &Validator{sessions: NewSessionVerifier(sessionKey)}
}

// Validate reports whether the action can execute against the given
// state. When it cannot, the returned reason names the failing
// precondition.
func (v *Validator) Validate(action remediation.RemediationAction, state VaultState) (bool, string) {
	switch action.Kind {
	case remediation.KindRedactDocuments:
		return v.validateRedact(action, state)
	case remediation.KindRevokeNominees:
		return v.validateRevokeNominees(action, state)
	case remediation.KindLockVault:
		if state.Status == StatusLocked {
			return false, "vault is already locked"
		}
		return true, ""
	case remediation.KindRequireDualKey:
		if state.CallerID != state.OwnerID {
			return false, "only the vault owner can require dual-key approval"
		}
		return true, ""
	case remediation.KindRevokeSession:
		return v.validateRevokeSession(action, state)
	case remediation.KindBlockIP:
		if action.IP == "" {
			return false, "no IP address to block"
		}
		return true, ""
	case remediation.KindEnableMonitor:
		return true, ""
	default:
		return false, fmt.Sprintf("unknown action kind %q", action.Kind)
	}
}

func (v *Validator) validateRedact(action remediation.RemediationAction, state VaultState) (bool, string) {
	if state.Status == StatusLocked {
		return false, "vault is locked; unlock it before redacting documents"
	}
	if err := v.sessions.Verify(state.SessionToken, state.VaultID); err != nil {
		return false, fmt.Sprintf("no active session: %v", err)
	}
	for _, id := range action.DocumentIDs {
		if _, ok := state.DocumentIDs[id]; !ok {
			return false, fmt.Sprintf("document %s not found in vault", id)
		}
	}
	return true, ""
}

func (v *Validator) validateRevokeNominees(action remediation.RemediationAction, state VaultState) (bool, string) {
	if state.CallerID != state.OwnerID {
		return false, "only the vault owner can revoke nominees"
	}
	for _, id := range action.NomineeIDs {
		if _, revoked := state.RevokedNominees[id]; revoked {
			return false, fmt.Sprintf("nominee %s is already revoked", id)
		}
	}
	return true, ""
}

func (v *Validator) validateRevokeSession(action remediation.RemediationAction, state VaultState) (bool, string) {
	if action.SessionID != uuid.Nil {
		if _, revoked := state.RevokedSessions[action.SessionID]; revoked {
			return false, fmt.Sprintf("session %s is already revoked", action.SessionID)
		}
		return true, ""
	}
	// Revoking "the current session" requires one to exist.
	if err := v.sessions.Verify(state.SessionToken, state.VaultID); err != nil {
		return false, fmt.Sprintf("no active session to revoke: %v", err)
	}
	return true, ""
}

// FilterTriage drops non-executable actions from both the recommended and
// auto lists, returning the dropped actions with their reasons so callers
// can log them.
func (v *Validator) FilterTriage(result remediation.TriageResult, state VaultState) (remediation.TriageResult, []Rejection) {
	var rejected []Rejection
	keep := func(actions []remediation.RemediationAction) []remediation.RemediationAction {
		out := []remediation.RemediationAction{}
		for _, a := range actions {
			if ok, reason := v.Validate(a, state); ok {
				out = append(out, a)
			} else {
				rejected = append(rejected, Rejection{Action: a, Reason: reason})
			}
		}
		return out
	}
	result.Recommended = keep(result.Recommended)
	result.Auto = keep(result.Auto)
	return result, rejected
}

// Rejection records one action dropped during triage validation.
type Rejection struct {
	Action remediation.RemediationAction `json:"action"`
	Reason string                        `json:"reason"`
}
