// Package remediation turns granular threat scores into prioritized
// recommendations, selects the protective action for the current
// assessment, and models the concrete remediation actions the
// surrounding application can execute.
package remediation

import (
	"sort"

	"github.com/google/uuid"
)

// ProtectiveAction is the discrete outcome of the action selector. The
// set is closed: exactly one of these is chosen per assessment.
type ProtectiveAction string

const (
	ActionNone               ProtectiveAction = "no_action"
	ActionMonitorClosely     ProtectiveAction = "monitor_closely"
	ActionEnhancedMonitoring ProtectiveAction = "enable_enhanced_monitoring"
	ActionRequireDualKey     ProtectiveAction = "require_dual_key_for_access"
	ActionLockWithDualKey    ProtectiveAction = "lock_with_dual_key_requirement"
	ActionPreventiveLock     ProtectiveAction = "preventive_lock"
	ActionImmediateLock      ProtectiveAction = "immediate_lock"
)

// ActionKind discriminates RemediationAction variants.
type ActionKind string

const (
	KindRedactDocuments ActionKind = "redact_documents"
	KindRevokeNominees  ActionKind = "revoke_nominees"
	KindLockVault       ActionKind = "lock_vault"
	KindRequireDualKey  ActionKind = "require_dual_key"
	KindRevokeSession   ActionKind = "revoke_session"
	KindBlockIP         ActionKind = "block_ip"
	KindEnableMonitor   ActionKind = "enable_monitoring"
)

// RemediationAction is one executable protective step. Only the payload
// fields relevant to its Kind are set. Identity is structural: two
// actions are the same action only when kind and payload agree, so two
// redactions over different document sets stay distinct.
type RemediationAction struct {
	Kind        ActionKind  `json:"kind"`
	VaultID     uuid.UUID   `json:"vault_id"`
	DocumentIDs []uuid.UUID `json:"document_ids,omitempty"`
	NomineeIDs  []uuid.UUID `json:"nominee_ids,omitempty"`
	SessionID   uuid.UUID   `json:"session_id,omitempty"`
	IP          string      `json:"ip,omitempty"`
}

// RedactDocuments builds a redaction action over the given documents.
func RedactDocuments(vaultID uuid.UUID, docIDs []uuid.UUID) RemediationAction {
	return RemediationAction{Kind: KindRedactDocuments, VaultID: vaultID, DocumentIDs: docIDs}
}

// RevokeNominees builds a nominee-revocation action.
func RevokeNominees(vaultID uuid.UUID, nomineeIDs []uuid.UUID) RemediationAction {
	return RemediationAction{Kind: KindRevokeNominees, VaultID: vaultID, NomineeIDs: nomineeIDs}
}

// LockVault builds a vault-lock action.
func LockVault(vaultID uuid.UUID) RemediationAction {
	return RemediationAction{Kind: KindLockVault, VaultID: vaultID}
}

// RequireDualKey builds a dual-key-requirement action.
func RequireDualKey(vaultID uuid.UUID) RemediationAction {
	return RemediationAction{Kind: KindRequireDualKey, VaultID: vaultID}
}

// RevokeSession builds a session-revocation action.
func RevokeSession(vaultID, sessionID uuid.UUID) RemediationAction {
	return RemediationAction{Kind: KindRevokeSession, VaultID: vaultID, SessionID: sessionID}
}

// BlockIP builds an IP-block action.
func BlockIP(vaultID uuid.UUID, ip string) RemediationAction {
	return RemediationAction{Kind: KindBlockIP, VaultID: vaultID, IP: ip}
}

// EnableMonitoring builds an enhanced-monitoring action.
func EnableMonitoring(vaultID uuid.UUID) RemediationAction {
	return RemediationAction{Kind: KindEnableMonitor, VaultID: vaultID}
}

// Equal reports whether two actions are the same action: same kind, same
// vault, and identical payload. ID-list order is ignored.
func (a RemediationAction) Equal(b RemediationAction) bool {
	if a.Kind != b.Kind || a.VaultID != b.VaultID ||
		a.SessionID != b.SessionID || a.IP != b.IP {
		return false
	}
	return sameIDSet(a.DocumentIDs, b.DocumentIDs) && sameIDSet(a.NomineeIDs, b.NomineeIDs)
}

func sameIDSet(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	as := make([]string, len(a))
	bs := make([]string, len(b))
	for i := range a {
		as[i] = a[i].String()
		bs[i] = b[i].String()
	}
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
