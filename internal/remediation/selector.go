package remediation

import "github.com/vaultsentry/vaultsentry/internal/threat"

// Decision-table thresholds for the category overrides that apply when
// the overall level is still low.
const (
	overrideExternalThreat   = 80.0
	overrideDataExfiltration = 70.0
	overrideVelocity         = 10.0 // points per hour
)

// SelectAction maps the current scores and level to one protective
// action. The table is evaluated top to bottom and the first match wins;
// every evaluation is independent of previous assessments.
//
// The category and velocity overrides at the bottom let a severe external
// threat or a fast-rising score force a lock even while the composite is
// still low.
func SelectAction(scores threat.GranularThreatScores, level threat.GranularThreatLevel) ProtectiveAction {
	switch {
	case level >= threat.LevelCritical:
		return ActionImmediateLock
	case level == threat.LevelHighCritical:
		return ActionLockWithDualKey
	case level == threat.LevelHigh:
		return ActionRequireDualKey
	case level == threat.LevelMediumHigh:
		return ActionEnhancedMonitoring
	case level == threat.LevelMedium || level == threat.LevelLowMedium:
		return ActionMonitorClosely
	}

	// level rank <= 3 from here on.
	switch {
	case scores.Category.ExternalThreat > overrideExternalThreat:
		return ActionImmediateLock
	case scores.Category.DataExfiltration > overrideDataExfiltration:
		return ActionLockWithDualKey
	case scores.VelocityOrZero() > overrideVelocity:
		return ActionPreventiveLock
	default:
		return ActionNone
	}
}
