package heuristics

import (
	"sort"
	"time"

	"github.com/vaultsentry/vaultsentry/internal/threat"
)

// AccessMetrics is the output of the access-pattern heuristic.
type AccessMetrics struct {
	RiskScore      float64 `json:"risk_score"`
	ScriptedGaps   int     `json:"scripted_gaps"`
	DormantResumes int     `json:"dormant_resumes"`
	NightAccesses  int     `json:"night_accesses"`
	RapidBursts    int     `json:"rapid_bursts"`
}

// Access-pattern heuristic parameters. Each signal has its own capped
// contribution; the sum is clamped to 1.0.
const (
	scriptedGapMax  = 10 * time.Second
	dormancyMin     = 30 * 24 * time.Hour
	burstWindow     = 60 * time.Second
	burstCount      = 5
	accessNightFrom = 1
	accessNightTo   = 5

	capScripted = 0.3
	capDormancy = 0.2
	capNight    = 0.25
	capBursts   = 0.25

	perScriptedGap = 0.05
	perNightAccess = 0.05
	perBurst       = 0.08
)

// AnalyzeAccessPattern scores risk from timestamp structure alone:
// sub-10-second gaps (scripted access), month-long dormancy followed by
// activity, night-hour accesses, and five-in-sixty-second bursts.
func AnalyzeAccessPattern(logs []threat.AccessLogEntry) AccessMetrics {
	if len(logs) == 0 {
		return AccessMetrics{}
	}

	sorted := make([]threat.AccessLogEntry, len(logs))
	copy(sorted, logs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	m := AccessMetrics{}
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].Timestamp.Sub(sorted[i-1].Timestamp)
		if gap < scriptedGapMax {
			m.ScriptedGaps++
		}
		if gap > dormancyMin {
			m.DormantResumes++
		}
	}

	for _, e := range sorted {
		h := e.Timestamp.Hour()
		if h >= accessNightFrom && h <= accessNightTo {
			m.NightAccesses++
		}
	}

	// Count non-overlapping bursts of >=burstCount entries inside one window.
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j].Timestamp.Sub(sorted[i].Timestamp) <= burstWindow {
			j++
		}
		if j-i >= burstCount {
			m.RapidBursts++
			i = j
			continue
		}
		i++
	}

	risk := threat.Clamp(float64(m.ScriptedGaps)*perScriptedGap, 0, capScripted)
	if m.DormantResumes > 0 {
		risk += capDormancy
	}
	risk += threat.Clamp(float64(m.NightAccesses)*perNightAccess, 0, capNight)
	risk += threat.Clamp(float64(m.RapidBursts)*perBurst, 0, capBursts)

	m.RiskScore = threat.Clamp(risk, 0, 1)
	return m
}
