package heuristics

import (
	"sort"
	"strings"
	"time"

	"github.com/vaultsentry/vaultsentry/internal/threat"
)

// ContentMetrics is the output of the tag/content heuristic.
type ContentMetrics struct {
	RiskScore         float64  `json:"risk_score"`
	SuspiciousTagHits int      `json:"suspicious_tag_hits"`
	UploadSurge       bool     `json:"upload_surge"`
	SinkRatio         float64  `json:"sink_ratio"`
	OutlierTypes      []string `json:"outlier_types,omitempty"`
}

// Content heuristic parameters.
const (
	surgeWindow    = 24 * time.Hour
	surgeDocCount  = 20
	sinkRatioLimit = 0.8

	outlierShareMax = 0.05
	outlierCountMax = 3

	perTagHit      = 0.1
	capTagHits     = 0.4
	surgeRisk      = 0.5
	sinkRisk       = 0.3
	perOutlierType = 0.05
	capOutliers    = 0.1
)

// suspiciousContentKeywords flag tags that suggest the vault is being used
// to stage harmful or stolen material.
var suspiciousContentKeywords = []string{
	"malware", "exploit", "stolen", "leaked", "dump", "cracked", "password",
}

// sinkDocTypes are formats typically used to aggregate exported data.
var sinkDocTypes = map[string]struct{}{
	"archive": {}, "export": {}, "backup": {}, "csv": {},
}

// AnalyzeContent scores risk from document metadata: suspicious tag
// keywords, sudden upload volume, the share of sink-type documents and
// rare outlier document types.
func AnalyzeContent(docs []threat.DocumentMeta) ContentMetrics {
	if len(docs) == 0 {
		return ContentMetrics{}
	}

	m := ContentMetrics{}

	for _, d := range docs {
		for _, tag := range d.Tags {
			lower := strings.ToLower(tag)
			for _, kw := range suspiciousContentKeywords {
				if strings.Contains(lower, kw) {
					m.SuspiciousTagHits++
					break
				}
			}
		}
	}

	m.UploadSurge = hasUploadSurge(docs)

	sink := 0
	typeCounts := make(map[string]int)
	for _, d := range docs {
		t := strings.ToLower(d.DocType)
		typeCounts[t]++
		if _, ok := sinkDocTypes[t]; ok {
			sink++
		}
	}
	m.SinkRatio = float64(sink) / float64(len(docs))

	for t, n := range typeCounts {
		share := float64(n) / float64(len(docs))
		if share < outlierShareMax && n < outlierCountMax {
			m.OutlierTypes = append(m.OutlierTypes, t)
		}
	}
	sort.Strings(m.OutlierTypes)

	risk := threat.Clamp(float64(m.SuspiciousTagHits)*perTagHit, 0, capTagHits)
	if m.UploadSurge {
		risk += surgeRisk
	}
	if m.SinkRatio > sinkRatioLimit {
		risk += sinkRisk
	}
	risk += threat.Clamp(float64(len(m.OutlierTypes))*perOutlierType, 0, capOutliers)

	m.RiskScore = threat.Clamp(risk, 0, 1)
	return m
}

// hasUploadSurge reports whether more than surgeDocCount documents were
// uploaded inside any single 24-hour window.
func hasUploadSurge(docs []threat.DocumentMeta) bool {
	times := make([]time.Time, 0, len(docs))
	for _, d := range docs {
		times = append(times, d.UploadedAt)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	for i := range times {
		j := i
		for j < len(times) && times[j].Sub(times[i]) <= surgeWindow {
			j++
		}
		if j-i > surgeDocCount {
			return true
		}
	}
	return false
}
