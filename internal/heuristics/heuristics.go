// Package heuristics computes three independent risk metrics directly
// from raw access logs and document metadata: geographic clustering,
// access-pattern anomalies and tag/content signals. Each calculator is a
// pure function returning a risk score in [0,1] plus supporting detail;
// the scorer consumes only the risk scores.
package heuristics

import "github.com/vaultsentry/vaultsentry/internal/threat"

// Blend weights for the combined heuristic composite. Fixed constants;
// see the scoring package for how the composite feeds the final score.
const (
	blendGeographic = 0.4
	blendAccess     = 0.4
	blendContent    = 0.2
)

// Result bundles the three metric groups and their blended composite on
// the 0–100 scale used by the scorer.
type Result struct {
	Geographic GeoMetrics     `json:"geographic"`
	Access     AccessMetrics  `json:"access"`
	Content    ContentMetrics `json:"content"`

	// Composite is the weighted blend of the three risk scores, in [0,100].
	Composite float64 `json:"composite"`
}

// Analyze runs all three calculators and blends their risk scores.
func Analyze(logs []threat.AccessLogEntry, docs []threat.DocumentMeta) Result {
	geo := AnalyzeGeographic(logs)
	access := AnalyzeAccessPattern(logs)
	content := AnalyzeContent(docs)
	return Combine(geo, access, content)
}

// Combine blends already-computed metrics into a Result. Split out from
// Analyze so the engine can run the three calculators concurrently.
func Combine(geo GeoMetrics, access AccessMetrics, content ContentMetrics) Result {
	composite := 100 * (geo.RiskScore*blendGeographic +
		access.RiskScore*blendAccess +
		content.RiskScore*blendContent)
	return Result{
		Geographic: geo,
		Access:     access,
		Content:    content,
		Composite:  threat.Clamp(composite, 0, 100),
	}
}
