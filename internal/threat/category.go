package threat

import "strings"

// ThreatCategory classifies an inference by threat domain. The set is
// closed; classification is a total function with CategoryBehavioral as
// the fallback for anything that matches no keyword group.
type ThreatCategory string

const (
	CategoryAccessPattern    ThreatCategory = "access_pattern"
	CategoryGeographic       ThreatCategory = "geographic"
	CategoryDocumentContent  ThreatCategory = "document_content"
	CategoryBehavioral       ThreatCategory = "behavioral"
	CategoryExternalThreat   ThreatCategory = "external_threat"
	CategoryCompliance       ThreatCategory = "compliance"
	CategoryDataExfiltration ThreatCategory = "data_exfiltration"
)

// ThreatCategories lists all seven categories.
var ThreatCategories = []ThreatCategory{
	CategoryAccessPattern,
	CategoryGeographic,
	CategoryDocumentContent,
	CategoryBehavioral,
	CategoryExternalThreat,
	CategoryCompliance,
	CategoryDataExfiltration,
}

// categoryKeywords maps each non-fallback category to the substrings that
// select it. Matching is case-insensitive and first-match-wins in the
// order of ThreatCategories.
var categoryKeywords = map[ThreatCategory][]string{
	CategoryAccessPattern:    {"access pattern", "rapid access", "night", "session", "login", "burst"},
	CategoryGeographic:       {"travel", "location", "geograph", "distance", "country"},
	CategoryDocumentContent:  {"document", "content", "tag", "hash", "file"},
	CategoryExternalThreat:   {"malicious", "attack", "compromis", "hijack", "breach", "intrusion"},
	CategoryCompliance:       {"compliance", "regulat", "retention", "policy", "audit"},
	CategoryDataExfiltration: {"exfiltrat", "bulk", "download", "upload surge", "extraction"},
}

// CategorizeConclusion maps an inference conclusion to exactly one threat
// category. Unmatched conclusions fall through to CategoryBehavioral; this
// is never an error.
func CategorizeConclusion(conclusion string) ThreatCategory {
	lower := strings.ToLower(conclusion)
	for _, cat := range ThreatCategories {
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(lower, kw) {
				return cat
			}
		}
	}
	return CategoryBehavioral
}

// ThreatCategoryScores holds one accumulated score in [0,100] per threat
// category, recomputed on every assessment.
type ThreatCategoryScores struct {
	AccessPattern    float64 `json:"access_pattern"`
	Geographic       float64 `json:"geographic"`
	DocumentContent  float64 `json:"document_content"`
	Behavioral       float64 `json:"behavioral"`
	ExternalThreat   float64 `json:"external_threat"`
	Compliance       float64 `json:"compliance"`
	DataExfiltration float64 `json:"data_exfiltration"`
}

// Get returns the score for the given category.
func (s ThreatCategoryScores) Get(c ThreatCategory) float64 {
	switch c {
	case CategoryAccessPattern:
		return s.AccessPattern
	case CategoryGeographic:
		return s.Geographic
	case CategoryDocumentContent:
		return s.DocumentContent
	case CategoryBehavioral:
		return s.Behavioral
	case CategoryExternalThreat:
		return s.ExternalThreat
	case CategoryCompliance:
		return s.Compliance
	case CategoryDataExfiltration:
		return s.DataExfiltration
	default:
		return 0
	}
}

// Add accumulates v onto the category's score, clamping the result to
// [0,100]. Accumulation is additive on purpose: repeated findings in one
// category raise its score with volume.
func (s *ThreatCategoryScores) Add(c ThreatCategory, v float64) {
	set := func(cur float64) float64 { return Clamp(cur+v, 0, 100) }
	switch c {
	case CategoryAccessPattern:
		s.AccessPattern = set(s.AccessPattern)
	case CategoryGeographic:
		s.Geographic = set(s.Geographic)
	case CategoryDocumentContent:
		s.DocumentContent = set(s.DocumentContent)
	case CategoryBehavioral:
		s.Behavioral = set(s.Behavioral)
	case CategoryExternalThreat:
		s.ExternalThreat = set(s.ExternalThreat)
	case CategoryCompliance:
		s.Compliance = set(s.Compliance)
	case CategoryDataExfiltration:
		s.DataExfiltration = set(s.DataExfiltration)
	}
}

// Max returns the highest category score. The composite formula uses the
// maximum rather than an average so a single severe category is never
// diluted by benign ones.
func (s ThreatCategoryScores) Max() float64 {
	max := 0.0
	for _, c := range ThreatCategories {
		if v := s.Get(c); v > max {
			max = v
		}
	}
	return max
}
