// Package observe extracts typed observations and static facts from raw
// vault activity. Both extractors are pure functions of their inputs; the
// same activity always yields the same observations in the same order.
package observe

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vaultsentry/vaultsentry/internal/geomath"
	"github.com/vaultsentry/vaultsentry/internal/threat"
)

// Fixed observation confidences. Each collection rule assigns the same
// confidence to every observation it emits; severity then accrues from
// volume, not from per-event tuning.
const (
	confNightAccess      = 1.0
	confImpossibleTravel = 0.85
	confUnusualLocation  = 0.7
	confRapidAccess      = 0.8
	confSuspiciousTag    = 0.6
	confConfidentialDoc  = 0.7
	confMaliciousHash    = 0.95
	confHighValueContent = 0.85
)

// Rule parameters.
const (
	nightHourStart       = 1
	nightHourEnd         = 5
	impossibleTravelKm   = 500.0
	impossibleTravelGap  = time.Hour
	unusualLocationKm    = 100.0
	minKnownLocations    = 3
	rapidAccessWindow    = 60 * time.Second
	rapidAccessCount     = 5
	highValueDocMinimum  = 3
	confidentialTagValue = "confidential"
)

// suspiciousTags are tag substrings that mark a document as a potential
// threat artefact. Matching is case-insensitive.
var suspiciousTags = []string{
	"malware", "exploit", "cracked", "keygen", "leaked", "stolen", "dump",
}

// knownMaliciousHashes is a small static denylist of content hashes. In
// production this set is refreshed out-of-band; the collector only does
// membership checks.
var knownMaliciousHashes = map[string]struct{}{
	"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855": {},
	"2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae": {},
}

// Collect extracts all observations from the vault's access logs and
// document metadata. Rules are independent: none suppresses another, and
// one event may yield several observations.
func Collect(vaultID uuid.UUID, logs []threat.AccessLogEntry, docs []threat.DocumentMeta) []threat.Observation {
	var obs []threat.Observation
	obs = append(obs, collectNightAccess(vaultID, logs)...)
	obs = append(obs, collectImpossibleTravel(vaultID, logs)...)
	obs = append(obs, collectUnusualLocations(vaultID, logs)...)
	obs = append(obs, collectRapidAccess(vaultID, logs)...)
	obs = append(obs, collectDocumentSignals(vaultID, docs)...)
	return obs
}

// collectNightAccess flags accesses between 1 AM and 5 AM local time.
func collectNightAccess(vaultID uuid.UUID, logs []threat.AccessLogEntry) []threat.Observation {
	var obs []threat.Observation
	for _, e := range logs {
		h := e.Timestamp.Hour()
		if h >= nightHourStart && h <= nightHourEnd {
			obs = append(obs, threat.Observation{
				Subject:    vaultID,
				Property:   "night_access",
				Value:      "true",
				Timestamp:  e.Timestamp,
				Confidence: confNightAccess,
			})
		}
	}
	return obs
}

// collectImpossibleTravel flags pairs of located accesses whose distance
// could not plausibly be covered in the elapsed time (>500 km in under an
// hour).
func collectImpossibleTravel(vaultID uuid.UUID, logs []threat.AccessLogEntry) []threat.Observation {
	var obs []threat.Observation
	for i := 1; i < len(logs); i++ {
		prev, cur := logs[i-1], logs[i]
		if !prev.HasLocation() || !cur.HasLocation() {
			continue
		}
		gap := cur.Timestamp.Sub(prev.Timestamp)
		if gap < 0 {
			gap = -gap
		}
		if gap >= impossibleTravelGap {
			continue
		}
		dist := geomath.HaversineKm(*prev.Latitude, *prev.Longitude, *cur.Latitude, *cur.Longitude)
		if dist > impossibleTravelKm {
			obs = append(obs, threat.Observation{
				Subject:    vaultID,
				Property:   "impossible_travel",
				Value:      "true",
				Timestamp:  cur.Timestamp,
				Confidence: confImpossibleTravel,
			})
		}
	}
	return obs
}

// collectUnusualLocations flags any located access more than 100 km from
// every other known location. Needs at least three other located points
// before it can call anything unusual.
func collectUnusualLocations(vaultID uuid.UUID, logs []threat.AccessLogEntry) []threat.Observation {
	var located []threat.AccessLogEntry
	for _, e := range logs {
		if e.HasLocation() {
			located = append(located, e)
		}
	}
	if len(located) < minKnownLocations+1 {
		return nil
	}

	var obs []threat.Observation
	for i, e := range located {
		unusual := true
		for j, other := range located {
			if i == j {
				continue
			}
			if geomath.HaversineKm(*e.Latitude, *e.Longitude, *other.Latitude, *other.Longitude) <= unusualLocationKm {
				unusual = false
				break
			}
		}
		if unusual {
			obs = append(obs, threat.Observation{
				Subject:    vaultID,
				Property:   "unusual_location",
				Value:      "true",
				Timestamp:  e.Timestamp,
				Confidence: confUnusualLocation,
			})
		}
	}
	return obs
}

// collectRapidAccess flags entries that anchor a burst of five or more
// accesses inside the 60-second window starting at that entry. The window
// is one-sided, the same way the access-pattern heuristic counts bursts:
// every flagged group fits inside a single 60-second span.
func collectRapidAccess(vaultID uuid.UUID, logs []threat.AccessLogEntry) []threat.Observation {
	var obs []threat.Observation
	for i, anchor := range logs {
		count := 0
		for _, e := range logs {
			d := e.Timestamp.Sub(anchor.Timestamp)
			if d >= 0 && d <= rapidAccessWindow {
				count++
			}
		}
		if count >= rapidAccessCount {
			obs = append(obs, threat.Observation{
				Subject:    vaultID,
				Property:   "rapid_access",
				Value:      strconv.Itoa(count),
				Timestamp:  logs[i].Timestamp,
				Confidence: confRapidAccess,
			})
		}
	}
	return obs
}

// collectDocumentSignals emits per-document observations for suspicious
// tags, denylisted hashes and confidential flags, plus one aggregate
// high_value_content observation when the vault holds three or more
// confidential documents.
func collectDocumentSignals(vaultID uuid.UUID, docs []threat.DocumentMeta) []threat.Observation {
	var obs []threat.Observation
	confidential := 0
	var latest time.Time

	for _, d := range docs {
		if d.UploadedAt.After(latest) {
			latest = d.UploadedAt
		}
		for _, tag := range d.Tags {
			lower := strings.ToLower(tag)
			if lower == confidentialTagValue {
				confidential++
				obs = append(obs, threat.Observation{
					Subject:    d.ID,
					Property:   "confidential_document",
					Value:      "true",
					Timestamp:  d.UploadedAt,
					Confidence: confConfidentialDoc,
				})
				continue
			}
			for _, sus := range suspiciousTags {
				if strings.Contains(lower, sus) {
					obs = append(obs, threat.Observation{
						Subject:    d.ID,
						Property:   "suspicious_tag",
						Value:      tag,
						Timestamp:  d.UploadedAt,
						Confidence: confSuspiciousTag,
					})
					break
				}
			}
		}
		if d.Hash != "" {
			if _, bad := knownMaliciousHashes[strings.ToLower(d.Hash)]; bad {
				obs = append(obs, threat.Observation{
					Subject:    d.ID,
					Property:   "malicious_hash",
					Value:      d.Hash,
					Timestamp:  d.UploadedAt,
					Confidence: confMaliciousHash,
				})
			}
		}
	}

	if confidential >= highValueDocMinimum {
		obs = append(obs, threat.Observation{
			Subject:    vaultID,
			Property:   "high_value_content",
			Value:      strconv.Itoa(confidential),
			Timestamp:  latest,
			Confidence: confHighValueContent,
		})
	}
	return obs
}
