// Package threat defines the domain model shared by the threat inference
// and scoring pipeline: observations and facts extracted from vault
// activity, the inferences drawn from them, and the granular score and
// level structures produced by each assessment.
//
// Everything in this package is plain data. The behaviour lives in the
// observe, inference, heuristics, scoring, trend and remediation packages.
package threat

import (
	"time"

	"github.com/google/uuid"
)

// Observation is a single timestamped, confidence-weighted fact extracted
// from one activity event (an access-log entry or a document attribute).
// Observations are immutable once created.
type Observation struct {
	Subject    uuid.UUID `json:"subject"`
	Property   string    `json:"property"`
	Value      string    `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
	Confidence float64   `json:"confidence"`
}

// Fact is a piece of static relational knowledge about a vault entity,
// independent of any point in time (e.g. "document X is-a medical record").
// Facts are created once per document at collection time.
type Fact struct {
	Subject    uuid.UUID `json:"subject"`
	Predicate  string    `json:"predicate"`
	Object     string    `json:"object"`
	Source     uuid.UUID `json:"source"`
	Confidence float64   `json:"confidence"`
}

// Inference is a conclusion derived by one of the seven reasoning
// strategies from observations and facts. Many inferences may reference
// the same observation. Immutable once produced.
type Inference struct {
	ID             string    `json:"id"`
	LogicType      LogicType `json:"logic_type"`
	ObservationRef string    `json:"observation_ref"`
	Conclusion     string    `json:"conclusion"`
	Confidence     float64   `json:"confidence"`

	// Actionable, when non-empty, is a short description of the protective
	// step this inference suggests. Consumed by the recommendation engine.
	Actionable string `json:"actionable,omitempty"`
}

// AccessLogEntry is one vault access event as supplied by the storage
// collaborator. Latitude and longitude are nil when the client did not
// report a location.
type AccessLogEntry struct {
	Timestamp  time.Time  `json:"timestamp"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	AccessType string     `json:"access_type"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
}

// HasLocation reports whether the entry carries geo coordinates.
func (e AccessLogEntry) HasLocation() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// DocumentMeta is the document metadata consumed by the collector and the
// content heuristics. ExtractedText may be empty for binary documents.
type DocumentMeta struct {
	ID            uuid.UUID `json:"id"`
	Tags          []string  `json:"tags"`
	DocType       string    `json:"doc_type"`
	UploadedAt    time.Time `json:"uploaded_at"`
	Hash          string    `json:"hash,omitempty"`
	ExtractedText string    `json:"extracted_text,omitempty"`
}

// ThreatScoreSnapshot is one entry in a vault's score history. The trend
// tracker keeps at most 100 snapshots per vault, oldest evicted first.
type ThreatScoreSnapshot struct {
	Timestamp time.Time            `json:"timestamp"`
	Composite float64              `json:"composite"`
	Category  ThreatCategoryScores `json:"category"`
	Logic     LogicComponentScores `json:"logic"`
}

// Clamp bounds v to [lo, hi]. Every score written into the structures in
// this package must pass through here so that NaN and out-of-range values
// never escape the engine.
func Clamp(v, lo, hi float64) float64 {
	if v != v { // NaN
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
