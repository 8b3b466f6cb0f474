package observe

import (
	"strings"

	"github.com/google/uuid"
	"github.com/vaultsentry/vaultsentry/internal/threat"
)

// Fact predicates emitted by the knowledge base builder.
const (
	PredicateIsA     = "is-a"
	PredicateHasTag  = "has-tag"
	PredicateBelongs = "belongs-to"
)

// topicTags are tags that describe what a document is about rather than
// how it is handled; they become has-tag facts so the inference layer can
// reason over document topics.
var topicTags = []string{
	"medical", "financial", "legal", "identity", "insurance", "tax", "passport",
}

// BuildFacts derives the static knowledge base from document metadata:
// each document contributes one is-a fact for its type, one belongs-to
// fact binding it to the vault, and one has-tag fact per recognised topic
// tag. Facts are independent of temporal observations and are rebuilt on
// every assessment.
func BuildFacts(vaultID uuid.UUID, docs []threat.DocumentMeta) []threat.Fact {
	var facts []threat.Fact
	for _, d := range docs {
		if d.DocType != "" {
			facts = append(facts, threat.Fact{
				Subject:    d.ID,
				Predicate:  PredicateIsA,
				Object:     strings.ToLower(d.DocType),
				Source:     vaultID,
				Confidence: 1.0,
			})
		}
		facts = append(facts, threat.Fact{
			Subject:    d.ID,
			Predicate:  PredicateBelongs,
			Object:     vaultID.String(),
			Source:     vaultID,
			Confidence: 1.0,
		})
		for _, tag := range d.Tags {
			lower := strings.ToLower(tag)
			for _, topic := range topicTags {
				if strings.Contains(lower, topic) {
					facts = append(facts, threat.Fact{
						Subject:    d.ID,
						Predicate:  PredicateHasTag,
						Object:     topic,
						Source:     vaultID,
						Confidence: 0.9,
					})
					break
				}
			}
		}
	}
	return facts
}
