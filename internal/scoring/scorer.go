// Package scoring converts inferences into granular threat scores: seven
// logic-type components, seven category components, one composite in
// [0,100], and the per-inference contribution records that make every
// assessment explainable after the fact.
//
// All blend constants in this package are fixed and security relevant.
// They are not tuned at runtime; changing any of them silently shifts
// every protective-action threshold downstream.
package scoring

import (
	"sort"

	"github.com/vaultsentry/vaultsentry/internal/threat"
)

const (
	// categoryContribution scales each inference's contribution before it
	// accumulates onto its category score.
	categoryContribution = 0.3

	// logicBlend and categoryBlend combine the two component composites.
	logicBlend    = 0.6
	categoryBlend = 0.4

	// Augmentation blend: the final score anchors each new assessment
	// partly to the heuristic metrics and partly to the vault's own prior
	// persisted score, damping single-assessment volatility.
	augmentInference = 0.4
	augmentHeuristic = 0.4
	augmentPrior     = 0.2

	// topThreatCount bounds the contribution list used in reporting.
	topThreatCount = 5
)

// Compute derives the granular scores for one inference set. Logic-type
// components take the maximum contribution of their type (one strong
// inference dominates); category components accumulate additively (volume
// matters). Delta and velocity are left nil; the trend tracker fills them
// in once history exists.
func Compute(inferences []threat.Inference) threat.GranularThreatScores {
	var scores threat.GranularThreatScores

	contributions := make([]threat.InferenceContribution, 0, len(inferences))
	for _, inf := range inferences {
		contribution := threat.Clamp(inf.Confidence*100, 0, 100)
		category := threat.CategorizeConclusion(inf.Conclusion)

		if contribution > scores.Logic.Get(inf.LogicType) {
			scores.Logic.Set(inf.LogicType, contribution)
		}
		scores.Category.Add(category, contribution*categoryContribution)

		contributions = append(contributions, threat.InferenceContribution{
			InferenceID:       inf.ID,
			LogicType:         inf.LogicType,
			Category:          category,
			ContributionScore: contribution,
			Confidence:        inf.Confidence,
			Impact:            threat.ImpactForScore(contribution),
		})
	}

	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].ContributionScore > contributions[j].ContributionScore
	})
	scores.Contributions = contributions

	scores.Composite = Composite(scores.Logic, scores.Category)
	return scores
}

// Composite combines the logic and category component scores into one
// [0,100] value: the weighted logic composite rewards certainty of
// reasoning, while the category side takes its maximum so one severe
// category is never diluted by benign ones.
func Composite(logic threat.LogicComponentScores, category threat.ThreatCategoryScores) float64 {
	return threat.Clamp(
		logic.WeightedComposite()*logicBlend+category.Max()*categoryBlend,
		0, 100,
	)
}

// Augment blends the inference composite with the heuristic-metric
// composite and the vault's prior persisted score. All three inputs and
// the result are on the 0–100 scale.
func Augment(composite, heuristicComposite, priorScore float64) float64 {
	composite = threat.Clamp(composite, 0, 100)
	heuristicComposite = threat.Clamp(heuristicComposite, 0, 100)
	priorScore = threat.Clamp(priorScore, 0, 100)
	return threat.Clamp(
		composite*augmentInference+heuristicComposite*augmentHeuristic+priorScore*augmentPrior,
		0, 100,
	)
}

// TopThreats returns up to five contributions with the highest scores.
// The input must already be sorted descending, as produced by Compute.
func TopThreats(contributions []threat.InferenceContribution) []threat.InferenceContribution {
	if len(contributions) <= topThreatCount {
		return contributions
	}
	return contributions[:topThreatCount]
}
