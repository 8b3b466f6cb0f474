package scoring_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/vaultsentry/vaultsentry/internal/scoring"
	"github.com/vaultsentry/vaultsentry/internal/threat"
)

func inf(id string, lt threat.LogicType, conclusion string, confidence float64) threat.Inference {
	return threat.Inference{
		ID:         id,
		LogicType:  lt,
		Conclusion: conclusion,
		Confidence: confidence,
	}
}

func TestCompute_emptyInput(t *testing.T) {
	scores := scoring.Compute(nil)
	if scores.Composite != 0 {
		t.Errorf("Composite = %v, want 0 for no inferences", scores.Composite)
	}
	if len(scores.Contributions) != 0 {
		t.Errorf("Contributions = %d, want 0", len(scores.Contributions))
	}
	if scores.Delta != nil || scores.Velocity != nil {
		t.Error("Delta/Velocity must be nil straight out of Compute")
	}
}

func TestCompute_logicTakesMaxNotSum(t *testing.T) {
	inferences := []threat.Inference{
		inf("a", threat.Deductive, "unmatched conclusion one", 0.5),
		inf("b", threat.Deductive, "unmatched conclusion two", 0.9),
		inf("c", threat.Deductive, "unmatched conclusion three", 0.3),
	}
	scores := scoring.Compute(inferences)
	if scores.Logic.Deductive != 90 {
		t.Errorf("Logic.Deductive = %v, want 90 (max, not sum)", scores.Logic.Deductive)
	}
}

func TestCompute_categoryAccumulates(t *testing.T) {
	// All three conclusions map to Behavioral (no keywords), each adds
	// confidence*100*0.3.
	inferences := []threat.Inference{
		inf("a", threat.Deductive, "odd behaviour one", 0.5),
		inf("b", threat.Inductive, "odd behaviour two", 0.5),
		inf("c", threat.Modal, "odd behaviour three", 0.5),
	}
	scores := scoring.Compute(inferences)
	want := 3 * 50 * 0.3 // 45
	if math.Abs(scores.Category.Behavioral-want) > 1e-9 {
		t.Errorf("Category.Behavioral = %v, want %v", scores.Category.Behavioral, want)
	}
}

func TestCompute_compositeFormula(t *testing.T) {
	inferences := []threat.Inference{
		inf("a", threat.Deductive, "plain anomaly", 1.0),
	}
	scores := scoring.Compute(inferences)

	logicComposite := 100.0 * threat.WeightDeductive / threat.LogicWeightTotal
	categoryComposite := 30.0 // 100 * 0.3, single behavioral inference
	want := logicComposite*0.6 + categoryComposite*0.4
	if math.Abs(scores.Composite-want) > 1e-9 {
		t.Errorf("Composite = %v, want %v", scores.Composite, want)
	}
}

func TestCompute_contributionsSortedDescending(t *testing.T) {
	inferences := []threat.Inference{
		inf("low", threat.Analogical, "anomaly", 0.2),
		inf("high", threat.Deductive, "anomaly", 0.9),
		inf("mid", threat.Temporal, "anomaly", 0.5),
	}
	scores := scoring.Compute(inferences)
	for i := 1; i < len(scores.Contributions); i++ {
		if scores.Contributions[i].ContributionScore > scores.Contributions[i-1].ContributionScore {
			t.Fatal("contributions are not sorted descending")
		}
	}
	if scores.Contributions[0].InferenceID != "high" {
		t.Errorf("top contribution = %s, want high", scores.Contributions[0].InferenceID)
	}
}

func TestCompute_deterministic(t *testing.T) {
	inferences := []threat.Inference{
		inf("a", threat.Deductive, "travel anomaly detected", 0.9),
		inf("b", threat.Statistical, "night access dominates", 0.7),
		inf("c", threat.Analogical, "resembles known attack", 0.6),
	}
	first := scoring.Compute(inferences)
	second := scoring.Compute(inferences)
	if !reflect.DeepEqual(first, second) {
		t.Error("Compute is not deterministic over identical input")
	}
}

func TestCompute_rangeInvariant(t *testing.T) {
	// Out-of-range confidences must not leak out-of-range scores.
	inferences := []threat.Inference{
		inf("a", threat.Deductive, "anomaly", 5.0),
		inf("b", threat.Statistical, "anomaly", -3.0),
	}
	scores := scoring.Compute(inferences)
	if scores.Composite < 0 || scores.Composite > 100 {
		t.Errorf("Composite = %v outside [0,100]", scores.Composite)
	}
	for _, lt := range threat.LogicTypes {
		if v := scores.Logic.Get(lt); v < 0 || v > 100 {
			t.Errorf("Logic[%s] = %v outside [0,100]", lt, v)
		}
	}
	for _, c := range threat.ThreatCategories {
		if v := scores.Category.Get(c); v < 0 || v > 100 {
			t.Errorf("Category[%s] = %v outside [0,100]", c, v)
		}
	}
}

func TestComposite_monotoneInCategories(t *testing.T) {
	var logic threat.LogicComponentScores
	logic.Set(threat.Deductive, 40)

	for _, c := range threat.ThreatCategories {
		var base threat.ThreatCategoryScores
		base.Add(threat.CategoryBehavioral, 20)
		before := scoring.Composite(logic, base)

		for v := 0.0; v <= 100; v += 5 {
			raised := base
			raised.Add(c, v)
			after := scoring.Composite(logic, raised)
			if after < before {
				t.Fatalf("raising %s by %v decreased composite: %v -> %v", c, v, before, after)
			}
		}
	}
}

func TestAugment_blend(t *testing.T) {
	got := scoring.Augment(50, 100, 0)
	// 50*0.4 + 100*0.4 + 0*0.2 = 60
	if math.Abs(got-60) > 1e-9 {
		t.Errorf("Augment(50,100,0) = %v, want 60", got)
	}

	// Prior anchoring damps a quiet assessment of a previously hot vault.
	got = scoring.Augment(0, 0, 90)
	if math.Abs(got-18) > 1e-9 {
		t.Errorf("Augment(0,0,90) = %v, want 18", got)
	}
}

func TestAugment_clampsInputs(t *testing.T) {
	if got := scoring.Augment(500, math.NaN(), -20); got < 0 || got > 100 {
		t.Errorf("Augment with hostile inputs = %v, outside [0,100]", got)
	}
}

func TestTopThreats_capsAtFive(t *testing.T) {
	var inferences []threat.Inference
	for i := 0; i < 8; i++ {
		inferences = append(inferences, inf(string(rune('a'+i)), threat.Deductive, "anomaly", 0.1*float64(i+1)))
	}
	scores := scoring.Compute(inferences)
	top := scoring.TopThreats(scores.Contributions)
	if len(top) != 5 {
		t.Fatalf("TopThreats returned %d entries, want 5", len(top))
	}
	if top[0].ContributionScore < top[4].ContributionScore {
		t.Error("TopThreats not ordered by contribution")
	}
}

func TestCompute_impactTiersAssigned(t *testing.T) {
	inferences := []threat.Inference{
		inf("critical", threat.Deductive, "anomaly", 0.9),
		inf("low", threat.Analogical, "anomaly", 0.2),
	}
	scores := scoring.Compute(inferences)
	for _, c := range scores.Contributions {
		switch c.InferenceID {
		case "critical":
			if c.Impact != threat.ImpactCritical {
				t.Errorf("impact = %s, want critical for contribution 90", c.Impact)
			}
		case "low":
			if c.Impact != threat.ImpactLow {
				t.Errorf("impact = %s, want low for contribution 20", c.Impact)
			}
		}
	}
}
