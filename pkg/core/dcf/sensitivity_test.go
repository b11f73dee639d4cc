package dcf

import (
	"math"
	"testing"
)

func TestSensitivityAnalysis_SortedByAbsImpact(t *testing.T) {
	input := ScenarioInput{BaseRevenue: 1_000_000, NetDebt: 100_000}
	base, err := BuildScenario(ScenarioBase, flatAssumptions(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := SensitivityAnalysis(base, input)
	if len(entries) == 0 {
		t.Fatal("expected sensitivity entries")
	}

	for i := 1; i < len(entries); i++ {
		if math.Abs(entries[i-1].ImpactPercentage) < math.Abs(entries[i].ImpactPercentage) {
			t.Errorf("tornado not sorted at %d: |%f| < |%f|",
				i, entries[i-1].ImpactPercentage, entries[i].ImpactPercentage)
		}
	}
}

func TestSensitivityAnalysis_ImpactArithmetic(t *testing.T) {
	input := ScenarioInput{BaseRevenue: 1_000_000}
	base, err := BuildScenario(ScenarioBase, flatAssumptions(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := SensitivityAnalysis(base, input)
	baseValue := base.Bridge.EquityValue

	for _, e := range entries {
		wantImpact := e.PerturbedValue - baseValue
		if math.Abs(e.Impact-wantImpact) > tol {
			t.Errorf("%s %s: impact %f != perturbed-base %f", e.Parameter, e.DeltaDescription, e.Impact, wantImpact)
		}
		wantPct := wantImpact / baseValue * 100
		if math.Abs(e.ImpactPercentage-wantPct) > tol {
			t.Errorf("%s %s: impact%% %f != %f", e.Parameter, e.DeltaDescription, e.ImpactPercentage, wantPct)
		}
	}
}

func TestSensitivityAnalysis_Directions(t *testing.T) {
	input := ScenarioInput{BaseRevenue: 1_000_000}
	base, _ := BuildScenario(ScenarioBase, flatAssumptions(), input)
	entries := SensitivityAnalysis(base, input)

	find := func(param, delta string) *SensitivityEntry {
		for i := range entries {
			if entries[i].Parameter == param && entries[i].DeltaDescription == delta {
				return &entries[i]
			}
		}
		return nil
	}

	// Higher margin raises value, higher WACC lowers it.
	if e := find("ebitda_margin", "+1.0pp"); e == nil || e.Impact <= 0 {
		t.Errorf("margin +1pp should raise equity value, got %+v", e)
	}
	if e := find("wacc", "+1.0pp"); e == nil || e.Impact >= 0 {
		t.Errorf("wacc +1pp should lower equity value, got %+v", e)
	}
	if e := find("terminal_growth", "+0.5pp"); e == nil || e.Impact <= 0 {
		t.Errorf("terminal growth +0.5pp should raise equity value, got %+v", e)
	}
}

func TestSensitivityAnalysis_SkipsInvalidPerturbation(t *testing.T) {
	// wacc 0.025 vs terminal growth 0.02: the wacc -1pp leg would cross the
	// Gordon-growth constraint and must be skipped, not clamped.
	a := flatAssumptions()
	a.WACC = 0.025
	input := ScenarioInput{BaseRevenue: 1_000_000}
	base, err := BuildScenario(ScenarioBase, a, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := SensitivityAnalysis(base, input)
	for _, e := range entries {
		if e.Parameter == "wacc" && e.DeltaDescription == "-1.0pp" {
			t.Error("invalid wacc perturbation should have been skipped")
		}
	}
}

func TestSensitivityAnalysis_DoesNotMutateBase(t *testing.T) {
	input := ScenarioInput{BaseRevenue: 1_000_000}
	base, _ := BuildScenario(ScenarioBase, flatAssumptions(), input)
	before := base.Bridge.EquityValue
	growth0 := base.Assumptions.RevenueGrowth[0]

	SensitivityAnalysis(base, input)

	if base.Bridge.EquityValue != before {
		t.Error("base scenario value mutated by sensitivity analysis")
	}
	if base.Assumptions.RevenueGrowth[0] != growth0 {
		t.Error("base scenario assumptions mutated by sensitivity analysis")
	}
}
