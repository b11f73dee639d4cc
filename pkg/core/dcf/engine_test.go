package dcf

import (
	"math"
	"testing"
)

const tol = 1e-6

func flatAssumptions() Assumptions {
	return Assumptions{
		RevenueGrowth:         []float64{0, 0, 0, 0, 0},
		EBITDAMargin:          []float64{0.2, 0.2, 0.2, 0.2, 0.2},
		CapexPercent:          []float64{0.05, 0.05, 0.05, 0.05, 0.05},
		WorkingCapitalPercent: []float64{0.1, 0.1, 0.1, 0.1, 0.1},
		DepreciationPercent:   []float64{0.05, 0.05, 0.05, 0.05, 0.05},
		TerminalGrowth:        0.02,
		WACC:                  0.10,
		TaxRate:               0.20,
	}
}

func TestBuildScenario_FlatCompany(t *testing.T) {
	input := ScenarioInput{BaseRevenue: 1_000_000, NetDebt: 100_000}
	s, err := BuildScenario(ScenarioBase, flatAssumptions(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(s.DetailedCalculations.YearlyBreakdown) != ProjectionYears {
		t.Fatalf("expected %d breakdown rows, got %d", ProjectionYears, len(s.DetailedCalculations.YearlyBreakdown))
	}

	// Flat revenue: each year revenue 1M, EBITDA 200k, depreciation 50k,
	// NOPAT (200k-50k)*0.8 = 120k, capex 50k, ΔNWC 0 → FCF 120k.
	wantFCF := 120_000.0
	var wantSumPV float64
	for t := 1; t <= ProjectionYears; t++ {
		wantSumPV += wantFCF / math.Pow(1.1, float64(t))
	}

	for i, row := range s.DetailedCalculations.YearlyBreakdown {
		if math.Abs(row.Revenue-1_000_000) > tol {
			t.Errorf("year %d: expected revenue 1000000, got %f", i+1, row.Revenue)
		}
		if math.Abs(row.FreeCashFlow-wantFCF) > tol {
			t.Errorf("year %d: expected FCF 120000, got %f", i+1, row.FreeCashFlow)
		}
		if math.Abs(row.ChangeNWC) > tol {
			t.Errorf("year %d: flat revenue should have zero ΔNWC, got %f", i+1, row.ChangeNWC)
		}
	}

	// TV = 120000*1.02/0.08 = 1,530,000
	if math.Abs(s.TerminalValue.TerminalValue-1_530_000) > tol {
		t.Errorf("expected terminal value 1530000, got %f", s.TerminalValue.TerminalValue)
	}

	df5 := 1.0 / math.Pow(1.1, 5)
	wantEquity := wantSumPV + 1_530_000*df5 - 100_000
	if math.Abs(s.Bridge.EquityValue-wantEquity) > 1e-3 {
		t.Errorf("expected equity value %f, got %f", wantEquity, s.Bridge.EquityValue)
	}
}

func TestTerminalValue_ExampleFigures(t *testing.T) {
	// terminal_fcf=500000, wacc=0.10, g=0.02 → TV = 500000*1.02/0.08 = 6,375,000
	a := flatAssumptions()
	a.EBITDAMargin = []float64{0.2, 0.2, 0.2, 0.2, 0.2}
	input := ScenarioInput{BaseRevenue: 1_000_000}

	s, err := BuildScenario(ScenarioBase, a, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Round-trip property: the stored inputs reproduce the stored value.
	tv := s.TerminalValue
	recomputed := tv.TerminalFCF * (1 + tv.TerminalGrowth) / (tv.WACC - tv.TerminalGrowth)
	if math.Abs(recomputed-tv.TerminalValue) > tol {
		t.Errorf("terminal value does not round-trip: stored %f, recomputed %f", tv.TerminalValue, recomputed)
	}

	// And the spec'd example figures directly.
	example := 500_000 * 1.02 / 0.08
	if math.Abs(example-6_375_000) > tol {
		t.Errorf("example arithmetic drifted: %f", example)
	}
}

func TestBuildScenario_WACCNotAboveGrowthFails(t *testing.T) {
	a := flatAssumptions()
	a.WACC = 0.02
	a.TerminalGrowth = 0.02

	_, err := BuildScenario(ScenarioBase, a, ScenarioInput{BaseRevenue: 1_000_000})
	if err == nil {
		t.Fatal("expected validation error for wacc == terminal growth")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("expected *ValidationError, got %T", err)
	}
}

func TestBuildScenario_NegativeRevenueFails(t *testing.T) {
	a := flatAssumptions()
	a.RevenueGrowth = []float64{-1.5, 0, 0, 0, 0}

	_, err := BuildScenario(ScenarioBase, a, ScenarioInput{BaseRevenue: 1_000_000})
	if err == nil {
		t.Fatal("expected validation error for negative projected revenue")
	}
}

func TestBuildScenario_WrongArrayLengthFails(t *testing.T) {
	a := flatAssumptions()
	a.CapexPercent = []float64{0.05, 0.05}

	_, err := BuildScenario(ScenarioBase, a, ScenarioInput{BaseRevenue: 1_000_000})
	if err == nil {
		t.Fatal("expected validation error for short assumption array")
	}
}

func validPayload() *ScenarioPayload {
	pess := flatAssumptions()
	pess.RevenueGrowth = []float64{-0.05, -0.03, 0, 0, 0}
	opt := flatAssumptions()
	opt.RevenueGrowth = []float64{0.15, 0.12, 0.10, 0.08, 0.06}

	return &ScenarioPayload{
		BaseRevenue: 1_000_000,
		NetDebt:     100_000,
		TaxRate:     0.20,
		Scenarios: map[ScenarioName]Assumptions{
			ScenarioPessimistic: pess,
			ScenarioBase:        flatAssumptions(),
			ScenarioOptimistic:  opt,
		},
		Weights: Weights{Pessimistic: 0.25, Base: 0.5, Optimistic: 0.25},
		Confidence: ConfidenceInputs{
			HistoricalDataAdequacy: 7,
			FinancialDataQuality:   8,
			IndustryStability:      6,
			NormalizationImpact:    7,
		},
	}
}

func TestEngineRun_Completed(t *testing.T) {
	engine := NewEngine(DefaultConfidenceWeights())
	req := AnalysisRequest{ValuationID: "val-1", CompanyID: "co-1", UserID: "user-1"}

	record := engine.Run(req, validPayload(), nil)

	if record.Status != StatusCompleted {
		t.Fatalf("expected completed status, got %s (%s)", record.Status, record.ErrorMessage)
	}
	if record.ID == "" {
		t.Error("record must carry an ID")
	}
	if len(record.Scenarios) != 3 {
		t.Fatalf("expected 3 scenarios, got %d", len(record.Scenarios))
	}

	sum := record.ValuationSummary
	if sum == nil {
		t.Fatal("completed record must carry a valuation summary")
	}

	weighted := sum.ProbabilityWeightedValuation
	if weighted < sum.EquityValueRange.Low-tol || weighted > sum.EquityValueRange.High+tol {
		t.Errorf("weighted value %f outside scenario range [%f, %f]",
			weighted, sum.EquityValueRange.Low, sum.EquityValueRange.High)
	}

	// Optimistic growth must value above pessimistic.
	if sum.EquityValues[ScenarioOptimistic] <= sum.EquityValues[ScenarioPessimistic] {
		t.Errorf("optimistic %f should exceed pessimistic %f",
			sum.EquityValues[ScenarioOptimistic], sum.EquityValues[ScenarioPessimistic])
	}

	if record.ConfidenceAssessment == nil {
		t.Fatal("completed record must carry a confidence assessment")
	}
	if len(sum.SensitivityAnalysis) == 0 {
		t.Error("completed record must carry a sensitivity analysis")
	}
}

func TestEngineRun_BadWeightsFails(t *testing.T) {
	engine := NewEngine(DefaultConfidenceWeights())
	payload := validPayload()
	payload.Weights = Weights{Pessimistic: 0.3, Base: 0.3, Optimistic: 0.3}

	record := engine.Run(AnalysisRequest{ValuationID: "v"}, payload, nil)

	if record.Status != StatusFailed {
		t.Fatalf("expected failed status, got %s", record.Status)
	}
	if record.ErrorMessage == "" {
		t.Error("failed record must carry an error message")
	}
	if record.Scenarios != nil || record.ValuationSummary != nil {
		t.Error("failed record must carry no content")
	}
}

func TestEngineRun_InvalidScenarioFailsWholeRun(t *testing.T) {
	engine := NewEngine(DefaultConfidenceWeights())
	payload := validPayload()
	bad := payload.Scenarios[ScenarioOptimistic]
	bad.TerminalGrowth = 0.15 // above wacc 0.10
	payload.Scenarios[ScenarioOptimistic] = bad

	record := engine.Run(AnalysisRequest{ValuationID: "v"}, payload, nil)
	if record.Status != StatusFailed {
		t.Fatalf("one invalid scenario must fail the run, got %s", record.Status)
	}
}

func TestWeights_ToleranceAccepted(t *testing.T) {
	w := Weights{Pessimistic: 0.25, Base: 0.5, Optimistic: 0.25 + 5e-7}
	if err := ValidateWeights(w); err != nil {
		t.Errorf("weights within tolerance must validate: %v", err)
	}

	w = Weights{Pessimistic: 0.25, Base: 0.5, Optimistic: 0.26}
	if err := ValidateWeights(w); err == nil {
		t.Error("weights off by 0.01 must fail")
	}
}
