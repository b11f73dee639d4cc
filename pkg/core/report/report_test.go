package report

import (
	"strings"
	"testing"

	"arvo_valuation/pkg/core/dcf"
	"arvo_valuation/pkg/core/statement"
)

func metricsPeriod() *statement.FinancialPeriod {
	return &statement.FinancialPeriod{
		IncomeStatement:  statement.IncomeStatement{Revenue: 1_000_000},
		CalculatedFields: &statement.CalculatedFields{EBIT: 180_000, EBITDA: 200_000},
		ValuationMetrics: &statement.ValuationMetrics{
			SubstanceValue:      250_000,
			EVEBITDAValue:       1_400_000,
			AverageValuation:    900_000,
			Range:               statement.ValuationRange{Low: 250_000, High: 1_440_000},
			IsSubstanceNegative: false,
		},
	}
}

func completedAnalysis() *dcf.StructuredData {
	return &dcf.StructuredData{
		Status: dcf.StatusCompleted,
		Scenarios: map[dcf.ScenarioName]*dcf.Scenario{
			dcf.ScenarioBase: {
				Name:          dcf.ScenarioBase,
				Bridge:        dcf.ValuationBridge{EquityValue: 1_200_000},
				TerminalValue: dcf.TerminalValueCalculation{PVTerminalValue: 950_000},
			},
		},
		ValuationSummary: &dcf.ValuationSummary{
			ProbabilityWeightedValuation: 1_150_000,
			EquityValueRange:             dcf.EquityValueRange{Low: 800_000, High: 1_600_000},
			SensitivityAnalysis: []dcf.SensitivityEntry{
				{Parameter: "wacc", DeltaDescription: "+1.0pp", ImpactPercentage: -12.5},
				{Parameter: "ebitda_margin", DeltaDescription: "+1.0pp", ImpactPercentage: 8.1},
			},
		},
		ConfidenceAssessment: &dcf.ConfidenceAssessment{OverallConfidenceScore: 6.8},
	}
}

func TestRenderValuationReport_MetricsOnly(t *testing.T) {
	md, err := RenderValuationReport(statement.CompanyInfo{Industry: "software"},
		[]*statement.FinancialPeriod{metricsPeriod()}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"# Valuation Summary", "software", "## Multiplier Valuation", "250 000 €", "1 440 000 €"} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(md, "## DCF Analysis") {
		t.Error("DCF section must be absent without an analysis")
	}
}

func TestRenderValuationReport_FullRun(t *testing.T) {
	md, err := RenderValuationReport(statement.CompanyInfo{},
		[]*statement.FinancialPeriod{metricsPeriod()}, completedAnalysis())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"## DCF Analysis", "1 150 000 €", "wacc", "+1.0pp", "-12.5%", "6.8 / 10"} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRenderValuationReport_FailedAnalysisHidden(t *testing.T) {
	failed := &dcf.StructuredData{Status: dcf.StatusFailed, ErrorMessage: "weights do not sum to 1"}

	md, err := RenderValuationReport(statement.CompanyInfo{},
		[]*statement.FinancialPeriod{metricsPeriod()}, failed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(md, "## DCF Analysis") {
		t.Error("failed analysis must not render a DCF section")
	}
}

func TestRenderValuationReport_DegenerateFlags(t *testing.T) {
	p := metricsPeriod()
	p.ValuationMetrics.IsSubstanceNegative = true
	p.ValuationMetrics.IsEBITNegativeOrZero = true

	md, err := RenderValuationReport(statement.CompanyInfo{}, []*statement.FinancialPeriod{p}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(md, "equity is negative") {
		t.Error("expected substance-negative note")
	}
	if !strings.Contains(md, "non-positive earnings") {
		t.Error("expected degenerate-earnings note")
	}
}

func TestEuroFormatting(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0 €"},
		{999, "999 €"},
		{1_000, "1 000 €"},
		{1_234_567, "1 234 567 €"},
		{-50_000, "-50 000 €"},
	}
	for _, c := range cases {
		if got := euro(c.in); got != c.want {
			t.Errorf("euro(%f) = %q, want %q", c.in, got, c.want)
		}
	}
}
