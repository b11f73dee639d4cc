package llm

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"arvo_valuation/pkg/core/marketdata"
	"arvo_valuation/pkg/core/statement"
)

const cannedScenarioJSON = "```json\n" + `{
  "base_revenue": 1000000,
  "net_debt": 50000,
  "tax_rate": 0.2,
  "weights": {"pessimistic": 0.25, "base": 0.5, "optimistic": 0.25},
  "scenarios": {
    "pessimistic": {
      "revenue_growth": [0.0, 0.0, 0.0, 0.0, 0.0],
      "ebitda_margin": [0.15, 0.15, 0.15, 0.15, 0.15],
      "capex_percent": [0.05, 0.05, 0.05, 0.05, 0.05],
      "working_capital_percent": [0.1, 0.1, 0.1, 0.1, 0.1],
      "depreciation_percent": [0.05, 0.05, 0.05, 0.05, 0.05],
      "terminal_growth": 0.01, "wacc": 0.11, "tax_rate": 0.2
    },
    "base": {
      "revenue_growth": [0.05, 0.05, 0.04, 0.03, 0.03],
      "ebitda_margin": [0.2, 0.2, 0.2, 0.2, 0.2],
      "capex_percent": [0.05, 0.05, 0.05, 0.05, 0.05],
      "working_capital_percent": [0.1, 0.1, 0.1, 0.1, 0.1],
      "depreciation_percent": [0.05, 0.05, 0.05, 0.05, 0.05],
      "terminal_growth": 0.02, "wacc": 0.1, "tax_rate": 0.2
    },
    "optimistic": {
      "revenue_growth": [0.1, 0.09, 0.08, 0.07, 0.06],
      "ebitda_margin": [0.25, 0.25, 0.25, 0.25, 0.25],
      "capex_percent": [0.06, 0.06, 0.06, 0.06, 0.06],
      "working_capital_percent": [0.1, 0.1, 0.1, 0.1, 0.1],
      "depreciation_percent": [0.05, 0.05, 0.05, 0.05, 0.05],
      "terminal_growth": 0.025, "wacc": 0.095, "tax_rate": 0.2
    }
  },
  "confidence_inputs": {
    "historical_data_adequacy": 6, "financial_data_quality": 7,
    "industry_stability": 5, "normalization_impact": 8
  }
}` + "\n```"

func TestScenarioGenerator_Generate(t *testing.T) {
	g := NewScenarioGenerator(&StaticProvider{Response: cannedScenarioJSON})

	payload, err := g.Generate(context.Background(), statement.CompanyInfo{Industry: "software"}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.BaseRevenue != 1_000_000 {
		t.Errorf("expected base revenue 1000000, got %f", payload.BaseRevenue)
	}
	if len(payload.Scenarios) != 3 {
		t.Errorf("expected 3 scenarios, got %d", len(payload.Scenarios))
	}
}

func TestScenarioGenerator_ProviderError(t *testing.T) {
	g := NewScenarioGenerator(&StaticProvider{Err: fmt.Errorf("quota exceeded")})

	if _, err := g.Generate(context.Background(), statement.CompanyInfo{}, nil, nil); err == nil {
		t.Fatal("expected provider error to propagate")
	}
}

func TestScenarioGenerator_GarbageResponse(t *testing.T) {
	g := NewScenarioGenerator(&StaticProvider{Response: "I think this company is worth a lot."})

	if _, err := g.Generate(context.Background(), statement.CompanyInfo{}, nil, nil); err == nil {
		t.Fatal("expected parse error for non-JSON response")
	}
}

func TestBuildScenarioPrompt(t *testing.T) {
	periods := []*statement.FinancialPeriod{
		{
			IncomeStatement:  statement.IncomeStatement{Revenue: 1_000_000, NetIncome: 140_000},
			BalanceSheet:     statement.BalanceSheet{Equity: 250_000},
			CalculatedFields: &statement.CalculatedFields{EBIT: 180_000, EBITDA: 200_000, FreeCashFlow: 160_000},
		},
	}
	md := &marketdata.ForDCF{WACC: 0.095, RiskFreeRate: 0.025, RecommendedTerminalGrowth: 0.02, DataQuality: "high"}

	prompt := buildScenarioPrompt(statement.CompanyInfo{Industry: "software"}, periods, md)

	for _, want := range []string{"software", "1000000", "EBITDA 200000", "WACC 0.0950", "quality: high"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
