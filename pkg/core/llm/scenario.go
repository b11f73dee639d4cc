package llm

import (
	"context"
	"fmt"
	"strings"

	"arvo_valuation/pkg/core/dcf"
	"arvo_valuation/pkg/core/marketdata"
	"arvo_valuation/pkg/core/statement"
)

const scenarioSystemPrompt = `You are a valuation analyst drafting DCF scenario assumptions for a small or mid-sized Finnish company.
Respond with a single JSON object only, no prose, matching this shape:
{
  "base_revenue": number,
  "net_debt": number,
  "tax_rate": number,
  "weights": {"pessimistic": number, "base": number, "optimistic": number},
  "scenarios": {
    "pessimistic": {...}, "base": {...}, "optimistic": {...}
  },
  "confidence_inputs": {
    "historical_data_adequacy": number, "financial_data_quality": number,
    "industry_stability": number, "normalization_impact": number
  }
}
Each scenario carries five 5-element arrays (revenue_growth, ebitda_margin, capex_percent, working_capital_percent, depreciation_percent) plus terminal_growth, wacc and tax_rate scalars. Rates are decimals, not percents. Weights must sum to 1. Terminal growth must stay below the WACC. Confidence sub-scores are on a 1-10 scale.`

// ScenarioGenerator drafts a three-scenario DCF payload from normalized
// financials and the current market-data snapshot.
type ScenarioGenerator struct {
	provider Provider
}

func NewScenarioGenerator(p Provider) *ScenarioGenerator {
	return &ScenarioGenerator{provider: p}
}

// Generate asks the provider for scenario assumptions and parses the reply
// leniently. The parsed payload is NOT validated here; the DCF engine owns
// validation so that hand-written payloads go through the same gate.
func (g *ScenarioGenerator) Generate(ctx context.Context, company statement.CompanyInfo, periods []*statement.FinancialPeriod, md *marketdata.ForDCF) (*dcf.ScenarioPayload, error) {
	prompt := buildScenarioPrompt(company, periods, md)

	raw, err := g.provider.GenerateResponse(ctx, prompt, scenarioSystemPrompt, nil)
	if err != nil {
		return nil, fmt.Errorf("scenario generation failed: %w", err)
	}

	payload, err := dcf.ParsePayload(raw)
	if err != nil {
		return nil, fmt.Errorf("scenario response unusable: %w", err)
	}
	return payload, nil
}

// buildScenarioPrompt summarizes the company for the model. Only normalized
// figures go in; raw statement rows stay out of the prompt.
func buildScenarioPrompt(company statement.CompanyInfo, periods []*statement.FinancialPeriod, md *marketdata.ForDCF) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Company industry: %s\n", company.Industry)
	fmt.Fprintf(&b, "Historical periods (newest first): %d\n\n", len(periods))

	for i, p := range periods {
		fmt.Fprintf(&b, "Period %d: revenue %.0f, net income %.0f, equity %.0f",
			i+1, p.IncomeStatement.Revenue, p.IncomeStatement.NetIncome, p.BalanceSheet.Equity)
		if p.CalculatedFields != nil {
			fmt.Fprintf(&b, ", EBIT %.0f, EBITDA %.0f, FCF %.0f",
				p.CalculatedFields.EBIT, p.CalculatedFields.EBITDA, p.CalculatedFields.FreeCashFlow)
		}
		b.WriteString("\n")
	}

	if md != nil {
		fmt.Fprintf(&b, "\nMarket data: WACC %.4f, risk-free rate %.4f, recommended terminal growth %.4f (quality: %s)\n",
			md.WACC, md.RiskFreeRate, md.RecommendedTerminalGrowth, md.DataQuality)
	}

	b.WriteString("\nDraft pessimistic, base and optimistic scenarios. Use the market-data WACC and terminal growth unless the company's situation clearly warrants otherwise.")
	return b.String()
}
