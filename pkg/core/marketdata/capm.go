package marketdata

import "strings"

// Fixed rate-building policy constants.
const (
	MarketRiskPremium = 0.055 // long-run euro-area equity risk premium
	CreditSpread      = 0.015 // generic SME credit spread over the risk-free rate
)

// industryBetas maps industry keywords to unlevered sector betas. Matching is
// a two-way substring test so both "software" vs "software development" and
// "financial services" vs "financial" resolve.
var industryBetas = map[string]float64{
	"software":      1.4,
	"technology":    1.3,
	"it":            1.3,
	"biotech":       1.8,
	"pharma":        1.2,
	"healthcare":    0.9,
	"retail":        1.0,
	"manufacturing": 1.1,
	"industrial":    1.1,
	"construction":  1.2,
	"energy":        1.1,
	"utilities":     0.6,
	"real estate":   0.8,
	"finance":       1.1,
	"consulting":    1.0,
	"services":      1.0,
	"logistics":     1.1,
	"food":          0.7,
}

const defaultBeta = 1.0

// IndustryBeta resolves a beta for a free-form industry string. Unknown or
// empty industries get the market beta of 1.0.
func IndustryBeta(industry string) float64 {
	normalized := strings.ToLower(strings.TrimSpace(industry))
	if normalized == "" {
		return defaultBeta
	}
	for keyword, beta := range industryBetas {
		if strings.Contains(normalized, keyword) || strings.Contains(keyword, normalized) {
			return beta
		}
	}
	return defaultBeta
}

// SizePremium returns the extra required equity return for smaller companies,
// bracketed by annual revenue. Fixed policy brackets.
func SizePremium(revenue float64) float64 {
	switch {
	case revenue < 5_000_000:
		return 0.05
	case revenue < 10_000_000:
		return 0.04
	case revenue < 50_000_000:
		return 0.025
	case revenue < 100_000_000:
		return 0.01
	default:
		return 0
	}
}

// CostOfEquity applies CAPM plus the size premium.
//
// FORMULA: Ke = Rf + beta * MRP + size_premium
func CostOfEquity(riskFreeRate, beta, sizePremium float64) float64 {
	return riskFreeRate + beta*MarketRiskPremium + sizePremium
}

// CostOfDebt is the pre-tax borrowing rate: risk-free plus a fixed spread.
func CostOfDebt(riskFreeRate float64) float64 {
	return riskFreeRate + CreditSpread
}

// ComputeWACC blends the cost of equity and the after-tax cost of debt using
// weights implied by the debt-to-equity ratio.
//
// FORMULA:
//
//	We   = 1 / (1 + D/E)
//	Wd   = (D/E) / (1 + D/E)
//	WACC = We*Ke + Wd*Kd*(1 - T)
//
// Bounds: Kd*(1-T) <= WACC <= Ke for any non-negative D/E.
func ComputeWACC(costOfEquity, costOfDebt, debtToEquity, taxRate float64) WACCBreakdown {
	we := 1.0 / (1 + debtToEquity)
	wd := debtToEquity / (1 + debtToEquity)

	return WACCBreakdown{
		CostOfEquity: costOfEquity,
		CostOfDebt:   costOfDebt,
		EquityWeight: we,
		DebtWeight:   wd,
		WACC:         we*costOfEquity + wd*costOfDebt*(1-taxRate),
	}
}

// RecommendedTerminalGrowth caps perpetual growth at the lower of the
// inflation expectation and 80% of the risk-free rate, keeping terminal
// assumptions conservative relative to the discount rate.
func RecommendedTerminalGrowth(inflation, riskFreeRate float64) float64 {
	capped := 0.8 * riskFreeRate
	if inflation < capped {
		return inflation
	}
	return capped
}
