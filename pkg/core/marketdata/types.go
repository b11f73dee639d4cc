// Package marketdata supplies the discount-rate inputs for the DCF engine:
// a live (or fallback) risk-free rate, an inflation expectation, and the
// CAPM-based cost of equity/debt rolled up into a WACC with a small-company
// size premium.
package marketdata

import "time"

// Snapshot is one fetched market indicator. Snapshots are ephemeral: fetched
// fresh per request and never cached across requests by the engine.
type Snapshot struct {
	Value     float64   `json:"value"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
}

// WACCBreakdown carries the intermediate cost-of-capital figures alongside
// the final rate, mainly for diagnostics and the valuation report.
type WACCBreakdown struct {
	CostOfEquity float64 `json:"cost_of_equity"`
	CostOfDebt   float64 `json:"cost_of_debt"` // pre-tax
	EquityWeight float64 `json:"equity_weight"`
	DebtWeight   float64 `json:"debt_weight"`
	WACC         float64 `json:"wacc"`
}

// ForDCF is the market-data bundle consumed by the DCF scenario engine.
type ForDCF struct {
	WACC                      float64   `json:"wacc"`
	RiskFreeRate              float64   `json:"riskFreeRate"`
	IndustryBeta              float64   `json:"industryBeta"`
	MarketRiskPremium         float64   `json:"marketRiskPremium"`
	SizePremium               float64   `json:"sizePremium"`
	RecommendedTerminalGrowth float64   `json:"recommendedTerminalGrowth"`
	DataQuality               string    `json:"dataQuality"` // "high" iff every fetch succeeded
	LastUpdated               time.Time `json:"lastUpdated"`
	Sources                   []string  `json:"sources"`

	Breakdown WACCBreakdown `json:"breakdown"`
}
