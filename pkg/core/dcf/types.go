// Package dcf implements the three-scenario discounted-cash-flow engine: the
// numeric data contract for LLM-produced projections, the per-year breakdown
// math, terminal value, the probability-weighted blend, tornado sensitivity
// and the confidence assessment.
//
// The engine owns validation of everything numeric that arrives from the
// upstream analysis step. Invalid numerics fail the whole run; a completed
// record is never written with invalid content.
package dcf

import (
	"time"

	"github.com/google/uuid"

	"arvo_valuation/pkg/core/marketdata"
)

// ProjectionYears is the explicit forecast horizon. Every assumption array
// must carry exactly this many entries.
const ProjectionYears = 5

// ScenarioName identifies one of the three scenarios.
type ScenarioName string

const (
	ScenarioPessimistic ScenarioName = "pessimistic"
	ScenarioBase        ScenarioName = "base"
	ScenarioOptimistic  ScenarioName = "optimistic"
)

// Status is the lifecycle state of a DCF analysis record. Records are
// created as processing and transition exactly once to completed or failed.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Assumptions is one scenario's parameter set: five per-year arrays plus the
// discount-rate scalars. Percent-of-revenue arrays are decimals (0.05 = 5%).
type Assumptions struct {
	RevenueGrowth         []float64 `json:"revenue_growth"`
	EBITDAMargin          []float64 `json:"ebitda_margin"`
	CapexPercent          []float64 `json:"capex_percent"`
	WorkingCapitalPercent []float64 `json:"working_capital_percent"`
	DepreciationPercent   []float64 `json:"depreciation_percent"`

	TerminalGrowth float64 `json:"terminal_growth"`
	WACC           float64 `json:"wacc"`
	TaxRate        float64 `json:"tax_rate"`
}

// YearRow is one row of the detailed yearly breakdown.
type YearRow struct {
	Year           int     `json:"year"`
	Revenue        float64 `json:"revenue"`
	EBITDA         float64 `json:"ebitda"`
	Depreciation   float64 `json:"depreciation"`
	NOPAT          float64 `json:"nopat"`
	Capex          float64 `json:"capex"`
	ChangeNWC      float64 `json:"change_nwc"`
	FreeCashFlow   float64 `json:"free_cash_flow"`
	DiscountFactor float64 `json:"discount_factor"`
	PVFreeCashFlow float64 `json:"pv_free_cash_flow"`
}

// TerminalValueCalculation records the Gordon-growth terminal value with the
// inputs that produced it, so the formula can be round-tripped from storage.
type TerminalValueCalculation struct {
	TerminalFCF     float64 `json:"terminal_fcf"` // final-year FCF before terminal growth
	TerminalGrowth  float64 `json:"terminal_growth"`
	WACC            float64 `json:"wacc"`
	TerminalValue   float64 `json:"terminal_value"`
	PVTerminalValue float64 `json:"pv_terminal_value"`
}

// ValuationBridge walks from the discounted cash flows to equity value.
type ValuationBridge struct {
	SumPVFreeCashFlows float64 `json:"sum_pv_free_cash_flows"`
	PVTerminalValue    float64 `json:"pv_terminal_value"`
	EnterpriseValue    float64 `json:"enterprise_value"`
	NetDebt            float64 `json:"net_debt"`
	EquityValue        float64 `json:"equity_value"`
}

// Projections is the flat per-year series kept alongside the breakdown for
// chart consumers.
type Projections struct {
	Revenues      []float64 `json:"revenues"`
	FreeCashFlows []float64 `json:"free_cash_flows"`
}

// DetailedCalculations wraps the yearly breakdown rows.
type DetailedCalculations struct {
	YearlyBreakdown []YearRow `json:"yearly_breakdown"`
}

// Scenario is one fully evaluated DCF scenario. Immutable once generated.
type Scenario struct {
	Name                 ScenarioName             `json:"name"`
	Assumptions          Assumptions              `json:"assumptions"`
	Projections          Projections              `json:"projections"`
	DetailedCalculations DetailedCalculations     `json:"detailed_calculations"`
	TerminalValue        TerminalValueCalculation `json:"terminal_value_calculation"`
	Bridge               ValuationBridge          `json:"valuation_bridge"`
}

// Weights are the caller-supplied scenario probabilities. They must sum to
// 1.0 within a 1e-6 tolerance.
type Weights struct {
	Pessimistic float64 `json:"pessimistic"`
	Base        float64 `json:"base"`
	Optimistic  float64 `json:"optimistic"`
}

// Sum returns the total probability mass.
func (w Weights) Sum() float64 {
	return w.Pessimistic + w.Base + w.Optimistic
}

// SensitivityEntry is one tornado row: a single perturbed assumption and its
// effect on the base-scenario equity value.
type SensitivityEntry struct {
	Parameter        string  `json:"parameter"`
	DeltaDescription string  `json:"delta"`
	PerturbedValue   float64 `json:"perturbed_value"`
	Impact           float64 `json:"impact"`
	ImpactPercentage float64 `json:"impact_percentage"`
}

// EquityValueRange brackets the three scenario equity values.
type EquityValueRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ValuationSummary combines the scenarios into the headline result.
type ValuationSummary struct {
	EquityValues                 map[ScenarioName]float64 `json:"equity_values"`
	EquityValueRange             EquityValueRange         `json:"equity_value_range"`
	Weights                      Weights                  `json:"weights"`
	ProbabilityWeightedValuation float64                  `json:"probability_weighted_valuation"`
	SensitivityAnalysis          []SensitivityEntry       `json:"sensitivity_analysis"`
}

// ConfidenceInputs are the four 1-10 sub-scores supplied by the upstream
// analysis step.
type ConfidenceInputs struct {
	HistoricalDataAdequacy float64 `json:"historical_data_adequacy"`
	FinancialDataQuality   float64 `json:"financial_data_quality"`
	IndustryStability      float64 `json:"industry_stability"`
	NormalizationImpact    float64 `json:"normalization_impact"`
}

// ConfidenceAssessment is the weighted overall score with its inputs.
type ConfidenceAssessment struct {
	Inputs                 ConfidenceInputs `json:"inputs"`
	OverallConfidenceScore float64          `json:"overall_confidence_score"` // 1-10
}

// StructuredData is the persisted DCF analysis record. Content is frozen on
// the transition to completed; failed records carry no content, only the
// error message.
type StructuredData struct {
	ID          string `json:"id"`
	ValuationID string `json:"valuation_id"`
	CompanyID   string `json:"company_id"`
	UserID      string `json:"user_id"`

	Status       Status `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`

	Scenarios            map[ScenarioName]*Scenario `json:"scenarios,omitempty"`
	ValuationSummary     *ValuationSummary          `json:"valuation_summary,omitempty"`
	ConfidenceAssessment *ConfidenceAssessment      `json:"confidence_assessment,omitempty"`
	MarketData           *marketdata.ForDCF         `json:"market_data,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// AnalysisRequest identifies one DCF run.
type AnalysisRequest struct {
	ValuationID string `json:"valuationId"`
	CompanyID   string `json:"companyId"`
	UserID      string `json:"userId"`
}

// NewStructuredData creates a fresh record in the processing state.
func NewStructuredData(req AnalysisRequest) *StructuredData {
	return &StructuredData{
		ID:          uuid.NewString(),
		ValuationID: req.ValuationID,
		CompanyID:   req.CompanyID,
		UserID:      req.UserID,
		Status:      StatusProcessing,
		CreatedAt:   time.Now(),
	}
}

// ScenarioPayload is the numeric contract of the upstream LLM-analysis step:
// everything the engine needs that is not supplied by the market data
// service. It is parsed leniently (see parse.go) and then validated strictly.
type ScenarioPayload struct {
	BaseRevenue float64 `json:"base_revenue"`
	NetDebt     float64 `json:"net_debt"`
	TaxRate     float64 `json:"tax_rate"`

	Scenarios map[ScenarioName]Assumptions `json:"scenarios"`
	Weights   Weights                      `json:"weights"`

	Confidence ConfidenceInputs `json:"confidence_inputs"`
}
