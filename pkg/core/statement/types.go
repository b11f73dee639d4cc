// Package statement defines the typed financial-period model used across the
// valuation engine. Documents are resolved into a flat []*FinancialPeriod once
// at the ingestion boundary; everything downstream works on these structs and
// never re-guesses document shapes at runtime.
package statement

// IncomeStatement holds one reporting period's income-statement line items.
// Fields follow the Finnish statutory statement layout (tuloslaskelma).
// Absent line items are zero.
type IncomeStatement struct {
	Revenue                 float64 `json:"revenue"`
	OtherIncome             float64 `json:"other_income"`
	MaterialsAndServices    float64 `json:"materials_and_services"`
	PersonnelExpenses       float64 `json:"personnel_expenses"`
	OtherExpenses           float64 `json:"other_expenses"`
	Depreciation            float64 `json:"depreciation"`
	FinancialIncomeExpenses float64 `json:"financial_income_expenses"`
	Taxes                   float64 `json:"taxes"`
	NetIncome               float64 `json:"net_income"`
}

// BalanceSheet holds the balance-sheet items the engine consumes.
type BalanceSheet struct {
	Equity      float64 `json:"equity"`
	AssetsTotal float64 `json:"assets_total"`
}

// CalculatedFields are derived by the normalizer. EBIT and EBITDA are always
// defined; ROE and EquityRatio are nil when their denominator is zero so that
// serialized output carries null instead of NaN or Inf.
type CalculatedFields struct {
	EBIT         float64  `json:"ebit"`
	EBITDA       float64  `json:"ebitda"`
	FreeCashFlow float64  `json:"free_cash_flow"`
	ROE          *float64 `json:"roe"`          // percent, nil if equity == 0
	EquityRatio  *float64 `json:"equity_ratio"` // percent, nil if assets_total == 0
}

// Multiple is one selected valuation multiple with its generated rationale.
type Multiple struct {
	Multiple      float64 `json:"multiple"`
	Justification string  `json:"justification"`
}

// ValuationMultiples carries the four method multiples for a period.
// Immutable once computed: identical inputs always reproduce it exactly.
type ValuationMultiples struct {
	RevenueMultiple Multiple `json:"revenue_multiple"`
	EVEBIT          Multiple `json:"ev_ebit"`
	EVEBITDA        Multiple `json:"ev_ebitda"`
	PE              Multiple `json:"p_e"`
}

// ValuationRange is the low/high bracket over the positive method values.
type ValuationRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ValuationMetrics holds the per-method computed values and degeneracy flags.
// Degenerate inputs (negative equity, non-positive EBIT/EBITDA) are encoded
// as flags; they never abort the calculation.
type ValuationMetrics struct {
	SubstanceValue float64 `json:"substance_value"`
	EVRevenueValue float64 `json:"ev_revenue_value"`
	EVEBITValue    float64 `json:"ev_ebit_value"`
	EVEBITDAValue  float64 `json:"ev_ebitda_value"`

	IsSubstanceNegative  bool `json:"is_substance_negative"`
	IsEBITNegativeOrZero bool `json:"is_ebit_negative_or_zero"`
	IsEBITDANegOrZero    bool `json:"is_ebitda_negative_or_zero"`

	Range            ValuationRange `json:"range"`
	AverageValuation float64        `json:"average_valuation"`
}

// FinancialPeriod is one reporting period of a company document. The three
// calculation stages (normalizer, multiplier selector, valuation calculator)
// mutate it in place; the engine never deletes periods, persistence is owned
// by the caller.
type FinancialPeriod struct {
	StartDate string `json:"start_date"` // ISO date, as parsed upstream
	EndDate   string `json:"end_date"`

	IncomeStatement IncomeStatement `json:"income_statement"`
	BalanceSheet    BalanceSheet    `json:"balance_sheet"`

	CalculatedFields   *CalculatedFields   `json:"calculated_fields,omitempty"`
	ValuationMultiples *ValuationMultiples `json:"valuation_multiples,omitempty"`
	ValuationMetrics   *ValuationMetrics   `json:"valuation_metrics,omitempty"`

	// CalcError captures a per-period calculation failure. A failed period
	// never stops processing of its siblings.
	CalcError string `json:"error,omitempty"`
}

// CompanyInfo is the company context supplied by the caller alongside the
// parsed periods.
type CompanyInfo struct {
	Industry string  `json:"industry"`
	Revenue  float64 `json:"revenue"`
}

// EBITDAMargin returns ebitda/revenue as a percentage, 0 when revenue is 0.
func (p *FinancialPeriod) EBITDAMargin() float64 {
	if p.CalculatedFields == nil || p.IncomeStatement.Revenue == 0 {
		return 0
	}
	return p.CalculatedFields.EBITDA / p.IncomeStatement.Revenue * 100
}
