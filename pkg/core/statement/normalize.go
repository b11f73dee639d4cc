package statement

import (
	"fmt"
	"math"
)

// ebitCrossCheckTolerance is the absolute divergence (in currency units)
// above which the ebit_alt diagnostic is logged.
const ebitCrossCheckTolerance = 0.01

// Normalize derives the calculated fields for one period from its raw
// income-statement and balance-sheet line items.
//
// FORMULAS:
//
//	EBIT   = revenue + other_income - materials - personnel - other - depreciation
//	EBITDA = EBIT + depreciation
//	FCF    = net_income + depreciation
//	ROE    = net_income / equity * 100          (nil if equity == 0)
//	Equity ratio = equity / assets_total * 100  (nil if assets_total == 0)
//
// Pure and synchronous: the only side effect is attaching CalculatedFields to
// the owning period, plus one diagnostic log line for the EBIT cross-check.
func Normalize(p *FinancialPeriod) {
	is := p.IncomeStatement
	bs := p.BalanceSheet

	ebit := is.Revenue + is.OtherIncome - is.MaterialsAndServices -
		is.PersonnelExpenses - is.OtherExpenses - is.Depreciation
	ebitda := ebit + is.Depreciation

	// Bottom-up cross-check. Diagnostic only: divergence is logged, never
	// auto-corrected, and the expense-side EBIT stays authoritative.
	ebitAlt := is.NetIncome + math.Abs(is.Taxes) + math.Abs(is.FinancialIncomeExpenses)
	if diff := math.Abs(ebit - ebitAlt); diff > ebitCrossCheckTolerance {
		fmt.Printf("[NORMALIZE] EBIT cross-check divergence: expense-side=%.2f bottom-up=%.2f (diff %.2f)\n",
			ebit, ebitAlt, diff)
	}

	cf := &CalculatedFields{
		EBIT:         ebit,
		EBITDA:       ebitda,
		FreeCashFlow: is.NetIncome + is.Depreciation,
	}

	if bs.Equity != 0 {
		roe := is.NetIncome / bs.Equity * 100
		cf.ROE = &roe
	}
	if bs.AssetsTotal != 0 {
		er := bs.Equity / bs.AssetsTotal * 100
		cf.EquityRatio = &er
	}

	p.CalculatedFields = cf
}
