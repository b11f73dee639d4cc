// Package valuation computes multi-method point and range valuations for a
// normalized financial period. Degenerate inputs are encoded as flags on the
// result, never as errors: a company with negative equity or negative EBIT is
// still valued with whatever methods remain usable.
package valuation

import (
	"fmt"

	"arvo_valuation/pkg/core/statement"
)

// CalculateMetrics applies the period's selected multiples plus the substance
// (book equity) method and aggregates them into a range and an average.
//
// Method values:
//
//	substance   = equity                                (flagged if negative)
//	ev_revenue  = revenue * revenue_multiple
//	ev_ebit     = ebit   > 0 ? ebit   * ev_ebit_multiple   : 0
//	ev_ebitda   = ebitda > 0 ? ebitda * ev_ebitda_multiple : 0
//
// range.low is the minimum of the strictly positive method values (0 if none),
// range.high the maximum over 0 and all method values, and the average the
// mean of the strictly positive values. Whenever at least one method is
// positive, low <= average <= high holds.
//
// The period must be normalized and carry its multiples.
func CalculateMetrics(p *statement.FinancialPeriod) (*statement.ValuationMetrics, error) {
	if p.CalculatedFields == nil {
		return nil, fmt.Errorf("period has no calculated fields; run the normalizer first")
	}
	if p.ValuationMultiples == nil {
		return nil, fmt.Errorf("period has no valuation multiples; run the selector first")
	}

	cf := p.CalculatedFields
	mult := p.ValuationMultiples

	m := &statement.ValuationMetrics{
		SubstanceValue:       p.BalanceSheet.Equity,
		EVRevenueValue:       p.IncomeStatement.Revenue * mult.RevenueMultiple.Multiple,
		IsSubstanceNegative:  p.BalanceSheet.Equity < 0,
		IsEBITNegativeOrZero: cf.EBIT <= 0,
		IsEBITDANegOrZero:    cf.EBITDA <= 0,
	}

	if cf.EBIT > 0 {
		m.EVEBITValue = cf.EBIT * mult.EVEBIT.Multiple
	}
	if cf.EBITDA > 0 {
		m.EVEBITDAValue = cf.EBITDA * mult.EVEBITDA.Multiple
	}

	methods := []float64{m.SubstanceValue, m.EVRevenueValue, m.EVEBITValue, m.EVEBITDAValue}

	var positives []float64
	high := 0.0
	for _, v := range methods {
		if v > 0 {
			positives = append(positives, v)
		}
		if v > high {
			high = v
		}
	}
	m.Range.High = high

	if len(positives) > 0 {
		low := positives[0]
		sum := 0.0
		for _, v := range positives {
			if v < low {
				low = v
			}
			sum += v
		}
		m.Range.Low = low
		m.AverageValuation = sum / float64(len(positives))
	}

	return m, nil
}
