package multiples

import (
	"fmt"
	"strings"

	"arvo_valuation/pkg/core/statement"
)

// Selector applies a Table to company inputs. Stateless and safe for
// concurrent use.
type Selector struct {
	table Table
}

// NewSelector creates a selector over the built-in default table.
func NewSelector() *Selector {
	return &Selector{table: DefaultTable()}
}

// NewSelectorWithTable creates a selector over a caller-supplied policy table
// (e.g. loaded from config/valuation.yaml).
func NewSelectorWithTable(t Table) *Selector {
	return &Selector{table: t}
}

// Select chooses the four multiples for a company.
//
// Inputs: free-form industry string (possibly empty or unknown), annual
// revenue, and EBITDA margin in percent (0 when revenue is 0).
//
// Pure function: identical (industry, revenue, margin) always yields
// identical multiples and justification text. Unknown industries silently
// fall back to the generic bucket; Select never errors.
func (s *Selector) Select(industry string, revenue, ebitdaMargin float64) statement.ValuationMultiples {
	bucketName, base := s.classify(industry)

	evEBIT := base.EVEBIT
	evEBITDA := base.EVEBITDA
	pe := base.PE

	// Size adjustment. The revenue multiple is intentionally left alone:
	// it varies only by industry bucket.
	sizeBracket := "mid-sized"
	switch {
	case revenue > largeRevenueThreshold:
		evEBIT += 2
		evEBITDA += 1
		pe += 2
		sizeBracket = "large"
	case revenue < smallRevenueThreshold:
		evEBIT -= 1
		evEBITDA -= 1
		pe -= 1
		sizeBracket = "small"
	}

	marginBracket := "typical"
	switch {
	case ebitdaMargin > highMarginThreshold:
		evEBIT += 1
		evEBITDA += 1
		marginBracket = "strong"
	case ebitdaMargin < lowMarginThreshold:
		evEBIT -= 1
		evEBITDA -= 1
		marginBracket = "weak"
	}

	return statement.ValuationMultiples{
		RevenueMultiple: statement.Multiple{
			Multiple:      base.Revenue,
			Justification: revenueJustification(bucketName),
		},
		EVEBIT: statement.Multiple{
			Multiple:      evEBIT,
			Justification: adjustedJustification("EV/EBIT", bucketName, sizeBracket, marginBracket),
		},
		EVEBITDA: statement.Multiple{
			Multiple:      evEBITDA,
			Justification: adjustedJustification("EV/EBITDA", bucketName, sizeBracket, marginBracket),
		},
		PE: statement.Multiple{
			Multiple:      pe,
			Justification: peJustification(bucketName, sizeBracket),
		},
	}
}

// classify resolves the industry string to a bucket. Buckets are tried in
// table order and the first keyword hit wins; no hit means generic.
func (s *Selector) classify(industry string) (string, BaseMultiples) {
	normalized := strings.ToLower(strings.TrimSpace(industry))
	if normalized != "" {
		for _, b := range s.table.Buckets {
			for _, kw := range b.Keywords {
				if strings.Contains(normalized, kw) {
					return b.Name, b.Base
				}
			}
		}
	}
	return "general", s.table.Generic
}

func revenueJustification(bucket string) string {
	return fmt.Sprintf("Revenue multiple reflects the %s sector baseline; it is not adjusted for size or profitability.", bucket)
}

func adjustedJustification(method, bucket, sizeBracket, marginBracket string) string {
	return fmt.Sprintf("%s multiple starts from the %s sector baseline, adjusted for a %s company with %s EBITDA profitability.",
		method, bucket, sizeBracket, marginBracket)
}

func peJustification(bucket, sizeBracket string) string {
	return fmt.Sprintf("P/E multiple starts from the %s sector baseline, adjusted for a %s company.", bucket, sizeBracket)
}
