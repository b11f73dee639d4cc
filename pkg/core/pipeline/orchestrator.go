// Package pipeline orchestrates the per-document metrics flow: for every
// financial period, normalize, select multiples, and calculate the valuation
// metrics. Period failures are isolated; document-level absence of data is
// fatal for the document only.
package pipeline

import (
	"fmt"

	"arvo_valuation/pkg/core/multiples"
	"arvo_valuation/pkg/core/statement"
	"arvo_valuation/pkg/core/valuation"
)

// MissingDataError signals that a document carried no financial periods at
// all. The metrics run aborts with no partial output.
type MissingDataError struct {
	Detail string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("no financial data available: %s", e.Detail)
}

// Orchestrator runs the three calculation stages over a document. Stateless
// between requests; all state lives in the periods passed in.
type Orchestrator struct {
	selector *multiples.Selector
}

// NewOrchestrator creates an orchestrator using the default multiples policy.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{selector: multiples.NewSelector()}
}

// NewOrchestratorWithSelector injects a selector built from a config table.
func NewOrchestratorWithSelector(sel *multiples.Selector) *Orchestrator {
	return &Orchestrator{selector: sel}
}

// RunDocumentMetrics mutates each period in place with calculated fields,
// multiples and metrics.
//
// Failure policy: zero periods is a MissingDataError and aborts the whole
// document. A failure inside one period is captured on that period's
// CalcError and never stops the siblings.
func (o *Orchestrator) RunDocumentMetrics(periods []*statement.FinancialPeriod, company statement.CompanyInfo) error {
	if len(periods) == 0 {
		return &MissingDataError{Detail: "document contains no financial periods"}
	}

	for i, p := range periods {
		if err := o.processPeriod(p, company); err != nil {
			fmt.Printf("[PIPELINE] Period %d failed: %v\n", i+1, err)
			p.CalcError = err.Error()
		}
	}
	return nil
}

// processPeriod runs one period through all three stages. A panic anywhere in
// the calculation chain is recovered into an error so one malformed period
// cannot take down the document run.
func (o *Orchestrator) processPeriod(p *statement.FinancialPeriod, company statement.CompanyInfo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("calculation panic: %v", r)
		}
	}()

	statement.Normalize(p)

	m := o.selector.Select(company.Industry, p.IncomeStatement.Revenue, p.EBITDAMargin())
	p.ValuationMultiples = &m

	metrics, err := valuation.CalculateMetrics(p)
	if err != nil {
		return err
	}
	p.ValuationMetrics = metrics
	return nil
}
