package dcf

import (
	"fmt"
	"math"
	"sync"
	"time"

	"arvo_valuation/pkg/core/marketdata"
)

// ScenarioInput is the shared company-level context a scenario is built on.
type ScenarioInput struct {
	BaseRevenue float64
	NetDebt     float64
}

// BuildScenario evaluates one scenario end to end: validates the assumptions,
// rolls the five-year breakdown forward, capitalizes the terminal value and
// bridges to equity value.
//
// Per-year recurrences:
//
//	revenue_t  = revenue_{t-1} * (1 + growth_t)
//	ebitda_t   = revenue_t * margin_t
//	nopat_t    = (ebitda_t - depreciation_t) * (1 - tax_rate)
//	fcf_t      = nopat_t + depreciation_t - capex_t - Δnwc_t
//	df_t       = 1 / (1 + wacc)^t
//	pv_fcf_t   = fcf_t * df_t
//
// Depreciation, capex and net working capital are percent-of-revenue; the
// year-0 NWC base uses the first forecast year's ratio on base revenue.
func BuildScenario(name ScenarioName, a Assumptions, input ScenarioInput) (*Scenario, error) {
	if err := ValidateAssumptions(name, a); err != nil {
		return nil, err
	}

	s := &Scenario{Name: name, Assumptions: a}

	revenue := input.BaseRevenue
	prevNWC := a.WorkingCapitalPercent[0] * input.BaseRevenue
	sumPV := 0.0

	for t := 1; t <= ProjectionYears; t++ {
		i := t - 1
		revenue = revenue * (1 + a.RevenueGrowth[i])
		if revenue < 0 {
			return nil, validationErrf(name, "projected revenue is negative in year %d", t)
		}

		ebitda := revenue * a.EBITDAMargin[i]
		depreciation := revenue * a.DepreciationPercent[i]
		nopat := (ebitda - depreciation) * (1 - a.TaxRate)
		capex := revenue * a.CapexPercent[i]

		nwc := revenue * a.WorkingCapitalPercent[i]
		changeNWC := nwc - prevNWC
		prevNWC = nwc

		fcf := nopat + depreciation - capex - changeNWC
		df := 1.0 / math.Pow(1+a.WACC, float64(t))
		pv := fcf * df
		sumPV += pv

		s.DetailedCalculations.YearlyBreakdown = append(s.DetailedCalculations.YearlyBreakdown, YearRow{
			Year:           t,
			Revenue:        revenue,
			EBITDA:         ebitda,
			Depreciation:   depreciation,
			NOPAT:          nopat,
			Capex:          capex,
			ChangeNWC:      changeNWC,
			FreeCashFlow:   fcf,
			DiscountFactor: df,
			PVFreeCashFlow: pv,
		})
		s.Projections.Revenues = append(s.Projections.Revenues, revenue)
		s.Projections.FreeCashFlows = append(s.Projections.FreeCashFlows, fcf)
	}

	// Terminal value (Gordon growth). Validation already guarantees
	// wacc > terminal_growth strictly.
	final := s.DetailedCalculations.YearlyBreakdown[ProjectionYears-1]
	tv := final.FreeCashFlow * (1 + a.TerminalGrowth) / (a.WACC - a.TerminalGrowth)
	pvTV := tv * final.DiscountFactor

	s.TerminalValue = TerminalValueCalculation{
		TerminalFCF:     final.FreeCashFlow,
		TerminalGrowth:  a.TerminalGrowth,
		WACC:            a.WACC,
		TerminalValue:   tv,
		PVTerminalValue: pvTV,
	}

	ev := sumPV + pvTV
	s.Bridge = ValuationBridge{
		SumPVFreeCashFlows: sumPV,
		PVTerminalValue:    pvTV,
		EnterpriseValue:    ev,
		NetDebt:            input.NetDebt,
		EquityValue:        ev - input.NetDebt,
	}

	return s, nil
}

// Engine runs complete three-scenario analyses.
type Engine struct {
	confidenceWeights ConfidenceWeights
}

// NewEngine creates an engine with the given confidence weighting policy.
func NewEngine(cw ConfidenceWeights) *Engine {
	return &Engine{confidenceWeights: cw}
}

// Run evaluates a validated-on-entry payload into a terminal analysis record.
//
// The three scenarios are independent pure computations and are evaluated in
// parallel; the weighted blend and the tornado are a final synchronous
// reduction. There are no partial results: either all three scenarios are
// valid and the record completes, or the record fails with the first
// validation error and carries no content.
func (e *Engine) Run(req AnalysisRequest, payload *ScenarioPayload, md *marketdata.ForDCF) *StructuredData {
	record := NewStructuredData(req)

	result, err := e.evaluate(payload, md)
	now := time.Now()
	record.FinishedAt = &now
	if err != nil {
		fmt.Printf("[DCF] Analysis %s failed: %v\n", record.ID, err)
		record.Status = StatusFailed
		record.ErrorMessage = err.Error()
		return record
	}

	record.Status = StatusCompleted
	record.Scenarios = result.scenarios
	record.ValuationSummary = result.summary
	record.ConfidenceAssessment = result.confidence
	record.MarketData = md
	return record
}

type runResult struct {
	scenarios  map[ScenarioName]*Scenario
	summary    *ValuationSummary
	confidence *ConfidenceAssessment
}

func (e *Engine) evaluate(payload *ScenarioPayload, md *marketdata.ForDCF) (*runResult, error) {
	// Fill discount-rate scalars from market data where the upstream step
	// left them unset, then validate everything up front.
	for name, a := range payload.Scenarios {
		if a.WACC == 0 && md != nil {
			a.WACC = md.WACC
		}
		if a.TerminalGrowth == 0 && md != nil {
			a.TerminalGrowth = md.RecommendedTerminalGrowth
		}
		payload.Scenarios[name] = a
	}
	if err := ValidatePayload(payload); err != nil {
		return nil, err
	}

	input := ScenarioInput{BaseRevenue: payload.BaseRevenue, NetDebt: payload.NetDebt}
	names := []ScenarioName{ScenarioPessimistic, ScenarioBase, ScenarioOptimistic}

	scenarios := make(map[ScenarioName]*Scenario, len(names))
	errs := make(map[ScenarioName]error, len(names))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range names {
		wg.Add(1)
		go func(name ScenarioName) {
			defer wg.Done()
			a := payload.Scenarios[name]
			if a.TaxRate == 0 {
				a.TaxRate = payload.TaxRate
			}
			s, err := BuildScenario(name, a, input)
			mu.Lock()
			scenarios[name], errs[name] = s, err
			mu.Unlock()
		}(name)
	}
	wg.Wait()

	for _, name := range names {
		if errs[name] != nil {
			return nil, errs[name]
		}
	}

	summary, err := Combine(scenarios, payload.Weights)
	if err != nil {
		return nil, err
	}
	summary.SensitivityAnalysis = SensitivityAnalysis(scenarios[ScenarioBase], input)

	confidence := e.confidenceWeights.Assess(payload.Confidence)

	return &runResult{
		scenarios:  scenarios,
		summary:    summary,
		confidence: &confidence,
	}, nil
}

// Combine reduces the three scenario equity values into the weighted summary.
// The weighted value always lies inside [min, max] of the scenario values
// because the weights are a validated convex combination.
func Combine(scenarios map[ScenarioName]*Scenario, w Weights) (*ValuationSummary, error) {
	if err := ValidateWeights(w); err != nil {
		return nil, err
	}
	for _, name := range []ScenarioName{ScenarioPessimistic, ScenarioBase, ScenarioOptimistic} {
		if scenarios[name] == nil {
			return nil, validationErrf("", "missing evaluated %s scenario", name)
		}
	}

	vp := scenarios[ScenarioPessimistic].Bridge.EquityValue
	vb := scenarios[ScenarioBase].Bridge.EquityValue
	vo := scenarios[ScenarioOptimistic].Bridge.EquityValue

	weighted := w.Pessimistic*vp + w.Base*vb + w.Optimistic*vo

	low := math.Min(vp, math.Min(vb, vo))
	high := math.Max(vp, math.Max(vb, vo))

	return &ValuationSummary{
		EquityValues: map[ScenarioName]float64{
			ScenarioPessimistic: vp,
			ScenarioBase:        vb,
			ScenarioOptimistic:  vo,
		},
		EquityValueRange:             EquityValueRange{Low: low, High: high},
		Weights:                      w,
		ProbabilityWeightedValuation: weighted,
	}, nil
}
