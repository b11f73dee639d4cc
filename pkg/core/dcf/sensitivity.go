package dcf

import (
	"fmt"
	"sort"
)

// Perturbation step sizes. Growth, margin, WACC, capex and working-capital
// move by one percentage point; terminal growth by half a point.
const (
	sensitivityStep    = 0.01
	terminalGrowthStep = 0.005
)

type perturbation struct {
	parameter string
	delta     float64
	apply     func(a *Assumptions, delta float64)
}

var perturbations = []perturbation{
	{"revenue_growth", sensitivityStep, func(a *Assumptions, d float64) { shiftAll(a.RevenueGrowth, d) }},
	{"ebitda_margin", sensitivityStep, func(a *Assumptions, d float64) { shiftAll(a.EBITDAMargin, d) }},
	{"wacc", sensitivityStep, func(a *Assumptions, d float64) { a.WACC += d }},
	{"capex_percent", sensitivityStep, func(a *Assumptions, d float64) { shiftAll(a.CapexPercent, d) }},
	{"working_capital_percent", sensitivityStep, func(a *Assumptions, d float64) { shiftAll(a.WorkingCapitalPercent, d) }},
	{"terminal_growth", terminalGrowthStep, func(a *Assumptions, d float64) { a.TerminalGrowth += d }},
}

func shiftAll(arr []float64, delta float64) {
	for i := range arr {
		arr[i] += delta
	}
}

// SensitivityAnalysis perturbs exactly one assumption of the base scenario at
// a time, in both directions, recomputes the equity value with everything
// else held fixed, and returns the tornado ranking sorted by absolute
// percentage impact, largest first.
//
// A perturbation that makes the scenario invalid (e.g. wacc dropping to the
// terminal growth rate) is skipped with a log line; the base valuation itself
// was already validated and is unaffected.
func SensitivityAnalysis(base *Scenario, input ScenarioInput) []SensitivityEntry {
	baseValue := base.Bridge.EquityValue

	var entries []SensitivityEntry
	for _, p := range perturbations {
		for _, direction := range []float64{+1, -1} {
			delta := direction * p.delta

			a := cloneAssumptions(base.Assumptions)
			p.apply(&a, delta)

			perturbed, err := BuildScenario(base.Name, a, input)
			if err != nil {
				fmt.Printf("[DCF] Sensitivity: skipping %s %+.3f (%v)\n", p.parameter, delta, err)
				continue
			}

			impact := perturbed.Bridge.EquityValue - baseValue
			impactPct := 0.0
			if baseValue != 0 {
				impactPct = impact / baseValue * 100
			}

			entries = append(entries, SensitivityEntry{
				Parameter:        p.parameter,
				DeltaDescription: fmt.Sprintf("%+.1fpp", delta*100),
				PerturbedValue:   perturbed.Bridge.EquityValue,
				Impact:           impact,
				ImpactPercentage: impactPct,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return abs(entries[i].ImpactPercentage) > abs(entries[j].ImpactPercentage)
	})
	return entries
}

func cloneAssumptions(a Assumptions) Assumptions {
	c := a
	c.RevenueGrowth = append([]float64(nil), a.RevenueGrowth...)
	c.EBITDAMargin = append([]float64(nil), a.EBITDAMargin...)
	c.CapexPercent = append([]float64(nil), a.CapexPercent...)
	c.WorkingCapitalPercent = append([]float64(nil), a.WorkingCapitalPercent...)
	c.DepreciationPercent = append([]float64(nil), a.DepreciationPercent...)
	return c
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
