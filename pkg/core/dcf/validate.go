package dcf

import (
	"fmt"
	"math"
)

// WeightTolerance is the allowed deviation of the scenario weight sum from 1.
const WeightTolerance = 1e-6

// ValidationError marks a DCF input that violates the numeric contract. Any
// validation error is terminal for the whole analysis run: the record is
// marked failed and nothing is completed partially.
type ValidationError struct {
	Scenario ScenarioName // empty for run-level violations
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Scenario != "" {
		return fmt.Sprintf("dcf validation failed (%s scenario): %s", e.Scenario, e.Reason)
	}
	return fmt.Sprintf("dcf validation failed: %s", e.Reason)
}

func validationErrf(scenario ScenarioName, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Scenario: scenario, Reason: fmt.Sprintf(format, args...)}
}

// ValidateAssumptions checks one scenario's parameter set before any math
// runs on it.
func ValidateAssumptions(name ScenarioName, a Assumptions) error {
	arrays := map[string][]float64{
		"revenue_growth":          a.RevenueGrowth,
		"ebitda_margin":           a.EBITDAMargin,
		"capex_percent":           a.CapexPercent,
		"working_capital_percent": a.WorkingCapitalPercent,
		"depreciation_percent":    a.DepreciationPercent,
	}
	for field, arr := range arrays {
		if len(arr) != ProjectionYears {
			return validationErrf(name, "%s must have %d entries, got %d", field, ProjectionYears, len(arr))
		}
		for i, v := range arr {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return validationErrf(name, "%s[%d] is not a finite number", field, i)
			}
		}
	}

	// Strict inequality. wacc == terminal_growth would divide by zero in the
	// Gordon-growth formula; a scenario in that state is invalid, never
	// silently clamped.
	if a.WACC <= a.TerminalGrowth {
		return validationErrf(name, "wacc (%.4f) must strictly exceed terminal growth (%.4f)", a.WACC, a.TerminalGrowth)
	}
	if a.WACC <= 0 {
		return validationErrf(name, "wacc must be positive, got %.4f", a.WACC)
	}
	if a.TaxRate < 0 || a.TaxRate >= 1 {
		return validationErrf(name, "tax rate %.4f out of range [0, 1)", a.TaxRate)
	}
	return nil
}

// ValidateWeights checks that the scenario probabilities sum to 1.
func ValidateWeights(w Weights) error {
	if math.Abs(w.Sum()-1.0) > WeightTolerance {
		return validationErrf("", "scenario weights must sum to 1.0, got %.8f", w.Sum())
	}
	if w.Pessimistic < 0 || w.Base < 0 || w.Optimistic < 0 {
		return validationErrf("", "scenario weights must be non-negative")
	}
	return nil
}

// ValidatePayload runs the full run-level precondition check.
func ValidatePayload(p *ScenarioPayload) error {
	if p.BaseRevenue <= 0 {
		return validationErrf("", "base revenue must be positive, got %.2f", p.BaseRevenue)
	}
	if err := ValidateWeights(p.Weights); err != nil {
		return err
	}
	for _, name := range []ScenarioName{ScenarioPessimistic, ScenarioBase, ScenarioOptimistic} {
		a, ok := p.Scenarios[name]
		if !ok {
			return validationErrf("", "missing %s scenario", name)
		}
		if err := ValidateAssumptions(name, a); err != nil {
			return err
		}
	}
	return nil
}
