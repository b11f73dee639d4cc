// Package report renders a valuation run into a Markdown summary suitable
// for embedding in the advisor-facing report document.
package report

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"

	"arvo_valuation/pkg/core/dcf"
	"arvo_valuation/pkg/core/statement"
)

// maxTornadoRows keeps the sensitivity table readable in the report.
const maxTornadoRows = 6

// RenderValuationReport produces the Markdown summary for one analysis run.
// Sections render only when their inputs are present, so a metrics-only run
// and a full DCF run share the same renderer.
func RenderValuationReport(company statement.CompanyInfo, periods []*statement.FinancialPeriod, analysis *dcf.StructuredData) (string, error) {
	var b strings.Builder

	b.WriteString("# Valuation Summary\n\n")
	if company.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n\n", company.Industry)
	}

	if len(periods) > 0 {
		writeMetricsSection(&b, periods)
	}
	if analysis != nil && analysis.Status == dcf.StatusCompleted {
		writeDCFSection(&b, analysis)
	}

	md := b.String()
	if !validMarkdown(md) {
		return "", fmt.Errorf("rendered report is not valid markdown")
	}
	return md, nil
}

func writeMetricsSection(b *strings.Builder, periods []*statement.FinancialPeriod) {
	b.WriteString("## Multiplier Valuation\n\n")
	b.WriteString("| Period | Revenue | EBITDA | Substance | EV/EBITDA | Average |\n")
	b.WriteString("|---|---|---|---|---|---|\n")

	for i, p := range periods {
		if p.CalcError != "" {
			fmt.Fprintf(b, "| %d | — | — | calculation failed | — | — |\n", i+1)
			continue
		}
		ebitda := 0.0
		if p.CalculatedFields != nil {
			ebitda = p.CalculatedFields.EBITDA
		}
		var substance, evEBITDA, avg float64
		if p.ValuationMetrics != nil {
			substance = p.ValuationMetrics.SubstanceValue
			evEBITDA = p.ValuationMetrics.EVEBITDAValue
			avg = p.ValuationMetrics.AverageValuation
		}
		fmt.Fprintf(b, "| %d | %s | %s | %s | %s | %s |\n",
			i+1, euro(p.IncomeStatement.Revenue), euro(ebitda), euro(substance), euro(evEBITDA), euro(avg))
	}

	latest := periods[0]
	if latest.ValuationMetrics != nil {
		m := latest.ValuationMetrics
		fmt.Fprintf(b, "\nLatest period range: %s – %s\n", euro(m.Range.Low), euro(m.Range.High))
		if m.IsSubstanceNegative {
			b.WriteString("\n> Note: equity is negative, so the substance value is excluded from the range floor.\n")
		}
		if m.IsEBITNegativeOrZero || m.IsEBITDANegOrZero {
			b.WriteString("\n> Note: non-positive earnings made one or more earnings-based methods unusable.\n")
		}
	}
	b.WriteString("\n")
}

func writeDCFSection(b *strings.Builder, analysis *dcf.StructuredData) {
	b.WriteString("## DCF Analysis\n\n")

	if analysis.ValuationSummary != nil {
		s := analysis.ValuationSummary
		fmt.Fprintf(b, "Probability-weighted equity value: **%s**\n\n", euro(s.ProbabilityWeightedValuation))
		fmt.Fprintf(b, "Scenario range: %s – %s\n\n", euro(s.EquityValueRange.Low), euro(s.EquityValueRange.High))
	}

	if len(analysis.Scenarios) > 0 {
		b.WriteString("| Scenario | Equity Value | Terminal Value (PV) |\n")
		b.WriteString("|---|---|---|\n")
		for _, name := range []dcf.ScenarioName{dcf.ScenarioPessimistic, dcf.ScenarioBase, dcf.ScenarioOptimistic} {
			sc, ok := analysis.Scenarios[name]
			if !ok {
				continue
			}
			fmt.Fprintf(b, "| %s | %s | %s |\n",
				name, euro(sc.Bridge.EquityValue), euro(sc.TerminalValue.PVTerminalValue))
		}
		b.WriteString("\n")
	}

	if analysis.ValuationSummary != nil && len(analysis.ValuationSummary.SensitivityAnalysis) > 0 {
		b.WriteString("### Sensitivity\n\n")
		b.WriteString("| Driver | Change | Impact |\n")
		b.WriteString("|---|---|---|\n")
		rows := analysis.ValuationSummary.SensitivityAnalysis
		if len(rows) > maxTornadoRows {
			rows = rows[:maxTornadoRows]
		}
		for _, e := range rows {
			fmt.Fprintf(b, "| %s | %s | %+.1f%% |\n", e.Parameter, e.DeltaDescription, e.ImpactPercentage)
		}
		b.WriteString("\n")
	}

	if analysis.ConfidenceAssessment != nil {
		fmt.Fprintf(b, "Confidence score: %.1f / 10\n\n", analysis.ConfidenceAssessment.OverallConfidenceScore)
	}
}

// euro formats a value in whole euros with thin-space grouping.
func euro(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := fmt.Sprintf("%.0f", v)

	var parts []string
	for len(whole) > 3 {
		parts = append([]string{whole[len(whole)-3:]}, parts...)
		whole = whole[:len(whole)-3]
	}
	parts = append([]string{whole}, parts...)

	out := strings.Join(parts, " ") + " €"
	if neg {
		out = "-" + out
	}
	return out
}

// validMarkdown checks the document parses with Goldmark. The parser is very
// permissive; this mainly guards against nil documents from renderer bugs.
func validMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(input))
	return parser.Parse(reader) != nil
}
