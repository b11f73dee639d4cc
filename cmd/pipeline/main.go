// Command pipeline runs the valuation flow end to end from the command line:
// parse an HTML statement file, compute multiplier metrics, optionally run
// the DCF from a scenario payload file, and print the Markdown report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"arvo_valuation/pkg/core/config"
	coredcf "arvo_valuation/pkg/core/dcf"
	"arvo_valuation/pkg/core/ingest"
	"arvo_valuation/pkg/core/marketdata"
	"arvo_valuation/pkg/core/multiples"
	"arvo_valuation/pkg/core/pipeline"
	"arvo_valuation/pkg/core/report"
	"arvo_valuation/pkg/core/statement"
)

func main() {
	godotenv.Load()

	var (
		statementPath = flag.String("statement", "", "path to the HTML statement file (required)")
		industry      = flag.String("industry", "", "company industry")
		scenarioPath  = flag.String("scenarios", "", "path to a scenario payload JSON file (optional)")
		debtToEquity  = flag.Float64("de", 0, "debt-to-equity ratio")
		taxRate       = flag.Float64("tax", 0.20, "corporate tax rate")
		configPath    = flag.String("config", "config/valuation.yaml", "path to the policy file")
	)
	flag.Parse()

	if *statementPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("[FATAL] Config load failed: %v\n", err)
		os.Exit(1)
	}

	html, err := os.ReadFile(*statementPath)
	if err != nil {
		fmt.Printf("[FATAL] Cannot read statement file: %v\n", err)
		os.Exit(1)
	}

	periods, err := ingest.ParseStatementHTML(string(html))
	if err != nil {
		fmt.Printf("[FATAL] Statement parsing failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[PIPELINE] Parsed %d periods from %s\n", len(periods), *statementPath)

	company := statement.CompanyInfo{Industry: *industry}
	if len(periods) > 0 {
		company.Revenue = periods[0].IncomeStatement.Revenue
	}

	orchestrator := pipeline.NewOrchestratorWithSelector(multiples.NewSelectorWithTable(cfg.MultiplesTable()))
	if err := orchestrator.RunDocumentMetrics(periods, company); err != nil {
		fmt.Printf("[FATAL] Metrics run failed: %v\n", err)
		os.Exit(1)
	}

	var analysis *coredcf.StructuredData
	if *scenarioPath != "" {
		analysis = runDCF(cfg, *scenarioPath, company, *debtToEquity, *taxRate)
	}

	md, err := report.RenderValuationReport(company, periods, analysis)
	if err != nil {
		fmt.Printf("[FATAL] Report rendering failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(md)
}

func runDCF(cfg *config.Config, scenarioPath string, company statement.CompanyInfo, debtToEquity, taxRate float64) *coredcf.StructuredData {
	raw, err := os.ReadFile(scenarioPath)
	if err != nil {
		fmt.Printf("[FATAL] Cannot read scenario file: %v\n", err)
		os.Exit(1)
	}

	payload, err := coredcf.ParsePayload(string(raw))
	if err != nil {
		fmt.Printf("[FATAL] Scenario payload unusable: %v\n", err)
		os.Exit(1)
	}

	mdOpts := []marketdata.Option{}
	if cfg.MarketData.YieldCurveURL != "" {
		mdOpts = append(mdOpts, marketdata.WithYieldCurveURL(cfg.MarketData.YieldCurveURL))
	}
	if d := cfg.MarketDataTimeout(); d > 0 {
		mdOpts = append(mdOpts, marketdata.WithTimeout(d))
	}
	svc := marketdata.NewService(mdOpts...)
	md := svc.GetForDCF(context.Background(), company.Industry, company.Revenue, debtToEquity, taxRate)
	fmt.Printf("[MARKETDATA] WACC %.4f (quality: %s)\n", md.WACC, md.DataQuality)

	engine := coredcf.NewEngine(cfg.Confidence())
	record := engine.Run(coredcf.AnalysisRequest{}, payload, &md)
	if record.Status == coredcf.StatusFailed {
		fmt.Printf("[DCF] Analysis failed: %s\n", record.ErrorMessage)
	}
	return record
}
