package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	apidcf "arvo_valuation/pkg/api/dcf"
	apimarketdata "arvo_valuation/pkg/api/marketdata"
	apivaluation "arvo_valuation/pkg/api/valuation"
	"arvo_valuation/pkg/core/config"
	coredcf "arvo_valuation/pkg/core/dcf"
	"arvo_valuation/pkg/core/llm"
	"arvo_valuation/pkg/core/marketdata"
	"arvo_valuation/pkg/core/multiples"
	"arvo_valuation/pkg/core/pipeline"
	"arvo_valuation/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	cfg, err := config.Load("config/valuation.yaml")
	if err != nil {
		fmt.Printf("[FATAL] Config load failed: %v\n", err)
		os.Exit(1)
	}

	// Database is optional: without DATABASE_URL the API still serves
	// calculations, only persistence is unavailable.
	ctx := context.Background()
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			fmt.Printf("[FATAL] Database init failed: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		fmt.Println("[STORE] Database pool initialized")
	} else {
		fmt.Println("[STORE] DATABASE_URL not set, persistence disabled")
	}

	// Market data service
	mdOpts := []marketdata.Option{}
	if cfg.MarketData.YieldCurveURL != "" {
		mdOpts = append(mdOpts, marketdata.WithYieldCurveURL(cfg.MarketData.YieldCurveURL))
	}
	if d := cfg.MarketDataTimeout(); d > 0 {
		mdOpts = append(mdOpts, marketdata.WithTimeout(d))
	}
	mdService := marketdata.NewService(mdOpts...)

	// Calculation pipeline
	table := cfg.MultiplesTable()
	orchestrator := pipeline.NewOrchestratorWithSelector(multiples.NewSelectorWithTable(table))

	// DCF engine with the configured scenario generator
	engine := coredcf.NewEngine(cfg.Confidence())
	var generator *llm.ScenarioGenerator
	if os.Getenv("GEMINI_API_KEY") != "" {
		generator = llm.NewScenarioGenerator(&llm.GeminiProvider{Model: cfg.LLM.Model})
		fmt.Println("[LLM] Gemini scenario generator enabled")
	} else {
		fmt.Println("[LLM] GEMINI_API_KEY not set, scenario generation disabled")
	}

	// Valuation endpoints
	apivaluation.InitHandler(orchestrator)
	http.HandleFunc("/api/valuation/metrics", apivaluation.HandleMetrics)

	// Market data endpoints
	apimarketdata.InitHandler(mdService)
	http.HandleFunc("/api/marketdata/wacc", apimarketdata.HandleWACC)

	// DCF endpoints
	apidcf.InitHandler(engine, mdService, generator)
	http.HandleFunc("/api/dcf/analyze", apidcf.HandleAnalyze)
	http.HandleFunc("/api/dcf/analysis", apidcf.HandleGet)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - POST /api/valuation/metrics")
	fmt.Println("  - GET  /api/marketdata/wacc")
	fmt.Println("  - POST /api/dcf/analyze")
	fmt.Println("  - GET  /api/dcf/analysis?id=...")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
