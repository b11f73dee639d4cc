package dcf

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	coredcf "arvo_valuation/pkg/core/dcf"
	"arvo_valuation/pkg/core/llm"
	"arvo_valuation/pkg/core/marketdata"
	"arvo_valuation/pkg/core/statement"
	"arvo_valuation/pkg/core/store"
)

var (
	engine    *coredcf.Engine
	mdService *marketdata.Service
	generator *llm.ScenarioGenerator
	dcfRepo   *store.DCFRepo
)

// InitHandler wires the engine, market data service and scenario generator.
func InitHandler(e *coredcf.Engine, md *marketdata.Service, g *llm.ScenarioGenerator) {
	engine = e
	mdService = md
	generator = g
	dcfRepo = store.NewDCFRepo()
}

// AnalyzeRequest starts one DCF run. The scenario payload arrives either
// pre-built (payload), as raw model output to be parsed leniently
// (rawPayload), or is drafted by the LLM from the supplied financials when
// neither is present.
type AnalyzeRequest struct {
	ValuationID string `json:"valuationId"`
	CompanyID   string `json:"companyId"`
	UserID      string `json:"userId"`

	Company      statement.CompanyInfo        `json:"company"`
	Periods      []*statement.FinancialPeriod `json:"periods,omitempty"`
	DebtToEquity float64                      `json:"debtToEquity"`
	TaxRate      float64                      `json:"taxRate"`

	Payload    *coredcf.ScenarioPayload `json:"payload,omitempty"`
	RawPayload string                   `json:"rawPayload,omitempty"`

	Persist bool `json:"persist,omitempty"`
}

// HandleAnalyze runs the three-scenario DCF synchronously and returns the
// terminal record. Validation failures complete the request with a failed
// record and HTTP 200; only transport-level problems map to error statuses.
func HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	fmt.Printf("[DCF] Analyze request: valuation=%s company=%s\n", req.ValuationID, req.CompanyID)

	taxRate := req.TaxRate
	if taxRate == 0 {
		taxRate = 0.20
	}
	md := mdService.GetForDCF(ctx, req.Company.Industry, req.Company.Revenue, req.DebtToEquity, taxRate)

	payload, err := resolvePayload(ctx, &req, &md)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	analysisReq := coredcf.AnalysisRequest{
		ValuationID: req.ValuationID,
		CompanyID:   req.CompanyID,
		UserID:      req.UserID,
	}
	record := engine.Run(analysisReq, payload, &md)

	if req.Persist {
		persistRecord(r, record)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

// resolvePayload applies the three-way payload source precedence.
func resolvePayload(ctx context.Context, req *AnalyzeRequest, md *marketdata.ForDCF) (*coredcf.ScenarioPayload, error) {
	if req.Payload != nil {
		return req.Payload, nil
	}
	if req.RawPayload != "" {
		p, err := coredcf.ParsePayload(req.RawPayload)
		if err != nil {
			return nil, fmt.Errorf("raw payload unusable: %w", err)
		}
		return p, nil
	}
	if generator == nil {
		return nil, fmt.Errorf("no payload supplied and no scenario generator configured")
	}
	return generator.Generate(ctx, req.Company, req.Periods, md)
}

// persistRecord writes the processing row and immediately finalizes it. The
// run is synchronous here, but the two-step write keeps the same lifecycle
// an async worker would use.
func persistRecord(r *http.Request, record *coredcf.StructuredData) {
	ctx := r.Context()

	created := *record
	created.Status = coredcf.StatusProcessing
	created.ErrorMessage = ""
	created.Scenarios = nil
	created.ValuationSummary = nil
	created.ConfidenceAssessment = nil
	created.MarketData = nil
	created.FinishedAt = nil

	if err := dcfRepo.Create(ctx, &created); err != nil {
		fmt.Printf("[DCF] Persist create failed: %v\n", err)
		return
	}
	if err := dcfRepo.Finalize(ctx, record); err != nil {
		fmt.Printf("[DCF] Persist finalize failed: %v\n", err)
	}
}

// HandleGet returns a stored analysis by id.
func HandleGet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "GET" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id query parameter is required", http.StatusBadRequest)
		return
	}

	record, err := dcfRepo.Load(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}
