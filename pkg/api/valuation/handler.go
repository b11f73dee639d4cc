package valuation

import (
	"encoding/json"
	"fmt"
	"net/http"

	"arvo_valuation/pkg/core/ingest"
	"arvo_valuation/pkg/core/pipeline"
	"arvo_valuation/pkg/core/report"
	"arvo_valuation/pkg/core/statement"
	"arvo_valuation/pkg/core/store"
)

var (
	orchestrator *pipeline.Orchestrator
	metricsRepo  *store.MetricsRepo
)

// InitHandler wires the orchestrator built from the active config.
func InitHandler(o *pipeline.Orchestrator) {
	orchestrator = o
	metricsRepo = store.NewMetricsRepo()
}

// MetricsRequest carries one document. Periods can arrive pre-parsed or as a
// raw HTML statement; when both are present the parsed periods win.
type MetricsRequest struct {
	ValuationID   string                       `json:"valuationId"`
	Company       statement.CompanyInfo        `json:"company"`
	Periods       []*statement.FinancialPeriod `json:"periods"`
	StatementHTML string                       `json:"statementHtml,omitempty"`
	Persist       bool                         `json:"persist,omitempty"`
}

type MetricsResponse struct {
	ValuationID string                       `json:"valuationId"`
	Periods     []*statement.FinancialPeriod `json:"periods"`
	Report      string                       `json:"report,omitempty"`
}

// HandleMetrics runs the normalize/multiples/metrics pipeline over one
// document and returns the enriched periods plus the Markdown summary.
func HandleMetrics(w http.ResponseWriter, r *http.Request) {
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

	var req MetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	periods := req.Periods
	if len(periods) == 0 && req.StatementHTML != "" {
		parsed, err := ingest.ParseStatementHTML(req.StatementHTML)
		if err != nil {
			http.Error(w, fmt.Sprintf("statement parsing failed: %v", err), http.StatusBadRequest)
			return
		}
		periods = parsed
		fmt.Printf("[VALUATION] Parsed %d periods from HTML statement\n", len(periods))
	}

	fmt.Printf("[VALUATION] Metrics request: valuation=%s industry=%q periods=%d\n",
		req.ValuationID, req.Company.Industry, len(periods))

	if err := orchestrator.RunDocumentMetrics(periods, req.Company); err != nil {
		if _, ok := err.(*pipeline.MissingDataError); ok {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	md, err := report.RenderValuationReport(req.Company, periods, nil)
	if err != nil {
		fmt.Printf("[VALUATION] Report rendering failed: %v\n", err)
		md = ""
	}

	if req.Persist && req.ValuationID != "" {
		if err := metricsRepo.Save(r.Context(), req.ValuationID, req.Company, periods); err != nil {
			// Persistence is best-effort for this endpoint; the caller still
			// gets the computed metrics.
			fmt.Printf("[VALUATION] Persist failed: %v\n", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MetricsResponse{
		ValuationID: req.ValuationID,
		Periods:     periods,
		Report:      md,
	})
}
