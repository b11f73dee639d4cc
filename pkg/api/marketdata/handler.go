package marketdata

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"arvo_valuation/pkg/core/marketdata"
)

var service *marketdata.Service

// InitHandler wires the market data service built from the active config.
func InitHandler(s *marketdata.Service) {
	service = s
}

// HandleWACC serves the full market-data bundle for a DCF run.
//
// Query parameters: industry (string), revenue (euros), debtToEquity and
// taxRate (decimals). Missing numerics default to a debt-free company at the
// standard Finnish corporate tax rate.
func HandleWACC(w http.ResponseWriter, r *http.Request) {
	// CORS
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

	q := r.URL.Query()
	industry := q.Get("industry")
	revenue := parseFloatParam(q.Get("revenue"), 0)
	debtToEquity := parseFloatParam(q.Get("debtToEquity"), 0)
	taxRate := parseFloatParam(q.Get("taxRate"), 0.20)

	fmt.Printf("[MARKETDATA] WACC request: industry=%q revenue=%.0f d/e=%.2f tax=%.2f\n",
		industry, revenue, debtToEquity, taxRate)

	result := service.GetForDCF(r.Context(), industry, revenue, debtToEquity, taxRate)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func parseFloatParam(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}
