package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Default fetch policy. The ECB data portal serves the euro-area AAA
// government-bond yield curve; we take the single most recent 10Y spot-rate
// observation in CSV form.
const (
	DefaultYieldCurveURL = "https://data-api.ecb.europa.eu/service/data/YC/B.U2.EUR.4F.G_N_A.SV_C_YM.SR_10Y?lastNObservations=1&format=csvdata"
	DefaultFetchTimeout  = 8 * time.Second

	FallbackRiskFreeRate = 0.025

	// Inflation expectation is a fixed ECB-target placeholder. Deriving a
	// market-based estimate (e.g. 5y5y inflation swaps) is deliberately
	// not implemented.
	InflationExpectation = 0.02
)

// Service fetches market indicators and derives cost-of-capital figures.
// Stateless between requests: every call fetches fresh.
type Service struct {
	httpClient    *http.Client
	yieldCurveURL string
}

// Option customizes a Service.
type Option func(*Service)

// WithYieldCurveURL overrides the term-structure endpoint (used by config
// and by tests pointing at a local server).
func WithYieldCurveURL(url string) Option {
	return func(s *Service) { s.yieldCurveURL = url }
}

// WithTimeout overrides the per-fetch HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.httpClient.Timeout = d }
}

// NewService creates a market data service with the default ECB endpoint and
// a bounded fetch timeout.
func NewService(opts ...Option) *Service {
	s := &Service{
		httpClient:    &http.Client{Timeout: DefaultFetchTimeout},
		yieldCurveURL: DefaultYieldCurveURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchRiskFreeRate queries the term-structure API for the most recent
// euro-area AAA 10Y yield. One attempt only: any failure (network, bad
// status, malformed body, empty series) degrades to the static fallback with
// Success=false and never propagates upward.
func (s *Service) FetchRiskFreeRate(ctx context.Context) Snapshot {
	rate, err := s.fetchYieldObservation(ctx)
	if err != nil {
		fmt.Printf("[MARKETDATA] Risk-free rate fetch failed (%v), using fallback %.3f\n", err, FallbackRiskFreeRate)
		return Snapshot{
			Value:     FallbackRiskFreeRate,
			Source:    "fallback",
			Timestamp: time.Now(),
			Success:   false,
		}
	}
	return Snapshot{
		Value:     rate,
		Source:    "ECB_yield_curve",
		Timestamp: time.Now(),
		Success:   true,
	}
}

// FetchInflationExpectation returns the static ECB-target estimate. Kept as
// a fetch-shaped call so the caller treats both indicators uniformly.
func (s *Service) FetchInflationExpectation(ctx context.Context) Snapshot {
	return Snapshot{
		Value:     InflationExpectation,
		Source:    "ECB_target",
		Timestamp: time.Now(),
		Success:   true,
	}
}

// fetchYieldObservation performs the single HTTP attempt and parses the CSV
// payload. The published series is in percent; the returned rate is decimal.
func (s *Service) fetchYieldObservation(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.yieldCurveURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch yield curve: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("yield curve API returned status %d", resp.StatusCode)
	}

	records, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to parse CSV response: %w", err)
	}
	if len(records) < 2 {
		return 0, fmt.Errorf("empty observation series")
	}

	obsCol := -1
	for i, name := range records[0] {
		if name == "OBS_VALUE" {
			obsCol = i
			break
		}
	}
	if obsCol == -1 {
		return 0, fmt.Errorf("OBS_VALUE column not found in response")
	}

	last := records[len(records)-1]
	if obsCol >= len(last) {
		return 0, fmt.Errorf("malformed observation row")
	}

	pct, err := strconv.ParseFloat(last[obsCol], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid observation value %q: %w", last[obsCol], err)
	}
	return pct / 100.0, nil
}

// GetForDCF assembles the full market-data bundle for a DCF run. The two
// indicator fetches run concurrently; each degrades independently to its own
// fallback, so a slow or dead endpoint can lower DataQuality but never fails
// the WACC computation.
func (s *Service) GetForDCF(ctx context.Context, industry string, revenue, debtToEquity, taxRate float64) ForDCF {
	var rf, infl Snapshot
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		rf = s.FetchRiskFreeRate(ctx)
	}()
	go func() {
		defer wg.Done()
		infl = s.FetchInflationExpectation(ctx)
	}()
	wg.Wait()

	beta := IndustryBeta(industry)
	premium := SizePremium(revenue)

	ke := CostOfEquity(rf.Value, beta, premium)
	kd := CostOfDebt(rf.Value)
	breakdown := ComputeWACC(ke, kd, debtToEquity, taxRate)

	quality := "high"
	if !rf.Success || !infl.Success {
		quality = "medium"
	}

	return ForDCF{
		WACC:                      breakdown.WACC,
		RiskFreeRate:              rf.Value,
		IndustryBeta:              beta,
		MarketRiskPremium:         MarketRiskPremium,
		SizePremium:               premium,
		RecommendedTerminalGrowth: RecommendedTerminalGrowth(infl.Value, rf.Value),
		DataQuality:               quality,
		LastUpdated:               time.Now(),
		Sources:                   []string{rf.Source, infl.Source},
		Breakdown:                 breakdown,
	}
}
