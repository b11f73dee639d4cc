package marketdata

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const yieldCSV = "KEY,FREQ,REF_AREA,TIME_PERIOD,OBS_VALUE\n" +
	"YC.B.U2.EUR.4F.G_N_A.SV_C_YM.SR_10Y,B,U2,2026-08-27,2.87\n"

func TestFetchRiskFreeRate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(yieldCSV))
	}))
	defer srv.Close()

	s := NewService(WithYieldCurveURL(srv.URL))
	snap := s.FetchRiskFreeRate(context.Background())

	if !snap.Success {
		t.Fatal("expected successful fetch")
	}
	if snap.Source != "ECB_yield_curve" {
		t.Errorf("expected source ECB_yield_curve, got %s", snap.Source)
	}
	if math.Abs(snap.Value-0.0287) > tol {
		t.Errorf("expected rate 0.0287, got %f", snap.Value)
	}
}

func TestFetchRiskFreeRate_ServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewService(WithYieldCurveURL(srv.URL))
	snap := s.FetchRiskFreeRate(context.Background())

	if snap.Success {
		t.Fatal("expected degraded fetch")
	}
	if snap.Source != "fallback" {
		t.Errorf("expected source fallback, got %s", snap.Source)
	}
	if snap.Value != FallbackRiskFreeRate {
		t.Errorf("expected fallback rate %f, got %f", FallbackRiskFreeRate, snap.Value)
	}
}

func TestFetchRiskFreeRate_UnreachableFallsBack(t *testing.T) {
	s := NewService(WithYieldCurveURL("http://127.0.0.1:1/nothing"), WithTimeout(200*time.Millisecond))
	snap := s.FetchRiskFreeRate(context.Background())

	if snap.Success || snap.Value != FallbackRiskFreeRate {
		t.Errorf("expected fallback snapshot, got %+v", snap)
	}
}

func TestFetchRiskFreeRate_EmptySeriesFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("KEY,FREQ,OBS_VALUE\n")) // header only
	}))
	defer srv.Close()

	s := NewService(WithYieldCurveURL(srv.URL))
	snap := s.FetchRiskFreeRate(context.Background())
	if snap.Success {
		t.Error("expected failure for empty series")
	}
}

func TestFetchInflationExpectation_Static(t *testing.T) {
	s := NewService()
	snap := s.FetchInflationExpectation(context.Background())

	if !snap.Success || snap.Source != "ECB_target" || snap.Value != 0.02 {
		t.Errorf("expected static ECB_target snapshot, got %+v", snap)
	}
}

func TestGetForDCF_DegradedQuality(t *testing.T) {
	s := NewService(WithYieldCurveURL("http://127.0.0.1:1/nothing"), WithTimeout(200*time.Millisecond))
	md := s.GetForDCF(context.Background(), "software", 3_000_000, 0.5, 0.20)

	if md.DataQuality != "medium" {
		t.Errorf("expected medium data quality on fallback, got %s", md.DataQuality)
	}
	if md.RiskFreeRate != FallbackRiskFreeRate {
		t.Errorf("expected fallback risk-free rate, got %f", md.RiskFreeRate)
	}
	if md.IndustryBeta != 1.4 {
		t.Errorf("expected software beta 1.4, got %f", md.IndustryBeta)
	}
	if md.SizePremium != 0.05 {
		t.Errorf("expected 5%% size premium under 5M revenue, got %f", md.SizePremium)
	}

	// Terminal growth: min(0.02, 0.8*0.025) = 0.02
	if math.Abs(md.RecommendedTerminalGrowth-0.02) > tol {
		t.Errorf("expected terminal growth 0.02, got %f", md.RecommendedTerminalGrowth)
	}
	if md.WACC <= md.RecommendedTerminalGrowth {
		t.Errorf("WACC %f should exceed terminal growth %f", md.WACC, md.RecommendedTerminalGrowth)
	}
	if len(md.Sources) != 2 {
		t.Errorf("expected two sources, got %v", md.Sources)
	}
}

func TestGetForDCF_HighQuality(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(yieldCSV))
	}))
	defer srv.Close()

	s := NewService(WithYieldCurveURL(srv.URL))
	md := s.GetForDCF(context.Background(), "utilities", 200_000_000, 1.0, 0.20)

	if md.DataQuality != "high" {
		t.Errorf("expected high data quality, got %s", md.DataQuality)
	}
	if md.SizePremium != 0 {
		t.Errorf("expected no size premium over 100M revenue, got %f", md.SizePremium)
	}

	ke := md.Breakdown.CostOfEquity
	kdAfterTax := md.Breakdown.CostOfDebt * (1 - 0.20)
	if md.WACC < kdAfterTax-tol || md.WACC > ke+tol {
		t.Errorf("WACC %f out of [%f, %f]", md.WACC, kdAfterTax, ke)
	}
}
