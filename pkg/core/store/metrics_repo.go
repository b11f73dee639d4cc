package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"arvo_valuation/pkg/core/statement"
)

// MetricsRepo stores the per-document multiplier valuation results.
type MetricsRepo struct{}

func NewMetricsRepo() *MetricsRepo {
	return &MetricsRepo{}
}

// documentRecord is the JSONB shape of one stored metrics run.
type documentRecord struct {
	Company statement.CompanyInfo        `json:"company"`
	Periods []*statement.FinancialPeriod `json:"periods"`
}

// Save upserts the metrics run for a valuation. Reruns replace the previous
// result; the valuation ID is the business key.
//
// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS valuation_metrics (
//	  valuation_id TEXT PRIMARY KEY,
//	  metrics_json JSONB,
//	  updated_at   TIMESTAMPTZ
//	);
func (r *MetricsRepo) Save(ctx context.Context, valuationID string, company statement.CompanyInfo, periods []*statement.FinancialPeriod) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	if valuationID == "" {
		return fmt.Errorf("valuation ID is required")
	}

	jsonData, err := json.Marshal(documentRecord{Company: company, Periods: periods})
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	query := `
		INSERT INTO valuation_metrics (valuation_id, metrics_json, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (valuation_id)
		DO UPDATE SET
			metrics_json = EXCLUDED.metrics_json,
			updated_at = EXCLUDED.updated_at;
	`

	if _, err := pool.Exec(ctx, query, valuationID, jsonData, time.Now()); err != nil {
		return fmt.Errorf("failed to save metrics: %w", err)
	}
	return nil
}

// Load retrieves the stored metrics run for a valuation.
func (r *MetricsRepo) Load(ctx context.Context, valuationID string) (statement.CompanyInfo, []*statement.FinancialPeriod, error) {
	pool := GetPool()
	if pool == nil {
		return statement.CompanyInfo{}, nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	err := pool.QueryRow(ctx, `SELECT metrics_json FROM valuation_metrics WHERE valuation_id = $1`, valuationID).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return statement.CompanyInfo{}, nil, fmt.Errorf("no metrics found for valuation %s", valuationID)
		}
		return statement.CompanyInfo{}, nil, fmt.Errorf("failed to load metrics: %w", err)
	}

	var rec documentRecord
	if err := json.Unmarshal(jsonData, &rec); err != nil {
		return statement.CompanyInfo{}, nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
	}
	return rec.Company, rec.Periods, nil
}
