package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"arvo_valuation/pkg/core/dcf"
)

// DCFRepo stores DCF analysis records. Records enter as processing and are
// finalized exactly once; the guarded UPDATE in Finalize enforces that a
// completed or failed record never changes again.
type DCFRepo struct{}

func NewDCFRepo() *DCFRepo {
	return &DCFRepo{}
}

// Create inserts a fresh processing record.
//
// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS dcf_analyses (
//	  id            TEXT PRIMARY KEY,
//	  valuation_id  TEXT NOT NULL,
//	  status        TEXT NOT NULL,
//	  analysis_json JSONB,
//	  created_at    TIMESTAMPTZ,
//	  updated_at    TIMESTAMPTZ
//	);
func (r *DCFRepo) Create(ctx context.Context, data *dcf.StructuredData) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	if data.Status != dcf.StatusProcessing {
		return fmt.Errorf("new analysis record must be in processing state, got %s", data.Status)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `
		INSERT INTO dcf_analyses (id, valuation_id, status, analysis_json, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5);
	`
	if _, err := pool.Exec(ctx, query, data.ID, data.ValuationID, string(data.Status), jsonData, time.Now()); err != nil {
		return fmt.Errorf("failed to create analysis record: %w", err)
	}
	return nil
}

// Finalize writes the terminal state of a run. The WHERE clause only matches
// records still in processing, so a second finalization is a no-op error
// instead of an overwrite.
func (r *DCFRepo) Finalize(ctx context.Context, data *dcf.StructuredData) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	if data.Status != dcf.StatusCompleted && data.Status != dcf.StatusFailed {
		return fmt.Errorf("finalize requires a terminal status, got %s", data.Status)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `
		UPDATE dcf_analyses
		SET status = $2, analysis_json = $3, updated_at = $4
		WHERE id = $1 AND status = 'processing';
	`
	tag, err := pool.Exec(ctx, query, data.ID, string(data.Status), jsonData, time.Now())
	if err != nil {
		return fmt.Errorf("failed to finalize analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("analysis %s is not in processing state", data.ID)
	}
	return nil
}

// Load retrieves one analysis record by ID.
func (r *DCFRepo) Load(ctx context.Context, id string) (*dcf.StructuredData, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	err := pool.QueryRow(ctx, `SELECT analysis_json FROM dcf_analyses WHERE id = $1`, id).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no analysis found with id %s", id)
		}
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}

	var data dcf.StructuredData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	return &data, nil
}

// LoadLatestForValuation retrieves the most recent analysis for a valuation.
func (r *DCFRepo) LoadLatestForValuation(ctx context.Context, valuationID string) (*dcf.StructuredData, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	query := `
		SELECT analysis_json FROM dcf_analyses
		WHERE valuation_id = $1
		ORDER BY created_at DESC
		LIMIT 1;
	`
	err := pool.QueryRow(ctx, query, valuationID).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no analysis found for valuation %s", valuationID)
		}
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}

	var data dcf.StructuredData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	return &data, nil
}
