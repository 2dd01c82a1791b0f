package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"yieldvault/database"
	"yieldvault/models"
)

// ProcessorRunRepository implements the ProcessorRunRepository interface
type ProcessorRunRepository struct {
	q queryable
}

// NewProcessorRunRepository creates a new processor run repository
func NewProcessorRunRepository(db *database.DB) *ProcessorRunRepository {
	return &ProcessorRunRepository{q: db.Pool}
}

// newProcessorRunRepositoryWithTx creates a new processor run repository with a transaction
func newProcessorRunRepositoryWithTx(tx queryable) *ProcessorRunRepository {
	return &ProcessorRunRepository{q: tx}
}

// Record creates a new processor run audit record
func (r *ProcessorRunRepository) Record(ctx context.Context, run *models.ProcessorRun) error {
	errorsJSON, err := json.Marshal(run.ErrorList)
	if err != nil {
		return fmt.Errorf("failed to marshal error list: %w", err)
	}
	if run.ErrorList == nil {
		errorsJSON = []byte("[]")
	}

	query := `
		INSERT INTO processor_runs (kind, processed, failed, total_amount, error_list, execution_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		run.Kind,
		run.Processed,
		run.Failed,
		run.TotalAmount,
		errorsJSON,
		run.ExecutionTimeMS,
	).Scan(&run.ID, &run.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record %s run: %w", run.Kind, err)
	}

	return nil
}

// GetLatest returns the most recent run of a given processor kind
func (r *ProcessorRunRepository) GetLatest(ctx context.Context, kind models.RunKind) (*models.ProcessorRun, error) {
	query := `
		SELECT id, kind, processed, failed, total_amount, error_list, execution_time_ms, created_at
		FROM processor_runs
		WHERE kind = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var run models.ProcessorRun
	var errorsJSON []byte

	err := r.q.QueryRow(ctx, query, kind).Scan(
		&run.ID,
		&run.Kind,
		&run.Processed,
		&run.Failed,
		&run.TotalAmount,
		&errorsJSON,
		&run.ExecutionTimeMS,
		&run.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest %s run: %w", kind, err)
	}

	if len(errorsJSON) > 0 {
		if err := json.Unmarshal(errorsJSON, &run.ErrorList); err != nil {
			return nil, fmt.Errorf("failed to unmarshal error list: %w", err)
		}
	}

	return &run, nil
}
