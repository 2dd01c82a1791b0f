package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"yieldvault/database"
)

// SettingsRepository implements the SettingsRepository interface. Values are
// stored as JSON documents keyed by setting name.
type SettingsRepository struct {
	q queryable
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{q: db.Pool}
}

// newSettingsRepositoryWithTx creates a new settings repository with a transaction
func newSettingsRepositoryWithTx(tx queryable) *SettingsRepository {
	return &SettingsRepository{q: tx}
}

// Get unmarshals the stored value for key into dest. Returns false when the
// key has never been set, leaving dest untouched so callers fall back to
// their defaults.
func (r *SettingsRepository) Get(ctx context.Context, key string, dest any) (bool, error) {
	query := `SELECT value FROM settings WHERE key = $1`

	var raw []byte
	err := r.q.QueryRow(ctx, query, key).Scan(&raw)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal setting %s: %w", key, err)
	}

	return true, nil
}

// Set stores value for key, replacing any previous value
func (r *SettingsRepository) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal setting %s: %w", key, err)
	}

	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, key, raw); err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}

	return nil
}
