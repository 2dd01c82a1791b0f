package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"yieldvault/database"
	"yieldvault/models"
)

// LedgerRepository implements the LedgerRepository interface
type LedgerRepository struct {
	q queryable
}

// NewLedgerRepository creates a new wallet ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// newLedgerRepositoryWithTx creates a new wallet ledger repository with a transaction
func newLedgerRepositoryWithTx(tx queryable) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// Record appends a ledger entry. The reference column is unique, so recording
// the same movement twice fails at the database rather than double-counting.
func (r *LedgerRepository) Record(ctx context.Context, entry *models.WalletLedgerEntry) error {
	query := `
		INSERT INTO wallet_ledger_entries (owner_id, kind, amount, status, reference, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.OwnerID,
		entry.Kind,
		entry.Amount,
		entry.Status,
		entry.Reference,
		entry.Description,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record ledger entry for owner %d: %w", entry.OwnerID, err)
	}

	return nil
}

// GetByReference retrieves a ledger entry by its unique reference
func (r *LedgerRepository) GetByReference(ctx context.Context, reference string) (*models.WalletLedgerEntry, error) {
	query := `
		SELECT id, owner_id, kind, amount, status, reference, description, created_at
		FROM wallet_ledger_entries
		WHERE reference = $1
	`

	var entry models.WalletLedgerEntry
	err := r.q.QueryRow(ctx, query, reference).Scan(
		&entry.ID,
		&entry.OwnerID,
		&entry.Kind,
		&entry.Amount,
		&entry.Status,
		&entry.Reference,
		&entry.Description,
		&entry.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry %s: %w", reference, err)
	}

	return &entry, nil
}

// ListByOwner returns the ledger entries of a user, newest first
func (r *LedgerRepository) ListByOwner(ctx context.Context, ownerID int64, limit int) ([]*models.WalletLedgerEntry, error) {
	query := `
		SELECT id, owner_id, kind, amount, status, reference, description, created_at
		FROM wallet_ledger_entries
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	var entries []*models.WalletLedgerEntry
	for rows.Next() {
		var entry models.WalletLedgerEntry
		err := rows.Scan(
			&entry.ID,
			&entry.OwnerID,
			&entry.Kind,
			&entry.Amount,
			&entry.Status,
			&entry.Reference,
			&entry.Description,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}

// UpdateStatus moves a ledger entry to a new processing state, constrained to
// legal transitions: only pending entries may move, and only to completed,
// failed or cancelled. Returns false if no transition applied.
func (r *LedgerRepository) UpdateStatus(ctx context.Context, id int64, status models.LedgerEntryStatus) (bool, error) {
	if status == models.LedgerStatusPending {
		return false, fmt.Errorf("cannot transition ledger entry %d back to pending", id)
	}

	query := `
		UPDATE wallet_ledger_entries
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	result, err := r.q.Exec(ctx, query, status, id, models.LedgerStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to update ledger entry %d: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

// SumCompletedDeposits returns the cumulative completed deposit amount for a
// user. This is the input to VIP tier recomputation.
func (r *LedgerRepository) SumCompletedDeposits(ctx context.Context, ownerID int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM wallet_ledger_entries
		WHERE owner_id = $1 AND kind = $2 AND status = $3
	`

	var total decimal.Decimal
	err := r.q.QueryRow(ctx, query, ownerID, models.LedgerKindDeposit, models.LedgerStatusCompleted).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum completed deposits for owner %d: %w", ownerID, err)
	}

	return total, nil
}
