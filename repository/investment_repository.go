package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"yieldvault/database"
	"yieldvault/models"
)

// InvestmentRepository implements the InvestmentRepository interface
type InvestmentRepository struct {
	q queryable
}

// NewInvestmentRepository creates a new investment repository
func NewInvestmentRepository(db *database.DB) *InvestmentRepository {
	return &InvestmentRepository{q: db.Pool}
}

// newInvestmentRepositoryWithTx creates a new investment repository with a transaction
func newInvestmentRepositoryWithTx(tx queryable) *InvestmentRepository {
	return &InvestmentRepository{q: tx}
}

const investmentColumns = `
	id, owner_id, principal_amount, daily_profit_rate, term_days,
	accrued_profit, maturity_date, last_accrual_at, status, created_at, updated_at`

func scanInvestment(row pgx.Row) (*models.Investment, error) {
	var inv models.Investment
	err := row.Scan(
		&inv.ID,
		&inv.OwnerID,
		&inv.PrincipalAmount,
		&inv.DailyProfitRate,
		&inv.TermDays,
		&inv.AccruedProfit,
		&inv.MaturityDate,
		&inv.LastAccrualAt,
		&inv.Status,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create inserts a new investment. The rate, principal and term are frozen at
// this point; accrual starts from created_at.
func (r *InvestmentRepository) Create(ctx context.Context, inv *models.Investment) error {
	query := `
		INSERT INTO investments (owner_id, principal_amount, daily_profit_rate, term_days,
			accrued_profit, maturity_date, last_accrual_at, status)
		VALUES ($1, $2, $3, $4, 0, $5, $6, $7)
		RETURNING ` + investmentColumns

	created, err := scanInvestment(r.q.QueryRow(ctx, query,
		inv.OwnerID,
		inv.PrincipalAmount,
		inv.DailyProfitRate,
		inv.TermDays,
		inv.MaturityDate,
		inv.LastAccrualAt,
		models.InvestmentStatusActive,
	))
	if err != nil {
		return fmt.Errorf("failed to create investment for owner %d: %w", inv.OwnerID, err)
	}

	*inv = *created
	return nil
}

// GetByID retrieves an investment by its ID
func (r *InvestmentRepository) GetByID(ctx context.Context, id int64) (*models.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE id = $1`

	inv, err := scanInvestment(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get investment %d: %w", id, err)
	}

	return inv, nil
}

// ListActiveUnmatured returns active investments whose maturity date is still
// in the future, oldest accrual first so starved rows catch up first.
func (r *InvestmentRepository) ListActiveUnmatured(ctx context.Context, now time.Time, limit int) ([]*models.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE status = $1 AND maturity_date > $2
		ORDER BY last_accrual_at ASC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, models.InvestmentStatusActive, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list active investments: %w", err)
	}
	defer rows.Close()

	var investments []*models.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate investments: %w", err)
	}

	return investments, nil
}

// ListMaturedActiveIDs returns IDs of active investments at or past maturity
func (r *InvestmentRepository) ListMaturedActiveIDs(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	query := `
		SELECT id
		FROM investments
		WHERE status = $1 AND maturity_date <= $2
		ORDER BY maturity_date ASC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, models.InvestmentStatusActive, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list matured investments: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan investment id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate investment ids: %w", err)
	}

	return ids, nil
}

// ApplyAccrual advances accrued profit and the accrual watermark in one
// conditional update. The update only lands if last_accrual_at still matches
// the value observed when the delta was computed, so concurrent accrual runs
// cannot double-credit the same elapsed days. Returns false when the row
// changed underneath us or is no longer active.
func (r *InvestmentRepository) ApplyAccrual(ctx context.Context, id int64, delta decimal.Decimal, observedLastAccrualAt, newLastAccrualAt time.Time) (bool, error) {
	query := `
		UPDATE investments
		SET accrued_profit = accrued_profit + $1, last_accrual_at = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4 AND last_accrual_at = $5
	`

	result, err := r.q.Exec(ctx, query, delta, newLastAccrualAt, id, models.InvestmentStatusActive, observedLastAccrualAt)
	if err != nil {
		return false, fmt.Errorf("failed to apply accrual to investment %d: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

// SetAccruedProfit overwrites the accrued profit of an investment. Used when
// settlement recomputes the authoritative total from frozen terms.
func (r *InvestmentRepository) SetAccruedProfit(ctx context.Context, id int64, amount decimal.Decimal) error {
	query := `
		UPDATE investments
		SET accrued_profit = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to set accrued profit for investment %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("investment %d not found", id)
	}

	return nil
}

// Claim atomically flips a matured active investment to completed and returns
// the claimed row. Only one caller can win the claim for a given investment;
// everyone else gets nil, which makes settlement idempotent under concurrent
// or repeated runs.
func (r *InvestmentRepository) Claim(ctx context.Context, id int64, now time.Time) (*models.Investment, error) {
	query := `
		UPDATE investments
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3 AND maturity_date <= $4
		RETURNING ` + investmentColumns

	inv, err := scanInvestment(r.q.QueryRow(ctx, query, models.InvestmentStatusCompleted, id, models.InvestmentStatusActive, now))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim investment %d: %w", id, err)
	}

	return inv, nil
}

// ListCompletedFutureIDs returns IDs of completed investments whose maturity
// date is still in the future. Such rows cannot arise through the claim path
// and indicate manual or buggy writes.
func (r *InvestmentRepository) ListCompletedFutureIDs(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	query := `
		SELECT id
		FROM investments
		WHERE status = $1 AND maturity_date > $2
		ORDER BY id ASC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, models.InvestmentStatusCompleted, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed future investments: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan investment id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate investment ids: %w", err)
	}

	return ids, nil
}

// ReopenCompleted flips a completed investment back to active, guarded so it
// only applies while the maturity date is still in the future. Returns false
// if the row was not in that state.
func (r *InvestmentRepository) ReopenCompleted(ctx context.Context, id int64, now time.Time) (bool, error) {
	query := `
		UPDATE investments
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3 AND maturity_date > $4
	`

	result, err := r.q.Exec(ctx, query, models.InvestmentStatusActive, id, models.InvestmentStatusCompleted, now)
	if err != nil {
		return false, fmt.Errorf("failed to reopen investment %d: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}
