package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"yieldvault/database"
	"yieldvault/models"
)

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByID retrieves a user by their ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, balance, vip_tier, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Balance,
		&user.VipTier,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	return &user, nil
}

// Create creates a new user with a zero balance
func (r *UserRepository) Create(ctx context.Context) (*models.User, error) {
	query := `
		INSERT INTO users (balance, vip_tier)
		VALUES (0, 0)
		RETURNING id, balance, vip_tier, created_at, updated_at
	`

	var user models.User
	err := r.q.QueryRow(ctx, query).Scan(
		&user.ID,
		&user.Balance,
		&user.VipTier,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// CreditBalance adds to a user's balance atomically
func (r *UserRepository) CreditBalance(ctx context.Context, id int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to credit balance for user %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", id)
	}

	return nil
}

// DebitBalance deducts from a user's balance atomically, failing if the
// balance would go negative
func (r *UserRepository) DebitBalance(ctx context.Context, id int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to debit balance for user %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		user, err := r.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("user %d not found", id)
		}
		return fmt.Errorf("insufficient balance: have %s, need %s", user.Balance, amount)
	}

	return nil
}

// SetVipTier stores a recomputed VIP tier
func (r *UserRepository) SetVipTier(ctx context.Context, id int64, tier int) error {
	query := `
		UPDATE users
		SET vip_tier = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, tier, id)
	if err != nil {
		return fmt.Errorf("failed to set vip tier for user %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", id)
	}

	return nil
}

// ListIDs returns all user IDs. Used by the full VIP recomputation that runs
// after threshold changes.
func (r *UserRepository) ListIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT id FROM users ORDER BY id ASC`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user ids: %w", err)
	}

	return ids, nil
}
