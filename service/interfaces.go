package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"yieldvault/events"
	"yieldvault/models"
)

// InvestmentRepository defines storage operations for investments
type InvestmentRepository interface {
	// Create inserts a new investment with frozen principal, rate and term
	Create(ctx context.Context, inv *models.Investment) error

	// GetByID retrieves an investment by ID, nil if not found
	GetByID(ctx context.Context, id int64) (*models.Investment, error)

	// ListActiveUnmatured returns active investments not yet at maturity
	ListActiveUnmatured(ctx context.Context, now time.Time, limit int) ([]*models.Investment, error)

	// ListMaturedActiveIDs returns IDs of active investments at or past maturity
	ListMaturedActiveIDs(ctx context.Context, now time.Time, limit int) ([]int64, error)

	// ApplyAccrual adds delta to accrued profit and advances the accrual
	// watermark, but only if last_accrual_at still equals the observed value.
	// Returns false when the conditional update did not land.
	ApplyAccrual(ctx context.Context, id int64, delta decimal.Decimal, observedLastAccrualAt, newLastAccrualAt time.Time) (bool, error)

	// SetAccruedProfit overwrites the accrued profit of an investment
	SetAccruedProfit(ctx context.Context, id int64, amount decimal.Decimal) error

	// Claim atomically flips a matured active investment to completed.
	// Returns nil when someone else already claimed it.
	Claim(ctx context.Context, id int64, now time.Time) (*models.Investment, error)

	// ListCompletedFutureIDs returns IDs of completed investments whose
	// maturity date is still in the future
	ListCompletedFutureIDs(ctx context.Context, now time.Time, limit int) ([]int64, error)

	// ReopenCompleted flips a prematurely completed investment back to active
	ReopenCompleted(ctx context.Context, id int64, now time.Time) (bool, error)
}

// LedgerRepository defines storage operations for wallet ledger entries
type LedgerRepository interface {
	// Record appends a ledger entry; the reference must be unique
	Record(ctx context.Context, entry *models.WalletLedgerEntry) error

	// GetByReference retrieves a ledger entry by reference, nil if not found
	GetByReference(ctx context.Context, reference string) (*models.WalletLedgerEntry, error)

	// ListByOwner returns a user's ledger entries, newest first
	ListByOwner(ctx context.Context, ownerID int64, limit int) ([]*models.WalletLedgerEntry, error)

	// UpdateStatus transitions a pending entry to a terminal state
	UpdateStatus(ctx context.Context, id int64, status models.LedgerEntryStatus) (bool, error)

	// SumCompletedDeposits returns the cumulative completed deposit amount
	SumCompletedDeposits(ctx context.Context, ownerID int64) (decimal.Decimal, error)
}

// UserRepository defines storage operations for user wallets
type UserRepository interface {
	// GetByID retrieves a user by ID, nil if not found
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// Create creates a new user with a zero balance
	Create(ctx context.Context) (*models.User, error)

	// CreditBalance adds to a user's balance atomically
	CreditBalance(ctx context.Context, id int64, amount decimal.Decimal) error

	// DebitBalance deducts from a user's balance, failing on insufficient funds
	DebitBalance(ctx context.Context, id int64, amount decimal.Decimal) error

	// SetVipTier stores a recomputed VIP tier
	SetVipTier(ctx context.Context, id int64, tier int) error

	// ListIDs returns all user IDs
	ListIDs(ctx context.Context) ([]int64, error)
}

// ProcessorRunRepository defines storage operations for processor audit records
type ProcessorRunRepository interface {
	// Record creates a new processor run record
	Record(ctx context.Context, run *models.ProcessorRun) error

	// GetLatest returns the most recent run of a given kind, nil if none
	GetLatest(ctx context.Context, kind models.RunKind) (*models.ProcessorRun, error)
}

// SettingsRepository defines storage operations for runtime settings
type SettingsRepository interface {
	// Get unmarshals the stored value for key into dest; false if unset
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value for key, replacing any previous value
	Set(ctx context.Context, key string, value any) error
}

// EventPublisher defines the interface for publishing events within a transaction
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork provides transactional access to repositories
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// InvestmentRepository returns the investment repository for this unit of work
	InvestmentRepository() InvestmentRepository

	// LedgerRepository returns the wallet ledger repository for this unit of work
	LedgerRepository() LedgerRepository

	// UserRepository returns the user repository for this unit of work
	UserRepository() UserRepository

	// ProcessorRunRepository returns the processor run repository for this unit of work
	ProcessorRunRepository() ProcessorRunRepository

	// SettingsRepository returns the settings repository for this unit of work
	SettingsRepository() SettingsRepository

	// EventBus returns the transactional event bus for this unit of work
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates new UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// InvestmentService defines operations for creating and reading investments
type InvestmentService interface {
	// CreateInvestment opens a new investment, freezing the daily rate
	// resolved from the current tier table
	CreateInvestment(ctx context.Context, ownerID int64, principal decimal.Decimal, termDays int) (*models.Investment, error)

	// GetInvestment retrieves an investment by ID, nil if not found
	GetInvestment(ctx context.Context, id int64) (*models.Investment, error)
}

// WalletService defines wallet and ledger operations
type WalletService interface {
	// GetUser retrieves a user by ID, nil if not found
	GetUser(ctx context.Context, id int64) (*models.User, error)

	// CreateUser creates a new user with a zero balance
	CreateUser(ctx context.Context) (*models.User, error)

	// ListLedger returns a user's ledger entries, newest first
	ListLedger(ctx context.Context, ownerID int64, limit int) ([]*models.WalletLedgerEntry, error)

	// RequestWithdrawal debits the wallet and records a pending withdraw entry
	RequestWithdrawal(ctx context.Context, ownerID int64, amount decimal.Decimal, description string) (*models.WalletLedgerEntry, error)

	// ResolveWithdrawal moves a pending withdrawal to a terminal status,
	// refunding the debit when the withdrawal did not go through
	ResolveWithdrawal(ctx context.Context, reference string, status models.LedgerEntryStatus) error

	// AdminAdjustBalance applies a support-desk balance adjustment. Credits
	// write a ledger entry, debits intentionally do not.
	AdminAdjustBalance(ctx context.Context, ownerID int64, delta decimal.Decimal) error

	// RecomputeVipTier recalculates and stores a user's VIP tier
	RecomputeVipTier(ctx context.Context, ownerID int64) (int, error)
}

// SettingsService defines validated access to runtime settings
type SettingsService interface {
	// GetRateTable returns the configured tier table or the built-in default
	GetRateTable(ctx context.Context) (models.RateTable, error)

	// UpdateRateTable validates and stores a new tier table
	UpdateRateTable(ctx context.Context, table models.RateTable) error

	// GetVipThresholds returns the configured thresholds or the built-in default
	GetVipThresholds(ctx context.Context) (models.VipThresholds, error)

	// UpdateVipThresholds validates and stores new thresholds, then recomputes
	// every user's tier. Returns the number of users whose tier changed.
	UpdateVipThresholds(ctx context.Context, thresholds models.VipThresholds) (int, error)
}

// AccrualProcessor advances partial profit on active investments
type AccrualProcessor interface {
	Run(ctx context.Context) (*ProcessorSummary, error)
}

// SettlementProcessor settles matured investments
type SettlementProcessor interface {
	Run(ctx context.Context) (*ProcessorSummary, error)

	// SettleOne claims and credits a single matured investment. Returns the
	// credited total and false when the investment was already settled.
	SettleOne(ctx context.Context, id int64, now time.Time) (decimal.Decimal, bool, error)
}

// StatusReconciler detects and corrects status drift
type StatusReconciler interface {
	Run(ctx context.Context) (*ProcessorSummary, error)
}
