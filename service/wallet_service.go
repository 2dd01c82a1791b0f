package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"yieldvault/events"
	"yieldvault/models"
)

// walletService implements the WalletService interface
type walletService struct {
	uowFactory UnitOfWorkFactory
}

// NewWalletService creates a new wallet service
func NewWalletService(uowFactory UnitOfWorkFactory) WalletService {
	return &walletService{
		uowFactory: uowFactory,
	}
}

// GetUser retrieves a user by ID
func (s *walletService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// CreateUser creates a new user with a zero balance
func (s *walletService) CreateUser(ctx context.Context) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().Create(ctx)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// ListLedger returns a user's ledger entries, newest first
func (s *walletService) ListLedger(ctx context.Context, ownerID int64, limit int) ([]*models.WalletLedgerEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.LedgerRepository().ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entries, nil
}

// RequestWithdrawal debits the wallet and records a pending withdraw entry in
// one transaction. The debit fails on insufficient funds, in which case no
// entry is written.
func (s *walletService) RequestWithdrawal(ctx context.Context, ownerID int64, amount decimal.Decimal, description string) (*models.WalletLedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("withdrawal amount must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.UserRepository().DebitBalance(ctx, ownerID, amount); err != nil {
		return nil, err
	}

	entry := &models.WalletLedgerEntry{
		OwnerID:     ownerID,
		Kind:        models.LedgerKindWithdraw,
		Amount:      amount,
		Status:      models.LedgerStatusPending,
		Reference:   uuid.NewString(),
		Description: description,
	}

	if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.LedgerEntryRecordedEvent{
		EntryID:   entry.ID,
		OwnerID:   ownerID,
		Kind:      entry.Kind,
		Amount:    amount,
		Status:    entry.Status,
		Reference: entry.Reference,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entry, nil
}

// ResolveWithdrawal transitions a pending withdrawal to a terminal status.
// Failed and cancelled withdrawals refund the earlier debit in the same
// transaction.
func (s *walletService) ResolveWithdrawal(ctx context.Context, reference string, status models.LedgerEntryStatus) error {
	if status != models.LedgerStatusCompleted && status != models.LedgerStatusFailed && status != models.LedgerStatusCancelled {
		return fmt.Errorf("invalid withdrawal resolution status %q", status)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entry, err := uow.LedgerRepository().GetByReference(ctx, reference)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("withdrawal %s not found", reference)
	}
	if entry.Kind != models.LedgerKindWithdraw {
		return fmt.Errorf("ledger entry %s is not a withdrawal", reference)
	}

	updated, err := uow.LedgerRepository().UpdateStatus(ctx, entry.ID, status)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("withdrawal %s is not pending", reference)
	}

	if status != models.LedgerStatusCompleted {
		if err := uow.UserRepository().CreditBalance(ctx, entry.OwnerID, entry.Amount); err != nil {
			return fmt.Errorf("failed to refund withdrawal: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// AdminAdjustBalance applies a support-desk adjustment. Positive deltas are
// credited through the ledger and feed VIP recomputation; negative deltas
// debit the balance directly without a ledger entry.
func (s *walletService) AdminAdjustBalance(ctx context.Context, ownerID int64, delta decimal.Decimal) error {
	if delta.IsZero() {
		return fmt.Errorf("adjustment must be non-zero")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if delta.IsPositive() {
		if _, err := creditWithLedger(ctx, uow, ownerID, delta, "Administrative balance credit"); err != nil {
			return err
		}

		thresholds, err := loadVipThresholds(ctx, uow)
		if err != nil {
			return err
		}
		if _, _, err := recomputeVipTier(ctx, uow, thresholds, ownerID); err != nil {
			return err
		}
	} else {
		if err := uow.UserRepository().DebitBalance(ctx, ownerID, delta.Neg()); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// RecomputeVipTier recalculates and stores a user's VIP tier
func (s *walletService) RecomputeVipTier(ctx context.Context, ownerID int64) (int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	thresholds, err := loadVipThresholds(ctx, uow)
	if err != nil {
		return 0, err
	}

	_, tier, err := recomputeVipTier(ctx, uow, thresholds, ownerID)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return tier, nil
}
