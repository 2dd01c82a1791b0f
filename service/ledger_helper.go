package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"yieldvault/events"
	"yieldvault/models"
)

// creditWithLedger credits a wallet and records the matching completed deposit
// entry inside the caller's unit of work. Every credit except the admin debit
// exception goes through here so balance and ledger cannot diverge.
func creditWithLedger(ctx context.Context, uow UnitOfWork, ownerID int64, amount decimal.Decimal, description string) (*models.WalletLedgerEntry, error) {
	entry := &models.WalletLedgerEntry{
		OwnerID:     ownerID,
		Kind:        models.LedgerKindDeposit,
		Amount:      amount,
		Status:      models.LedgerStatusCompleted,
		Reference:   uuid.NewString(),
		Description: description,
	}

	if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record deposit entry: %w", err)
	}

	if err := uow.UserRepository().CreditBalance(ctx, ownerID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}

	uow.EventBus().Publish(events.LedgerEntryRecordedEvent{
		EntryID:   entry.ID,
		OwnerID:   ownerID,
		Kind:      entry.Kind,
		Amount:    amount,
		Status:    entry.Status,
		Reference: entry.Reference,
	})

	return entry, nil
}

// loadRateTable reads the configured tier table inside the caller's unit of
// work, falling back to the built-in default when none is set.
func loadRateTable(ctx context.Context, uow UnitOfWork) (models.RateTable, error) {
	var table models.RateTable
	found, err := uow.SettingsRepository().Get(ctx, models.SettingRateTiers, &table)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate table: %w", err)
	}
	if !found {
		return DefaultRateTable, nil
	}
	return table, nil
}

// loadVipThresholds reads the configured thresholds inside the caller's unit
// of work, falling back to the built-in default when none is set.
func loadVipThresholds(ctx context.Context, uow UnitOfWork) (models.VipThresholds, error) {
	var thresholds models.VipThresholds
	found, err := uow.SettingsRepository().Get(ctx, models.SettingVipThresholds, &thresholds)
	if err != nil {
		return nil, fmt.Errorf("failed to load vip thresholds: %w", err)
	}
	if !found {
		return DefaultVipThresholds, nil
	}
	return thresholds, nil
}

// recomputeVipTier recalculates a user's VIP tier from their cumulative
// completed deposits and stores it when it changed. Idempotent for unchanged
// inputs. Returns the tier before and after recomputation.
func recomputeVipTier(ctx context.Context, uow UnitOfWork, thresholds models.VipThresholds, ownerID int64) (oldTier, newTier int, err error) {
	user, err := uow.UserRepository().GetByID(ctx, ownerID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return 0, 0, fmt.Errorf("user %d not found", ownerID)
	}

	total, err := uow.LedgerRepository().SumCompletedDeposits(ctx, ownerID)
	if err != nil {
		return 0, 0, err
	}

	tier := thresholds.TierFor(total)
	if tier == user.VipTier {
		return user.VipTier, tier, nil
	}

	if err := uow.UserRepository().SetVipTier(ctx, ownerID, tier); err != nil {
		return 0, 0, err
	}

	uow.EventBus().Publish(events.VipTierChangedEvent{
		UserID:  ownerID,
		OldTier: user.VipTier,
		NewTier: tier,
	})

	return user.VipTier, tier, nil
}
