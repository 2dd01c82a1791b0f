package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"yieldvault/models"
)

// settingsService implements the SettingsService interface
type settingsService struct {
	uowFactory UnitOfWorkFactory
}

// NewSettingsService creates a new settings service
func NewSettingsService(uowFactory UnitOfWorkFactory) SettingsService {
	return &settingsService{
		uowFactory: uowFactory,
	}
}

// GetRateTable returns the configured tier table or the built-in default
func (s *settingsService) GetRateTable(ctx context.Context) (models.RateTable, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	table, err := loadRateTable(ctx, uow)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return table, nil
}

// UpdateRateTable validates and stores a new tier table. Invalid tables are
// rejected outright, never coerced.
func (s *settingsService) UpdateRateTable(ctx context.Context, table models.RateTable) error {
	if err := table.Validate(); err != nil {
		return fmt.Errorf("invalid rate table: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.SettingsRepository().Set(ctx, models.SettingRateTiers, table.Sorted()); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("tiers", len(table)).Info("Rate table updated")
	return nil
}

// GetVipThresholds returns the configured thresholds or the built-in default
func (s *settingsService) GetVipThresholds(ctx context.Context) (models.VipThresholds, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	thresholds, err := loadVipThresholds(ctx, uow)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return thresholds, nil
}

// UpdateVipThresholds validates and stores new thresholds, then recomputes
// every user's tier against them in the same transaction so no user is left
// on a tier derived from the old table.
func (s *settingsService) UpdateVipThresholds(ctx context.Context, thresholds models.VipThresholds) (int, error) {
	if err := thresholds.Validate(); err != nil {
		return 0, fmt.Errorf("invalid vip thresholds: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.SettingsRepository().Set(ctx, models.SettingVipThresholds, thresholds); err != nil {
		return 0, err
	}

	userIDs, err := uow.UserRepository().ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, userID := range userIDs {
		oldTier, newTier, err := recomputeVipTier(ctx, uow, thresholds, userID)
		if err != nil {
			return 0, fmt.Errorf("failed to recompute tier for user %d: %w", userID, err)
		}
		if newTier != oldTier {
			changed++
		}
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"thresholds":   len(thresholds),
		"usersChanged": changed,
	}).Info("VIP thresholds updated")

	return changed, nil
}
