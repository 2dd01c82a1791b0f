package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"yieldvault/models"
)

// investmentService implements the InvestmentService interface
type investmentService struct {
	uowFactory UnitOfWorkFactory
}

// NewInvestmentService creates a new investment service
func NewInvestmentService(uowFactory UnitOfWorkFactory) InvestmentService {
	return &investmentService{
		uowFactory: uowFactory,
	}
}

// CreateInvestment opens a new investment. The daily rate is resolved from
// the tier table in force right now and frozen on the row; later table
// changes never touch existing investments.
func (s *investmentService) CreateInvestment(ctx context.Context, ownerID int64, principal decimal.Decimal, termDays int) (*models.Investment, error) {
	if !principal.IsPositive() {
		return nil, fmt.Errorf("principal must be positive")
	}
	if termDays < 1 {
		return nil, fmt.Errorf("term must be at least one day")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	owner, err := uow.UserRepository().GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fmt.Errorf("user %d not found", ownerID)
	}

	table, err := loadRateTable(ctx, uow)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	inv := &models.Investment{
		OwnerID:         ownerID,
		PrincipalAmount: principal,
		DailyProfitRate: ResolveDailyRate(termDays, table),
		TermDays:        termDays,
		MaturityDate:    now.Add(time.Duration(termDays) * 24 * time.Hour),
		LastAccrualAt:   now,
	}

	if err := uow.InvestmentRepository().Create(ctx, inv); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"investmentId": inv.ID,
		"ownerId":      ownerID,
		"principal":    principal,
		"termDays":     termDays,
		"dailyRate":    inv.DailyProfitRate,
	}).Info("Investment created")

	return inv, nil
}

// GetInvestment retrieves an investment by ID
func (s *investmentService) GetInvestment(ctx context.Context, id int64) (*models.Investment, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	inv, err := uow.InvestmentRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inv, nil
}
