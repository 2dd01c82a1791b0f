package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"yieldvault/models"
)

// CreateTestInvestment creates an active investment with default values.
// Maturity and accrual timestamps are derived from now.
func CreateTestInvestment(ownerID int64, principal decimal.Decimal, termDays int, rate decimal.Decimal) *models.Investment {
	now := time.Now().UTC()
	return &models.Investment{
		OwnerID:         ownerID,
		PrincipalAmount: principal,
		DailyProfitRate: rate,
		TermDays:        termDays,
		AccruedProfit:   decimal.Zero,
		MaturityDate:    now.Add(time.Duration(termDays) * 24 * time.Hour),
		LastAccrualAt:   now,
		Status:          models.InvestmentStatusActive,
	}
}

// CreateMaturedInvestment creates an active investment whose maturity date is
// already in the past, with its accrual watermark backdated accordingly.
func CreateMaturedInvestment(ownerID int64, principal decimal.Decimal, termDays int, rate decimal.Decimal) *models.Investment {
	inv := CreateTestInvestment(ownerID, principal, termDays, rate)
	start := time.Now().UTC().Add(-time.Duration(termDays+1) * 24 * time.Hour)
	inv.MaturityDate = start.Add(time.Duration(termDays) * 24 * time.Hour)
	inv.LastAccrualAt = start
	return inv
}

// CreateTestLedgerEntry creates a completed deposit ledger entry
func CreateTestLedgerEntry(ownerID int64, amount decimal.Decimal) *models.WalletLedgerEntry {
	return &models.WalletLedgerEntry{
		OwnerID:     ownerID,
		Kind:        models.LedgerKindDeposit,
		Amount:      amount,
		Status:      models.LedgerStatusCompleted,
		Reference:   uuid.NewString(),
		Description: "test deposit",
	}
}

// CreateTestProcessorRun creates a processor run record with default values
func CreateTestProcessorRun(kind models.RunKind) *models.ProcessorRun {
	return &models.ProcessorRun{
		Kind:            kind,
		Processed:       3,
		Failed:          0,
		TotalAmount:     decimal.NewFromInt(1500),
		ErrorList:       []string{},
		ExecutionTimeMS: 42,
	}
}
