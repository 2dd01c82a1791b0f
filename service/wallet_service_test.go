package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"yieldvault/models"
)

func TestWalletService_RecomputeVipTier(t *testing.T) {
	tests := []struct {
		name         string
		deposits     int64
		startingTier int
		expectedTier int
		tierStored   bool
	}{
		{"below first threshold", 40_000_000, 0, 0, false},
		{"past first threshold", 60_000_000, 0, 1, true},
		{"past both thresholds", 200_000_000, 0, 2, true},
		{"demotion after threshold raise", 40_000_000, 2, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			_, mockFactory, _, mockLedgerRepo, mockUserRepo, _, mockSettingsRepo, mockPublisher := setupProcessorMocks()

			mockSettingsRepo.On("Get", ctx, models.SettingVipThresholds, mock.Anything).Return(false, nil)
			mockUserRepo.On("GetByID", ctx, int64(5)).Return(&models.User{ID: 5, VipTier: tt.startingTier}, nil)
			mockLedgerRepo.On("SumCompletedDeposits", ctx, int64(5)).Return(decimal.NewFromInt(tt.deposits), nil)

			if tt.tierStored {
				mockUserRepo.On("SetVipTier", ctx, int64(5), tt.expectedTier).Return(nil)
				mockPublisher.On("Publish", mock.Anything).Return()
			}

			svc := NewWalletService(mockFactory)
			tier, err := svc.RecomputeVipTier(ctx, 5)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedTier, tier)
			if !tt.tierStored {
				mockUserRepo.AssertNotCalled(t, "SetVipTier", mock.Anything, mock.Anything, mock.Anything)
			}
			mockUserRepo.AssertExpectations(t)
		})
	}
}

func TestWalletService_AdminAdjustBalance_DebitWritesNoLedgerEntry(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _, mockLedgerRepo, mockUserRepo, _, _, _ := setupProcessorMocks()

	mockUserRepo.On("DebitBalance", ctx, int64(5), decimalEq(decimal.NewFromInt(1000))).Return(nil)

	svc := NewWalletService(mockFactory)
	err := svc.AdminAdjustBalance(ctx, 5, decimal.NewFromInt(-1000))

	assert.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
	mockLedgerRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestWalletService_AdminAdjustBalance_CreditGoesThroughLedger(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _, mockLedgerRepo, mockUserRepo, _, mockSettingsRepo, mockPublisher := setupProcessorMocks()

	amount := decimal.NewFromInt(60_000_000)

	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.WalletLedgerEntry) bool {
		return e.OwnerID == 5 &&
			e.Kind == models.LedgerKindDeposit &&
			e.Status == models.LedgerStatusCompleted &&
			e.Amount.Equal(amount)
	})).Return(nil)
	mockUserRepo.On("CreditBalance", ctx, int64(5), decimalEq(amount)).Return(nil)

	// The credit counts toward VIP and pushes the user past the first threshold.
	mockSettingsRepo.On("Get", ctx, models.SettingVipThresholds, mock.Anything).Return(false, nil)
	mockUserRepo.On("GetByID", ctx, int64(5)).Return(&models.User{ID: 5, VipTier: 0}, nil)
	mockLedgerRepo.On("SumCompletedDeposits", ctx, int64(5)).Return(amount, nil)
	mockUserRepo.On("SetVipTier", ctx, int64(5), 1).Return(nil)
	mockPublisher.On("Publish", mock.Anything).Return()

	svc := NewWalletService(mockFactory)
	err := svc.AdminAdjustBalance(ctx, 5, amount)

	assert.NoError(t, err)
	mockLedgerRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestWalletService_RequestWithdrawal_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _, mockLedgerRepo, mockUserRepo, _, _, _ := setupProcessorMocks()

	mockUserRepo.On("DebitBalance", ctx, int64(5), mock.Anything).Return(assert.AnError)

	svc := NewWalletService(mockFactory)
	entry, err := svc.RequestWithdrawal(ctx, 5, decimal.NewFromInt(500), "payout")

	assert.Error(t, err)
	assert.Nil(t, entry)
	mockLedgerRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestWalletService_RequestWithdrawal_RecordsPendingEntry(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _, mockLedgerRepo, mockUserRepo, _, _, mockPublisher := setupProcessorMocks()

	amount := decimal.NewFromInt(500)
	mockUserRepo.On("DebitBalance", ctx, int64(5), decimalEq(amount)).Return(nil)
	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.WalletLedgerEntry) bool {
		return e.OwnerID == 5 &&
			e.Kind == models.LedgerKindWithdraw &&
			e.Status == models.LedgerStatusPending &&
			e.Amount.Equal(amount) &&
			e.Reference != ""
	})).Return(nil)
	mockPublisher.On("Publish", mock.Anything).Return()

	svc := NewWalletService(mockFactory)
	entry, err := svc.RequestWithdrawal(ctx, 5, amount, "payout")

	assert.NoError(t, err)
	assert.NotNil(t, entry)
	assert.Equal(t, models.LedgerStatusPending, entry.Status)
	mockLedgerRepo.AssertExpectations(t)
}

func TestWalletService_ResolveWithdrawal_CancelledRefundsDebit(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _, mockLedgerRepo, mockUserRepo, _, _, _ := setupProcessorMocks()

	entry := &models.WalletLedgerEntry{
		ID:        11,
		OwnerID:   5,
		Kind:      models.LedgerKindWithdraw,
		Amount:    decimal.NewFromInt(500),
		Status:    models.LedgerStatusPending,
		Reference: "ref-1",
	}

	mockLedgerRepo.On("GetByReference", ctx, "ref-1").Return(entry, nil)
	mockLedgerRepo.On("UpdateStatus", ctx, int64(11), models.LedgerStatusCancelled).Return(true, nil)
	mockUserRepo.On("CreditBalance", ctx, int64(5), decimalEq(entry.Amount)).Return(nil)

	svc := NewWalletService(mockFactory)
	err := svc.ResolveWithdrawal(ctx, "ref-1", models.LedgerStatusCancelled)

	assert.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
}

func TestWalletService_ResolveWithdrawal_CompletedDoesNotRefund(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _, mockLedgerRepo, mockUserRepo, _, _, _ := setupProcessorMocks()

	entry := &models.WalletLedgerEntry{
		ID:        11,
		OwnerID:   5,
		Kind:      models.LedgerKindWithdraw,
		Amount:    decimal.NewFromInt(500),
		Status:    models.LedgerStatusPending,
		Reference: "ref-1",
	}

	mockLedgerRepo.On("GetByReference", ctx, "ref-1").Return(entry, nil)
	mockLedgerRepo.On("UpdateStatus", ctx, int64(11), models.LedgerStatusCompleted).Return(true, nil)

	svc := NewWalletService(mockFactory)
	err := svc.ResolveWithdrawal(ctx, "ref-1", models.LedgerStatusCompleted)

	assert.NoError(t, err)
	mockUserRepo.AssertNotCalled(t, "CreditBalance", mock.Anything, mock.Anything, mock.Anything)
}
