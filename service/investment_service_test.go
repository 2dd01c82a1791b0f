package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"yieldvault/models"
)

func TestInvestmentService_CreateInvestment_FreezesResolvedRate(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockInvestmentRepo, _, mockUserRepo, _, mockSettingsRepo, _ := setupProcessorMocks()

	mockUserRepo.On("GetByID", ctx, int64(5)).Return(&models.User{ID: 5}, nil)
	mockSettingsRepo.On("Get", ctx, models.SettingRateTiers, mock.Anything).Return(false, nil)

	mockInvestmentRepo.On("Create", ctx, mock.MatchedBy(func(inv *models.Investment) bool {
		return inv.OwnerID == 5 &&
			inv.TermDays == 10 &&
			inv.PrincipalAmount.Equal(decimal.NewFromInt(1_000_000)) &&
			inv.DailyProfitRate.Equal(decimal.RequireFromString("2.00")) &&
			inv.MaturityDate.Sub(inv.LastAccrualAt).Hours() == 240
	})).Return(nil)

	svc := NewInvestmentService(mockFactory)
	inv, err := svc.CreateInvestment(ctx, 5, decimal.NewFromInt(1_000_000), 10)

	assert.NoError(t, err)
	assert.NotNil(t, inv)
	mockInvestmentRepo.AssertExpectations(t)
}

func TestInvestmentService_CreateInvestment_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockInvestmentRepo, _, _, _, _, _ := setupProcessorMocks()

	svc := NewInvestmentService(mockFactory)

	_, err := svc.CreateInvestment(ctx, 5, decimal.Zero, 10)
	assert.Error(t, err)

	_, err = svc.CreateInvestment(ctx, 5, decimal.NewFromInt(100), 0)
	assert.Error(t, err)

	mockInvestmentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvestmentService_CreateInvestment_UnknownOwner(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockInvestmentRepo, _, mockUserRepo, _, _, _ := setupProcessorMocks()

	mockUserRepo.On("GetByID", ctx, int64(99)).Return(nil, nil)

	svc := NewInvestmentService(mockFactory)
	_, err := svc.CreateInvestment(ctx, 99, decimal.NewFromInt(100), 7)

	assert.Error(t, err)
	mockInvestmentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
