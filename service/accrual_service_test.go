package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"yieldvault/models"
)

func activeInvestment(id int64, lastAccrualAgo time.Duration) *models.Investment {
	now := time.Now().UTC()
	return &models.Investment{
		ID:              id,
		OwnerID:         1,
		PrincipalAmount: decimal.NewFromInt(1_000_000),
		DailyProfitRate: decimal.RequireFromString("2.00"),
		TermDays:        7,
		AccruedProfit:   decimal.Zero,
		MaturityDate:    now.Add(5 * 24 * time.Hour),
		LastAccrualAt:   now.Add(-lastAccrualAgo),
		Status:          models.InvestmentStatusActive,
	}
}

func TestAccrualProcessor_Run_CreditsWholeElapsedDays(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockInvestmentRepo, _, _, mockRunRepo, _, _ := setupProcessorMocks()

	// 2.5 days elapsed: two whole days accrue, the half day stays pending.
	inv := activeInvestment(1, 60*time.Hour)
	expectedDelta := decimal.NewFromInt(40_000)
	expectedWatermark := inv.LastAccrualAt.Add(48 * time.Hour)

	mockInvestmentRepo.On("ListActiveUnmatured", ctx, mock.AnythingOfType("time.Time"), 500).
		Return([]*models.Investment{inv}, nil)
	mockInvestmentRepo.On("ApplyAccrual", ctx, int64(1), decimalEq(expectedDelta), inv.LastAccrualAt, expectedWatermark).
		Return(true, nil)
	mockRunRepo.On("Record", ctx, mock.MatchedBy(func(r *models.ProcessorRun) bool {
		return r.Kind == models.RunKindAccrual && r.Processed == 1 && r.TotalAmount.Equal(expectedDelta)
	})).Return(nil)

	processor := NewAccrualProcessor(mockFactory)
	summary, err := processor.Run(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.True(t, summary.TotalAmount.Equal(expectedDelta))
	mockInvestmentRepo.AssertExpectations(t)
}

func TestAccrualProcessor_Run_SkipsUnderOneDay(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockInvestmentRepo, _, _, mockRunRepo, _, _ := setupProcessorMocks()

	inv := activeInvestment(1, 6*time.Hour)

	mockInvestmentRepo.On("ListActiveUnmatured", ctx, mock.AnythingOfType("time.Time"), 500).
		Return([]*models.Investment{inv}, nil)
	mockRunRepo.On("Record", ctx, mock.Anything).Return(nil)

	processor := NewAccrualProcessor(mockFactory)
	summary, err := processor.Run(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	mockInvestmentRepo.AssertNotCalled(t, "ApplyAccrual", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAccrualProcessor_Run_ClampsAtFullTermProfit(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockInvestmentRepo, _, _, mockRunRepo, _, _ := setupProcessorMocks()

	// Three days elapsed would credit 60,000 but only 10,000 headroom remains
	// before the 140,000 full-term total.
	inv := activeInvestment(1, 72*time.Hour)
	inv.AccruedProfit = decimal.NewFromInt(130_000)
	expectedDelta := decimal.NewFromInt(10_000)

	mockInvestmentRepo.On("ListActiveUnmatured", ctx, mock.AnythingOfType("time.Time"), 500).
		Return([]*models.Investment{inv}, nil)
	mockInvestmentRepo.On("ApplyAccrual", ctx, int64(1), decimalEq(expectedDelta), inv.LastAccrualAt, mock.AnythingOfType("time.Time")).
		Return(true, nil)
	mockRunRepo.On("Record", ctx, mock.Anything).Return(nil)

	processor := NewAccrualProcessor(mockFactory)
	summary, err := processor.Run(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.True(t, summary.TotalAmount.Equal(expectedDelta))
}

func TestAccrualProcessor_Run_FullyAccruedIsSkipped(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockInvestmentRepo, _, _, mockRunRepo, _, _ := setupProcessorMocks()

	inv := activeInvestment(1, 48*time.Hour)
	inv.AccruedProfit = inv.TotalProfit()

	mockInvestmentRepo.On("ListActiveUnmatured", ctx, mock.AnythingOfType("time.Time"), 500).
		Return([]*models.Investment{inv}, nil)
	mockRunRepo.On("Record", ctx, mock.Anything).Return(nil)

	processor := NewAccrualProcessor(mockFactory)
	summary, err := processor.Run(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	mockInvestmentRepo.AssertNotCalled(t, "ApplyAccrual", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAccrualProcessor_Run_LostConditionalUpdateIsSkipped(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockInvestmentRepo, _, _, mockRunRepo, _, _ := setupProcessorMocks()

	inv := activeInvestment(1, 26*time.Hour)

	mockInvestmentRepo.On("ListActiveUnmatured", ctx, mock.AnythingOfType("time.Time"), 500).
		Return([]*models.Investment{inv}, nil)
	// Another invocation advanced the watermark first.
	mockInvestmentRepo.On("ApplyAccrual", ctx, int64(1), mock.Anything, inv.LastAccrualAt, mock.AnythingOfType("time.Time")).
		Return(false, nil)
	mockRunRepo.On("Record", ctx, mock.Anything).Return(nil)

	processor := NewAccrualProcessor(mockFactory)
	summary, err := processor.Run(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
}
