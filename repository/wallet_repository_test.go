package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yieldvault/models"
	"yieldvault/repository/testutil"
)

func TestUserRepository_Balances(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewUserRepository(testDB.DB)

	user, err := repo.Create(ctx)
	require.NoError(t, err)
	assert.True(t, user.Balance.IsZero())
	assert.Equal(t, 0, user.VipTier)

	require.NoError(t, repo.CreditBalance(ctx, user.ID, decimal.NewFromInt(1000)))
	require.NoError(t, repo.DebitBalance(ctx, user.ID, decimal.NewFromInt(400)))

	loaded, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Balance.Equal(decimal.NewFromInt(600)))

	t.Run("debit beyond balance fails", func(t *testing.T) {
		err := repo.DebitBalance(ctx, user.ID, decimal.NewFromInt(601))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient balance")

		loaded, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, loaded.Balance.Equal(decimal.NewFromInt(600)), "balance must be unchanged")
	})

	t.Run("credit unknown user fails", func(t *testing.T) {
		err := repo.CreditBalance(ctx, 99999, decimal.NewFromInt(10))
		assert.Error(t, err)
	})
}

func TestLedgerRepository_RecordAndSum(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	userRepo := NewUserRepository(testDB.DB)
	repo := NewLedgerRepository(testDB.DB)

	user, err := userRepo.Create(ctx)
	require.NoError(t, err)

	first := testutil.CreateTestLedgerEntry(user.ID, decimal.NewFromInt(1000))
	require.NoError(t, repo.Record(ctx, first))
	assert.NotZero(t, first.ID)

	second := testutil.CreateTestLedgerEntry(user.ID, decimal.NewFromInt(500))
	require.NoError(t, repo.Record(ctx, second))

	// Pending and withdraw entries must not count toward the deposit sum.
	pending := testutil.CreateTestLedgerEntry(user.ID, decimal.NewFromInt(9999))
	pending.Status = models.LedgerStatusPending
	require.NoError(t, repo.Record(ctx, pending))

	withdraw := testutil.CreateTestLedgerEntry(user.ID, decimal.NewFromInt(300))
	withdraw.Kind = models.LedgerKindWithdraw
	require.NoError(t, repo.Record(ctx, withdraw))

	sum, err := repo.SumCompletedDeposits(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(1500)), "expected 1500, got %s", sum)

	t.Run("duplicate reference rejected", func(t *testing.T) {
		dup := testutil.CreateTestLedgerEntry(user.ID, decimal.NewFromInt(42))
		dup.Reference = first.Reference
		err := repo.Record(ctx, dup)
		assert.Error(t, err)
	})

	t.Run("get by reference", func(t *testing.T) {
		entry, err := repo.GetByReference(ctx, first.Reference)
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, first.ID, entry.ID)

		missing, err := repo.GetByReference(ctx, "no-such-reference")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestLedgerRepository_UpdateStatus(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	userRepo := NewUserRepository(testDB.DB)
	repo := NewLedgerRepository(testDB.DB)

	user, err := userRepo.Create(ctx)
	require.NoError(t, err)

	entry := testutil.CreateTestLedgerEntry(user.ID, decimal.NewFromInt(100))
	entry.Kind = models.LedgerKindWithdraw
	entry.Status = models.LedgerStatusPending
	require.NoError(t, repo.Record(ctx, entry))

	updated, err := repo.UpdateStatus(ctx, entry.ID, models.LedgerStatusCompleted)
	require.NoError(t, err)
	assert.True(t, updated)

	t.Run("terminal entries cannot move again", func(t *testing.T) {
		updated, err := repo.UpdateStatus(ctx, entry.ID, models.LedgerStatusCancelled)
		require.NoError(t, err)
		assert.False(t, updated)
	})

	t.Run("transition back to pending rejected", func(t *testing.T) {
		_, err := repo.UpdateStatus(ctx, entry.ID, models.LedgerStatusPending)
		assert.Error(t, err)
	})
}
