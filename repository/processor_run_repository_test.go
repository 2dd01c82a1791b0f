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

func TestProcessorRunRepository_RecordAndGetLatest(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewProcessorRunRepository(testDB.DB)

	t.Run("no runs exist", func(t *testing.T) {
		run, err := repo.GetLatest(ctx, models.RunKindAccrual)
		require.NoError(t, err)
		assert.Nil(t, run)
	})

	t.Run("record and retrieve", func(t *testing.T) {
		run := testutil.CreateTestProcessorRun(models.RunKindSettlement)
		run.ErrorList = []string{"investment 7: boom"}
		run.TotalAmount = decimal.NewFromInt(1_140_000)

		err := repo.Record(ctx, run)
		require.NoError(t, err)
		assert.NotZero(t, run.ID)
		assert.False(t, run.CreatedAt.IsZero())

		latest, err := repo.GetLatest(ctx, models.RunKindSettlement)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, run.ID, latest.ID)
		assert.Equal(t, []string{"investment 7: boom"}, latest.ErrorList)
		assert.True(t, latest.TotalAmount.Equal(decimal.NewFromInt(1_140_000)))
	})

	t.Run("latest is per kind", func(t *testing.T) {
		accrual := testutil.CreateTestProcessorRun(models.RunKindAccrual)
		require.NoError(t, repo.Record(ctx, accrual))

		latest, err := repo.GetLatest(ctx, models.RunKindAccrual)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, models.RunKindAccrual, latest.Kind)

		reconcile, err := repo.GetLatest(ctx, models.RunKindReconcile)
		require.NoError(t, err)
		assert.Nil(t, reconcile)
	})

	t.Run("newest run wins", func(t *testing.T) {
		older := testutil.CreateTestProcessorRun(models.RunKindAccrual)
		require.NoError(t, repo.Record(ctx, older))
		newer := testutil.CreateTestProcessorRun(models.RunKindAccrual)
		newer.Processed = 99
		require.NoError(t, repo.Record(ctx, newer))

		latest, err := repo.GetLatest(ctx, models.RunKindAccrual)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, newer.ID, latest.ID)
	})
}

func TestSettingsRepository_GetSet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewSettingsRepository(testDB.DB)

	t.Run("unset key returns false", func(t *testing.T) {
		var thresholds models.VipThresholds
		found, err := repo.Get(ctx, models.SettingVipThresholds, &thresholds)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, thresholds)
	})

	t.Run("set then get round trips", func(t *testing.T) {
		stored := models.VipThresholds{
			decimal.NewFromInt(50_000_000),
			decimal.NewFromInt(150_000_000),
		}
		require.NoError(t, repo.Set(ctx, models.SettingVipThresholds, stored))

		var loaded models.VipThresholds
		found, err := repo.Get(ctx, models.SettingVipThresholds, &loaded)
		require.NoError(t, err)
		assert.True(t, found)
		require.Len(t, loaded, 2)
		assert.True(t, loaded[0].Equal(stored[0]))
		assert.True(t, loaded[1].Equal(stored[1]))
	})

	t.Run("set replaces previous value", func(t *testing.T) {
		replacement := models.VipThresholds{decimal.NewFromInt(1000)}
		require.NoError(t, repo.Set(ctx, models.SettingVipThresholds, replacement))

		var loaded models.VipThresholds
		found, err := repo.Get(ctx, models.SettingVipThresholds, &loaded)
		require.NoError(t, err)
		assert.True(t, found)
		require.Len(t, loaded, 1)
	})
}
