package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ksavu/launched-lol-admin/internal/storage"
	"github.com/Ksavu/launched-lol-admin/internal/storage/models"
)

func settlement(id, mint string, completed time.Time) *models.Settlement {
	return &models.Settlement{
		ID:                 id,
		BondingCurve:       "curve-" + mint,
		TokenMint:          mint,
		State:              "FundsDistributed",
		Success:            true,
		AllocationMillions: 200,
		LiquidityLamports:  75_000_000_000,
		StartedAt:          completed.Add(-time.Second),
		CompletedAt:        completed,
	}
}

func TestSaveAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.SaveSettlement(ctx, settlement("a", "mint1", now)))

	got, err := s.GetSettlement(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "mint1", got.TokenMint)

	err = s.SaveSettlement(ctx, settlement("a", "mint1", now))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = s.GetSettlement(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListAndLatest(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveSettlement(ctx, settlement("1", "mint1", base)))
	require.NoError(t, s.SaveSettlement(ctx, settlement("2", "mint2", base.Add(time.Minute))))
	require.NoError(t, s.SaveSettlement(ctx, settlement("3", "mint1", base.Add(2*time.Minute))))

	all, err := s.ListSettlements(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"3", "2", "1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	page, err := s.ListSettlements(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "2", page[0].ID)

	empty, err := s.ListSettlements(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)

	latest, err := s.LatestSettlement(ctx, "mint1")
	require.NoError(t, err)
	assert.Equal(t, "3", latest.ID)

	_, err = s.LatestSettlement(ctx, "mint9")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPools(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SavePool(ctx, &models.PoolRecord{TokenMint: "mint1", PoolID: "pool1", LPMint: "lp1"}))
	require.NoError(t, s.SavePool(ctx, &models.PoolRecord{TokenMint: "mint1", PoolID: "pool2", LPMint: "lp2"}))

	pools, err := s.PoolsByMint(ctx, []string{"mint1", "mint2"})
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, "pool2", pools["mint1"].PoolID)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.SaveSettlement(ctx, settlement("a", "mint1", time.Now())))

	got, err := s.GetSettlement(ctx, "a")
	require.NoError(t, err)
	got.State = "Failed"

	again, err := s.GetSettlement(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "FundsDistributed", again.State)
}
