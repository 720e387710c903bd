// internal/graduation/service_test.go
package graduation

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Ksavu/launched-lol-admin/internal/blockchain"
	"github.com/Ksavu/launched-lol-admin/internal/dex/launchpad"
	"github.com/Ksavu/launched-lol-admin/internal/dex/model"
	"github.com/Ksavu/launched-lol-admin/internal/dex/raydium"
	"github.com/Ksavu/launched-lol-admin/internal/storage/memory"
	"github.com/Ksavu/launched-lol-admin/internal/utils/logger"
	"github.com/Ksavu/launched-lol-admin/internal/utils/metrics"
)

type serviceFixture struct {
	client    *MockClient
	signer    Signer
	ledger    *memory.Storage
	locker    *LocalLocker
	collector *metrics.Collector
	svc       *Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		client:    new(MockClient),
		signer:    testSigner(t),
		ledger:    memory.New(),
		locker:    NewLocalLocker(),
		collector: metrics.NewCollector(),
	}
	f.svc = NewService(Deps{
		Client:   f.client,
		Signer:   f.signer,
		Programs: launchpad.GetDefaultConfig(),
		Ledger:   f.ledger,
		Locker:   f.locker,
		Metrics:  f.collector,
		Workers:  2,
		Logger:   logger.Wrap(zaptest.NewLogger(t)),
	})
	return f
}

func TestServiceSettleRecordsLedger(t *testing.T) {
	f := newServiceFixture(t)
	curve, mint, creator := newPubkey(), newPubkey(), newPubkey()

	f.client.On("GetAccountInfo", mock.Anything, curve).Return(accountResult(launchpad.BondingCurveProgramID, curveData(t, &launchpad.BondingCurve{
		Creator: creator, TokenMint: mint, RealSolReserves: 81 * model.LamportsPerSol, Graduated: true,
	})), nil)
	ata, _, err := solana.FindAssociatedTokenAddress(f.signer.PublicKey(), mint)
	require.NoError(t, err)
	f.client.On("GetAccountInfo", mock.Anything, ata).Return(nil, blockchain.ErrAccountNotFound)
	f.client.On("GetBalance", mock.Anything, curve, rpc.CommitmentConfirmed).Return(81*model.LamportsPerSol, nil)
	f.client.On("GetRecentBlockhash", mock.Anything).Return(solana.Hash{5}, nil)
	f.client.On("SendTransaction", mock.Anything, txWith(launchpad.GraduateTokenDiscriminator)).Return(tokenSig, nil)
	f.client.On("SendTransaction", mock.Anything, txWith(launchpad.ProcessGraduationFundsDiscriminator)).Return(fundsSig, nil)
	f.client.On("WaitForTransactionConfirmation", mock.Anything, mock.Anything, rpc.CommitmentConfirmed).Return(nil)

	result, plan, err := f.svc.Settle(context.Background(), curve, mint)
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.True(t, result.Success)

	rec, err := f.ledger.LatestSettlement(context.Background(), mint.String())
	require.NoError(t, err)
	assert.Equal(t, string(StateFundsDistributed), rec.State)
	assert.True(t, rec.Success)
	assert.Equal(t, tokenSig.String(), rec.TokenSignature)
	assert.Equal(t, fundsSig.String(), rec.FundsSignature)
	assert.Equal(t, uint64(200), rec.AllocationMillions)
	assert.Equal(t, launchpad.LiquidityLamports, rec.LiquidityLamports)
	assert.False(t, rec.CompletedAt.Before(rec.StartedAt))

	series, err := testutil.GatherAndCount(f.collector.Registry(), "launched_admin_settlements_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series)

	// the lock is released afterwards
	unlock, err := f.locker.TryLock(context.Background(), mint.String())
	require.NoError(t, err)
	unlock()
}

func TestServiceSettleRejectsConcurrentMint(t *testing.T) {
	f := newServiceFixture(t)
	mint := newPubkey()

	unlock, err := f.locker.TryLock(context.Background(), mint.String())
	require.NoError(t, err)
	defer unlock()

	result, plan, err := f.svc.Settle(context.Background(), newPubkey(), mint)
	require.ErrorIs(t, err, ErrSettlementInProgress)
	require.NotNil(t, result)
	assert.Nil(t, plan)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	f.client.AssertNotCalled(t, "GetAccountInfo", mock.Anything, mock.Anything)

	all, err := f.ledger.ListSettlements(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestServiceSettleRecordsFailure(t *testing.T) {
	f := newServiceFixture(t)
	curve, mint := newPubkey(), newPubkey()
	f.client.On("GetAccountInfo", mock.Anything, curve).Return(accountResult(launchpad.BondingCurveProgramID, curveData(t, &launchpad.BondingCurve{
		TokenMint: mint, RealSolReserves: 10 * model.LamportsPerSol,
	})), nil)

	_, _, err := f.svc.Settle(context.Background(), curve, mint)
	require.ErrorIs(t, err, ErrNotEligible)

	rec, err := f.ledger.LatestSettlement(context.Background(), mint.String())
	require.NoError(t, err)
	assert.False(t, rec.Success)
	assert.Contains(t, rec.ErrorMessage, "not eligible")
}

func TestServiceRecordPool(t *testing.T) {
	f := newServiceFixture(t)
	mint, pool, market, lpMint := newPubkey(), newPubkey(), newPubkey(), newPubkey()

	cmd, err := f.svc.RecordPool(context.Background(), mint, pool, market, lpMint)
	require.NoError(t, err)
	assert.Equal(t, raydium.BurnCommand(lpMint, f.signer.PublicKey()), cmd)

	pools, err := f.ledger.PoolsByMint(context.Background(), []string{mint.String()})
	require.NoError(t, err)
	require.Contains(t, pools, mint.String())
	assert.Equal(t, market.String(), pools[mint.String()].MarketID)
}
