// internal/graduation/service.go
package graduation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ksavu/launched-lol-admin/internal/blockchain"
	"github.com/Ksavu/launched-lol-admin/internal/dex/launchpad"
	"github.com/Ksavu/launched-lol-admin/internal/dex/model"
	"github.com/Ksavu/launched-lol-admin/internal/dex/raydium"
	"github.com/Ksavu/launched-lol-admin/internal/storage"
	"github.com/Ksavu/launched-lol-admin/internal/storage/models"
	"github.com/Ksavu/launched-lol-admin/internal/utils/logger"
)

// Deps are the collaborators of a Service.
type Deps struct {
	Client   blockchain.Client
	Signer   Signer
	Programs *launchpad.Config
	Ledger   storage.Storage
	Locker   Locker
	Metrics  Metrics
	Workers  int
	Logger   *logger.Logger
}

// Service is the entry point used by the admin API. It serializes settlements
// per mint and records every outcome in the ledger.
type Service struct {
	orchestrator *Orchestrator
	scanner      *Scanner
	verifier     *Verifier
	ledger       storage.Storage
	locker       Locker
	signer       Signer
	metrics      Metrics
	logger       *logger.Logger
}

// NewService wires the orchestrator, scanner and verifier.
func NewService(d Deps) *Service {
	if d.Metrics == nil {
		d.Metrics = noopMetrics{}
	}
	if d.Locker == nil {
		d.Locker = NewLocalLocker()
	}
	zl := d.Logger.Logger
	return &Service{
		orchestrator: NewOrchestrator(d.Client, d.Signer, d.Programs, d.Metrics, zl),
		scanner:      NewScanner(d.Client, d.Programs, d.Ledger, d.Workers, d.Metrics, zl),
		verifier:     NewVerifier(d.Client, d.Signer, d.Programs, d.Workers, d.Metrics, zl),
		ledger:       d.Ledger,
		locker:       d.Locker,
		signer:       d.Signer,
		metrics:      d.Metrics,
		logger:       d.Logger,
	}
}

// Settle graduates one curve while holding the mint's lock.
func (s *Service) Settle(
	ctx context.Context,
	bondingCurve, mint solana.PublicKey,
) (*SettlementResult, *raydium.MigrationPlan, error) {
	log := s.logger.WithSettlement(bondingCurve, mint)

	unlock, err := s.locker.TryLock(ctx, mint.String())
	if err != nil {
		if errors.Is(err, ErrSettlementInProgress) {
			s.metrics.RecordLockContention()
		}
		log.Warn("Settlement rejected", zap.Error(err))
		return &SettlementResult{State: StatePending, Error: err.Error()}, nil, err
	}
	defer unlock()

	started := time.Now().UTC()
	result, plan, err := s.orchestrator.Settle(ctx, bondingCurve, mint)
	completed := time.Now().UTC()
	s.metrics.RecordSettlement(string(result.State), completed.Sub(started))

	s.record(ctx, log, bondingCurve, mint, result, plan, started, completed)
	return result, plan, err
}

// record writes the outcome to the ledger. A ledger failure never changes the result.
func (s *Service) record(
	ctx context.Context,
	log *zap.Logger,
	bondingCurve, mint solana.PublicKey,
	result *SettlementResult,
	plan *raydium.MigrationPlan,
	started, completed time.Time,
) {
	if s.ledger == nil {
		return
	}
	rec := &models.Settlement{
		ID:             uuid.NewString(),
		BondingCurve:   bondingCurve.String(),
		TokenMint:      mint.String(),
		State:          string(result.State),
		Success:        result.Success,
		TokenSignature: result.TokenTransactionID,
		FundsSignature: result.TransactionID,
		Note:           result.Note,
		ErrorMessage:   result.Error,
		StartedAt:      started,
		CompletedAt:    completed,
	}
	if plan != nil {
		rec.AllocationMillions = plan.TokenUnits / model.TokenUnitsPerMillion
		rec.LiquidityLamports = plan.LiquidityLamports
	}
	if err := s.ledger.SaveSettlement(ctx, rec); err != nil {
		log.Error("Failed to record settlement", zap.String("settlement_id", rec.ID), zap.Error(err))
	}
}

// ListGraduated returns the eligible curves for the dashboard.
func (s *Service) ListGraduated(ctx context.Context) ([]*GraduatedToken, error) {
	defer s.logger.TrackPerformance("list_graduated")()
	return s.scanner.ListGraduated(ctx)
}

// ListVerificationRequests returns the social registry claims.
func (s *Service) ListVerificationRequests(ctx context.Context) ([]*VerificationRequest, error) {
	defer s.logger.TrackPerformance("list_verification_requests")()
	return s.verifier.ListRequests(ctx)
}

// VerifySocial marks a registry claim as verified.
func (s *Service) VerifySocial(ctx context.Context, registry, mint solana.PublicKey) (solana.Signature, error) {
	return s.verifier.Verify(ctx, registry, mint)
}

// RevokeVerification clears a registry claim's verified flag.
func (s *Service) RevokeVerification(ctx context.Context, registry, mint solana.PublicKey) (solana.Signature, error) {
	return s.verifier.Revoke(ctx, registry, mint)
}

// ListSettlements pages through the ledger, newest first.
func (s *Service) ListSettlements(ctx context.Context, limit, offset int) ([]*models.Settlement, error) {
	if s.ledger == nil {
		return []*models.Settlement{}, nil
	}
	return s.ledger.ListSettlements(ctx, limit, offset)
}

// RecordPool stores the external pool created for mint and returns the LP
// burn command for the platform wallet.
func (s *Service) RecordPool(ctx context.Context, mint, pool, market, lpMint solana.PublicKey) (string, error) {
	if s.ledger == nil {
		return "", fmt.Errorf("no ledger configured")
	}
	rec := &models.PoolRecord{
		TokenMint: mint.String(),
		PoolID:    pool.String(),
		LPMint:    lpMint.String(),
	}
	if !market.IsZero() {
		rec.MarketID = market.String()
	}
	if err := s.ledger.SavePool(ctx, rec); err != nil {
		return "", fmt.Errorf("save pool: %w", err)
	}
	return raydium.BurnCommand(lpMint, s.signer.PublicKey()), nil
}
