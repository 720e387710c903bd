// internal/graduation/submitter.go
package graduation

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/Ksavu/launched-lol-admin/internal/blockchain"
	"github.com/Ksavu/launched-lol-admin/internal/blockchain/solbc"
)

// Signer provides the platform key. The key itself never leaves the implementation.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTransaction(tx *solana.Transaction) error
}

// Metrics receives settlement telemetry.
type Metrics interface {
	RecordSettlement(state string, duration time.Duration)
	RecordSubmission(instruction string, err error)
	RecordScan(duration time.Duration, eligible, skipped int)
	RecordLockContention()
}

type noopMetrics struct{}

func (noopMetrics) RecordSettlement(string, time.Duration) {}
func (noopMetrics) RecordSubmission(string, error)         {}
func (noopMetrics) RecordScan(time.Duration, int, int)     {}
func (noopMetrics) RecordLockContention()                  {}

// Submitter signs, broadcasts and confirms single-purpose transactions.
// A failed submission is returned as is and never retried.
type Submitter struct {
	client   blockchain.Client
	signer   Signer
	analyzer *solbc.ErrorAnalyzer
	metrics  Metrics
	logger   *zap.Logger
}

// NewSubmitter creates a submitter paying and signing with signer.
func NewSubmitter(client blockchain.Client, signer Signer, metrics Metrics, logger *zap.Logger) *Submitter {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Submitter{
		client:   client,
		signer:   signer,
		analyzer: solbc.NewErrorAnalyzer(logger),
		metrics:  metrics,
		logger:   logger.Named("submitter"),
	}
}

// Submit sends instructions in one transaction and waits for confirmed commitment.
func (s *Submitter) Submit(ctx context.Context, name string, instructions ...solana.Instruction) (solana.Signature, error) {
	sig, err := s.submit(ctx, name, instructions)
	s.metrics.RecordSubmission(name, err)
	if err != nil {
		analysis := s.analyzer.Analyze(err)
		s.logger.Warn("Submission failed",
			zap.String("instruction", name),
			zap.String("error_type", analysis.Type),
			zap.String("summary", analysis.Summary()),
			zap.Error(err))
	}
	return sig, err
}

func (s *Submitter) submit(ctx context.Context, name string, instructions []solana.Instruction) (solana.Signature, error) {
	// 1) blockhash
	blockhash, err := s.client.GetRecentBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("get recent blockhash: %w", err)
	}

	// 2) transaction paid by the platform
	tx, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(s.signer.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("create transaction: %w", err)
	}

	// 3) signature
	if err := s.signer.SignTransaction(tx); err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	// 4) broadcast once
	sig, err := s.client.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}
	s.logger.Info("Transaction sent", zap.String("instruction", name), zap.String("signature", sig.String()))

	// 5) confirmation
	if err := s.client.WaitForTransactionConfirmation(ctx, sig, rpc.CommitmentConfirmed); err != nil {
		return sig, fmt.Errorf("confirmation failed: %w", err)
	}
	s.logger.Info("Transaction confirmed", zap.String("instruction", name), zap.String("signature", sig.String()))

	return sig, nil
}
