// internal/graduation/orchestrator.go
package graduation

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/Ksavu/launched-lol-admin/internal/blockchain"
	"github.com/Ksavu/launched-lol-admin/internal/dex/launchpad"
	"github.com/Ksavu/launched-lol-admin/internal/dex/model"
	"github.com/Ksavu/launched-lol-admin/internal/dex/raydium"
)

// Orchestrator runs the two-step settlement of one bonding curve:
// graduate_token, then process_graduation_funds. Calls for the same mint
// must be serialized by the caller (see Service).
type Orchestrator struct {
	client    blockchain.Client
	signer    Signer
	programs  *launchpad.Config
	submitter *Submitter
	logger    *zap.Logger
}

// NewOrchestrator creates an orchestrator for the given programs.
func NewOrchestrator(
	client blockchain.Client,
	signer Signer,
	programs *launchpad.Config,
	metrics Metrics,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		client:    client,
		signer:    signer,
		programs:  programs,
		submitter: NewSubmitter(client, signer, metrics, logger),
		logger:    logger.Named("orchestrator"),
	}
}

// Settle graduates the curve at bondingCurve. The returned result is never nil;
// the plan is nil unless funds were distributed.
func (o *Orchestrator) Settle(
	ctx context.Context,
	bondingCurve, mint solana.PublicKey,
) (*SettlementResult, *raydium.MigrationPlan, error) {
	result := &SettlementResult{State: StatePending}
	logger := o.logger.With(
		zap.String("bonding_curve", bondingCurve.String()),
		zap.String("mint", mint.String()))

	bc, eval, err := o.load(ctx, bondingCurve, mint)
	if err != nil {
		return o.fail(result, &StepError{Step: StepLoad, Err: err})
	}
	if !eval.Eligible {
		err := fmt.Errorf("%w: %s in curve, %s required", ErrNotEligible,
			model.FormatSol(bc.RealSolReserves), model.FormatSol(launchpad.GraduationThresholdLamports))
		result.Error = err.Error()
		logger.Info("Curve not eligible", zap.Uint64("real_sol_reserves", bc.RealSolReserves))
		return result, nil, err
	}

	accounts := launchpad.GraduationAccounts{
		Platform:     o.signer.PublicKey(),
		Creator:      bc.Creator,
		BondingCurve: bondingCurve,
		TokenMint:    mint,
	}

	// Step 1: token settlement
	o.settleTokens(ctx, logger, result, accounts, eval)

	// Step 2: funds distribution
	balance, err := o.client.GetBalance(ctx, bondingCurve, rpc.CommitmentConfirmed)
	if err != nil {
		return o.fail(result, &StepError{Step: StepFunds, Err: fmt.Errorf("read curve balance: %w", err)})
	}
	if balance < launchpad.GraduationThresholdLamports {
		err := fmt.Errorf("%w: %s in curve, %s required", ErrInsufficientBalance,
			model.FormatSol(balance), model.FormatSol(launchpad.GraduationThresholdLamports))
		return o.fail(result, &StepError{Step: StepFunds, Err: err})
	}

	result.State = StateFundsDistributing
	ix, err := o.programs.ProcessGraduationFundsInstruction(accounts)
	if err != nil {
		return o.fail(result, &StepError{Step: StepFunds, Err: err})
	}
	sig, err := o.submitter.Submit(ctx, string(StepFunds), ix)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
		return o.fail(result, &StepError{Step: StepFunds, Err: err})
	}

	result.State = StateFundsDistributed
	result.Success = true
	result.TransactionID = sig.String()
	result.PlatformReceived = model.FormatSol(launchpad.PlatformShareLamports)
	result.CreatorReceived = model.FormatSol(launchpad.CreatorShareLamports)
	logger.Info("Graduation settled",
		zap.String("signature", result.TransactionID),
		zap.String("token_signature", result.TokenTransactionID),
		zap.Uint64("allocation_millions", eval.TokenAllocationMillions))

	plan := raydium.PlanMigration(mint, eval.TokenAllocationUnits(), launchpad.LiquidityLamports)
	return result, plan, nil
}

// load fetches, owner-checks, decodes and evaluates the curve.
func (o *Orchestrator) load(
	ctx context.Context,
	bondingCurve, mint solana.PublicKey,
) (*launchpad.BondingCurve, launchpad.Evaluation, error) {
	info, err := o.client.GetAccountInfo(ctx, bondingCurve)
	if err != nil {
		return nil, launchpad.Evaluation{}, fmt.Errorf("fetch bonding curve: %w", err)
	}
	bc, err := launchpad.DecodeBondingCurveAccount(info.Value, o.programs.BondingCurveProgram)
	if err != nil {
		return nil, launchpad.Evaluation{}, err
	}
	if !bc.TokenMint.Equals(mint) {
		return nil, launchpad.Evaluation{}, fmt.Errorf("%w: curve mint is %s", ErrMintMismatch, bc.TokenMint)
	}
	return bc, launchpad.Evaluate(bc), nil
}

// settleTokens runs step 1. It never aborts the settlement: a skipped or
// failed transfer is recorded on result and the flow moves on to step 2.
func (o *Orchestrator) settleTokens(
	ctx context.Context,
	logger *zap.Logger,
	result *SettlementResult,
	accounts launchpad.GraduationAccounts,
	eval launchpad.Evaluation,
) {
	settled, err := o.tokensSettled(ctx, accounts, eval)
	if err != nil {
		logger.Warn("Token balance precheck failed, submitting transfer", zap.Error(err))
	}
	if settled {
		result.State = StateSkippedAlreadySettled
		result.Note = "token transfer already settled, skipped"
		logger.Info("Platform already holds the allocation, skipping token transfer")
		return
	}

	result.State = StateTokensSettling
	ix, err := o.programs.GraduateTokenInstruction(accounts)
	if err == nil {
		var sig solana.Signature
		sig, err = o.submitter.Submit(ctx, string(StepTokens), ix)
		if err == nil {
			result.State = StateTokensSettled
			result.TokenTransactionID = sig.String()
			return
		}
	}

	stepErr := &StepError{Step: StepTokens, Err: fmt.Errorf("%w: %w", ErrPossiblyAlreadySettled, err)}
	result.State = StateSkippedAlreadySettled
	result.Note = "token transfer failed and was assumed already settled: " + err.Error()
	logger.Warn("Token transfer failed, continuing with funds distribution", zap.Error(stepErr))
}

// tokensSettled reports whether the platform's token account already holds the allocation.
func (o *Orchestrator) tokensSettled(
	ctx context.Context,
	accounts launchpad.GraduationAccounts,
	eval launchpad.Evaluation,
) (bool, error) {
	ata, err := accounts.PlatformTokenAccount()
	if err != nil {
		return false, err
	}
	info, err := o.client.GetAccountInfo(ctx, ata)
	if errors.Is(err, blockchain.ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("fetch platform token account: %w", err)
	}
	ta, err := launchpad.DecodeTokenAccountInfo(info.Value)
	if err != nil {
		return false, err
	}
	if !ta.Mint.Equals(accounts.TokenMint) {
		return false, fmt.Errorf("%w: platform token account holds mint %s", launchpad.ErrMalformedAccount, ta.Mint)
	}
	return ta.Amount >= eval.TokenAllocationUnits(), nil
}

// fail marks result as failed with err.
func (o *Orchestrator) fail(result *SettlementResult, err error) (*SettlementResult, *raydium.MigrationPlan, error) {
	result.State = StateFailed
	result.Success = false
	result.Error = err.Error()
	o.logger.Error("Graduation failed", zap.Error(err))
	return result, nil, err
}
