// internal/graduation/verification.go
package graduation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Ksavu/launched-lol-admin/internal/blockchain"
	"github.com/Ksavu/launched-lol-admin/internal/dex/launchpad"
)

// VerificationRequest is a social registry claim joined with its token metadata.
type VerificationRequest struct {
	Address      string             `json:"address"`
	TokenMint    string             `json:"tokenMint"`
	Creator      string             `json:"creator"`
	Platform     launchpad.Platform `json:"platform"`
	Handle       string             `json:"handle"`
	Verified     bool               `json:"verified"`
	RegisteredAt time.Time          `json:"registeredAt"`
	TokenName    string             `json:"tokenName"`
	TokenSymbol  string             `json:"tokenSymbol"`
}

// Verifier reads social registry claims and submits verify/revoke instructions.
type Verifier struct {
	client    blockchain.Client
	signer    Signer
	programs  *launchpad.Config
	submitter *Submitter
	workers   int
	logger    *zap.Logger
}

// NewVerifier creates a verifier signing with the platform key.
func NewVerifier(
	client blockchain.Client,
	signer Signer,
	programs *launchpad.Config,
	workers int,
	metrics Metrics,
	logger *zap.Logger,
) *Verifier {
	if workers <= 0 {
		workers = 1
	}
	return &Verifier{
		client:    client,
		signer:    signer,
		programs:  programs,
		submitter: NewSubmitter(client, signer, metrics, logger),
		workers:   workers,
		logger:    logger.Named("verifier"),
	}
}

// ListRequests returns all registry claims, newest first. Claims that fail to
// decode are skipped; a missing metadata account leaves the token name empty.
func (v *Verifier) ListRequests(ctx context.Context) ([]*VerificationRequest, error) {
	accounts, err := v.client.GetProgramAccountsWithOpts(ctx, v.programs.SocialRegistryProgram, nil)
	if err != nil {
		return nil, fmt.Errorf("list registry accounts: %w", err)
	}

	var (
		mu       sync.Mutex
		requests = make([]*VerificationRequest, 0, len(accounts))
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for _, acc := range accounts {
		if acc == nil {
			continue
		}
		reg, err := launchpad.DecodeRegistryAccount(acc.Account, v.programs.SocialRegistryProgram)
		if err != nil {
			v.logger.Debug("Skipping registry account",
				zap.String("address", acc.Pubkey.String()),
				zap.Error(err))
			continue
		}

		req := &VerificationRequest{
			Address:      acc.Pubkey.String(),
			TokenMint:    reg.TokenMint.String(),
			Creator:      reg.Creator.String(),
			Platform:     reg.Platform,
			Handle:       reg.Handle,
			Verified:     reg.Verified,
			RegisteredAt: reg.RegisteredTime(),
		}
		g.Go(func() error {
			md, err := FetchTokenMetadata(gCtx, v.client, v.programs.TokenFactoryProgram, reg.TokenMint)
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				v.logger.Debug("No token metadata", zap.String("mint", req.TokenMint), zap.Error(err))
			} else {
				req.TokenName = md.Name
				req.TokenSymbol = md.Symbol
			}
			mu.Lock()
			requests = append(requests, req)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(requests, func(i, j int) bool {
		return requests[i].RegisteredAt.After(requests[j].RegisteredAt)
	})
	return requests, nil
}

// Verify marks the claim at registry as verified.
func (v *Verifier) Verify(ctx context.Context, registry, mint solana.PublicKey) (solana.Signature, error) {
	if err := v.checkClaim(ctx, registry, mint); err != nil {
		return solana.Signature{}, err
	}
	ix, err := v.programs.VerifySocialInstruction(v.signer.PublicKey(), registry, mint)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := v.submitter.Submit(ctx, "verify_social", ix)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	return sig, nil
}

// Revoke clears the verified flag of the claim at registry.
func (v *Verifier) Revoke(ctx context.Context, registry, mint solana.PublicKey) (solana.Signature, error) {
	if err := v.checkClaim(ctx, registry, mint); err != nil {
		return solana.Signature{}, err
	}
	ix, err := v.programs.RevokeVerificationInstruction(v.signer.PublicKey(), registry, mint)
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := v.submitter.Submit(ctx, "revoke_verification", ix)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	return sig, nil
}

// checkClaim verifies that registry is a registry claim for mint.
func (v *Verifier) checkClaim(ctx context.Context, registry, mint solana.PublicKey) error {
	info, err := v.client.GetAccountInfo(ctx, registry)
	if err != nil {
		return fmt.Errorf("fetch registry account: %w", err)
	}
	reg, err := launchpad.DecodeRegistryAccount(info.Value, v.programs.SocialRegistryProgram)
	if err != nil {
		return err
	}
	if !reg.TokenMint.Equals(mint) {
		return fmt.Errorf("%w: registry claim is for %s", ErrMintMismatch, reg.TokenMint)
	}
	return nil
}
