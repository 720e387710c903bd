// internal/graduation/scanner.go
package graduation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Ksavu/launched-lol-admin/internal/blockchain"
	"github.com/Ksavu/launched-lol-admin/internal/blockchain/solbc"
	"github.com/Ksavu/launched-lol-admin/internal/dex/launchpad"
	"github.com/Ksavu/launched-lol-admin/internal/dex/model"
	"github.com/Ksavu/launched-lol-admin/internal/storage/models"
)

// metadataMintOffset is the offset of the mint inside a token factory metadata account.
const metadataMintOffset = 8

// GraduatedToken is one row of the graduation dashboard.
type GraduatedToken struct {
	Mint                    string    `json:"mint"`
	Name                    string    `json:"name"`
	Symbol                  string    `json:"symbol"`
	Creator                 string    `json:"creator"`
	BondingCurve            string    `json:"bondingCurve"`
	SolInCurve              float64   `json:"solInCurve"`
	TokensInCurveMillions   float64   `json:"tokensInCurveMillions"`
	TokenAllocationMillions uint64    `json:"tokenAllocationMillions"`
	GraduatedAt             time.Time `json:"graduatedAt"`
	DevTokensClaimed        bool      `json:"devTokensClaimed"`
	Graduated               bool      `json:"graduated"`
	LPCreated               bool      `json:"lpCreated"`
}

// PoolLookup reports which mints already have an external pool.
type PoolLookup interface {
	PoolsByMint(ctx context.Context, mints []string) (map[string]*models.PoolRecord, error)
}

// Scanner lists eligible bonding curves. Curves are decoded and enriched in
// parallel; a curve that fails to decode is dropped from the listing.
type Scanner struct {
	client   blockchain.Client
	programs *launchpad.Config
	pools    PoolLookup
	workers  int
	metrics  Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewScanner creates a scanner running at most workers lookups at a time.
func NewScanner(
	client blockchain.Client,
	programs *launchpad.Config,
	pools PoolLookup,
	workers int,
	metrics Metrics,
	logger *zap.Logger,
) *Scanner {
	if workers <= 0 {
		workers = 1
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Scanner{
		client:   client,
		programs: programs,
		pools:    pools,
		workers:  workers,
		metrics:  metrics,
		logger:   logger.Named("scanner"),
		now:      time.Now,
	}
}

// ListGraduated returns every eligible curve, newest graduation first.
func (s *Scanner) ListGraduated(ctx context.Context) ([]*GraduatedToken, error) {
	start := time.Now()

	accounts, err := s.client.GetProgramAccountsWithOpts(ctx, s.programs.BondingCurveProgram, nil)
	if err != nil {
		return nil, fmt.Errorf("list bonding curves: %w", err)
	}

	var (
		mu      sync.Mutex
		tokens  = make([]*GraduatedToken, 0)
		skipped int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, acc := range accounts {
		if acc == nil {
			continue
		}
		g.Go(func() error {
			token, err := s.inspect(gCtx, acc)
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				s.logger.Debug("Skipping bonding curve",
					zap.String("bonding_curve", acc.Pubkey.String()),
					zap.Error(err))
			}
			mu.Lock()
			defer mu.Unlock()
			if token == nil {
				skipped++
				return nil
			}
			tokens = append(tokens, token)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.markPools(ctx, tokens); err != nil {
		s.logger.Warn("Pool lookup failed, lpCreated left false", zap.Error(err))
	}

	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].GraduatedAt.After(tokens[j].GraduatedAt)
	})

	s.metrics.RecordScan(time.Since(start), len(tokens), skipped)
	return tokens, nil
}

// inspect decodes one curve. It returns nil, nil for curves below the threshold.
func (s *Scanner) inspect(ctx context.Context, acc *rpc.KeyedAccount) (*GraduatedToken, error) {
	bc, err := launchpad.DecodeBondingCurveAccount(acc.Account, s.programs.BondingCurveProgram)
	if err != nil {
		return nil, err
	}
	eval := launchpad.Evaluate(bc)
	if !eval.Eligible {
		return nil, nil
	}

	token := &GraduatedToken{
		Mint:                    bc.TokenMint.String(),
		Creator:                 bc.Creator.String(),
		BondingCurve:            acc.Pubkey.String(),
		SolInCurve:              model.LamportsToSol(bc.RealSolReserves).InexactFloat64(),
		TokensInCurveMillions:   model.TokenUnitsToMillions(bc.RealTokenReserves).InexactFloat64(),
		TokenAllocationMillions: eval.TokenAllocationMillions,
		DevTokensClaimed:        eval.DevClaimed,
		Graduated:               bc.Graduated,
	}

	md, err := FetchTokenMetadata(ctx, s.client, s.programs.TokenFactoryProgram, bc.TokenMint)
	switch {
	case err == nil:
		token.Name = md.Name
		token.Symbol = md.Symbol
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		s.logger.Debug("No token metadata", zap.String("mint", token.Mint), zap.Error(err))
		token.Name = "Unknown"
		token.Symbol = "???"
	}

	graduatedAt, err := s.client.GetLatestBlockTime(ctx, acc.Pubkey)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil || graduatedAt.IsZero() {
		graduatedAt = s.now().UTC()
	}
	token.GraduatedAt = graduatedAt

	return token, nil
}

func (s *Scanner) markPools(ctx context.Context, tokens []*GraduatedToken) error {
	if s.pools == nil || len(tokens) == 0 {
		return nil
	}
	mints := make([]string, 0, len(tokens))
	for _, t := range tokens {
		mints = append(mints, t.Mint)
	}
	pools, err := s.pools.PoolsByMint(ctx, mints)
	if err != nil {
		return err
	}
	for _, t := range tokens {
		_, t.LPCreated = pools[t.Mint]
	}
	return nil
}

// FetchTokenMetadata finds the token factory metadata account of mint.
func FetchTokenMetadata(
	ctx context.Context,
	client blockchain.Client,
	tokenFactory, mint solana.PublicKey,
) (*launchpad.TokenMetadata, error) {
	accounts, err := client.GetProgramAccountsWithOpts(ctx, tokenFactory, &rpc.GetProgramAccountsOpts{
		Filters: []rpc.RPCFilter{solbc.MemcmpFilter(metadataMintOffset, mint)},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch token metadata: %w", err)
	}

	var lastErr error = launchpad.ErrAccountNotFound
	for _, acc := range accounts {
		if acc == nil {
			continue
		}
		md, err := launchpad.DecodeTokenMetadataAccount(acc.Account, tokenFactory)
		if err != nil {
			lastErr = err
			continue
		}
		if md.Mint.Equals(mint) {
			return md, nil
		}
	}
	return nil, fmt.Errorf("token metadata for %s: %w", mint, lastErr)
}
