// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/Ksavu/launched-lol-admin/internal/blockchain"
)

// Options tune read retries and confirmation polling.
type Options struct {
	MaxReadTries        uint
	ReadBackoff         time.Duration
	ConfirmPollInterval time.Duration
	ConfirmTimeout      time.Duration
}

// DefaultOptions returns the settings used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaxReadTries:        3,
		ReadBackoff:         250 * time.Millisecond,
		ConfirmPollInterval: 500 * time.Millisecond,
		ConfirmTimeout:      30 * time.Second,
	}
}

// RPCObserver receives the latency of every RPC call.
type RPCObserver interface {
	ObserveRPC(method string, duration time.Duration, err error)
}

type noopObserver struct{}

func (noopObserver) ObserveRPC(string, time.Duration, error) {}

// Client is a thin adapter over the solana-go RPC client.
// Reads are retried with exponential backoff; broadcasts never are.
type Client struct {
	rpc      *rpc.Client
	opts     Options
	observer RPCObserver
	logger   *zap.Logger
}

// NewClient creates a client for rpcURL.
func NewClient(rpcURL string, opts Options, logger *zap.Logger) *Client {
	return &Client{
		rpc:      rpc.New(rpcURL),
		opts:     opts,
		observer: noopObserver{},
		logger:   logger.Named("solbc-client"),
	}
}

// WithObserver reports call latencies to o.
func (c *Client) WithObserver(o RPCObserver) *Client {
	c.observer = o
	return c
}

// observe times a single RPC call.
func observe[T any](c *Client, method string, op func() (T, error)) (T, error) {
	start := time.Now()
	v, err := op()
	c.observer.ObserveRPC(method, time.Since(start), err)
	return v, err
}

// retryRead runs a read-only RPC call with backoff. Not-found results are permanent.
func retryRead[T any](ctx context.Context, c *Client, method string, op func() (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.opts.ReadBackoff
	policy.MaxInterval = c.opts.ReadBackoff * 8

	notify := func(err error, d time.Duration) {
		c.logger.Debug("Retrying RPC read", zap.String("method", method), zap.Error(err), zap.Duration("backoff", d))
	}

	wrapped := func() (T, error) {
		v, err := observe(c, method, op)
		if err != nil && errors.Is(err, rpc.ErrNotFound) {
			return v, backoff.Permanent(blockchain.ErrAccountNotFound)
		}
		return v, err
	}

	tries := c.opts.MaxReadTries
	if tries == 0 {
		tries = 1
	}
	return backoff.Retry(ctx, wrapped,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(tries),
		backoff.WithNotify(notify))
}

// GetRecentBlockhash returns the latest blockhash at finalized commitment.
func (c *Client) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := retryRead(ctx, c, "getLatestBlockhash", func() (*rpc.GetLatestBlockhashResult, error) {
		return c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	})
	if err != nil {
		c.logger.Error("GetRecentBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	return result.Value.Blockhash, nil
}

// SendTransaction broadcasts tx once.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := observe(c, "sendTransaction", func() (solana.Signature, error) {
		return c.rpc.SendTransaction(ctx, tx)
	})
	if err != nil {
		c.logger.Error("SendTransaction error", zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}

// GetAccountInfo fetches an account at confirmed commitment.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	result, err := retryRead(ctx, c, "getAccountInfo", func() (*rpc.GetAccountInfoResult, error) {
		return c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
			Commitment: rpc.CommitmentConfirmed,
			Encoding:   solana.EncodingBase64,
		})
	})
	if err != nil {
		c.logger.Debug("GetAccountInfo error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return nil, err
	}
	if result == nil || result.Value == nil {
		return nil, blockchain.ErrAccountNotFound
	}
	return result, nil
}

// GetProgramAccountsWithOpts returns all accounts of a program matching opts.
func (c *Client) GetProgramAccountsWithOpts(
	ctx context.Context,
	programID solana.PublicKey,
	opts *rpc.GetProgramAccountsOpts,
) (rpc.GetProgramAccountsResult, error) {
	if opts == nil {
		opts = &rpc.GetProgramAccountsOpts{}
	}
	if opts.Commitment == "" {
		opts.Commitment = rpc.CommitmentConfirmed
	}
	if opts.Encoding == "" {
		opts.Encoding = solana.EncodingBase64
	}

	accounts, err := retryRead(ctx, c, "getProgramAccounts", func() (rpc.GetProgramAccountsResult, error) {
		return c.rpc.GetProgramAccountsWithOpts(ctx, programID, opts)
	})
	if err != nil {
		c.logger.Debug("GetProgramAccountsWithOpts error",
			zap.String("program_id", programID.String()),
			zap.Error(err))
		return nil, err
	}
	return accounts, nil
}

// MemcmpFilter matches accounts whose data at offset starts with the key bytes.
func MemcmpFilter(offset uint64, key solana.PublicKey) rpc.RPCFilter {
	return rpc.RPCFilter{
		Memcmp: &rpc.RPCFilterMemcmp{
			Offset: offset,
			Bytes:  key[:],
		},
	}
}

// GetBalance returns the lamport balance of pubkey.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	result, err := retryRead(ctx, c, "getBalance", func() (*rpc.GetBalanceResult, error) {
		return c.rpc.GetBalance(ctx, pubkey, commitment)
	})
	if err != nil {
		c.logger.Error("GetBalance error", zap.String("pubkey", pubkey.String()), zap.Error(err))
		return 0, err
	}
	return result.Value, nil
}

// GetLatestBlockTime returns the block time of the newest signature for account.
func (c *Client) GetLatestBlockTime(ctx context.Context, account solana.PublicKey) (time.Time, error) {
	limit := 1
	sigs, err := retryRead(ctx, c, "getSignaturesForAddress", func() ([]*rpc.TransactionSignature, error) {
		return c.rpc.GetSignaturesForAddressWithOpts(ctx, account, &rpc.GetSignaturesForAddressOpts{
			Limit:      &limit,
			Commitment: rpc.CommitmentConfirmed,
		})
	})
	if err != nil {
		c.logger.Debug("GetSignaturesForAddress error",
			zap.String("account", account.String()),
			zap.Error(err))
		return time.Time{}, err
	}
	if len(sigs) == 0 || sigs[0] == nil || sigs[0].BlockTime == nil {
		return time.Time{}, nil
	}
	return sigs[0].BlockTime.Time().UTC(), nil
}

// GetSignatureStatuses returns the statuses of the given signatures.
func (c *Client) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	result, err := observe(c, "getSignatureStatuses", func() (*rpc.GetSignatureStatusesResult, error) {
		return c.rpc.GetSignatureStatuses(ctx, false, signatures...)
	})
	if err != nil {
		c.logger.Error("GetSignatureStatuses error", zap.Error(err))
		return nil, err
	}
	return result, nil
}

// WaitForTransactionConfirmation polls signature statuses until commitment is reached.
func (c *Client) WaitForTransactionConfirmation(ctx context.Context, signature solana.Signature, commitment rpc.CommitmentType) error {
	ticker := time.NewTicker(c.opts.ConfirmPollInterval)
	defer ticker.Stop()
	timeout := time.After(c.opts.ConfirmTimeout)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("confirmation timeout for %s", signature)
		case <-ticker.C:
			statuses, err := c.GetSignatureStatuses(ctx, signature)
			if err != nil {
				c.logger.Warn("Error getting signature statuses", zap.Error(err))
				continue
			}
			if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
				continue
			}
			status := statuses.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed: %v", signature, status.Err)
			}
			if reached(status.ConfirmationStatus, commitment) {
				return nil
			}
		}
	}
}

// reached reports whether status satisfies the requested commitment.
func reached(status rpc.ConfirmationStatusType, commitment rpc.CommitmentType) bool {
	switch status {
	case rpc.ConfirmationStatusFinalized:
		return true
	case rpc.ConfirmationStatusConfirmed:
		return commitment != rpc.CommitmentFinalized
	case rpc.ConfirmationStatusProcessed:
		return commitment == rpc.CommitmentProcessed
	}
	return false
}

// Client must satisfy blockchain.Client.
var _ blockchain.Client = (*Client)(nil)
