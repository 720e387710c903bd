// internal/blockchain/types.go
package blockchain

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ErrAccountNotFound is returned when the RPC node has no account at the requested address.
var ErrAccountNotFound = errors.New("account not found")

// Client is the subset of Solana RPC the admin engine depends on.
type Client interface {
	// Latest blockhash for a new transaction.
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	// Broadcast a signed transaction. Never retried.
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// Account data and owner. Returns ErrAccountNotFound for empty addresses.
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	// All accounts of a program matching the filters.
	GetProgramAccountsWithOpts(ctx context.Context, programID solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error)
	// Lamport balance of an account.
	GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error)
	// Block time of the most recent transaction touching the account; zero if unknown.
	GetLatestBlockTime(ctx context.Context, account solana.PublicKey) (time.Time, error)
	// Blocks until the signature reaches the commitment or the wait times out.
	WaitForTransactionConfirmation(ctx context.Context, signature solana.Signature, commitment rpc.CommitmentType) error
}
