// internal/graduation/mocks_test.go
package graduation

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Ksavu/launched-lol-admin/internal/blockchain"
	"github.com/Ksavu/launched-lol-admin/internal/dex/launchpad"
	"github.com/Ksavu/launched-lol-admin/internal/wallet"
)

// MockClient implements blockchain.Client
type MockClient struct {
	mock.Mock
}

var _ blockchain.Client = (*MockClient)(nil)

func (m *MockClient) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	args := m.Called(ctx)
	return args.Get(0).(solana.Hash), args.Error(1)
}

func (m *MockClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *MockClient) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	args := m.Called(ctx, pubkey)
	res, _ := args.Get(0).(*rpc.GetAccountInfoResult)
	return res, args.Error(1)
}

func (m *MockClient) GetProgramAccountsWithOpts(
	ctx context.Context,
	programID solana.PublicKey,
	opts *rpc.GetProgramAccountsOpts,
) (rpc.GetProgramAccountsResult, error) {
	args := m.Called(ctx, programID, opts)
	res, _ := args.Get(0).(rpc.GetProgramAccountsResult)
	return res, args.Error(1)
}

func (m *MockClient) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	args := m.Called(ctx, pubkey, commitment)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockClient) GetLatestBlockTime(ctx context.Context, account solana.PublicKey) (time.Time, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockClient) WaitForTransactionConfirmation(
	ctx context.Context,
	signature solana.Signature,
	commitment rpc.CommitmentType,
) error {
	args := m.Called(ctx, signature, commitment)
	return args.Error(0)
}

// txWith matches transactions whose first instruction starts with tag.
func txWith(tag []byte) interface{} {
	return mock.MatchedBy(func(tx *solana.Transaction) bool {
		if tx == nil || len(tx.Message.Instructions) == 0 {
			return false
		}
		return bytes.HasPrefix(tx.Message.Instructions[0].Data, tag)
	})
}

// metadataFor matches token factory lookups filtered on mint.
func metadataFor(mint solana.PublicKey) interface{} {
	return mock.MatchedBy(func(opts *rpc.GetProgramAccountsOpts) bool {
		if opts == nil || len(opts.Filters) != 1 || opts.Filters[0].Memcmp == nil {
			return false
		}
		return bytes.Equal(opts.Filters[0].Memcmp.Bytes, mint[:])
	})
}

func accountResult(owner solana.PublicKey, data []byte) *rpc.GetAccountInfoResult {
	return &rpc.GetAccountInfoResult{Value: rawAccount(owner, data)}
}

func rawAccount(owner solana.PublicKey, data []byte) *rpc.Account {
	return &rpc.Account{
		Owner:    owner,
		Lamports: 1_000_000,
		Data:     rpc.DataBytesOrJSONFromBytes(data),
	}
}

func newPubkey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

func testSigner(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.NewWallet(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)
	return w
}

func curveData(t *testing.T, bc *launchpad.BondingCurve) []byte {
	t.Helper()
	data, err := launchpad.EncodeBondingCurve(bc)
	require.NoError(t, err)
	return data
}

func metadataAccount(t *testing.T, md *launchpad.TokenMetadata) *rpc.KeyedAccount {
	t.Helper()
	data, err := launchpad.EncodeTokenMetadata(md)
	require.NoError(t, err)
	return &rpc.KeyedAccount{Pubkey: newPubkey(), Account: rawAccount(launchpad.TokenFactoryProgramID, data)}
}
