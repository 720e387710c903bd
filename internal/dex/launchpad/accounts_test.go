package launchpad

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCurve() *BondingCurve {
	return &BondingCurve{
		Creator:           solana.NewWallet().PublicKey(),
		TokenMint:         solana.NewWallet().PublicKey(),
		RealSolReserves:   85_000_000_000,
		RealTokenReserves: 230_000_000_000_000,
		DevSupply:         0,
		Graduated:         true,
	}
}

func TestBondingCurveRoundTrip(t *testing.T) {
	cases := []*BondingCurve{
		testCurve(),
		{},
		{
			Creator:           solana.NewWallet().PublicKey(),
			TokenMint:         solana.NewWallet().PublicKey(),
			RealSolReserves:   ^uint64(0),
			RealTokenReserves: 1,
			DevSupply:         50_000_000_000_000,
		},
	}

	for _, want := range cases {
		data, err := EncodeBondingCurve(want)
		require.NoError(t, err)
		assert.Len(t, data, BondingCurveLayout.MinLength)

		got, err := DecodeBondingCurve(data)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDecodeBondingCurveOffsets(t *testing.T) {
	creator := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	data := make([]byte, 255)
	copy(data[8:40], creator[:])
	copy(data[40:72], mint[:])
	binary.LittleEndian.PutUint64(data[152:], 81_000_000_000)
	binary.LittleEndian.PutUint64(data[160:], 42)
	data[187] = 1
	binary.LittleEndian.PutUint64(data[204:], 7)

	bc, err := DecodeBondingCurve(data)
	require.NoError(t, err)
	assert.Equal(t, creator, bc.Creator)
	assert.Equal(t, mint, bc.TokenMint)
	assert.Equal(t, uint64(81_000_000_000), bc.RealSolReserves)
	assert.Equal(t, uint64(42), bc.RealTokenReserves)
	assert.True(t, bc.Graduated)
	assert.Equal(t, uint64(7), bc.DevSupply)

	// any value other than 1 is not graduated
	data[187] = 2
	bc, err = DecodeBondingCurve(data)
	require.NoError(t, err)
	assert.False(t, bc.Graduated)
}

func TestDecodeBondingCurveShortBuffer(t *testing.T) {
	for _, n := range []int{0, 96, 254} {
		_, err := DecodeBondingCurve(make([]byte, n))
		assert.ErrorIs(t, err, ErrMalformedAccount, "length %d", n)
	}

	_, err := DecodeBondingCurve(make([]byte, 255))
	assert.NoError(t, err)
}

func TestRegistryRoundTrip(t *testing.T) {
	want := &Registry{
		TokenMint:    solana.NewWallet().PublicKey(),
		Creator:      solana.NewWallet().PublicKey(),
		Platform:     PlatformTelegram,
		Handle:       "@launched_lol",
		Verified:     true,
		RegisteredAt: 1_717_000_000,
	}

	data, err := EncodeRegistry(want)
	require.NoError(t, err)

	got, err := DecodeRegistry(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(1_717_000_000), got.RegisteredTime().Unix())
}

func TestDecodeRegistryErrors(t *testing.T) {
	reg := &Registry{Platform: PlatformWebsite, Handle: "example.com"}
	data, err := EncodeRegistry(reg)
	require.NoError(t, err)

	t.Run("unknown platform", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[72] = 4
		_, err := DecodeRegistry(bad)
		assert.ErrorIs(t, err, ErrMalformedAccount)
	})

	t.Run("handle length overruns buffer", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		binary.LittleEndian.PutUint32(bad[73:], 10_000)
		_, err := DecodeRegistry(bad)
		assert.ErrorIs(t, err, ErrMalformedAccount)
	})

	t.Run("short buffer", func(t *testing.T) {
		_, err := DecodeRegistry(data[:100])
		assert.ErrorIs(t, err, ErrMalformedAccount)
	})
}

func TestTokenMetadataRoundTrip(t *testing.T) {
	want := &TokenMetadata{
		Mint:   solana.NewWallet().PublicKey(),
		Name:   "Launched Cat",
		Symbol: "LCAT",
		URI:    "https://arweave.net/abc",
	}

	data, err := EncodeTokenMetadata(want)
	require.NoError(t, err)

	got, err := DecodeTokenMetadata(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// truncating inside the uri fails instead of returning a partial record
	_, err = DecodeTokenMetadata(data[:len(data)-3])
	assert.ErrorIs(t, err, ErrMalformedAccount)
}

func TestTokenAccountRoundTrip(t *testing.T) {
	want := &TokenAccount{
		Mint:   solana.NewWallet().PublicKey(),
		Owner:  solana.NewWallet().PublicKey(),
		Amount: 200_000_000_000_000,
	}

	data, err := EncodeTokenAccount(want)
	require.NoError(t, err)
	assert.Len(t, data, 165)

	got, err := DecodeTokenAccount(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeAccountChecksOwner(t *testing.T) {
	data, err := EncodeBondingCurve(testCurve())
	require.NoError(t, err)

	acc := &rpc.Account{
		Owner: solana.NewWallet().PublicKey(),
		Data:  rpc.DataBytesOrJSONFromBytes(data),
	}

	_, err = DecodeBondingCurveAccount(acc, BondingCurveProgramID)
	assert.ErrorIs(t, err, ErrUnexpectedOwner)

	acc.Owner = BondingCurveProgramID
	bc, err := DecodeBondingCurveAccount(acc, BondingCurveProgramID)
	require.NoError(t, err)
	assert.True(t, bc.Graduated)

	_, err = DecodeBondingCurveAccount(nil, BondingCurveProgramID)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestPlatformText(t *testing.T) {
	for _, p := range []Platform{PlatformTwitter, PlatformTelegram, PlatformDiscord, PlatformWebsite} {
		parsed, err := ParsePlatform(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}

	_, err := Platform(9).MarshalText()
	assert.Error(t, err)
}
