// =============================
// File: internal/dex/launchpad/accounts.go
// =============================
package launchpad

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// DecodeBondingCurve parses raw bonding curve account data.
func DecodeBondingCurve(data []byte) (*BondingCurve, error) {
	r, err := newFieldReader(BondingCurveLayout, data)
	if err != nil {
		return nil, err
	}
	bc := &BondingCurve{
		Creator:           r.publicKey("creator"),
		TokenMint:         r.publicKey("token_mint"),
		RealSolReserves:   r.uint64("real_sol_reserves"),
		RealTokenReserves: r.uint64("real_token_reserves"),
		Graduated:         r.flag("graduated"),
		DevSupply:         r.uint64("dev_supply"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return bc, nil
}

// DecodeRegistry parses a social registry claim.
func DecodeRegistry(data []byte) (*Registry, error) {
	r, err := newFieldReader(RegistryLayout, data)
	if err != nil {
		return nil, err
	}
	reg := &Registry{
		TokenMint: r.publicKey("token_mint"),
		Creator:   r.publicKey("creator"),
		Platform:  Platform(r.uint8("platform")),
		Handle:    r.string("handle"),
	}
	// verified and registered_at sit at fixed offsets regardless of handle length
	reg.Verified = r.flag("verified")
	reg.RegisteredAt = r.int64("registered_at")
	if r.err != nil {
		return nil, r.err
	}
	if !reg.Platform.Valid() {
		return nil, fmt.Errorf("%w: platform tag %d", ErrMalformedAccount, uint8(reg.Platform))
	}
	return reg, nil
}

// DecodeTokenMetadata parses a token factory metadata account.
func DecodeTokenMetadata(data []byte) (*TokenMetadata, error) {
	r, err := newFieldReader(TokenMetadataLayout, data)
	if err != nil {
		return nil, err
	}
	md := &TokenMetadata{Mint: r.publicKey("mint")}
	md.Name = r.string("name")
	md.Symbol = r.string("symbol")
	md.URI = r.string("uri")
	if r.err != nil {
		return nil, r.err
	}
	return md, nil
}

// DecodeTokenAccount parses an SPL token account.
func DecodeTokenAccount(data []byte) (*TokenAccount, error) {
	r, err := newFieldReader(TokenAccountLayout, data)
	if err != nil {
		return nil, err
	}
	ta := &TokenAccount{
		Mint:   r.publicKey("mint"),
		Owner:  r.publicKey("owner"),
		Amount: r.uint64("amount"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return ta, nil
}

// accountData returns the raw bytes of acc after verifying its owner.
func accountData(acc *rpc.Account, owner solana.PublicKey) ([]byte, error) {
	if acc == nil || acc.Data == nil {
		return nil, ErrAccountNotFound
	}
	if err := CheckOwner(acc.Owner, owner); err != nil {
		return nil, err
	}
	return acc.Data.GetBinary(), nil
}

// DecodeBondingCurveAccount decodes a fetched bonding curve owned by programID.
func DecodeBondingCurveAccount(acc *rpc.Account, programID solana.PublicKey) (*BondingCurve, error) {
	data, err := accountData(acc, programID)
	if err != nil {
		return nil, fmt.Errorf("bonding curve: %w", err)
	}
	return DecodeBondingCurve(data)
}

// DecodeRegistryAccount decodes a fetched registry claim owned by programID.
func DecodeRegistryAccount(acc *rpc.Account, programID solana.PublicKey) (*Registry, error) {
	data, err := accountData(acc, programID)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	return DecodeRegistry(data)
}

// DecodeTokenMetadataAccount decodes a fetched metadata account owned by programID.
func DecodeTokenMetadataAccount(acc *rpc.Account, programID solana.PublicKey) (*TokenMetadata, error) {
	data, err := accountData(acc, programID)
	if err != nil {
		return nil, fmt.Errorf("token metadata: %w", err)
	}
	return DecodeTokenMetadata(data)
}

// DecodeTokenAccountInfo decodes a fetched SPL token account owned by the token program.
func DecodeTokenAccountInfo(acc *rpc.Account) (*TokenAccount, error) {
	data, err := accountData(acc, solana.TokenProgramID)
	if err != nil {
		return nil, fmt.Errorf("token account: %w", err)
	}
	return DecodeTokenAccount(data)
}
