// =============================
// File: internal/dex/launchpad/encode.go
// =============================
package launchpad

// Encoders produce account buffers in the on-chain layout. They back test
// fixtures and local simulations; the engine itself never writes accounts.

// EncodeBondingCurve serializes bc using BondingCurveLayout.
func EncodeBondingCurve(bc *BondingCurve) ([]byte, error) {
	w := newFieldWriter(BondingCurveLayout)
	w.publicKey("creator", bc.Creator)
	w.publicKey("token_mint", bc.TokenMint)
	w.uint64("real_sol_reserves", bc.RealSolReserves)
	w.uint64("real_token_reserves", bc.RealTokenReserves)
	w.flag("graduated", bc.Graduated)
	w.uint64("dev_supply", bc.DevSupply)
	return w.bytes()
}

// EncodeRegistry serializes reg using RegistryLayout.
func EncodeRegistry(reg *Registry) ([]byte, error) {
	w := newFieldWriter(RegistryLayout)
	w.publicKey("token_mint", reg.TokenMint)
	w.publicKey("creator", reg.Creator)
	w.uint8("platform", uint8(reg.Platform))
	w.string("handle", reg.Handle)
	w.flag("verified", reg.Verified)
	w.int64("registered_at", reg.RegisteredAt)
	return w.bytes()
}

// EncodeTokenMetadata serializes md using TokenMetadataLayout.
func EncodeTokenMetadata(md *TokenMetadata) ([]byte, error) {
	w := newFieldWriter(TokenMetadataLayout)
	w.publicKey("mint", md.Mint)
	w.string("name", md.Name)
	w.string("symbol", md.Symbol)
	w.string("uri", md.URI)
	return w.bytes()
}

// EncodeTokenAccount serializes ta using TokenAccountLayout.
func EncodeTokenAccount(ta *TokenAccount) ([]byte, error) {
	w := newFieldWriter(TokenAccountLayout)
	w.publicKey("mint", ta.Mint)
	w.publicKey("owner", ta.Owner)
	w.uint64("amount", ta.Amount)
	return w.bytes()
}
