// =============================
// File: internal/dex/launchpad/instructions.go
// =============================
package launchpad

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// DiscriminatorLength is the maximum instruction tag length (anchor uses all 8 bytes).
const DiscriminatorLength = 8

// AccountSpec is one account reference of an instruction, in program order.
type AccountSpec struct {
	PublicKey  solana.PublicKey
	IsSigner   bool
	IsWritable bool
}

// BuildInstruction assembles an instruction with data = discriminator ++ payload.
// Accounts keep the caller's order and duplicates are preserved.
func BuildInstruction(
	programID solana.PublicKey,
	discriminator []byte,
	accounts []AccountSpec,
	payload ...[]byte,
) (solana.Instruction, error) {
	if len(discriminator) == 0 || len(discriminator) > DiscriminatorLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidDiscriminator, len(discriminator))
	}

	size := len(discriminator)
	for _, p := range payload {
		size += len(p)
	}
	data := make([]byte, 0, size)
	data = append(data, discriminator...)
	for _, p := range payload {
		data = append(data, p...)
	}

	metas := make(solana.AccountMetaSlice, 0, len(accounts))
	for _, a := range accounts {
		metas = append(metas, solana.NewAccountMeta(a.PublicKey, a.IsWritable, a.IsSigner))
	}

	return solana.NewInstruction(programID, metas, data), nil
}

// GraduationAccounts are the accounts of one graduation.
type GraduationAccounts struct {
	Platform     solana.PublicKey
	Creator      solana.PublicKey
	BondingCurve solana.PublicKey
	TokenMint    solana.PublicKey
}

// CurveTokenAccount returns the bonding curve's associated token account for the mint.
func (a GraduationAccounts) CurveTokenAccount() (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(a.BondingCurve, a.TokenMint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive bonding curve ATA: %w", err)
	}
	return ata, nil
}

// PlatformTokenAccount returns the platform's associated token account for the mint.
func (a GraduationAccounts) PlatformTokenAccount() (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(a.Platform, a.TokenMint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive platform ATA: %w", err)
	}
	return ata, nil
}

// GraduateTokenInstruction moves the token allocation from the curve to the platform.
func (cfg *Config) GraduateTokenInstruction(a GraduationAccounts) (solana.Instruction, error) {
	curveATA, err := a.CurveTokenAccount()
	if err != nil {
		return nil, err
	}
	platformATA, err := a.PlatformTokenAccount()
	if err != nil {
		return nil, err
	}

	accounts := []AccountSpec{
		{PublicKey: a.Platform, IsSigner: true, IsWritable: true},
		{PublicKey: a.Creator, IsWritable: true},
		{PublicKey: a.BondingCurve, IsWritable: true},
		{PublicKey: a.TokenMint, IsWritable: true},
		{PublicKey: curveATA, IsWritable: true},
		{PublicKey: platformATA, IsWritable: true},
		{PublicKey: solana.SystemProgramID},
		{PublicKey: solana.TokenProgramID},
		{PublicKey: solana.SPLAssociatedTokenAccountProgramID},
		{PublicKey: solana.SysVarRentPubkey},
	}
	return BuildInstruction(cfg.BondingCurveProgram, cfg.Discriminators.GraduateToken, accounts)
}

// ProcessGraduationFundsInstruction splits the curve's SOL between platform and creator.
func (cfg *Config) ProcessGraduationFundsInstruction(a GraduationAccounts) (solana.Instruction, error) {
	accounts := []AccountSpec{
		{PublicKey: a.Platform, IsSigner: true, IsWritable: true},
		{PublicKey: a.Creator, IsWritable: true},
		{PublicKey: a.BondingCurve, IsWritable: true},
		{PublicKey: a.TokenMint},
		{PublicKey: solana.SystemProgramID},
	}
	return BuildInstruction(cfg.BondingCurveProgram, cfg.Discriminators.ProcessGraduationFunds, accounts)
}

func (cfg *Config) registryInstruction(tag []byte, platform, registry, mint solana.PublicKey) (solana.Instruction, error) {
	accounts := []AccountSpec{
		{PublicKey: platform, IsSigner: true},
		{PublicKey: registry, IsWritable: true},
		{PublicKey: mint},
	}
	return BuildInstruction(cfg.SocialRegistryProgram, tag, accounts)
}

// VerifySocialInstruction marks a registry claim as verified.
func (cfg *Config) VerifySocialInstruction(platform, registry, mint solana.PublicKey) (solana.Instruction, error) {
	return cfg.registryInstruction(cfg.Discriminators.VerifySocial, platform, registry, mint)
}

// RevokeVerificationInstruction clears the verified flag of a registry claim.
func (cfg *Config) RevokeVerificationInstruction(platform, registry, mint solana.PublicKey) (solana.Instruction, error) {
	return cfg.registryInstruction(cfg.Discriminators.RevokeVerification, platform, registry, mint)
}
