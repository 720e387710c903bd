// =============================
// File: internal/dex/launchpad/config.go
// =============================
package launchpad

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Known launched.lol program addresses
var (
	// Bonding curve program: owns curve accounts, executes graduate_token and process_graduation_funds
	BondingCurveProgramID = solana.MustPublicKeyFromBase58("21ACVywCBCgrgAx8HpLJM6mJC8pxMzvvi58in5Xv7qej")

	// Token factory program: owns token metadata accounts
	TokenFactoryProgramID = solana.MustPublicKeyFromBase58("7F4JYKAEs7VhVd9P8E1wHhd8aiwtKYeo1tTxabDqpCvX")

	// Social registry program: owns social verification claims
	SocialRegistryProgramID = solana.MustPublicKeyFromBase58("K3Fp6EiRsECtYbj63aG52D7rn2DiJdaLaxnN8MFpprh")
)

// Default instruction discriminators of the deployed programs.
// The 8-byte tags are sha256("global:<name>")[:8]; the registry uses single-byte opcodes.
var (
	GraduateTokenDiscriminator          = []byte{235, 199, 225, 44, 59, 251, 230, 25}
	ProcessGraduationFundsDiscriminator = []byte{126, 127, 152, 176, 85, 150, 101, 195}
	VerifySocialDiscriminator           = []byte{0x01}
	RevokeVerificationDiscriminator     = []byte{0x02}
)

// Discriminators holds the opaque instruction tags used by the engine.
type Discriminators struct {
	GraduateToken          []byte
	ProcessGraduationFunds []byte
	VerifySocial           []byte
	RevokeVerification     []byte
}

// Config holds program ids and discriminators for the launchpad programs
type Config struct {
	BondingCurveProgram   solana.PublicKey
	TokenFactoryProgram   solana.PublicKey
	SocialRegistryProgram solana.PublicKey

	Discriminators Discriminators
}

// GetDefaultConfig creates a configuration pointing at the deployed programs
func GetDefaultConfig() *Config {
	return &Config{
		BondingCurveProgram:   BondingCurveProgramID,
		TokenFactoryProgram:   TokenFactoryProgramID,
		SocialRegistryProgram: SocialRegistryProgramID,
		Discriminators: Discriminators{
			GraduateToken:          GraduateTokenDiscriminator,
			ProcessGraduationFunds: ProcessGraduationFundsDiscriminator,
			VerifySocial:           VerifySocialDiscriminator,
			RevokeVerification:     RevokeVerificationDiscriminator,
		},
	}
}

// ParseDiscriminator decodes a hex discriminator from configuration ("ebc7e12c3bfbe619" or "0x01").
func ParseDiscriminator(value string) ([]byte, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "0x")
	tag, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid discriminator %q: %w", value, err)
	}
	if len(tag) == 0 || len(tag) > DiscriminatorLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidDiscriminator, len(tag))
	}
	return tag, nil
}

// Validate checks that every program id and discriminator is set.
func (cfg *Config) Validate() error {
	if cfg.BondingCurveProgram.IsZero() {
		return fmt.Errorf("bonding curve program id is required")
	}
	if cfg.TokenFactoryProgram.IsZero() {
		return fmt.Errorf("token factory program id is required")
	}
	if cfg.SocialRegistryProgram.IsZero() {
		return fmt.Errorf("social registry program id is required")
	}

	tags := map[string][]byte{
		"graduate_token":           cfg.Discriminators.GraduateToken,
		"process_graduation_funds": cfg.Discriminators.ProcessGraduationFunds,
		"verify_social":            cfg.Discriminators.VerifySocial,
		"revoke_verification":      cfg.Discriminators.RevokeVerification,
	}
	for name, tag := range tags {
		if len(tag) == 0 || len(tag) > DiscriminatorLength {
			return fmt.Errorf("%w: %s has %d bytes", ErrInvalidDiscriminator, name, len(tag))
		}
	}
	return nil
}
