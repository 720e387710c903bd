// =============================
// File: internal/dex/launchpad/types.go
// =============================
package launchpad

import (
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
)

// BondingCurve represents the bonding curve account data
type BondingCurve struct {
	Creator           solana.PublicKey
	TokenMint         solana.PublicKey
	RealSolReserves   uint64
	RealTokenReserves uint64
	DevSupply         uint64
	Graduated         bool // set by the program, never written by the engine
}

// Platform identifies the social network of a registry claim.
type Platform uint8

const (
	PlatformTwitter Platform = iota
	PlatformTelegram
	PlatformDiscord
	PlatformWebsite
)

var platformNames = [...]string{"twitter", "telegram", "discord", "website"}

func (p Platform) String() string {
	if int(p) < len(platformNames) {
		return platformNames[p]
	}
	return fmt.Sprintf("platform(%d)", uint8(p))
}

// Valid reports whether p is one of the known platforms.
func (p Platform) Valid() bool {
	return int(p) < len(platformNames)
}

// MarshalText renders the platform name in JSON responses.
func (p Platform) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("unknown platform %d", uint8(p))
	}
	return []byte(p.String()), nil
}

// ParsePlatform is the inverse of Platform.String.
func ParsePlatform(name string) (Platform, error) {
	for i, n := range platformNames {
		if strings.EqualFold(n, name) {
			return Platform(i), nil
		}
	}
	return 0, fmt.Errorf("unknown platform %q", name)
}

// Registry is a social verification claim stored by the social registry program.
type Registry struct {
	TokenMint    solana.PublicKey
	Creator      solana.PublicKey
	Platform     Platform
	Handle       string
	Verified     bool
	RegisteredAt int64 // unix seconds
}

// RegisteredTime converts RegisteredAt to time.Time.
func (r *Registry) RegisteredTime() time.Time {
	return time.Unix(r.RegisteredAt, 0).UTC()
}

// TokenMetadata is the token factory record for a mint.
type TokenMetadata struct {
	Mint   solana.PublicKey
	Name   string
	Symbol string
	URI    string
}

// TokenAccount is the subset of an SPL token account the engine reads.
type TokenAccount struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
}
