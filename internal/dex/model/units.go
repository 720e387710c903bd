// internal/dex/model/units.go
package model

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Native and token precision used by the launchpad programs.
const (
	SolDecimals   uint8 = 9
	TokenDecimals uint8 = 6

	LamportsPerSol       uint64 = 1_000_000_000
	TokenUnitsPerMillion uint64 = 1_000_000 * 1_000_000
)

// AmountToDecimal converts a raw on-chain amount into a decimal with the given precision.
func AmountToDecimal(amount uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals))
}

// LamportsToSol returns the SOL value of a lamport amount.
func LamportsToSol(lamports uint64) decimal.Decimal {
	return AmountToDecimal(lamports, SolDecimals)
}

// TokenUnitsToMillions returns the amount of whole tokens, in millions, held in raw units.
func TokenUnitsToMillions(units uint64) decimal.Decimal {
	return AmountToDecimal(units, TokenDecimals).Shift(-6)
}

// MillionsToTokenUnits is the inverse of TokenUnitsToMillions for whole-million amounts.
func MillionsToTokenUnits(millions uint64) uint64 {
	return millions * TokenUnitsPerMillion
}

// FormatSol renders lamports the way the dashboard shows them, e.g. "79 SOL".
func FormatSol(lamports uint64) string {
	return LamportsToSol(lamports).String() + " SOL"
}

// FormatTokenMillions renders raw token units as e.g. "200M tokens".
func FormatTokenMillions(units uint64) string {
	return TokenUnitsToMillions(units).String() + "M tokens"
}
