// internal/dex/raydium/constants.go
package raydium

import (
	"github.com/gagliardetto/solana-go"
)

// Program IDs
var (
	RaydiumV4ProgramID = solana.MPK("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	OpenBookProgramID  = solana.MPK("srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX")
	WrappedSolMint     = solana.MPK("So11111111111111111111111111111111111111112")

	// LP tokens sent here are unrecoverable, which locks the pool's liquidity.
	BurnAddress = solana.MPK("11111111111111111111111111111111")
)

// Market listing parameters for graduated tokens
const (
	MarketMinOrderSize = "0.01"
	MarketTickSize     = "0.000001"
)

// Pool parameters
const (
	PoolTypeStandardAMM = "Standard AMM"
	MarketIDPlaceholder = "<MARKET_ID>"
	LPMintPlaceholder   = "<LP_MINT>"
	OwnerPlaceholder    = "<PLATFORM_WALLET>"
)

// External tools the plan points operators to
const (
	OpenBookMarketURL = "https://openserum.io/"
	RaydiumCreateURL  = "https://raydium.io/liquidity/create/"
)
