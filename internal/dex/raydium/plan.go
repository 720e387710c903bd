// internal/dex/raydium/plan.go
// Package raydium derives the external liquidity migration plan for a graduated token.
package raydium

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/Ksavu/launched-lol-admin/internal/dex/model"
)

// MarketStep describes the OpenBook market to create.
type MarketStep struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	BaseMint     string `json:"baseToken"`
	QuoteMint    string `json:"quoteToken"`
	MinOrderSize string `json:"minOrderSize"`
	TickSize     string `json:"tickSize"`
}

// PoolStep describes the Raydium pool and its initial liquidity.
type PoolStep struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	PoolType    string `json:"poolType"`
	MarketID    string `json:"marketId"`
	TokenMint   string `json:"tokenMint"`
	TokenAmount string `json:"tokenAmount"`
	SolAmount   string `json:"solAmount"`
}

// BurnStep describes how LP tokens are locked once the pool exists.
type BurnStep struct {
	Name        string `json:"name"`
	BurnAddress string `json:"burnAddress"`
	Command     string `json:"command"`
	Note        string `json:"note"`
}

// MigrationPlan is the three ordered external actions of a pool migration.
// Step 2 needs the market id from step 1 and step 3 needs the LP mint from
// step 2, so the plan is advisory and never executed by the engine.
type MigrationPlan struct {
	TokenMint         solana.PublicKey `json:"-"`
	TokenUnits        uint64           `json:"tokenUnits"`
	LiquidityLamports uint64           `json:"liquidityLamports"`

	Market MarketStep `json:"step1"`
	Pool   PoolStep   `json:"step2"`
	Burn   BurnStep   `json:"step3"`
}

// PlanMigration builds the migration plan for mint with tokenUnits (6 decimals)
// and lamports of initial liquidity. The result depends only on its arguments.
func PlanMigration(mint solana.PublicKey, tokenUnits, lamports uint64) *MigrationPlan {
	return &MigrationPlan{
		TokenMint:         mint,
		TokenUnits:        tokenUnits,
		LiquidityLamports: lamports,
		Market: MarketStep{
			Name:         "Create OpenBook Market",
			URL:          OpenBookMarketURL,
			BaseMint:     mint.String(),
			QuoteMint:    WrappedSolMint.String(),
			MinOrderSize: MarketMinOrderSize,
			TickSize:     MarketTickSize,
		},
		Pool: PoolStep{
			Name:        "Create Raydium AMM Pool",
			URL:         RaydiumCreateURL,
			PoolType:    PoolTypeStandardAMM,
			MarketID:    MarketIDPlaceholder,
			TokenMint:   mint.String(),
			TokenAmount: model.FormatTokenMillions(tokenUnits),
			SolAmount:   model.FormatSol(lamports),
		},
		Burn: BurnStep{
			Name:        "Burn LP Tokens",
			BurnAddress: BurnAddress.String(),
			Command:     burnCommand(LPMintPlaceholder, OwnerPlaceholder),
			Note:        "Send ALL LP tokens to this address to lock liquidity",
		},
	}
}

// BurnCommand fills the LP burn template once the pool's LP mint is known.
func BurnCommand(lpMint, owner solana.PublicKey) string {
	return burnCommand(lpMint.String(), owner.String())
}

// WithMarket returns a copy of the plan with the market id from step 1 filled in.
func (p *MigrationPlan) WithMarket(marketID solana.PublicKey) *MigrationPlan {
	cp := *p
	cp.Pool.MarketID = marketID.String()
	return &cp
}

func burnCommand(lpMint, owner string) string {
	return fmt.Sprintf("spl-token transfer %s ALL %s --owner %s", lpMint, BurnAddress, owner)
}
