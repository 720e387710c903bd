// =============================
// File: internal/dex/launchpad/evaluator.go
// =============================
package launchpad

import "github.com/Ksavu/launched-lol-admin/internal/dex/model"

// Graduation economics of the bonding curve program, in lamports and millions of tokens.
const (
	GraduationThresholdLamports uint64 = 81 * model.LamportsPerSol
	PlatformShareLamports       uint64 = 79 * model.LamportsPerSol
	CreatorShareLamports        uint64 = 2 * model.LamportsPerSol
	LiquidityLamports           uint64 = 75 * model.LamportsPerSol

	AllocationDevClaimedMillions   uint64 = 200
	AllocationDevUnclaimedMillions uint64 = 230
)

// Evaluation is the graduation verdict for one bonding curve.
type Evaluation struct {
	Eligible                bool
	DevClaimed              bool
	TokenAllocationMillions uint64
}

// TokenAllocationUnits returns the allocation in raw 6-decimal token units.
func (e Evaluation) TokenAllocationUnits() uint64 {
	return model.MillionsToTokenUnits(e.TokenAllocationMillions)
}

// Evaluate decides whether bc may graduate and how many tokens move to the platform.
// The allocation is computed even for curves that are not yet eligible.
func Evaluate(bc *BondingCurve) Evaluation {
	eval := Evaluation{
		Eligible:                bc.RealSolReserves >= GraduationThresholdLamports,
		DevClaimed:              bc.DevSupply == 0,
		TokenAllocationMillions: AllocationDevUnclaimedMillions,
	}
	if eval.DevClaimed {
		eval.TokenAllocationMillions = AllocationDevClaimedMillions
	}
	return eval
}
