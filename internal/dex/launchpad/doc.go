// Package launchpad implements the client-side view of the launched.lol on-chain programs.
//
// This package provides:
// - Fixed-layout decoders for bonding curve, social registry, token metadata and SPL token accounts.
// - The graduation evaluator that turns a decoded bonding curve into an eligibility verdict.
// - Builders for the wire-format instructions the admin engine submits.
//
// Key Types and Functions:
//
// - Layout: versioned schema descriptor (field name, offset, width, kind) for one account kind.
// - DecodeBondingCurve(), DecodeRegistry(), DecodeTokenMetadata(), DecodeTokenAccount(): pure decoders.
// - DecodeBondingCurveAccount() and friends: owner-checked decoding of fetched accounts.
// - Evaluate(): eligibility and token allocation for a bonding curve.
// - BuildInstruction(): generic instruction builder that preserves account order.
// - Config: program ids and discriminators, see GetDefaultConfig().
//
// Usage example:
//
//	cfg := launchpad.GetDefaultConfig()
//	info, err := client.GetAccountInfo(ctx, bondingCurve)
//	if err != nil {
//	    return err
//	}
//	curve, err := launchpad.DecodeBondingCurveAccount(info.Value, cfg.BondingCurveProgram)
//	if err != nil {
//	    return err
//	}
//	if eval := launchpad.Evaluate(curve); eval.Eligible {
//	    ix, err := cfg.GraduateTokenInstruction(launchpad.GraduationAccounts{...})
//	    ...
//	}
package launchpad
