// internal/storage/models/settlement.go
package models

import "time"

// Settlement is one orchestration outcome in the graduation ledger.
// Rows are append-only audit records, never a cache of on-chain state.
type Settlement struct {
	ID                 string    `gorm:"primaryKey;type:uuid" json:"id"`
	BondingCurve       string    `gorm:"index;not null;type:varchar(44)" json:"bondingCurve"`
	TokenMint          string    `gorm:"index;not null;type:varchar(44)" json:"tokenMint"`
	State              string    `gorm:"not null;type:varchar(32)" json:"state"`
	Success            bool      `gorm:"not null;default:false" json:"success"`
	TokenSignature     string    `gorm:"type:varchar(88)" json:"tokenSignature,omitempty"`
	FundsSignature     string    `gorm:"type:varchar(88)" json:"fundsSignature,omitempty"`
	AllocationMillions uint64    `gorm:"not null" json:"allocationMillions"`
	LiquidityLamports  uint64    `gorm:"not null" json:"liquidityLamports"`
	Note               string    `gorm:"type:text" json:"note,omitempty"`
	ErrorMessage       string    `gorm:"type:text" json:"error,omitempty"`
	StartedAt          time.Time `gorm:"not null" json:"startedAt"`
	CompletedAt        time.Time `gorm:"index;not null" json:"completedAt"`
	CreatedAt          time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"-"`
}

// PoolRecord marks that the external pool for a graduated mint was created.
type PoolRecord struct {
	TokenMint string    `gorm:"primaryKey;type:varchar(44)" json:"tokenMint"`
	PoolID    string    `gorm:"not null;type:varchar(44)" json:"poolId"`
	MarketID  string    `gorm:"type:varchar(44)" json:"marketId"`
	LPMint    string    `gorm:"not null;type:varchar(44)" json:"lpMint"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"-"`
}
