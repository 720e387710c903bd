// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/Ksavu/launched-lol-admin/internal/storage/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a settlement id is inserted twice.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Storage is the settlement ledger.
type Storage interface {
	// Settlements
	SaveSettlement(ctx context.Context, s *models.Settlement) error
	GetSettlement(ctx context.Context, id string) (*models.Settlement, error)
	ListSettlements(ctx context.Context, limit, offset int) ([]*models.Settlement, error)
	LatestSettlement(ctx context.Context, tokenMint string) (*models.Settlement, error)

	// Pools created from migration plans, keyed by mint
	SavePool(ctx context.Context, p *models.PoolRecord) error
	PoolsByMint(ctx context.Context, mints []string) (map[string]*models.PoolRecord, error)

	RunMigrations() error
	Close() error
}
