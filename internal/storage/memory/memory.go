// Package memory is an in-process settlement ledger used when no database is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Ksavu/launched-lol-admin/internal/storage"
	"github.com/Ksavu/launched-lol-admin/internal/storage/models"
)

// Storage keeps settlements in memory; contents are lost on restart.
type Storage struct {
	mu          sync.RWMutex
	settlements map[string]*models.Settlement
	pools       map[string]*models.PoolRecord
}

// New creates an empty ledger.
func New() *Storage {
	return &Storage{
		settlements: make(map[string]*models.Settlement),
		pools:       make(map[string]*models.PoolRecord),
	}
}

var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveSettlement(_ context.Context, rec *models.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.settlements[rec.ID]; ok {
		return fmt.Errorf("settlement %s: %w", rec.ID, storage.ErrDuplicateKey)
	}
	cp := *rec
	s.settlements[rec.ID] = &cp
	return nil
}

func (s *Storage) GetSettlement(_ context.Context, id string) (*models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.settlements[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// sorted returns copies ordered by completion time, newest first.
func (s *Storage) sorted() []*models.Settlement {
	out := make([]*models.Settlement, 0, len(s.settlements))
	for _, rec := range s.settlements {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out
}

func (s *Storage) ListSettlements(_ context.Context, limit, offset int) ([]*models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sorted()
	if offset >= len(all) {
		return []*models.Settlement{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *Storage) LatestSettlement(_ context.Context, tokenMint string) (*models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.sorted() {
		if rec.TokenMint == tokenMint {
			return rec, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Storage) SavePool(_ context.Context, rec *models.PoolRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.pools[rec.TokenMint] = &cp
	return nil
}

func (s *Storage) PoolsByMint(_ context.Context, mints []string) (map[string]*models.PoolRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*models.PoolRecord, len(mints))
	for _, mint := range mints {
		if rec, ok := s.pools[mint]; ok {
			cp := *rec
			out[mint] = &cp
		}
	}
	return out, nil
}

func (s *Storage) RunMigrations() error { return nil }

func (s *Storage) Close() error { return nil }
