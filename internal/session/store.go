// Package session keeps uploaded datasets in memory for a sliding TTL.
// Nothing is written to disk.
package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"csvdash/domain/core"
	"csvdash/domain/dataset"
)

type entry struct {
	ds        *dataset.Dataset
	expiresAt time.Time
}

// MemoryStore is a concurrency-safe DatasetStore with expiry.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[core.DatasetID]*entry
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewMemoryStore creates a store whose entries expire ttl after last use.
func NewMemoryStore(ttl time.Duration, logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		entries: make(map[core.DatasetID]*entry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger.Named("session"),
	}
}

// Put stores ds under its ID.
func (s *MemoryStore) Put(_ context.Context, ds *dataset.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[ds.ID] = &entry{ds: ds, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Get returns the dataset and extends its lifetime.
func (s *MemoryStore) Get(_ context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	now := s.now()
	if !ok || now.After(e.expiresAt) {
		delete(s.entries, id)
		return nil, core.ErrDatasetNotFound
	}
	e.expiresAt = now.Add(s.ttl)
	return e.ds, nil
}

// Delete removes a dataset.
func (s *MemoryStore) Delete(_ context.Context, id core.DatasetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return core.ErrDatasetNotFound
	}
	delete(s.entries, id)
	return nil
}

// List returns live datasets, most recently loaded first.
func (s *MemoryStore) List(_ context.Context) ([]*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	out := make([]*dataset.Dataset, 0, len(s.entries))
	for _, e := range s.entries {
		if !now.After(e.expiresAt) {
			out = append(out, e.ds)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoadedAt.After(out[j].LoadedAt) })
	return out, nil
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Run sweeps every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("expired datasets swept", zap.Int("count", n))
			}
		}
	}
}
