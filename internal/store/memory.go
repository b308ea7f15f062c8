package store

import (
	"context"
	"sync"
	"time"

	"github.com/aqstack/air-quality-aggregation/internal/aqi"
)

// MemoryStore is a concurrency-safe in-memory record store used when no
// database is configured (and in tests).
type MemoryStore struct {
	mu      sync.RWMutex
	records []aqi.Record // append order == arrival order

	// retention configuration
	maxRecords int           // max number of retained records (<= 0: unlimited)
	maxAge     time.Duration // max record age (0: unlimited)
}

// NewMemoryStore creates a MemoryStore with optional retention limits.
func NewMemoryStore(maxRecords int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxRecords: maxRecords,
		maxAge:     maxAge,
	}
}

// Put appends a record and enforces retention.
func (s *MemoryStore) Put(_ context.Context, rec aqi.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)

	// Enforce retention by count.
	if s.maxRecords > 0 && len(s.records) > s.maxRecords {
		over := len(s.records) - s.maxRecords
		s.records = s.records[over:]
	}

	// Enforce retention by age. Records carry provider timestamps that may
	// arrive out of order, so the whole slice is filtered rather than cut at
	// the first fresh entry.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		kept := s.records[:0]
		for _, r := range s.records {
			if !r.Timestamp.Before(cutoff) {
				kept = append(kept, r)
			}
		}
		s.records = kept
	}

	return nil
}

// Query returns matching records newest first, up to f.Limit.
func (s *MemoryStore) Query(_ context.Context, f aqi.Filter) ([]aqi.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]aqi.Record, 0, f.Limit)
	for i := len(s.records) - 1; i >= 0; i-- {
		if f.Source != "" && s.records[i].Source != f.Source {
			continue
		}
		result = append(result, s.records[i])
		if f.Limit > 0 && len(result) >= f.Limit {
			break
		}
	}
	return result, nil
}
