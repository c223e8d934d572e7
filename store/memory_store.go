package store

import (
	"context"
	"sync"

	"merkez/api/models"
)

// MemoryStore keeps the record in process memory. Used by tests and the
// "memory" driver; state is lost on restart.
type MemoryStore struct {
	mu        sync.Mutex
	rec       models.CounterRecord
	maxEvents int
}

func NewMemoryStore(maxEvents int) *MemoryStore {
	return &MemoryStore{rec: models.NewCounterRecord(), maxEvents: maxEvents}
}

func (s *MemoryStore) Load(context.Context) models.CounterRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Clone()
}

func (s *MemoryStore) Save(_ context.Context, rec models.CounterRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec = rec.Clone()
	rec.Normalize(s.maxEvents)
	s.rec = rec
	return nil
}

func (s *MemoryStore) Update(_ context.Context, mutate func(*models.CounterRecord)) (models.CounterRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.rec.Clone()
	mutate(&rec)
	rec.Normalize(s.maxEvents)
	s.rec = rec
	return rec.Clone(), nil
}

func (s *MemoryStore) Close() error { return nil }
