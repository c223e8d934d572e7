package store

import (
	"context"
	"time"

	"merkez/api/metrics"
	"merkez/api/models"
)

// Instrument wraps s so every operation is timed under the given driver label.
func Instrument(s CounterStore, driver string) CounterStore {
	return &instrumentedStore{next: s, driver: driver}
}

type instrumentedStore struct {
	next   CounterStore
	driver string
}

func (s *instrumentedStore) Load(ctx context.Context) models.CounterRecord {
	start := time.Now()
	rec := s.next.Load(ctx)
	metrics.ObserveStore(s.driver, "load", start, nil)
	return rec
}

func (s *instrumentedStore) Save(ctx context.Context, rec models.CounterRecord) error {
	start := time.Now()
	err := s.next.Save(ctx, rec)
	metrics.ObserveStore(s.driver, "save", start, err)
	return err
}

func (s *instrumentedStore) Update(ctx context.Context, mutate func(*models.CounterRecord)) (models.CounterRecord, error) {
	start := time.Now()
	rec, err := s.next.Update(ctx, mutate)
	metrics.ObserveStore(s.driver, "update", start, err)
	return rec, err
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}
