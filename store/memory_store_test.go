package store

import (
	"context"
	"sync"
	"testing"

	"merkez/api/models"
)

func TestMemoryStoreIsolation(t *testing.T) {
	s := NewMemoryStore(1000)
	ctx := context.Background()

	rec := s.Load(ctx)
	rec.Events = append(rec.Events, models.EventEntry{Path: "/leak"})
	rec.Total = 99
	if got := s.Load(ctx); got.Total != 0 || len(got.Events) != 0 {
		t.Errorf("mutating a loaded record changed the store: %+v", got)
	}
}

func TestMemoryStoreConcurrentUpdates(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(ctx, func(r *models.CounterRecord) {
				ApplyEvent(r, models.EventEntry{}, "2025-12-09", 10)
			})
		}()
	}
	wg.Wait()

	rec := s.Load(ctx)
	if rec.Total != 100 || rec.Today != 100 {
		t.Errorf("total=%d today=%d, want 100/100", rec.Total, rec.Today)
	}
	if len(rec.Events) != 10 {
		t.Errorf("len(Events) = %d, want 10", len(rec.Events))
	}
}

func TestNewCounterStoreUnknownDriver(t *testing.T) {
	_, err := NewCounterStore(context.Background(), configFor("redis"))
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNewCounterStoreMemory(t *testing.T) {
	s, err := NewCounterStore(context.Background(), configFor("memory"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	rec, err := s.Update(context.Background(), func(r *models.CounterRecord) { r.Total = 5 })
	if err != nil {
		t.Fatal(err)
	}
	if rec.Total != 5 {
		t.Errorf("Total = %d, want 5", rec.Total)
	}
}
