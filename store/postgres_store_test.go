package store

import (
	"context"
	"os"
	"sync"
	"testing"

	"merkez/api/database"
	"merkez/api/models"
)

// Runs against a real database when TEST_DATABASE_URL is set.
func newTestPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	client, err := database.NewPostgresDB(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := client.DB.ExecContext(ctx, `DROP TABLE IF EXISTS visitor_counter`); err != nil {
		t.Fatal(err)
	}
	s, err := NewPostgresStore(ctx, client.DB, 1000)
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgresStoreConcurrentUpdates(t *testing.T) {
	s := newTestPostgresStore(t)
	ctx := context.Background()

	if rec := s.Load(ctx); rec.Total != 0 || rec.Events == nil {
		t.Fatalf("fresh table Load = %+v", rec)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Update(ctx, func(r *models.CounterRecord) {
				ApplyEvent(r, models.EventEntry{Path: "/"}, "2025-12-09", 1000)
			}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	rec := s.Load(ctx)
	if rec.Total != 20 || rec.Today != 20 || len(rec.Events) != 20 {
		t.Errorf("after 20 updates: total=%d today=%d events=%d", rec.Total, rec.Today, len(rec.Events))
	}
}
