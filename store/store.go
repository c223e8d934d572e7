// Package store persists the visitor CounterRecord.
//
// Every backend serializes Update as a whole (load, mutate, save), so
// concurrent ingests never lose an increment. Load never fails: missing or
// unreadable state reads as the empty record.
package store

import (
	"context"
	"errors"
	"fmt"

	"merkez/api/config"
	"merkez/api/database"
	"merkez/api/models"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// CounterStore is the storage abstraction behind the visitor handlers.
type CounterStore interface {
	// Load returns the current record, or the empty record if the backing
	// state is missing or unreadable.
	Load(ctx context.Context) models.CounterRecord
	// Save commits rec atomically: readers see the old or the new record,
	// never a mix.
	Save(ctx context.Context, rec models.CounterRecord) error
	// Update runs mutate on the current record and saves the result while
	// holding the store's write lock, returning the saved record. mutate may
	// be called more than once if the backend retries on conflict.
	Update(ctx context.Context, mutate func(*models.CounterRecord)) (models.CounterRecord, error)
	Close() error
}

// NewCounterStore builds the backend selected by cfg.Driver, wrapped with
// Prometheus instrumentation.
func NewCounterStore(ctx context.Context, cfg config.StoreConfig) (CounterStore, error) {
	var (
		s   CounterStore
		err error
	)

	switch cfg.Driver {
	case config.DriverFile:
		s, err = NewFileStore(cfg.FilePath, cfg.MaxEvents)
	case config.DriverMemory:
		s = NewMemoryStore(cfg.MaxEvents)
	case config.DriverBadger:
		db, openErr := database.OpenBadger(cfg.BadgerPath)
		if openErr != nil {
			return nil, openErr
		}
		s = NewBadgerStore(db, cfg.MaxEvents)
	case config.DriverPostgres:
		client, connErr := database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if connErr != nil {
			return nil, connErr
		}
		s, err = NewPostgresStore(ctx, client.DB, cfg.MaxEvents)
		if err != nil {
			client.Close()
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	return Instrument(s, cfg.Driver), nil
}
