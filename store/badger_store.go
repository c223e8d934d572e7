package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"merkez/api/logging"
	"merkez/api/metrics"
	"merkez/api/models"
)

const (
	counterKey = "visitor:counter"

	// maxConflictRetries bounds Update retries on badger.ErrConflict.
	maxConflictRetries = 10
)

// BadgerStore keeps the record as a single JSON value in BadgerDB. Update
// runs in a read-write transaction, so concurrent writers conflict and retry
// instead of overwriting each other.
type BadgerStore struct {
	db        *badger.DB
	maxEvents int
}

// NewBadgerStore takes ownership of db; Close closes it.
func NewBadgerStore(db *badger.DB, maxEvents int) *BadgerStore {
	return &BadgerStore{db: db, maxEvents: maxEvents}
}

func (s *BadgerStore) Load(ctx context.Context) models.CounterRecord {
	var rec models.CounterRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = s.get(txn)
		return err
	})
	if err != nil {
		metrics.StoreErrors.WithLabelValues("badger", "load").Inc()
		logging.Ctx(ctx).Warn().Err(err).Msg("counter record unreadable, using empty record")
		return models.NewCounterRecord()
	}
	return rec
}

// get reads the record inside txn. A missing key is the empty record.
func (s *BadgerStore) get(txn *badger.Txn) (models.CounterRecord, error) {
	rec := models.NewCounterRecord()
	item, err := txn.Get([]byte(counterKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return rec, nil
	}
	if err != nil {
		return rec, fmt.Errorf("get counter: %w", err)
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return models.NewCounterRecord(), fmt.Errorf("decode counter: %w", err)
	}
	rec.Normalize(s.maxEvents)
	return rec, nil
}

func (s *BadgerStore) put(txn *badger.Txn, rec models.CounterRecord) error {
	rec.Normalize(s.maxEvents)
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode counter: %w", err)
	}
	return txn.Set([]byte(counterKey), data)
}

func (s *BadgerStore) Save(_ context.Context, rec models.CounterRecord) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return s.put(txn, rec)
	})
}

func (s *BadgerStore) Update(ctx context.Context, mutate func(*models.CounterRecord)) (models.CounterRecord, error) {
	var out models.CounterRecord
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return models.CounterRecord{}, err
		}
		err := s.db.Update(func(txn *badger.Txn) error {
			rec, err := s.get(txn)
			if err != nil {
				// Corrupt value: start over from the empty record like the file store.
				logging.Ctx(ctx).Warn().Err(err).Msg("replacing unreadable counter record")
				rec = models.NewCounterRecord()
			}
			mutate(&rec)
			rec.Normalize(s.maxEvents)
			if err := s.put(txn, rec); err != nil {
				return err
			}
			out = rec
			return nil
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return models.CounterRecord{}, fmt.Errorf("update counter: %w", err)
		}
		return out.Clone(), nil
	}
	return models.CounterRecord{}, fmt.Errorf("update counter: %w after %d attempts", badger.ErrConflict, maxConflictRetries)
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
