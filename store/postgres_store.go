package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"merkez/api/logging"
	"merkez/api/metrics"
	"merkez/api/models"
)

const counterRowID = 1

// PostgresStore keeps the record as a JSONB value in a single row. Update
// locks that row with SELECT ... FOR UPDATE for the whole transaction.
type PostgresStore struct {
	db        *sql.DB
	maxEvents int
}

// NewPostgresStore creates the table and the initial row if needed.
func NewPostgresStore(ctx context.Context, db *sql.DB, maxEvents int) (*PostgresStore, error) {
	s := &PostgresStore{db: db, maxEvents: maxEvents}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS visitor_counter (
			id         SMALLINT PRIMARY KEY,
			record     JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("create visitor_counter table: %w", err)
	}

	initial, err := json.Marshal(models.NewCounterRecord())
	if err != nil {
		return fmt.Errorf("encode initial record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO visitor_counter (id, record) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		counterRowID, string(initial))
	if err != nil {
		return fmt.Errorf("insert initial counter row: %w", err)
	}
	return nil
}

func (s *PostgresStore) decode(data []byte) (models.CounterRecord, error) {
	var rec models.CounterRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.NewCounterRecord(), fmt.Errorf("decode counter row: %w", err)
	}
	rec.Normalize(s.maxEvents)
	return rec, nil
}

func (s *PostgresStore) Load(ctx context.Context) models.CounterRecord {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM visitor_counter WHERE id = $1`, counterRowID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewCounterRecord()
	}
	if err == nil {
		var rec models.CounterRecord
		if rec, err = s.decode(data); err == nil {
			return rec
		}
	}
	metrics.StoreErrors.WithLabelValues("postgres", "load").Inc()
	logging.Ctx(ctx).Warn().Err(err).Msg("counter row unreadable, using empty record")
	return models.NewCounterRecord()
}

func (s *PostgresStore) Save(ctx context.Context, rec models.CounterRecord) error {
	rec.Normalize(s.maxEvents)
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode counter record: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO visitor_counter (id, record, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET record = EXCLUDED.record, updated_at = now()
	`, counterRowID, string(data))
	if err != nil {
		return fmt.Errorf("save counter row: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, mutate func(*models.CounterRecord)) (models.CounterRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.CounterRecord{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	rec := models.NewCounterRecord()
	var data []byte
	err = tx.QueryRowContext(ctx,
		`SELECT record FROM visitor_counter WHERE id = $1 FOR UPDATE`, counterRowID).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Row deleted out from under us; the upsert below recreates it.
	case err != nil:
		return models.CounterRecord{}, fmt.Errorf("lock counter row: %w", err)
	default:
		if rec, err = s.decode(data); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("replacing unreadable counter row")
		}
	}

	mutate(&rec)
	rec.Normalize(s.maxEvents)

	out, err := json.Marshal(rec)
	if err != nil {
		return models.CounterRecord{}, fmt.Errorf("encode counter record: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO visitor_counter (id, record, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET record = EXCLUDED.record, updated_at = now()
	`, counterRowID, string(out))
	if err != nil {
		return models.CounterRecord{}, fmt.Errorf("write counter row: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.CounterRecord{}, fmt.Errorf("commit counter update: %w", err)
	}
	return rec.Clone(), nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
