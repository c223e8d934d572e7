package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"merkez/api/logging"
	"merkez/api/metrics"
	"merkez/api/models"
)

// FileStore keeps the record in one pretty-printed JSON file.
//
// Writes go to a temporary file in the same directory which is fsynced and
// renamed over the canonical file. Update holds an in-process lock and an
// exclusive flock on "<path>.lock" across the whole read-modify-write, so
// other processes using FileStore on the same path are serialized too.
type FileStore struct {
	path      string
	lockPath  string
	maxEvents int

	// sem is the in-process write lock; a channel so waiters can honor ctx.
	sem chan struct{}
}

// NewFileStore opens the store at path, writing the empty record if the
// file does not exist yet.
func NewFileStore(path string, maxEvents int) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	s := &FileStore{
		path:      path,
		lockPath:  path + ".lock",
		maxEvents: maxEvents,
		sem:       make(chan struct{}, 1),
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.Save(context.Background(), models.NewCounterRecord()); err != nil {
			return nil, fmt.Errorf("initialize %s: %w", path, err)
		}
		logging.Info().Str("path", path).Msg("initialized visitor counter file")
	}
	return s, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) models.CounterRecord {
	rec, err := s.read()
	if err != nil {
		metrics.StoreErrors.WithLabelValues("file", "load").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("path", s.path).Msg("counter file unreadable, using empty record")
		return models.NewCounterRecord()
	}
	return rec
}

func (s *FileStore) read() (models.CounterRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return models.CounterRecord{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return models.CounterRecord{}, errors.New("counter file is empty")
	}

	var rec models.CounterRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.CounterRecord{}, fmt.Errorf("decode counter file: %w", err)
	}
	rec.Normalize(s.maxEvents)
	return rec, nil
}

func (s *FileStore) Save(ctx context.Context, rec models.CounterRecord) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	return s.write(rec)
}

func (s *FileStore) Update(ctx context.Context, mutate func(*models.CounterRecord)) (models.CounterRecord, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return models.CounterRecord{}, err
	}
	defer unlock()

	rec := s.Load(ctx)
	mutate(&rec)
	rec.Normalize(s.maxEvents)

	if err := s.write(rec); err != nil {
		return models.CounterRecord{}, err
	}
	return rec.Clone(), nil
}

// lock takes the in-process lock and then the cross-process flock. Both
// waits end with ctx.
func (s *FileStore) lock(ctx context.Context) (func(), error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("lock counter file: %w", ctx.Err())
	}
	unlock, err := lockFile(ctx, s.lockPath)
	if err != nil {
		<-s.sem
		return nil, fmt.Errorf("lock counter file: %w", err)
	}
	return func() {
		unlock()
		<-s.sem
	}, nil
}

// write replaces the canonical file. Callers hold the lock.
func (s *FileStore) write(rec models.CounterRecord) error {
	rec.Normalize(s.maxEvents)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode counter record: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace counter file: %w", err)
	}
	committed = true
	return nil
}

func (s *FileStore) Close() error { return nil }
