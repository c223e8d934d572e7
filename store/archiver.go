package store

import (
	"context"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"merkez/api/logging"
	"merkez/api/metrics"
	"merkez/api/models"
)

// EventSink receives batches of archived events.
type EventSink interface {
	InsertEvents(ctx context.Context, events []models.EventEntry) error
}

type ArchiverConfig struct {
	BatchSize     int
	FlushInterval time.Duration
	BufferSize    int
	// InsertTimeout bounds a single batch insert. Default 15s.
	InsertTimeout time.Duration
}

// Archiver copies ingested events to an EventSink in the background.
// Enqueue never blocks the ingest path: when the buffer is full the event
// is dropped and counted. Sink calls go through a circuit breaker so a down
// ClickHouse costs one fast failure per batch instead of a timeout.
type Archiver struct {
	sink    EventSink
	cfg     ArchiverConfig
	queue   chan models.EventEntry
	breaker *gobreaker.CircuitBreaker[struct{}]

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewArchiver(sink EventSink, cfg ArchiverConfig) *Archiver {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	if cfg.InsertTimeout <= 0 {
		cfg.InsertTimeout = 15 * time.Second
	}

	a := &Archiver{
		sink:  sink,
		cfg:   cfg,
		queue: make(chan models.EventEntry, cfg.BufferSize),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	a.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "clickhouse-archive",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("archive circuit breaker state changed")
		},
	})
	return a
}

// Enqueue queues e for archiving. It reports false if e was dropped.
func (a *Archiver) Enqueue(e models.EventEntry) bool {
	select {
	case a.queue <- e:
		return true
	default:
		metrics.ArchiveEvents.WithLabelValues("dropped").Inc()
		return false
	}
}

// Run batches queued events until Stop is called, then flushes what is left.
func (a *Archiver) Run() {
	defer close(a.done)

	ticker := time.NewTicker(a.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]models.EventEntry, 0, a.cfg.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		a.send(batch)
		batch = make([]models.EventEntry, 0, a.cfg.BatchSize)
	}

	for {
		select {
		case e := <-a.queue:
			batch = append(batch, e)
			if len(batch) >= a.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-a.stop:
			for {
				select {
				case e := <-a.queue:
					batch = append(batch, e)
					if len(batch) >= a.cfg.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func (a *Archiver) send(batch []models.EventEntry) {
	_, err := a.breaker.Execute(func() (struct{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.InsertTimeout)
		defer cancel()
		return struct{}{}, a.sink.InsertEvents(ctx, batch)
	})
	if err != nil {
		metrics.ArchiveEvents.WithLabelValues("failed").Add(float64(len(batch)))
		logging.Error().Err(err).Int("count", len(batch)).Msg("failed to archive visitor events")
		return
	}
	metrics.ArchiveEvents.WithLabelValues("inserted").Add(float64(len(batch)))
}

// Stop signals Run to flush and exit, waiting at most until ctx is done.
func (a *Archiver) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() { close(a.stop) })
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
