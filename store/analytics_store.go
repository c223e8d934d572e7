package store

import (
	"context"
	"fmt"
	"time"

	"merkez/api/database"
	"merkez/api/logging"
	"merkez/api/models"
)

// AnalyticsStore writes visit events to ClickHouse. It keeps the full
// history the bounded event log in the counter record drops.
type AnalyticsStore struct {
	DB *database.ClickHouseClient
}

func NewAnalyticsStore(chClient *database.ClickHouseClient) *AnalyticsStore {
	return &AnalyticsStore{DB: chClient}
}

func (s *AnalyticsStore) EnsureSchema(ctx context.Context) error {
	err := s.DB.Conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS visitor_events (
			event_id   String,
			timestamp  DateTime64(3),
			event_type LowCardinality(String),
			page_path  String,
			href       String,
			user_agent String,
			ip_address String
		) ENGINE = MergeTree
		ORDER BY (timestamp, event_type)
	`)
	if err != nil {
		return fmt.Errorf("failed to create visitor_events table: %w", err)
	}
	return nil
}

// InsertEvents sends events as one batch.
func (s *AnalyticsStore) InsertEvents(ctx context.Context, events []models.EventEntry) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO visitor_events (
			event_id, timestamp, event_type, page_path, href, user_agent, ip_address
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		ts, perr := time.Parse(time.RFC3339, event.Timestamp)
		if perr != nil {
			ts = time.Now()
		}
		err := batch.Append(
			event.ID,
			ts,
			event.Event,
			event.Path,
			event.Href,
			event.UserAgent,
			event.IPAddress,
		)
		if err != nil {
			logging.Warn().Err(err).Str("event_id", event.ID).Msg("skipping event that could not be appended to batch")
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	logging.Debug().Int("count", len(events)).Msg("archived visitor events")
	return nil
}
