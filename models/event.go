package models

import "github.com/goccy/go-json"

// DefaultEventName is recorded when an ingest request carries no event name.
const DefaultEventName = "page_view"

// EventEntry is one ingested visit as kept in the bounded event log.
type EventEntry struct {
	ID        string `json:"id,omitempty"`
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Path      string `json:"path"`
	Href      string `json:"href,omitempty"`
	UserAgent string `json:"user_agent"`
	IPAddress string `json:"ip"`
}

// CounterRecord is the whole persisted visitor state.
type CounterRecord struct {
	Total      uint64       `json:"total"`
	Today      uint64       `json:"today"`
	LastUpdate string       `json:"last_update"` // YYYY-MM-DD, "" before the first event
	Events     []EventEntry `json:"events"`
}

// NewCounterRecord returns the empty record written to a fresh store.
func NewCounterRecord() CounterRecord {
	return CounterRecord{Events: []EventEntry{}}
}

// Clone returns a deep copy so callers never share the events slice.
func (r CounterRecord) Clone() CounterRecord {
	out := r
	out.Events = make([]EventEntry, len(r.Events))
	copy(out.Events, r.Events)
	return out
}

// Normalize repairs a freshly decoded record: nil events become empty and
// the log is trimmed to at most maxEvents, keeping the newest entries.
func (r *CounterRecord) Normalize(maxEvents int) {
	if r.Events == nil {
		r.Events = []EventEntry{}
	}
	if maxEvents > 0 && len(r.Events) > maxEvents {
		r.Events = append([]EventEntry(nil), r.Events[len(r.Events)-maxEvents:]...)
	}
}

// IngestRequest is the optional-field body of a visit notification.
// Nil fields fall back to defaults; ts is accepted but the server clock wins.
type IngestRequest struct {
	Event *string  `json:"event"`
	Path  *string  `json:"path"`
	Href  *string  `json:"href"`
	Ts    *float64 `json:"ts"`
}

// ParseIngestRequest decodes a visit body one field at a time, so a field of
// the wrong type reads as absent without discarding the others. It returns
// an error, and the zero request, only when body is not a JSON object.
func ParseIngestRequest(body []byte) (IngestRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return IngestRequest{}, err
	}
	req := IngestRequest{
		Event: rawString(raw["event"]),
		Path:  rawString(raw["path"]),
		Href:  rawString(raw["href"]),
	}
	if v, ok := raw["ts"]; ok {
		var ts *float64
		if json.Unmarshal(v, &ts) == nil {
			req.Ts = ts
		}
	}
	return req, nil
}

// rawString returns nil for a missing, null or non-string value.
func rawString(v json.RawMessage) *string {
	if len(v) == 0 {
		return nil
	}
	var s *string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil
	}
	return s
}

// EventOr returns the event name or the default when absent.
func (r IngestRequest) EventOr(def string) string {
	if r.Event == nil {
		return def
	}
	return *r.Event
}

// PathOr returns the path or the given fallback when absent.
func (r IngestRequest) PathOr(def string) string {
	if r.Path == nil {
		return def
	}
	return *r.Path
}

func (r IngestRequest) HrefOr(def string) string {
	if r.Href == nil {
		return def
	}
	return *r.Href
}

// StatsResponse is returned by the stats query.
type StatsResponse struct {
	Total       uint64 `json:"total"`
	Today       uint64 `json:"today"`
	LastUpdated string `json:"last_updated"`
}

// NeverUpdated is reported as last_updated before the first event.
const NeverUpdated = "never"

// StatsFrom derives the public stats view of a record.
func StatsFrom(r CounterRecord) StatsResponse {
	last := r.LastUpdate
	if last == "" {
		last = NeverUpdated
	}
	return StatsResponse{Total: r.Total, Today: r.Today, LastUpdated: last}
}

type IngestResponse struct {
	Status string `json:"status"`
	Total  uint64 `json:"total"`
	Today  uint64 `json:"today"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
