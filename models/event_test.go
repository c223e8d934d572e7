package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestStatsFromNeverUpdated(t *testing.T) {
	got := StatsFrom(NewCounterRecord())
	want := StatsResponse{Total: 0, Today: 0, LastUpdated: "never"}
	if got != want {
		t.Errorf("StatsFrom(empty) = %+v, want %+v", got, want)
	}

	got = StatsFrom(CounterRecord{Total: 4, Today: 1, LastUpdate: "2025-12-10"})
	if got.LastUpdated != "2025-12-10" || got.Total != 4 || got.Today != 1 {
		t.Errorf("StatsFrom = %+v", got)
	}
}

func TestNormalize(t *testing.T) {
	var r CounterRecord
	r.Normalize(3)
	if r.Events == nil {
		t.Fatal("Normalize should replace nil events with an empty slice")
	}

	for i := 0; i < 5; i++ {
		r.Events = append(r.Events, EventEntry{Path: string(rune('a' + i))})
	}
	r.Normalize(3)
	if len(r.Events) != 3 {
		t.Fatalf("len(Events) = %d, want 3", len(r.Events))
	}
	if r.Events[0].Path != "c" || r.Events[2].Path != "e" {
		t.Errorf("Normalize kept the wrong entries: %+v", r.Events)
	}
}

func TestCloneDoesNotShareEvents(t *testing.T) {
	r := CounterRecord{Events: []EventEntry{{Path: "/"}}}
	c := r.Clone()
	c.Events[0].Path = "/changed"
	if r.Events[0].Path != "/" {
		t.Error("Clone shares the events slice with its source")
	}
}

func TestIngestRequestDefaults(t *testing.T) {
	var req IngestRequest
	if err := json.Unmarshal([]byte(`{"path":"/en","ts":1733700000000}`), &req); err != nil {
		t.Fatal(err)
	}
	if got := req.EventOr(DefaultEventName); got != "page_view" {
		t.Errorf("EventOr = %q, want page_view", got)
	}
	if got := req.PathOr("/fallback"); got != "/en" {
		t.Errorf("PathOr = %q, want /en", got)
	}

	req = IngestRequest{}
	if err := json.Unmarshal([]byte(`{"event":null}`), &req); err != nil {
		t.Fatal(err)
	}
	if got := req.EventOr(DefaultEventName); got != "page_view" {
		t.Errorf("null event should default, got %q", got)
	}
}

func TestCounterRecordWireKeys(t *testing.T) {
	data, err := json.Marshal(NewCounterRecord())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"total":0,"today":0,"last_update":"","events":[]}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestParseIngestRequestPerField(t *testing.T) {
	str := func(p *string) string {
		if p == nil {
			return "<nil>"
		}
		return *p
	}
	tests := []struct {
		body      string
		event     string
		path      string
		href      string
		wantTs    bool
		wantError bool
	}{
		{`{"event":"download","path":123}`, "download", "<nil>", "<nil>", false, false},
		{`{"event":"download","path":"/indir","ts":"2025-12-09T10:00:00Z"}`, "download", "/indir", "<nil>", false, false},
		{`{"event":["x"],"path":"/a","href":"https://merkez.web.tr/a","ts":1733738400000}`, "<nil>", "/a", "https://merkez.web.tr/a", true, false},
		{`{"event":null,"path":""}`, "<nil>", "", "<nil>", false, false},
		{`[1,2]`, "<nil>", "<nil>", "<nil>", false, true},
		{`not json`, "<nil>", "<nil>", "<nil>", false, true},
	}
	for _, tt := range tests {
		req, err := ParseIngestRequest([]byte(tt.body))
		if (err != nil) != tt.wantError {
			t.Errorf("%s: err = %v, wantError %v", tt.body, err, tt.wantError)
		}
		if got := str(req.Event); got != tt.event {
			t.Errorf("%s: event = %q, want %q", tt.body, got, tt.event)
		}
		if got := str(req.Path); got != tt.path {
			t.Errorf("%s: path = %q, want %q", tt.body, got, tt.path)
		}
		if got := str(req.Href); got != tt.href {
			t.Errorf("%s: href = %q, want %q", tt.body, got, tt.href)
		}
		if (req.Ts != nil) != tt.wantTs {
			t.Errorf("%s: ts = %v, want present %v", tt.body, req.Ts, tt.wantTs)
		}
	}
}
