package store

import (
	"time"

	"merkez/api/models"
)

const dayLayout = "2006-01-02"

// DayKey is the calendar day of t in loc, used for the "today" counter.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dayLayout)
}

// ApplyEvent records one ingested event on rec:
// total always grows by one, today restarts at 1 when day differs from the
// stored day, and the event log keeps only the newest maxEvents entries.
func ApplyEvent(rec *models.CounterRecord, entry models.EventEntry, day string, maxEvents int) {
	rec.Total++
	if rec.LastUpdate != day {
		rec.Today = 1
		rec.LastUpdate = day
	} else {
		rec.Today++
	}
	rec.Events = append(rec.Events, entry)
	rec.Normalize(maxEvents)
}
