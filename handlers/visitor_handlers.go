package handlers

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"merkez/api/live"
	"merkez/api/logging"
	"merkez/api/metrics"
	"merkez/api/models"
	"merkez/api/store"
)

// maxIngestBody caps how much of a visit body is read. Anything past it is
// ignored and the truncated body usually decodes as malformed.
const maxIngestBody = 64 << 10

// EventQueue receives every recorded event for archiving.
type EventQueue interface {
	Enqueue(e models.EventEntry) bool
}

type VisitorHandlers struct {
	Store     store.CounterStore
	Location  *time.Location
	MaxEvents int

	// Archive and Hub are optional.
	Archive EventQueue
	Hub     *live.Hub

	// AllowedOrigin is the site allowed to open the live websocket; empty or
	// "*" allows any origin.
	AllowedOrigin string
	Now           func() time.Time

	upgrader websocket.Upgrader
}

func NewVisitorHandlers(s store.CounterStore, loc *time.Location, maxEvents int) *VisitorHandlers {
	h := &VisitorHandlers{
		Store:     s,
		Location:  loc,
		MaxEvents: maxEvents,
		Now:       time.Now,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Get answers the stats query, or a liveness message for any other GET.
func (h *VisitorHandlers) Get(c *gin.Context) {
	if c.Query("action") == "stats" {
		h.Stats(c)
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok", Message: "Visitor endpoint active"})
}

// Stats never fails: an unreadable store reports zero counts.
func (h *VisitorHandlers) Stats(c *gin.Context) {
	rec := h.Store.Load(c.Request.Context())
	c.JSON(http.StatusOK, models.StatsFrom(rec))
}

// Ingest records one visit. The body is optional and best-effort: each
// missing, null or mistyped field falls back to its default on its own.
func (h *VisitorHandlers) Ingest(c *gin.Context) {
	reqCtx := c.Request.Context()

	var req models.IngestRequest
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIngestBody))
	if err != nil {
		logging.Ctx(reqCtx).Debug().Err(err).Msg("reading visit body")
	} else if len(body) > 0 {
		if req, err = models.ParseIngestRequest(body); err != nil {
			logging.Ctx(reqCtx).Debug().Err(err).Msg("malformed visit body, using defaults")
		}
	}

	now := h.Now()
	entry := models.EventEntry{
		ID:        uuid.New().String(),
		Timestamp: now.In(h.loc()).Format(time.RFC3339),
		Event:     req.EventOr(models.DefaultEventName),
		Path:      req.PathOr(defaultPath(c.Request)),
		Href:      req.HrefOr(""),
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
	day := store.DayKey(now, h.loc())

	ctx, cancel := context.WithTimeout(reqCtx, 10*time.Second)
	defer cancel()

	rec, err := h.Store.Update(ctx, func(r *models.CounterRecord) {
		store.ApplyEvent(r, entry, day, h.MaxEvents)
	})
	if err != nil {
		logging.Ctx(reqCtx).Error().Err(err).Str("path", entry.Path).Msg("failed to record visit")
		c.JSON(http.StatusInternalServerError, models.StatusResponse{Status: "error", Message: "Failed to record visit"})
		return
	}

	metrics.EventsIngested.WithLabelValues(eventLabel(entry.Event)).Inc()
	if h.Archive != nil {
		h.Archive.Enqueue(entry)
	}
	if h.Hub != nil {
		// Total grows by one per committed update, so it orders the pushes.
		h.Hub.Broadcast(rec.Total, models.StatsFrom(rec))
	}

	c.JSON(http.StatusOK, models.IngestResponse{Status: "ok", Total: rec.Total, Today: rec.Today})
}

// MethodNotAllowed is the response for any verb the visitor endpoint does
// not serve.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, models.StatusResponse{Status: "error", Message: "Method not allowed"})
}

// Live upgrades to a websocket, sends the current stats and then every
// update until the client goes away.
func (h *VisitorHandlers) Live(c *gin.Context) {
	if h.Hub == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "live stats are disabled"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Ctx(c.Request.Context()).Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	msg, err := json.Marshal(models.StatsFrom(h.Store.Load(c.Request.Context())))
	if err == nil {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		err = conn.WriteMessage(websocket.TextMessage, msg)
	}
	if err != nil {
		conn.Close()
		return
	}

	h.Hub.Register(conn)
	defer func() {
		h.Hub.Unregister(conn)
		conn.Close()
	}()

	// Clients only listen; reading detects the close.
	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *VisitorHandlers) loc() *time.Location {
	if h.Location == nil {
		return time.Local
	}
	return h.Location
}

func (h *VisitorHandlers) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.AllowedOrigin == "" || h.AllowedOrigin == "*" {
		return true
	}
	if strings.EqualFold(origin, h.AllowedOrigin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

// defaultPath is the path recorded when the client sends none: the request
// URI of the ingest call itself.
func defaultPath(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	if r.URL != nil && r.URL.Path != "" {
		return r.URL.RequestURI()
	}
	return "/"
}

// eventLabel keeps the metric label set bounded; event names come from clients.
func eventLabel(event string) string {
	if event == models.DefaultEventName {
		return event
	}
	return "other"
}
