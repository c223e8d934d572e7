// Package live pushes counter updates to websocket clients.
package live

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"merkez/api/logging"
	"merkez/api/metrics"
)

const writeWait = 5 * time.Second

// Hub fans each broadcast out to every registered connection. Slow or dead
// connections are dropped on the first failed write.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	msgCh   chan []byte
	done    chan struct{}

	// seqMu orders Broadcast calls; lastSeq is the newest queued.
	seqMu   sync.Mutex
	lastSeq uint64

	closeOnce sync.Once
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		msgCh:   make(chan []byte, 64),
		done:    make(chan struct{}),
	}
}

// Run delivers broadcasts until Close is called.
func (h *Hub) Run() {
	for {
		select {
		case msg := <-h.msgCh:
			h.deliver(msg)
		case <-h.done:
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			metrics.LiveClients.Set(0)
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) deliver(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logging.Debug().Err(err).Msg("dropping live stats client")
			conn.Close()
			delete(h.clients, conn)
		}
	}
	metrics.LiveClients.Set(float64(len(h.clients)))
}

// Broadcast queues v for all clients unless seq is not newer than the last
// one queued. It drops the message if the queue is full.
func (h *Hub) Broadcast(seq uint64, v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("encode live stats message")
		return
	}

	h.seqMu.Lock()
	defer h.seqMu.Unlock()
	if seq <= h.lastSeq {
		return
	}
	h.lastSeq = seq
	select {
	case h.msgCh <- msg:
	default:
	}
}

func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	metrics.LiveClients.Set(float64(len(h.clients)))
	h.mu.Unlock()
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	metrics.LiveClients.Set(float64(len(h.clients)))
	h.mu.Unlock()
}

// Clients reports the number of registered connections.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close stops Run and disconnects every client.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
