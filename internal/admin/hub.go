package admin

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // admin surface binds to an operator-chosen address
	},
}

// watcher is one /watch websocket client.
type watcher struct {
	id   string
	conn *websocket.Conn
	send chan string
}

// Hub fans table events out to every /watch client. Slow clients drop
// events instead of stalling the publisher.
type Hub struct {
	mu       sync.RWMutex
	watchers map[string]*watcher
	logger   *log.Logger
}

func NewHub() *Hub {
	return &Hub{
		watchers: make(map[string]*watcher),
		logger:   log.WithPrefix("admin/watch"),
	}
}

// Broadcast queues a line for every connected watcher. Safe from any
// goroutine; never blocks.
func (h *Hub) Broadcast(line string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, w := range h.watchers {
		select {
		case w.send <- line:
		default:
		}
	}
}

// Watchers returns the live client count.
func (h *Hub) Watchers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers)
}

// HandleWatch upgrades /watch requests and pumps events until the
// client leaves.
func (h *Hub) HandleWatch(rw http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "err", err)
		return
	}
	w := &watcher{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan string, 64),
	}
	h.mu.Lock()
	h.watchers[w.id] = w
	h.mu.Unlock()
	h.logger.Info("watcher joined", "id", w.id, "remote", conn.RemoteAddr())

	go h.writePump(w)
	go h.readPump(w)
}

// readPump discards inbound frames; it exists to notice the close.
func (h *Hub) readPump(w *watcher) {
	defer h.remove(w)
	w.conn.SetReadLimit(512)
	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(w *watcher) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		w.conn.Close()
	}()
	for {
		select {
		case line, ok := <-w.send:
			_ = w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = w.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := w.conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return
			}
		case <-ticker.C:
			_ = w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) remove(w *watcher) {
	h.mu.Lock()
	if _, ok := h.watchers[w.id]; ok {
		delete(h.watchers, w.id)
		close(w.send)
	}
	h.mu.Unlock()
	h.logger.Info("watcher left", "id", w.id)
}
