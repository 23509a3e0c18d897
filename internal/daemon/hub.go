package daemon

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/felixgeelhaar/codelab/internal/domain"
	"github.com/felixgeelhaar/codelab/internal/session"
	"github.com/felixgeelhaar/codelab/internal/view"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	sendBuffer = 16

	// UpdateSnapshot is the type of the first message on a new connection
	UpdateSnapshot = "snapshot"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

var (
	pageFragments = []string{view.FragmentHeader, view.FragmentSelector, view.FragmentMain}
	runFragments  = []string{
		view.FragmentHeader,
		view.FragmentSelector,
		view.FragmentExercise,
		view.FragmentControls,
		view.FragmentOutput,
	}
)

// Update is one message pushed to a page over its websocket. Fragments
// are keyed by the id of the element they replace.
type Update struct {
	Type      string            `json:"type"`
	Fragments map[string]string `json:"fragments,omitempty"`
	State     *session.State    `json:"state,omitempty"`
}

// fragmentsFor picks the parts of the page an event can change. Run events
// leave the editor textarea alone so typing is never clobbered.
func fragmentsFor(eventType string) []string {
	switch eventType {
	case domain.EventRunStarted, domain.EventRunFinished, domain.EventExerciseCompleted:
		return runFragments
	case domain.EventResultCleared:
		return []string{view.FragmentMain}
	default:
		return pageFragments
	}
}

// Hub pushes re-rendered page fragments to every browser watching a session
type Hub struct {
	sessions *session.Service
	renderer *view.Renderer
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[uuid.UUID]map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// NewHub creates a hub and subscribes it to the session events
func NewHub(sessions *session.Service, renderer *view.Renderer, logger *slog.Logger) *Hub {
	h := &Hub{
		sessions: sessions,
		renderer: renderer,
		logger:   logger,
		clients:  make(map[uuid.UUID]map[*client]struct{}),
	}
	sessions.Events().SubscribeAll(h.onEvent)
	return h
}

// Clients returns the number of open connections
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// ServeWS upgrades the request and streams updates for session id until
// the peer disconnects or the hub closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "session_id", id, "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	if !h.register(id, c) {
		conn.Close()
		return
	}
	defer h.unregister(id, c)

	if data, err := h.render(id, UpdateSnapshot, pageFragments); err == nil {
		c.enqueue(data)
	} else {
		h.logger.Warn("render snapshot failed", "session_id", id, "error", err)
	}

	go h.writePump(c)
	h.readPump(c)
	c.close()
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for _, set := range h.clients {
		for c := range set {
			c.close()
		}
	}
}

func (h *Hub) register(id uuid.UUID, c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	set, ok := h.clients[id]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[id] = set
	}
	set[c] = struct{}{}
	return true
}

func (h *Hub) unregister(id uuid.UUID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.clients[id]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, id)
		}
	}
}

func (h *Hub) watched(id uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[id]) > 0
}

func (h *Hub) onEvent(e domain.Event) {
	id := e.SessionID()
	if !h.watched(id) {
		return
	}

	if e.EventType() == domain.EventSessionEnded {
		data, _ := json.Marshal(Update{Type: e.EventType()})
		h.broadcast(id, data, true)
		return
	}

	data, err := h.render(id, e.EventType(), fragmentsFor(e.EventType()))
	if err != nil {
		h.logger.Warn("render update failed", "session_id", id, "event", e.EventType(), "error", err)
		return
	}
	h.broadcast(id, data, false)
}

func (h *Hub) render(id uuid.UUID, updateType string, names []string) ([]byte, error) {
	st, err := h.sessions.Get(context.Background(), id)
	if err != nil {
		return nil, err
	}
	fragments, err := h.renderer.Fragments(view.Build(st), names...)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Update{
		Type:      updateType,
		Fragments: fragments,
		State:     &st,
	})
}

func (h *Hub) broadcast(id uuid.UUID, data []byte, last bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients[id] {
		if !c.enqueue(data) {
			h.logger.Warn("dropping slow websocket client", "session_id", id)
			c.close()
			continue
		}
		if last {
			c.close()
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			if err := h.write(c, websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := h.write(c, websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			// flush what was queued before the close
			for {
				select {
				case data := <-c.send:
					if err := h.write(c, websocket.TextMessage, data); err != nil {
						return
					}
				default:
					h.write(c, websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

func (h *Hub) write(c *client, messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// readPump discards client messages and returns once the peer goes away
func (h *Hub) readPump(c *client) {
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket closed", "error", err)
			}
			return
		}
	}
}
