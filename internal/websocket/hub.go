package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"portfolio-backend/internal/log"
	"portfolio-backend/internal/models"
	"portfolio-backend/internal/session"
)

const (
	EventSnapshot = "session_snapshot"

	writeWait = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type TokenParser interface {
	ParseSessionToken(token string) (uuid.UUID, error)
}

type SessionLookup interface {
	Get(id uuid.UUID) (*session.Page, error)
}

// conn serializes writes; gorilla connections allow one concurrent writer.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Hub delivers page events to every socket open on a session. Pages live in
// the memory of the instance that created them, so a socket is only accepted
// for a session held locally; deployments with several instances need sticky
// routing. With Redis configured, events still travel through a per-session
// channel and are delivered by the subscription of the instance holding the
// socket.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID][]*conn
	cancelFuncs map[uuid.UUID]context.CancelFunc
	publisher   *redis.Client
	subscriber  *redis.Client
	tokens      TokenParser
	sessions    SessionLookup
}

// NewHub builds a hub. Both redis clients may be nil for single-instance
// deployments.
func NewHub(publisher, subscriber *redis.Client, tokens TokenParser, sessions SessionLookup) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID][]*conn),
		cancelFuncs: make(map[uuid.UUID]context.CancelFunc),
		publisher:   publisher,
		subscriber:  subscriber,
		tokens:      tokens,
		sessions:    sessions,
	}
}

// SetSessions attaches the session store once it exists; the store needs the
// hub as its publisher first.
func (h *Hub) SetSessions(sessions SessionLookup) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions = sessions
}

func channelName(sessionID uuid.UUID) string {
	return "session_updates:" + sessionID.String()
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID, err := h.tokens.ParseSessionToken(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	h.mu.RLock()
	sessions := h.sessions
	h.mu.RUnlock()

	var page *session.Page
	if sessions != nil {
		page, err = sessions.Get(sessionID)
		if err != nil {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &conn{ws: ws}
	h.registerConnection(sessionID, c)

	if page != nil {
		if data, err := json.Marshal(models.WSMessage{Type: EventSnapshot, Payload: page.Snapshot()}); err == nil {
			c.write(data)
		}
	}

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(sessionID, c)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(sessionID uuid.UUID, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[sessionID] = append(h.connections[sessionID], c)

	// First socket for this session starts the subscription
	if len(h.connections[sessionID]) == 1 && h.subscriber != nil {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[sessionID] = cancel
		go h.subscribeToPubSub(ctx, sessionID)
	}

	log.Infow("WebSocket connected", "session_id", sessionID, "total", len(h.connections[sessionID]))
}

func (h *Hub) unregisterConnection(sessionID uuid.UUID, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.ws.Close()

	conns := h.connections[sessionID]
	for i, existing := range conns {
		if existing == c {
			h.connections[sessionID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	if len(h.connections[sessionID]) == 0 {
		delete(h.connections, sessionID)
		if cancel, ok := h.cancelFuncs[sessionID]; ok {
			cancel()
			delete(h.cancelFuncs, sessionID)
		}
	}

	log.Infow("WebSocket disconnected", "session_id", sessionID)
}

func (h *Hub) subscribeToPubSub(ctx context.Context, sessionID uuid.UUID) {
	pubsub := h.subscriber.Subscribe(ctx, channelName(sessionID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(sessionID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(sessionID uuid.UUID, data []byte) {
	h.mu.RLock()
	conns := append([]*conn(nil), h.connections[sessionID]...)
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.write(data); err != nil {
			log.Warnw("WebSocket write failed", "session_id", sessionID, "error", err)
		}
	}
}

// Publish implements session.Publisher.
func (h *Hub) Publish(ctx context.Context, sessionID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("Failed to encode websocket message", err)
		return
	}

	if h.publisher != nil {
		err := h.publisher.Publish(ctx, channelName(sessionID), data).Err()
		if err == nil {
			return
		}
		log.Warnw("Redis publish failed, delivering locally", "session_id", sessionID, "error", err)
	}
	h.broadcast(sessionID, data)
}

// ConnectionCount reports open sockets for a session.
func (h *Hub) ConnectionCount(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[sessionID])
}

// Close drops every socket and subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conns := range h.connections {
		for _, c := range conns {
			c.ws.Close()
		}
		delete(h.connections, id)
	}
	for id, cancel := range h.cancelFuncs {
		cancel()
		delete(h.cancelFuncs, id)
	}
}
