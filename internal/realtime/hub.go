package realtime

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames; anything larger is a misbehaving peer.
	maxMessageSize = 4096

	sendBuffer = 64
)

// HubHooks carries connection lifecycle callbacks for metrics.
type HubHooks struct {
	OnConnect    func()
	OnDisconnect func()
}

// Hub upgrades HTTP requests to websocket connections and keeps the
// registry and connection set in step with their lifetimes.
type Hub struct {
	registry *Registry
	conns    *ConnSet
	upgrader websocket.Upgrader
	logger   *zap.Logger

	onConnect    func()
	onDisconnect func()
}

// NewHub builds a hub. allowedOrigin restricts browser origins by prefix;
// empty or "*" allows any origin.
func NewHub(registry *Registry, conns *ConnSet, allowedOrigin string, logger *zap.Logger, hooks HubHooks) *Hub {
	h := &Hub{
		registry:     registry,
		conns:        conns,
		logger:       logger,
		onConnect:    hooks.OnConnect,
		onDisconnect: hooks.OnDisconnect,
	}
	if h.onConnect == nil {
		h.onConnect = func() {}
	}
	if h.onDisconnect == nil {
		h.onDisconnect = func() {}
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigin),
	}
	return h
}

func originChecker(allowed string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Non-browser clients send no Origin.
		if origin == "" || allowed == "" || allowed == "*" {
			return true
		}
		return strings.HasPrefix(origin, allowed)
	}
}

// ServeWS handles GET /socket?userId=<id>.
//
// The user ID is taken as given: authentication happens on the HTTP calls
// that trigger notifications, not on the push channel. A connection without
// a user ID still receives broadcasts.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &Conn{
		id:     uuid.New().String(),
		userID: r.URL.Query().Get("userId"),
		ws:     ws,
		send:   make(chan Event, sendBuffer),
		done:   make(chan struct{}),
		hub:    h,
	}
	h.connect(c)

	go c.writePump()
	go c.readPump()
}

func (h *Hub) connect(c *Conn) {
	h.conns.Add(c)
	if c.userID != "" {
		h.registry.Register(c.userID, c)
	}
	h.onConnect()
	h.logger.Info("client connected",
		zap.String("conn_id", c.id), zap.String("user_id", c.userID))
}

func (h *Hub) disconnect(c *Conn) {
	h.conns.Remove(c)
	if c.userID != "" {
		h.registry.UnregisterHandle(c.userID, c)
	}
	h.onDisconnect()
	h.logger.Info("client disconnected",
		zap.String("conn_id", c.id), zap.String("user_id", c.userID))
}

// Close shuts every open connection. Their read pumps unregister them.
func (h *Hub) Close() {
	for _, hd := range h.conns.Snapshot() {
		if c, ok := hd.(*Conn); ok {
			c.close()
		}
	}
}

// Conn is one websocket client.
type Conn struct {
	id        string
	userID    string
	ws        *websocket.Conn
	send      chan Event
	done      chan struct{}
	closeOnce sync.Once
	hub       *Hub
}

func (c *Conn) ID() string { return c.id }

// Send queues evt for the write pump without blocking.
func (c *Conn) Send(evt Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- evt:
		return true
	default:
		return false
	}
}

func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// readPump drains incoming frames so control messages (pong, close) are
// processed. It owns the disconnect path.
func (c *Conn) readPump() {
	defer func() {
		c.hub.disconnect(c)
		c.close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNoStatusReceived,
			) {
				c.hub.logger.Warn("websocket read error",
					zap.String("conn_id", c.id), zap.Error(err))
			}
			return
		}
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case evt := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(evt); err != nil {
				c.hub.logger.Debug("websocket write error",
					zap.String("conn_id", c.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
