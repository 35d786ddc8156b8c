package messaging

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
	"github.com/fieldstack/widgethost-go/pkg/config"
	"github.com/gorilla/websocket"
)

// FrameClient represents a single connected widget frame
type FrameClient struct {
	hub  *FrameHub
	conn *websocket.Conn
	send chan []byte
}

// FrameHub is the shared message surface for one render page: every widget
// frame rendered on that page attaches to the same hub, host posts are
// broadcast to every frame, and frame posts fan out to every subscribed
// channel. Channels filter deliveries by their own id, so concurrent widgets
// on one hub do not cross-talk.
type FrameHub struct {
	sessionID string
	logger    *logging.ChanneledLogger

	mu          sync.RWMutex
	clients     map[*FrameClient]bool
	subscribers map[int]func(data []byte)
	subSeq      int
	closed      bool
}

// Interface assertion: a hub is the production Bus.
var _ Bus = (*FrameHub)(nil)

// NewFrameHub creates a hub for one render session
func NewFrameHub(sessionID string, logger *logging.ChanneledLogger) *FrameHub {
	return &FrameHub{
		sessionID:   sessionID,
		logger:      logger,
		clients:     make(map[*FrameClient]bool),
		subscribers: make(map[int]func(data []byte)),
	}
}

// SessionID returns the render session this hub belongs to
func (h *FrameHub) SessionID() string {
	return h.sessionID
}

// Post serializes payload and broadcasts it to every attached frame. Posting
// with no attached frames is not an error; the widget side replays state
// from the connect envelope when it attaches.
func (h *FrameHub) Post(payload any) error {
	message, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal frame message: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return nil
	}

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Slow consumer; drop the frame rather than block the host.
			h.logger.Frame().Warn("Dropping slow frame client", "sessionId", h.sessionID)
			go client.close()
		}
	}
	return nil
}

// Subscribe registers fn for every frame-to-host delivery
func (h *FrameHub) Subscribe(fn func(data []byte)) func() {
	h.mu.Lock()
	id := h.subSeq
	h.subSeq++
	h.subscribers[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, id)
			h.mu.Unlock()
		})
	}
}

// Attach registers an upgraded websocket connection as a frame client and
// starts its read/write pumps.
func (h *FrameHub) Attach(conn *websocket.Conn) *FrameClient {
	client := &FrameClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, config.FrameSendBuffer),
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Frame().Debug("Frame client attached", "sessionId", h.sessionID, "clients", count)

	go client.writePump()
	go client.readPump()
	return client
}

// ClientCount returns the number of attached frames
func (h *FrameHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close detaches every frame and rejects further posts
func (h *FrameHub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := make([]*FrameClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		client.close()
	}
	h.logger.Frame().Debug("Frame hub closed", "sessionId", h.sessionID)
}

// dispatch fans one frame delivery out to every subscriber
func (h *FrameHub) dispatch(data []byte) {
	h.mu.RLock()
	fns := make([]func([]byte), 0, len(h.subscribers))
	for _, fn := range h.subscribers {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(data)
	}
}

func (h *FrameHub) detach(client *FrameClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
	h.logger.Frame().Debug("Frame client detached", "sessionId", h.sessionID)
}

// readPump reads frame messages and hands them to the hub until the
// connection drops.
func (c *FrameClient) readPump() {
	defer func() {
		c.hub.detach(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(config.FrameMaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.FramePongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.FramePongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Frame().Warn("Frame read error", "sessionId", c.hub.sessionID, "error", err)
			}
			return
		}
		c.hub.dispatch(message)
	}
}

// writePump forwards queued host messages to the frame connection and keeps
// the connection alive with pings.
func (c *FrameClient) writePump() {
	pingPeriod := (config.FramePongWait * 9) / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.FrameWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.FrameWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *FrameClient) close() {
	c.conn.Close()
}
