package messaging

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
)

// Handler serves one RPC method exposed to the sandboxed widget. Params
// arrive in call order; the returned value (or error) is correlated back to
// the caller by call id.
type Handler func(ctx context.Context, params []any) (any, error)

// PostChannel is the host end of one widget's RPC channel. It owns a
// process-unique identity, queues outgoing calls until the widget connects,
// and dispatches incoming calls to registered per-method handlers. Handler
// failures are recovered and converted into error responses; they never
// propagate into the host.
type PostChannel struct {
	id     string
	bus    Bus
	logger *logging.ChanneledLogger

	mu        sync.Mutex
	connected bool
	destroyed bool
	queued    []OutgoingMessage
	handlers  map[string]Handler

	// postMu orders every bus post behind the connect envelope that enabled
	// it; a Send racing Connect waits here instead of outrunning the context.
	postMu sync.Mutex

	unsubscribe func()
}

// NewPostChannel creates a channel bound to the given bus and subscribes it
// to incoming deliveries. The channel id is minted once and never reused.
func NewPostChannel(bus Bus, logger *logging.ChanneledLogger) *PostChannel {
	ch := &PostChannel{
		id:       mintChannelID(),
		bus:      bus,
		logger:   logger,
		handlers: make(map[string]Handler),
	}
	ch.unsubscribe = bus.Subscribe(ch.receive)
	return ch
}

// mintChannelID builds a process-unique channel identity. The timestamp
// keeps ids sortable in logs; the random suffix keeps concurrent channels on
// one page distinct.
func mintChannelID() string {
	return fmt.Sprintf("%d,%d", time.Now().UnixMilli(), rand.Int63())
}

// ID returns the channel identity used for message filtering
func (c *PostChannel) ID() string {
	return c.id
}

// Send posts a fire-and-forget call to the widget. Before Connect the call
// is queued and flushed inside the connect envelope, in send order.
func (c *PostChannel) Send(method string, params []any) {
	if params == nil {
		params = []any{}
	}
	msg := OutgoingMessage{Method: method, Params: params}

	c.mu.Lock()
	if !c.connected {
		c.queued = append(c.queued, msg)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.post(msg)
}

// Connect posts the connect envelope carrying the context snapshot and every
// queued message, then flips the channel into connected mode. Safe to call
// again after a frame reload; each call re-sends the full context.
func (c *PostChannel) Connect(contextData map[string]any) {
	c.postMu.Lock()
	defer c.postMu.Unlock()

	c.mu.Lock()
	queued := c.queued
	c.queued = nil
	c.connected = true
	c.mu.Unlock()

	c.postLocked(NewConnectMessage(c.id, contextData, queued))
}

// RegisterHandler binds a handler to an RPC method. The registry is
// write-once per method for the lifetime of the channel; a second
// registration for the same method is a programmer error and panics.
func (c *PostChannel) RegisterHandler(method string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.handlers[method]; exists {
		panic(fmt.Sprintf("messaging: handler already registered for method %q", method))
	}
	c.handlers[method] = handler
}

// Destroy detaches the channel from its bus. Subsequent posts are silently
// dropped; in-flight handler calls are not aborted, their late responses are
// simply discarded. Idempotent in effect.
func (c *PostChannel) Destroy() {
	c.mu.Lock()
	c.destroyed = true
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// receive handles one widget-to-host delivery. Messages for other channels
// and methods with no registered handler are dropped without a response:
// protocol version skew is tolerated, not reported.
func (c *PostChannel) receive(data []byte) {
	msg, ok := ParseIncoming(data)
	if !ok {
		return
	}
	if msg.Source != c.id {
		return
	}

	c.mu.Lock()
	handler, exists := c.handlers[msg.Method]
	c.mu.Unlock()

	if !exists {
		if c.logger != nil {
			c.logger.Channel().Debug("Dropping call for unregistered method", "method", msg.Method, "channelId", c.id)
		}
		return
	}

	// Dispatch without blocking the channel; responses may complete out of
	// order relative to arrival, correlation is by call id.
	go c.dispatch(handler, msg)
}

func (c *PostChannel) dispatch(handler Handler, msg IncomingMessage) {
	defer func() {
		if r := recover(); r != nil {
			if c.logger != nil {
				c.logger.Channel().Error("Handler panicked", "method", msg.Method, "callId", msg.ID, "panic", r)
			}
			c.post(ErrorMessage{ID: msg.ID, Error: NewChannelError(fmt.Sprint(r), nil)})
		}
	}()

	result, err := handler(context.Background(), msg.Params)
	if err != nil {
		c.post(ErrorMessage{ID: msg.ID, Error: toChannelError(err)})
		return
	}
	c.post(ResultMessage{ID: msg.ID, Result: result})
}

// post delivers a payload to the bus, serialized behind any in-flight connect
func (c *PostChannel) post(payload any) {
	c.postMu.Lock()
	defer c.postMu.Unlock()
	c.postLocked(payload)
}

// postLocked delivers a payload to the bus unless the channel has been
// destroyed. Callers hold postMu.
func (c *PostChannel) postLocked(payload any) {
	c.mu.Lock()
	destroyed := c.destroyed
	c.mu.Unlock()
	if destroyed {
		return
	}

	if err := c.bus.Post(payload); err != nil && c.logger != nil {
		c.logger.Channel().Error("Failed to post message", "channelId", c.id, "error", err)
	}
}
