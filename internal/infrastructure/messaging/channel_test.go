package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryBus is an in-process Bus for exercising channels without websockets
type memoryBus struct {
	mu          sync.Mutex
	posted      []any
	subscribers map[int]func([]byte)
	seq         int
}

func newMemoryBus() *memoryBus {
	return &memoryBus{subscribers: make(map[int]func([]byte))}
}

func (b *memoryBus) Post(payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.posted = append(b.posted, payload)
	return nil
}

func (b *memoryBus) Subscribe(fn func(data []byte)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.seq
	b.seq++
	b.subscribers[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
	}
}

// deliver simulates a widget-to-host message arriving on the bus
func (b *memoryBus) deliver(t *testing.T, msg IncomingMessage) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	b.mu.Lock()
	fns := make([]func([]byte), 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(data)
	}
}

func (b *memoryBus) postedMessages() []any {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]any, len(b.posted))
	copy(out, b.posted)
	return out
}

func TestChannelIgnoresMessagesForOtherChannels(t *testing.T) {
	bus := newMemoryBus()
	ch := NewPostChannel(bus, nil)
	defer ch.Destroy()

	invoked := false
	ch.RegisterHandler("setHeight", func(ctx context.Context, params []any) (any, error) {
		invoked = true
		return nil, nil
	})

	bus.deliver(t, IncomingMessage{Source: "someone-else", Method: "setHeight", ID: "call-1", Params: []any{float64(100)}})

	time.Sleep(50 * time.Millisecond)
	assert.False(t, invoked, "handler must not run for another channel's message")
	assert.Empty(t, bus.postedMessages(), "no response may be posted for another channel's message")
}

func TestSendQueuesUntilConnect(t *testing.T) {
	bus := newMemoryBus()
	ch := NewPostChannel(bus, nil)
	defer ch.Destroy()

	ch.Send("first", []any{1})
	ch.Send("second", []any{2})
	ch.Send("third", nil)

	require.Empty(t, bus.postedMessages(), "queued sends must not post individually")

	ch.Connect(map[string]any{"location": "entry-field"})

	posted := bus.postedMessages()
	require.Len(t, posted, 1)

	connect, ok := posted[0].(OutgoingMessage)
	require.True(t, ok)
	assert.Equal(t, ConnectMethod, connect.Method)
	require.Len(t, connect.Params, 2)

	contextData, ok := connect.Params[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ch.ID(), contextData["id"])
	assert.Equal(t, "entry-field", contextData["location"])

	queued, ok := connect.Params[1].([]OutgoingMessage)
	require.True(t, ok)
	require.Len(t, queued, 3)
	assert.Equal(t, "first", queued[0].Method)
	assert.Equal(t, "second", queued[1].Method)
	assert.Equal(t, "third", queued[2].Method)
	assert.Equal(t, []any{}, queued[2].Params)

	// After connect, sends post immediately.
	ch.Send("fourth", []any{4})
	posted = bus.postedMessages()
	require.Len(t, posted, 2)
	direct, ok := posted[1].(OutgoingMessage)
	require.True(t, ok)
	assert.Equal(t, "fourth", direct.Method)
}

// gatedBus stalls its first post so tests can observe the window where the
// connect envelope is still on its way to the bus
type gatedBus struct {
	*memoryBus
	entered chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func (b *gatedBus) Post(payload any) error {
	b.once.Do(func() {
		close(b.entered)
		<-b.gate
	})
	return b.memoryBus.Post(payload)
}

func TestSendWaitsForConnectEnvelope(t *testing.T) {
	bus := &gatedBus{memoryBus: newMemoryBus(), entered: make(chan struct{}), gate: make(chan struct{})}
	ch := NewPostChannel(bus, nil)
	defer ch.Destroy()

	go ch.Connect(map[string]any{"location": "page"})
	<-bus.entered // connected flag is set, connect envelope still posting

	sent := make(chan struct{})
	go func() {
		ch.Send("setHeight", []any{float64(300)})
		close(sent)
	}()

	select {
	case <-sent:
		t.Fatal("send must not reach the bus before the connect envelope")
	case <-time.After(50 * time.Millisecond):
	}

	close(bus.gate)
	<-sent

	posted := bus.postedMessages()
	require.Len(t, posted, 2)
	first, ok := posted[0].(OutgoingMessage)
	require.True(t, ok)
	assert.Equal(t, ConnectMethod, first.Method)
	second, ok := posted[1].(OutgoingMessage)
	require.True(t, ok)
	assert.Equal(t, "setHeight", second.Method)
}

func TestReconnectResendsContext(t *testing.T) {
	bus := newMemoryBus()
	ch := NewPostChannel(bus, nil)
	defer ch.Destroy()

	ch.Connect(map[string]any{"location": "dialog"})
	ch.Connect(map[string]any{"location": "dialog"})

	posted := bus.postedMessages()
	require.Len(t, posted, 2)
	for _, p := range posted {
		msg, ok := p.(OutgoingMessage)
		require.True(t, ok)
		assert.Equal(t, ConnectMethod, msg.Method)
	}
}

func TestDuplicateHandlerRegistrationPanics(t *testing.T) {
	bus := newMemoryBus()
	ch := NewPostChannel(bus, nil)
	defer ch.Destroy()

	ch.RegisterHandler("notify", func(ctx context.Context, params []any) (any, error) { return nil, nil })

	assert.Panics(t, func() {
		ch.RegisterHandler("notify", func(ctx context.Context, params []any) (any, error) { return nil, nil })
	})
}

func TestRoundTripResult(t *testing.T) {
	bus := newMemoryBus()
	ch := NewPostChannel(bus, nil)
	defer ch.Destroy()

	ch.RegisterHandler("checkAccess", func(ctx context.Context, params []any) (any, error) {
		return true, nil
	})

	bus.deliver(t, IncomingMessage{Source: ch.ID(), Method: "checkAccess", ID: "call-42", Params: []any{"read", "Entry"}})

	require.Eventually(t, func() bool {
		return len(bus.postedMessages()) == 1
	}, time.Second, 5*time.Millisecond)

	result, ok := bus.postedMessages()[0].(ResultMessage)
	require.True(t, ok)
	assert.Equal(t, "call-42", result.ID)
	assert.Equal(t, true, result.Result)
}

func TestRoundTripError(t *testing.T) {
	bus := newMemoryBus()
	ch := NewPostChannel(bus, nil)
	defer ch.Destroy()

	ch.RegisterHandler("callSpaceMethod", func(ctx context.Context, params []any) (any, error) {
		return nil, &ChannelError{Code: "RangeError", Message: "unknown method", Data: map[string]any{"method": "nope"}}
	})

	bus.deliver(t, IncomingMessage{Source: ch.ID(), Method: "callSpaceMethod", ID: "call-7", Params: []any{"nope"}})

	require.Eventually(t, func() bool {
		return len(bus.postedMessages()) == 1
	}, time.Second, 5*time.Millisecond)

	errMsg, ok := bus.postedMessages()[0].(ErrorMessage)
	require.True(t, ok)
	assert.Equal(t, "call-7", errMsg.ID)
	require.NotNil(t, errMsg.Error)
	assert.Equal(t, "RangeError", errMsg.Error.Code)
	assert.Equal(t, "unknown method", errMsg.Error.Message)
	assert.Equal(t, map[string]any{"method": "nope"}, errMsg.Error.Data)
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	bus := newMemoryBus()
	ch := NewPostChannel(bus, nil)
	defer ch.Destroy()

	ch.RegisterHandler("openDialog", func(ctx context.Context, params []any) (any, error) {
		panic("boom")
	})

	bus.deliver(t, IncomingMessage{Source: ch.ID(), Method: "openDialog", ID: "call-9", Params: []any{}})

	require.Eventually(t, func() bool {
		return len(bus.postedMessages()) == 1
	}, time.Second, 5*time.Millisecond)

	errMsg, ok := bus.postedMessages()[0].(ErrorMessage)
	require.True(t, ok)
	assert.Equal(t, "call-9", errMsg.ID)
	assert.Equal(t, "boom", errMsg.Error.Message)
}

func TestMissingHandlerIsSilentlyDropped(t *testing.T) {
	bus := newMemoryBus()
	ch := NewPostChannel(bus, nil)
	defer ch.Destroy()

	bus.deliver(t, IncomingMessage{Source: ch.ID(), Method: "setValue", ID: "call-3", Params: []any{}})

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, bus.postedMessages(), "missing handler must not produce a response")
}

func TestDestroyedChannelDropsPosts(t *testing.T) {
	bus := newMemoryBus()
	ch := NewPostChannel(bus, nil)
	ch.Connect(map[string]any{})
	require.Len(t, bus.postedMessages(), 1)

	ch.Destroy()
	ch.Send("ignored", []any{})
	ch.Destroy() // double destroy is harmless

	assert.Len(t, bus.postedMessages(), 1)
}

func TestChannelIDsAreUnique(t *testing.T) {
	bus := newMemoryBus()
	a := NewPostChannel(bus, nil)
	b := NewPostChannel(bus, nil)
	defer a.Destroy()
	defer b.Destroy()

	assert.NotEqual(t, a.ID(), b.ID())
}
