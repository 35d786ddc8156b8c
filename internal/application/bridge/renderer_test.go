package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldstack/widgethost-go/internal/domain/entities/editor"
	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
	"github.com/fieldstack/widgethost-go/internal/domain/events"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/messaging"
)

// fakeFrame records what the renderer does to it and lets tests fire load
// events.
type fakeFrame struct {
	src     string
	srcdoc  string
	height  int
	sandbox string
	load    *events.Emitter
}

func newFakeFrame() *fakeFrame {
	return &fakeFrame{load: events.NewEmitter()}
}

func (f *fakeFrame) SetSrc(url string)            { f.src = url }
func (f *fakeFrame) SetSrcDoc(html string)        { f.srcdoc = html }
func (f *fakeFrame) SetHeight(px int)             { f.height = px }
func (f *fakeFrame) SetSandbox(attributes string) { f.sandbox = attributes }
func (f *fakeFrame) OnLoad(fn func()) events.Disposable {
	return f.load.Subscribe(func(any) { fn() })
}

func connectCount(bus *testBus) int {
	n := 0
	for _, p := range bus.postedMessages() {
		if msg, ok := p.(messaging.OutgoingMessage); ok && msg.Method == messaging.ConnectMethod {
			n++
		}
	}
	return n
}

func TestRendererInitializeAssignsHosting(t *testing.T) {
	bus := newTestBus()
	frame := newFakeFrame()
	r := NewRenderer(testWidget(), testSDK(), widget.LocationEntryField, frame, RendererOptions{}, nil)
	defer r.Destroy()

	r.Initialize(bus)

	assert.Equal(t, "https://widgets.example.com/color-picker", frame.src)
	assert.Empty(t, frame.srcdoc)
	assert.Contains(t, frame.sandbox, "allow-scripts")
	assert.Contains(t, frame.sandbox, "allow-same-origin")
}

func TestRendererSrcdocSandboxOmitsSameOrigin(t *testing.T) {
	bus := newTestBus()
	frame := newFakeFrame()
	w := testWidget()
	w.Hosting = widget.Hosting{Type: widget.HostingSrcdoc, Value: "<html><body>inline</body></html>"}

	r := NewRenderer(w, testSDK(), widget.LocationEntryField, frame, RendererOptions{}, nil)
	defer r.Destroy()
	r.Initialize(bus)

	assert.Equal(t, "<html><body>inline</body></html>", frame.srcdoc)
	assert.Empty(t, frame.src)
	assert.NotContains(t, frame.sandbox, "allow-same-origin")
}

func TestRendererInitializeRunsOnce(t *testing.T) {
	bus := newTestBus()
	frame := newFakeFrame()
	r := NewRenderer(testWidget(), testSDK(), widget.LocationEntryField, frame, RendererOptions{}, nil)
	defer r.Destroy()

	r.Initialize(bus)
	channel := r.Channel()
	r.Initialize(bus)

	assert.Same(t, channel, r.Channel(), "repeat initialize must not rebuild the channel")
}

func TestRendererReconnectsOnEveryFrameLoad(t *testing.T) {
	bus := newTestBus()
	frame := newFakeFrame()
	r := NewRenderer(testWidget(), testSDK(), widget.LocationEntryField, frame, RendererOptions{}, nil)
	defer r.Destroy()
	r.Initialize(bus)

	require.Equal(t, 0, connectCount(bus))

	frame.load.Emit(nil)
	assert.Equal(t, 1, connectCount(bus))

	// A reload inside the frame wipes widget state; the snapshot goes again.
	frame.load.Emit(nil)
	assert.Equal(t, 2, connectCount(bus))
}

func TestRendererSetHeight(t *testing.T) {
	bus := newTestBus()
	frame := newFakeFrame()
	r := NewRenderer(testWidget(), testSDK(), widget.LocationEntryField, frame, RendererOptions{}, nil)
	defer r.Destroy()
	r.Initialize(bus)
	frame.load.Emit(nil)

	bus.deliver(t, messaging.IncomingMessage{
		Source: r.Channel().ID(), Method: MethodSetHeight, ID: "call-1", Params: []any{float64(480)},
	})

	require.Eventually(t, func() bool {
		return frame.height == 480
	}, time.Second, 5*time.Millisecond)
}

func TestRendererFullSizeIgnoresSetHeight(t *testing.T) {
	bus := newTestBus()
	frame := newFakeFrame()
	r := NewRenderer(testWidget(), testSDK(), widget.LocationPage, frame, RendererOptions{FullSize: true}, nil)
	defer r.Destroy()
	r.Initialize(bus)
	frame.load.Emit(nil)

	bus.deliver(t, messaging.IncomingMessage{
		Source: r.Channel().ID(), Method: MethodSetHeight, ID: "call-1", Params: []any{float64(480)},
	})

	// The call succeeds (a response is posted) but the frame is untouched.
	require.Eventually(t, func() bool {
		for _, p := range bus.postedMessages() {
			if msg, ok := p.(messaging.ResultMessage); ok && msg.ID == "call-1" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, frame.height)
}

func TestRendererDestroyStopsChannelAndForwarders(t *testing.T) {
	bus := newTestBus()
	frame := newFakeFrame()
	sdk := testSDK()
	r := NewRenderer(testWidget(), sdk, widget.LocationEntryField, frame, RendererOptions{}, nil)
	r.Initialize(bus)
	frame.load.Emit(nil)

	before := len(bus.postedMessages())
	r.Destroy()
	r.Destroy() // idempotent

	frame.load.Emit(nil)
	sdk.Entry.(*editor.Document).SetShowDisabledFields(true)

	assert.Len(t, bus.postedMessages(), before, "nothing may be posted after destroy")
}
