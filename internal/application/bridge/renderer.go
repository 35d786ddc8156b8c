package bridge

import (
	"context"
	"sync"

	"github.com/fieldstack/widgethost-go/internal/domain/entities/widget"
	"github.com/fieldstack/widgethost-go/internal/domain/events"
	"github.com/fieldstack/widgethost-go/internal/domain/services"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/messaging"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/observability/logging"
)

// RendererOptions carries per-render settings. CorrelationID ties channel
// and frame activity back to the render request in logs; FullSize frames
// ignore widget-driven height changes because the host sizes them.
type RendererOptions struct {
	CorrelationID string
	FullSize      bool
}

// Renderer owns one widget's frame for the lifetime of a render. After
// Initialize the frame belongs to the channel protocol: the renderer never
// reloads or restyles it in response to host-side re-renders, only the
// widget's own navigation and the final Destroy touch it again.
type Renderer struct {
	widget   *widget.Widget
	sdk      *services.HostSDK
	location widget.LocationKind
	frame    Frame
	opts     RendererOptions
	logger   *logging.ChanneledLogger

	initOnce sync.Once
	channel  *messaging.PostChannel
	cleanup  func()
	onLoad   events.Disposable

	mu        sync.Mutex
	destroyed bool
}

// NewRenderer builds a renderer for one resolved widget in one location
func NewRenderer(w *widget.Widget, sdk *services.HostSDK, location widget.LocationKind, frame Frame, opts RendererOptions, logger *logging.ChanneledLogger) *Renderer {
	return &Renderer{
		widget:   w,
		sdk:      sdk,
		location: location,
		frame:    frame,
		opts:     opts,
		logger:   logger,
	}
}

// Initialize wires the channel, handlers, and forwarders, then points the
// frame at the widget's code. Runs at most once per renderer; repeat calls
// are no-ops. Every frame load, including reloads the widget triggers
// itself, re-sends the connect snapshot because a reload wipes all state on
// the widget side.
func (r *Renderer) Initialize(bus messaging.Bus) {
	r.initOnce.Do(func() {
		r.channel = messaging.NewPostChannel(bus, r.logger)

		r.channel.RegisterHandler(MethodSetHeight, r.setHeightHandler())
		SetupHandlers(r.channel, r.sdk, r.location)
		r.cleanup = SetupEventForwarders(r.channel, r.sdk, r.location)

		r.onLoad = r.frame.OnLoad(func() {
			r.channel.Connect(MakeConnectMessage(r.sdk, r.widget, r.location))
		})

		r.frame.SetSandbox(SandboxAttributes(r.widget.Hosting.Type))
		switch r.widget.Hosting.Type {
		case widget.HostingSrcdoc:
			r.frame.SetSrcDoc(r.widget.Hosting.Value)
		default:
			r.frame.SetSrc(r.widget.Hosting.Value)
		}

		if r.logger != nil {
			r.logger.Bridge().Debug("Widget renderer initialized",
				"widget", r.widget.Ref().Key(),
				"location", string(r.location),
				"channelId", r.channel.ID(),
				"correlationId", r.opts.CorrelationID)
		}
	})
}

// Channel returns the renderer's channel, nil before Initialize
func (r *Renderer) Channel() *messaging.PostChannel {
	return r.channel
}

// setHeightHandler resizes the frame on widget request. Full-size frames
// accept the call but ignore it.
func (r *Renderer) setHeightHandler() messaging.Handler {
	return func(_ context.Context, params []any) (any, error) {
		if r.opts.FullSize {
			return nil, nil
		}
		if len(params) == 0 {
			return nil, messaging.NewChannelError("missing argument: height", nil)
		}
		height, ok := params[0].(float64)
		if !ok {
			return nil, messaging.NewChannelError("argument must be a number: height", nil)
		}
		r.frame.SetHeight(int(height))
		return nil, nil
	}
}

// Destroy tears down the channel and every event subscription. In-flight
// handler calls finish against the destroyed channel and are discarded.
// Safe to call more than once.
func (r *Renderer) Destroy() {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.destroyed = true
	r.mu.Unlock()

	if r.onLoad != nil {
		r.onLoad()
	}
	if r.channel != nil {
		r.channel.Destroy()
	}
	if r.cleanup != nil {
		r.cleanup()
	}
}
