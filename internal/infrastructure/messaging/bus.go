package messaging

// Bus is the shared message surface a channel posts to and receives from.
// Production uses the websocket FrameHub; tests use an
// in-memory bus. A bus is shared: multiple channels may subscribe to one bus
// concurrently, and each filters deliveries by its own channel id.
type Bus interface {
	// Post serializes payload and delivers it to the widget side.
	// Implementations must tolerate posts with no connected peer.
	Post(payload any) error

	// Subscribe registers fn for every widget-to-host delivery and returns
	// an unsubscribe function.
	Subscribe(fn func(data []byte)) func()
}
