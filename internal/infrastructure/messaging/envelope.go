// Package messaging implements the message-passing bridge between the host
// and sandboxed widget frames: wire envelopes, the per-widget channel with
// request/response correlation, and the websocket frame hub the envelopes
// travel over. Delivery is asynchronous and unordered; correlation is by
// call id, never by send order.
package messaging

import "encoding/json"

// OutgoingMessage is a host-to-widget call with no response expected
type OutgoingMessage struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// ConnectMethod is the reserved method name for the initial handshake
const ConnectMethod = "connect"

// NewConnectMessage builds the connect envelope: the context block (with the
// channel id injected) followed by every message queued before the
// connection was established, in original send order.
func NewConnectMessage(channelID string, contextData map[string]any, queued []OutgoingMessage) OutgoingMessage {
	merged := make(map[string]any, len(contextData)+1)
	for k, v := range contextData {
		merged[k] = v
	}
	merged["id"] = channelID

	if queued == nil {
		queued = []OutgoingMessage{}
	}
	return OutgoingMessage{
		Method: ConnectMethod,
		Params: []any{merged, queued},
	}
}

// IncomingMessage is a widget-to-host RPC call. Source carries the channel
// id the widget believes it is speaking on; messages whose source does not
// match the receiving channel are dropped.
type IncomingMessage struct {
	Source string `json:"source"`
	Method string `json:"method"`
	ID     string `json:"id"`
	Params []any  `json:"params"`
}

// ResultMessage correlates a successful handler result to its call
type ResultMessage struct {
	ID     string `json:"id"`
	Result any    `json:"result"`
}

// ErrorMessage correlates a failed handler invocation to its call
type ErrorMessage struct {
	ID    string        `json:"id"`
	Error *ChannelError `json:"error"`
}

// ParseIncoming decodes a widget-to-host message. A payload that is not an
// RPC call (missing method or call id) yields ok=false.
func ParseIncoming(data []byte) (IncomingMessage, bool) {
	var msg IncomingMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return IncomingMessage{}, false
	}
	if msg.Method == "" || msg.ID == "" {
		return IncomingMessage{}, false
	}
	return msg, true
}
