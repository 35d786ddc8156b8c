package messaging

import "fmt"

// Error codes used on the wire. The conversion from internal errors to wire
// errors is explicit: handlers either return a *ChannelError or get wrapped
// under CodeError.
const (
	CodeError      = "Error"
	CodeRangeError = "RangeError"
)

// ChannelError is the structured error shape delivered to a widget when a
// handler fails. It never carries host stack traces or internal state.
type ChannelError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface
func (e *ChannelError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// NewRangeError builds an out-of-range error (unknown method, unknown
// variant) in the shape widgets expect.
func NewRangeError(format string, args ...any) *ChannelError {
	return &ChannelError{Code: CodeRangeError, Message: fmt.Sprintf(format, args...)}
}

// NewChannelError builds a generic channel error with attached data
func NewChannelError(message string, data any) *ChannelError {
	return &ChannelError{Code: CodeError, Message: message, Data: data}
}

// toChannelError maps any handler error onto the wire shape. *ChannelError
// passes through unchanged; everything else becomes a generic error carrying
// only the message.
func toChannelError(err error) *ChannelError {
	if err == nil {
		return nil
	}
	if chErr, ok := err.(*ChannelError); ok {
		return chErr
	}
	return &ChannelError{Code: CodeError, Message: err.Error()}
}
