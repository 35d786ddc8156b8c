package services

import "fmt"

// APIError describes a failed upstream space API call. The bridge attaches
// Code and Body to the RPC error response so the widget-side SDK can rebuild
// the original API error.
type APIError struct {
	Code    int
	Message string
	Body    any
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("space api call failed with status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("space api call failed with status %d", e.Code)
}
