// Package handlers provides one factory per RPC method a sandboxed widget
// may call. Each factory closes over a narrow host SDK capability and
// returns a messaging.Handler; nothing here reaches outside the capability
// it was handed.
package handlers

import (
	"github.com/fieldstack/widgethost-go/internal/infrastructure/messaging"
)

// Params arrive JSON-decoded, so objects are map[string]any and numbers are
// float64. These helpers pull positional arguments with wire-shaped errors
// for anything malformed.

func stringArg(params []any, idx int, name string) (string, error) {
	if idx >= len(params) {
		return "", messaging.NewChannelError("missing argument: "+name, nil)
	}
	s, ok := params[idx].(string)
	if !ok {
		return "", messaging.NewChannelError("argument must be a string: "+name, nil)
	}
	return s, nil
}

func mapArg(params []any, idx int, name string) (map[string]any, error) {
	if idx >= len(params) {
		return nil, messaging.NewChannelError("missing argument: "+name, nil)
	}
	m, ok := params[idx].(map[string]any)
	if !ok {
		return nil, messaging.NewChannelError("argument must be an object: "+name, nil)
	}
	return m, nil
}

func boolArg(params []any, idx int, name string) (bool, error) {
	if idx >= len(params) {
		return false, messaging.NewChannelError("missing argument: "+name, nil)
	}
	b, ok := params[idx].(bool)
	if !ok {
		return false, messaging.NewChannelError("argument must be a boolean: "+name, nil)
	}
	return b, nil
}

func optionalString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func optionalBool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func optionalInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
