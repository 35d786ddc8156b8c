// Package performance provides performance tracking and monitoring
// capabilities for widget host operations with multi-space support.
package performance

import (
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Tracker manages performance markers and provides metrics aggregation
type Tracker struct {
	markers    map[string]*Marker // Active and completed markers by unique ID
	maxMarkers int                // Bound on retained completed markers
	mu         sync.RWMutex
}

// NewTracker creates a new performance tracker
func NewTracker() *Tracker {
	return &Tracker{
		markers:    make(map[string]*Marker),
		maxMarkers: 1000,
	}
}

// StartOperation begins tracking a new operation and returns its marker
func (t *Tracker) StartOperation(operation, spaceID string) *Marker {
	marker := &Marker{
		Operation: operation,
		SpaceID:   spaceID,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.markers) >= t.maxMarkers {
		t.evictOldestLocked()
	}
	t.markers[t.markerKey(marker)] = marker

	return marker
}

// GetRecentMarkers returns completed markers for an operation prefix
func (t *Tracker) GetRecentMarkers(operationPrefix string, limit int) []*Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	results := make([]*Marker, 0, limit)
	for _, m := range t.markers {
		if !m.Completed {
			continue
		}
		if operationPrefix != "" && !hasPrefix(m.Operation, operationPrefix) {
			continue
		}
		results = append(results, m)
		if len(results) >= limit {
			break
		}
	}
	return results
}

func (t *Tracker) markerKey(m *Marker) string {
	return fmt.Sprintf("%s:%s:%s", m.Operation, m.SpaceID, ulid.Make().String())
}

// evictOldestLocked removes the oldest completed marker; caller holds mu.
func (t *Tracker) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time
	for key, m := range t.markers {
		if !m.Completed {
			continue
		}
		if oldestKey == "" || m.StartTime.Before(oldestTime) {
			oldestKey = key
			oldestTime = m.StartTime
		}
	}
	if oldestKey != "" {
		delete(t.markers, oldestKey)
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
