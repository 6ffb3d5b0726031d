// File: /backends/events.go
package backends

import "sync"

// EventType classifies a change event. Every realtime backend normalizes its
// native payload to this classification so subscribers never branch on the
// backend in use.
type EventType string

const (
	EventAdded    EventType = "added"
	EventModified EventType = "modified"
	EventRemoved  EventType = "removed"
)

// Watched table names.
const (
	TableVehicles     = "vehicles"
	TableReservations = "reservations"
	TableTrips        = "trips"
)

// ChangeEvent describes one insert/update/delete on a watched table. New is
// nil for removals; Old is nil except for removals.
type ChangeEvent struct {
	Type  EventType   `json:"eventType"`
	Table string      `json:"table"`
	New   interface{} `json:"new"`
	Old   interface{} `json:"old"`
}

// UnsubscribeFunc tears down a subscription. It is idempotent and stops any
// further callback delivery; events already in flight may still arrive.
type UnsubscribeFunc func()

// eventHub fans change events out to per-table subscribers. The MySQL backend
// publishes to it after committed writes, standing in for a server-pushed
// change channel.
type eventHub struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[string]map[int]func(ChangeEvent)
}

func newEventHub() *eventHub {
	return &eventHub{subscribers: make(map[string]map[int]func(ChangeEvent))}
}

// subscribe registers a callback for one table and returns its unsubscribe.
func (h *eventHub) subscribe(table string, callback func(ChangeEvent)) UnsubscribeFunc {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscribers[table] == nil {
		h.subscribers[table] = make(map[int]func(ChangeEvent))
	}
	id := h.nextID
	h.nextID++
	h.subscribers[table][id] = callback

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[table], id)
		})
	}
}

// publish delivers an event to every subscriber of its table. Delivery order
// across subscribers is unspecified; delivery is synchronous with the write
// that produced the event.
func (h *eventHub) publish(event ChangeEvent) {
	h.mu.RLock()
	callbacks := make([]func(ChangeEvent), 0, len(h.subscribers[event.Table]))
	for _, cb := range h.subscribers[event.Table] {
		callbacks = append(callbacks, cb)
	}
	h.mu.RUnlock()

	for _, cb := range callbacks {
		cb(event)
	}
}
