package coordinator

import (
	"log/slog"
	"sync"
)

// Event types
const (
	EventDeviceAnnounce    = "device_announce"
	EventDeviceLeft        = "device_left"
	EventDeviceInterviewed = "device_interviewed" // interview done, no quirk matched
	EventQuirkApplied      = "quirk_applied"
	EventAttributeReport   = "attribute_report"
	EventEntityState       = "entity_state"
	EventClusterCommand    = "cluster_command"
)

// Event represents a coordinator event. Device events carry a
// map[string]interface{} with at least an "ieee" key.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// IEEE returns the device address the event is about, or "".
func (e Event) IEEE() string {
	data, ok := e.Data.(map[string]interface{})
	if !ok {
		return ""
	}
	ieee, _ := data["ieee"].(string)
	return ieee
}

// EventHandler is a callback for events.
type EventHandler func(Event)

type subscription struct {
	id        uint64
	eventType string // empty receives every event
	handler   EventHandler
}

// EventBus provides pub/sub for coordinator events. Handlers run
// synchronously in subscription order.
type EventBus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	logger *slog.Logger
}

// NewEventBus creates a new event bus.
func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{logger: logger}
}

func (eb *EventBus) subscribe(eventType string, handler EventHandler) func() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	id := eb.nextID
	eb.nextID++
	eb.subs = append(eb.subs, subscription{id: id, eventType: eventType, handler: handler})
	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		for i, s := range eb.subs {
			if s.id == id {
				eb.subs = append(eb.subs[:i:i], eb.subs[i+1:]...)
				return
			}
		}
	}
}

// On registers a handler for a specific event type.
// Returns an unsubscribe function.
func (eb *EventBus) On(eventType string, handler EventHandler) func() {
	return eb.subscribe(eventType, handler)
}

// OnAll registers a handler that receives all events.
// Returns an unsubscribe function.
func (eb *EventBus) OnAll(handler EventHandler) func() {
	return eb.subscribe("", handler)
}

// Emit sends an event to all matching handlers.
// A panicking handler is recovered and the remaining handlers still run.
func (eb *EventBus) Emit(event Event) {
	eb.mu.RLock()
	handlers := make([]EventHandler, 0, len(eb.subs))
	for _, s := range eb.subs {
		if s.eventType == "" || s.eventType == event.Type {
			handlers = append(handlers, s.handler)
		}
	}
	eb.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					eb.logger.Error("event handler panic", "type", event.Type, "ieee", event.IEEE(), "panic", r)
				}
			}()
			h(event)
		}()
	}
}
