// Package notifybus is the publish/subscribe port for insight notifications.
// The pipeline core only depends on the Publisher interface; the host wires
// it to whatever transport it has. This package ships three implementations:
// an in-memory fan-out bus, a zerolog publisher and a WebSocket broadcaster.
package notifybus

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Event is one published insight notification.
type Event struct {
	ID        string                 `json:"id"`
	InsightID string                 `json:"insightId"`
	Message   string                 `json:"message"`
	Audience  []string               `json:"audience,omitempty"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt time.Time              `json:"createdAt"`
}

// Publisher is the outbound port. Publish is fire-and-forget: implementations
// must not block the caller on slow consumers and have no failure to report
// back.
type Publisher interface {
	Publish(event Event)
}

// Bus is an in-memory fan-out publisher. Subscribers receive events on
// buffered channels; a subscriber that falls behind loses events rather than
// blocking the publisher.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
}

// NewBus creates an empty in-memory bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[int]chan Event)}
}

// Subscribe registers a consumer and returns its channel plus a cancel
// function that closes it.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	b.subscribers[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if existing, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(existing)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish fans the event out to every subscriber without blocking.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			log.Warn().Str("insightId", event.InsightID).Msg("Notification subscriber full, event dropped")
		}
	}
}

// SubscriberCount returns the number of registered subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// LogPublisher writes every event to the structured log. Useful as a default
// sink when the host has no transport wired yet.
type LogPublisher struct{}

// Publish logs the event at info level.
func (LogPublisher) Publish(event Event) {
	log.Info().
		Str("insightId", event.InsightID).
		Str("message", event.Message).
		Strs("audience", event.Audience).
		Time("createdAt", event.CreatedAt).
		Msg("Insight notification")
}

// MultiPublisher fans one event out to several publishers.
type MultiPublisher []Publisher

// Publish forwards the event to every wrapped publisher in order.
func (m MultiPublisher) Publish(event Event) {
	for _, p := range m {
		p.Publish(event)
	}
}
