package broadcast

import (
	"log/slog"
	"sync"

	"slotbooker/internal/domain"
	"slotbooker/internal/monitoring"
)

const defaultSubscriberBuffer = 64

// Hub fans slot state changes out to per-event subscribers. Delivery is
// at-least-once for a connected subscriber; one that stops draining its
// channel is disconnected instead of silently losing updates, and picks
// a consistent view back up through the snapshot on reconnect.
type Hub struct {
	logger *slog.Logger
	buffer int

	mu   sync.RWMutex
	subs map[string]map[*subscription]struct{}
}

type subscription struct {
	eventID string
	ch      chan domain.SlotStateChange
}

// HubOption tunes the hub.
type HubOption func(*Hub)

// WithSubscriberBuffer sets how many undelivered changes a subscriber may
// lag behind before it is disconnected.
func WithSubscriberBuffer(n int) HubOption {
	return func(h *Hub) { h.buffer = n }
}

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		logger: logger,
		buffer: defaultSubscriberBuffer,
		subs:   make(map[string]map[*subscription]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ domain.ChangePublisher = (*Hub)(nil)

// Publish delivers the change to every subscriber of its event without
// blocking. Subscribers whose buffers are full are dropped.
func (h *Hub) Publish(change domain.SlotStateChange) {
	var stalled []*subscription

	// Sends happen only under the read lock and only to registered
	// subscriptions; remove closes under the write lock. That ordering
	// keeps sends off closed channels.
	h.mu.RLock()
	for sub := range h.subs[change.EventID] {
		select {
		case sub.ch <- change:
		default:
			stalled = append(stalled, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range stalled {
		if h.remove(sub) {
			h.logger.Warn("dropping stalled availability subscriber", "event_id", sub.eventID)
		}
	}
}

// Subscribe registers a subscriber for the event's changes. The caller
// must drain Events or Close the subscription.
func (h *Hub) Subscribe(eventID string) *Subscription {
	sub := &subscription{
		eventID: eventID,
		ch:      make(chan domain.SlotStateChange, h.buffer),
	}
	h.mu.Lock()
	if h.subs[eventID] == nil {
		h.subs[eventID] = make(map[*subscription]struct{})
	}
	h.subs[eventID][sub] = struct{}{}
	h.mu.Unlock()

	monitoring.SubscriberConnected(eventID)
	return &Subscription{hub: h, sub: sub}
}

// SubscriberCount reports how many subscribers the event currently has.
func (h *Hub) SubscriberCount(eventID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[eventID])
}

// remove unregisters and closes the subscription. It reports whether this
// call was the one that removed it.
func (h *Hub) remove(sub *subscription) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[sub.eventID]
	if !ok {
		return false
	}
	if _, ok := set[sub]; !ok {
		return false
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.eventID)
	}
	close(sub.ch)
	monitoring.SubscriberDisconnected(sub.eventID)
	return true
}

// Subscription is one subscriber's handle on the hub.
type Subscription struct {
	hub *Hub
	sub *subscription
}

// Events returns the change channel. It is closed when the subscription
// ends, including when the hub drops a stalled subscriber.
func (s *Subscription) Events() <-chan domain.SlotStateChange {
	return s.sub.ch
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s.sub)
}
