package domain

import (
	"context"
	"time"
)

// SlotStateChange is one observable change to a slot's capacity counters.
// Version lets consumers drop stale updates for a slot they have already
// seen a newer state for; delivery is at-least-once.
// swagger:model SlotStateChange
type SlotStateChange struct {
	SlotID      string    `json:"slot_id"`
	EventID     string    `json:"event_id"`
	BookedCount int       `json:"booked_count"`
	HeldCount   int       `json:"held_count"`
	Capacity    int       `json:"capacity"`
	Remaining   int       `json:"remaining"`
	Version     int64     `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
}

// ChangeFromSlot builds the change record describing the slot's current state.
func ChangeFromSlot(s *Slot, now time.Time) SlotStateChange {
	return SlotStateChange{
		SlotID:      s.ID,
		EventID:     s.EventID,
		BookedCount: s.BookedCount,
		HeldCount:   s.HeldCount,
		Capacity:    s.Capacity,
		Remaining:   s.Remaining(),
		Version:     s.Version,
		Timestamp:   now,
	}
}

// ChangePublisher accepts slot state changes for fan-out to subscribers.
// Publish never blocks the caller.
type ChangePublisher interface {
	Publish(change SlotStateChange)
}

// AvailabilityStream is one subscriber's view of an event's slot changes.
// The channel is closed when the subscription ends, including when the
// subscriber falls too far behind; reconnecting restores a consistent
// view through the snapshot.
type AvailabilityStream interface {
	Events() <-chan SlotStateChange
	Close()
}

// AvailabilityService serves availability reads: point-in-time snapshots
// and live subscriptions. Subscriptions deliver the snapshot first, then
// every subsequent change at least once.
type AvailabilityService interface {
	Snapshot(ctx context.Context, eventID string) ([]SlotStateChange, error)
	Subscribe(ctx context.Context, eventID string) (AvailabilityStream, error)
}
