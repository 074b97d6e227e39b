package domain

import (
	"context"
	"fmt"
	"time"
)

// ErrSlotNotFound is returned when the referenced slot does not exist.
var ErrSlotNotFound = fmt.Errorf("slot %w", ErrNotFound)

// Slot represents one bookable time unit of an event. Capacity accounting
// lives entirely on this record: BookedCount confirmed seats, HeldCount
// seats claimed by live holds. Version increments on every mutation and
// drives optimistic concurrency control.
// swagger:model Slot
type Slot struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	StartsAt    time.Time `json:"starts_at"`
	Capacity    int       `json:"capacity"`
	HeldCount   int       `json:"held_count"`
	BookedCount int       `json:"booked_count"`
	Version     int64     `json:"version"`
	Position    int       `json:"position"`
}

// NewSlot returns a new Slot with counters zeroed and Version set to 1.
func NewSlot(eventID string, startsAt time.Time, capacity, position int) *Slot {
	return &Slot{
		EventID:  eventID,
		StartsAt: startsAt,
		Capacity: capacity,
		Version:  1,
		Position: position,
	}
}

// Remaining reports the seats still open for new holds.
func (s *Slot) Remaining() int {
	r := s.Capacity - s.BookedCount - s.HeldCount
	if r < 0 {
		return 0
	}
	return r
}

// BookingStatusChange flips one booking to the given status as part of a
// slot mutation.
type BookingStatusChange struct {
	BookingID string
	Status    BookingStatus
	At        time.Time
}

// SlotMutation describes a single atomic change to a slot's counters plus
// the hold and booking writes that must land with it. The store applies
// the whole mutation or none of it.
type SlotMutation struct {
	HeldDelta   int
	BookedDelta int

	InsertHold    *Hold
	DeleteHoldIDs []string

	InsertBooking *Booking
	UpdateBooking *BookingStatusChange
}

// SlotStore is the single source of truth for slot state. All capacity
// mutations flow through CompareAndUpdate; the store never interprets
// business rules and fails only with ErrNotFound or ErrVersionConflict.
type SlotStore interface {
	// GetSlot returns the slot by id.
	GetSlot(ctx context.Context, slotID string) (*Slot, error)

	// ListSlotsByEvent returns the event's slots ordered by position.
	ListSlotsByEvent(ctx context.Context, eventID string) ([]*Slot, error)

	// CompareAndUpdate applies mut if the slot's current version equals
	// expectedVersion, incrementing the version by one. It returns the
	// new version on success, ErrVersionConflict if the row moved, and
	// ErrNotFound if the slot does not exist.
	CompareAndUpdate(ctx context.Context, slotID string, expectedVersion int64, mut SlotMutation) (int64, error)

	// GetHold returns the hold by id.
	GetHold(ctx context.Context, holdID string) (*Hold, error)

	// ListHoldsBySlot returns every hold currently recorded on the slot,
	// live or expired.
	ListHoldsBySlot(ctx context.Context, slotID string) ([]*Hold, error)

	// ListExpiredHolds returns up to limit holds whose expiry is at or
	// before the given instant, oldest first.
	ListExpiredHolds(ctx context.Context, before time.Time, limit int) ([]*Hold, error)

	// GetBooking returns the booking by id.
	GetBooking(ctx context.Context, bookingID string) (*Booking, error)

	// GetBookingBySlotAndEmail returns the confirmed booking a given
	// attendee already has on the slot, if any.
	GetBookingBySlotAndEmail(ctx context.Context, slotID, email string) (*Booking, error)
}
