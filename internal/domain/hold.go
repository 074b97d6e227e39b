package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for reservation outcomes.
var (
	// ErrHoldNotFound is returned when the referenced hold does not exist.
	ErrHoldNotFound = fmt.Errorf("hold %w", ErrNotFound)

	// ErrSlotFull is returned when a slot has no remaining capacity for a
	// new hold. Retrying will not help until a seat frees up.
	ErrSlotFull = errors.New("slot is fully booked")

	// ErrHoldExpired is returned when confirming a hold whose expiry has
	// passed. The claimed seat has been (or will be) reclaimed.
	ErrHoldExpired = errors.New("hold has expired")

	// ErrContention is returned when an operation gave up after exhausting
	// its retry budget against concurrent writers. Safe to retry.
	ErrContention = errors.New("slot is under heavy contention")

	// ErrAlreadyBooked is returned when the attendee already has a
	// confirmed booking on the slot.
	ErrAlreadyBooked = errors.New("attendee already booked this slot")
)

// Hold represents a temporary claim on one seat of a slot. A hold keeps
// the seat out of reach of other requesters until it is confirmed,
// released, or its expiry passes.
// swagger:model Hold
type Hold struct {
	ID             string    `json:"id"`
	SlotID         string    `json:"slot_id"`
	EventID        string    `json:"event_id"`
	RequesterToken string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Live reports whether the hold still claims its seat at the given instant.
func (h *Hold) Live(now time.Time) bool {
	return h.ExpiresAt.After(now)
}

// AttendeeInfo identifies who a hold is being confirmed for.
type AttendeeInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

// ReservationEngine defines the business logic for the hold lifecycle.
// All operations are safe under concurrent use and never overbook.
type ReservationEngine interface {
	// RequestHold claims one seat on the slot. Fails with ErrSlotFull when
	// capacity net of expired holds is exhausted, ErrContention when the
	// retry budget runs out before a clean read-check-write cycle lands.
	RequestHold(ctx context.Context, slotID, requesterToken string) (*Hold, error)

	// ConfirmHold converts a live hold into a confirmed booking. Repeat
	// confirms of the same hold return the same booking.
	ConfirmHold(ctx context.Context, holdID string, attendee AttendeeInfo) (*Booking, error)

	// ReleaseHold voluntarily gives the held seat back.
	ReleaseHold(ctx context.Context, holdID string) error

	// CancelBooking cancels a confirmed booking and restores its seat.
	// Cancelling an already cancelled booking is a no-op.
	CancelBooking(ctx context.Context, bookingID string) error

	// SweepExpired reclaims seats from holds whose expiry has passed and
	// returns how many were reclaimed.
	SweepExpired(ctx context.Context) (int, error)
}
