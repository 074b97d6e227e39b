package domain

import (
	"context"
	"fmt"
	"time"
)

// ErrBookingNotFound is returned when the referenced booking does not exist.
var ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)

// BookingStatus enumerates the states a booking can be in.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking represents a confirmed seat on a slot. Bookings are never
// deleted; cancellation flips the status and frees the seat.
// swagger:model Booking
type Booking struct {
	ID            string        `json:"id"`
	SlotID        string        `json:"slot_id"`
	EventID       string        `json:"event_id"`
	HoldID        string        `json:"hold_id"`
	AttendeeName  string        `json:"attendee_name"`
	AttendeeEmail string        `json:"attendee_email"`
	Notes         string        `json:"notes,omitempty"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewBooking returns a confirmed Booking for the given hold and attendee.
func NewBooking(id string, hold *Hold, attendee AttendeeInfo, now time.Time) *Booking {
	return &Booking{
		ID:            id,
		SlotID:        hold.SlotID,
		EventID:       hold.EventID,
		HoldID:        hold.ID,
		AttendeeName:  attendee.Name,
		AttendeeEmail: attendee.Email,
		Notes:         attendee.Notes,
		Status:        BookingConfirmed,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// BookingRepository defines the read side of booking storage. Writes go
// through the SlotStore so they commit atomically with slot counters.
type BookingRepository interface {
	GetBooking(ctx context.Context, id string) (*Booking, error)
	ListByEmail(ctx context.Context, email string, p PaginationParams) ([]*Booking, int, error)
}

// AttendeeService serves the attendee-facing read side: booking lookups
// together with the event and slot they point at.
type AttendeeService interface {
	// GetBooking returns the booking with its event and slot context.
	GetBooking(ctx context.Context, id string) (*Booking, *Event, *Slot, error)

	// ListBookings returns a page of the attendee's bookings, newest
	// first, plus the total count.
	ListBookings(ctx context.Context, email string, p PaginationParams) ([]*Booking, int, error)
}

// SessionState tracks where a booking attempt is in its lifecycle.
type SessionState string

const (
	SessionInitiated  SessionState = "initiated"
	SessionHolding    SessionState = "holding"
	SessionConfirming SessionState = "confirming"
	SessionDone       SessionState = "done"
	SessionAborted    SessionState = "aborted"
)

// BookingSession is the in-memory record of one attendee's booking attempt
// from hold to confirmation. Sessions are advisory: the hold itself stays
// authoritative, so an attempt can finish on another instance.
type BookingSession struct {
	ID        string       `json:"id"`
	HoldID    string       `json:"hold_id"`
	SlotID    string       `json:"slot_id"`
	EventID   string       `json:"event_id"`
	State     SessionState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// StartSessionResult is what a successfully started booking attempt hands
// back to the client: the hold plus a signed token binding the attempt.
type StartSessionResult struct {
	Hold         *Hold
	SessionToken string
}

// BookingSessionService coordinates a booking attempt across the
// reservation engine and the notification side effects.
type BookingSessionService interface {
	// Start claims a hold on the slot and opens a session around it.
	Start(ctx context.Context, eventID, slotID, requesterToken string) (*StartSessionResult, error)

	// Confirm finishes the attempt for the given hold. sessionToken is
	// optional; when present it must have been issued for the hold.
	// Notifications are dispatched in the background and never affect
	// the returned booking.
	Confirm(ctx context.Context, holdID, sessionToken string, attendee AttendeeInfo) (*Booking, error)

	// Abort releases the hold and closes the session.
	Abort(ctx context.Context, holdID string) error

	// Cancel cancels a confirmed booking and notifies the attendee.
	Cancel(ctx context.Context, bookingID string) error
}

// SessionTokenCodec issues and verifies the signed tokens that bind a
// booking attempt to its hold.
type SessionTokenCodec interface {
	Issue(sessionID, holdID string, expiry time.Duration) (string, error)
	Verify(token string) (sessionID, holdID string, err error)
}

// BookingIDNamespace scopes the deterministic booking ids derived from
// hold ids, so a retried confirm lands on the same booking row.
const BookingIDNamespace = "d3f9c1be-5a84-4f7e-9b44-1f2b6a90c7aa"
