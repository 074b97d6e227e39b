package domain

import (
	"context"
	"fmt"
	"time"
)

// ErrEventNotFound is returned when the referenced event does not exist.
var ErrEventNotFound = fmt.Errorf("event %w", ErrNotFound)

// Event represents a bookable event: a host's offering with a fixed
// slot grid generated at creation time.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	HostName    string    `json:"host_name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	MaxPerSlot  int       `json:"max_per_slot"`
	Timezone    string    `json:"timezone"`
	DurationMin int       `json:"duration_min"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the service on create.
func NewEvent(hostName, title, description, timezone string, maxPerSlot, durationMin int, createdAt time.Time) *Event {
	return &Event{
		HostName:    hostName,
		Title:       title,
		Description: description,
		MaxPerSlot:  maxPerSlot,
		Timezone:    timezone,
		DurationMin: durationMin,
		CreatedAt:   createdAt,
	}
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event, slots []*Slot) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, p PaginationParams) ([]*Event, int, error)
	Delete(ctx context.Context, id string) error
}

// CreateEventInput carries the fields needed to create an event together
// with its slot grid. Slot instants are interpreted in the event timezone.
type CreateEventInput struct {
	HostName    string
	Title       string
	Description string
	Timezone    string
	DurationMin int
	MaxPerSlot  int
	SlotStarts  []time.Time
}

// EventCatalogService defines the business logic for managing events and
// their slot grids.
type EventCatalogService interface {
	CreateEvent(ctx context.Context, in CreateEventInput) (*Event, []*Slot, error)
	GetEvent(ctx context.Context, id string) (*Event, []*Slot, error)
	ListEvents(ctx context.Context, p PaginationParams) ([]*Event, int, error)
	DeleteEvent(ctx context.Context, id string) error
}
