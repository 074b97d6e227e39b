package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotbooker/internal/domain"
)

type attendeeService struct {
	bookingRepo    domain.BookingRepository
	eventRepo      domain.EventRepository
	store          domain.SlotStore
	contextTimeout time.Duration
}

// NewAttendeeService creates an AttendeeService over the booking read
// side. It never mutates slot state.
func NewAttendeeService(
	bookingRepo domain.BookingRepository,
	eventRepo domain.EventRepository,
	store domain.SlotStore,
	timeout time.Duration,
) domain.AttendeeService {
	return &attendeeService{
		bookingRepo:    bookingRepo,
		eventRepo:      eventRepo,
		store:          store,
		contextTimeout: timeout,
	}
}

func (s *attendeeService) GetBooking(ctx context.Context, id string) (*domain.Booking, *domain.Event, *domain.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	booking, err := s.bookingRepo.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, domain.ErrBookingNotFound
		}
		return nil, nil, nil, fmt.Errorf("get booking: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, booking.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, domain.ErrBookingNotFound
		}
		return nil, nil, nil, fmt.Errorf("get event: %w", err)
	}
	slot, err := s.store.GetSlot(ctx, booking.SlotID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, domain.ErrBookingNotFound
		}
		return nil, nil, nil, fmt.Errorf("get slot: %w", err)
	}
	return booking, event, slot, nil
}

func (s *attendeeService) ListBookings(ctx context.Context, email string, p domain.PaginationParams) ([]*domain.Booking, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	bookings, total, err := s.bookingRepo.ListByEmail(ctx, email, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	if bookings == nil {
		bookings = []*domain.Booking{}
	}
	return bookings, total, nil
}
