package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"slotbooker/internal/domain"
)

// Store is an in-memory implementation of the slot store and the event and
// booking repositories. It backs local development and tests; a single
// mutex gives CompareAndUpdate the same atomicity the SQL store gets from
// a transaction.
type Store struct {
	mu sync.RWMutex

	events     map[string]*domain.Event
	eventOrder []string

	slots        map[string]*domain.Slot
	slotsByEvent map[string][]string

	holds       map[string]*domain.Hold
	holdsBySlot map[string]map[string]struct{}

	bookings map[string]*domain.Booking
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		events:       make(map[string]*domain.Event),
		slots:        make(map[string]*domain.Slot),
		slotsByEvent: make(map[string][]string),
		holds:        make(map[string]*domain.Hold),
		holdsBySlot:  make(map[string]map[string]struct{}),
		bookings:     make(map[string]*domain.Booking),
	}
}

var (
	_ domain.SlotStore         = (*Store)(nil)
	_ domain.EventRepository   = (*Store)(nil)
	_ domain.BookingRepository = (*Store)(nil)
)

// Create inserts the event together with its slot grid.
func (s *Store) Create(ctx context.Context, event *domain.Event, slots []*domain.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := *event
	s.events[ev.ID] = &ev
	s.eventOrder = append(s.eventOrder, ev.ID)

	ids := make([]string, 0, len(slots))
	for _, sl := range slots {
		cp := *sl
		s.slots[cp.ID] = &cp
		ids = append(ids, cp.ID)
	}
	s.slotsByEvent[ev.ID] = ids
	return nil
}

// GetByID returns the event by id.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

// List returns a page of events in creation order plus the total count.
func (s *Store) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.eventOrder)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.Limit()
	if end > total {
		end = total
	}

	out := make([]*domain.Event, 0, end-start)
	for _, id := range s.eventOrder[start:end] {
		cp := *s.events[id]
		out = append(out, &cp)
	}
	return out, total, nil
}

// Delete removes the event and cascades to its slots, holds, and bookings.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.events, id)
	for i, eid := range s.eventOrder {
		if eid == id {
			s.eventOrder = append(s.eventOrder[:i], s.eventOrder[i+1:]...)
			break
		}
	}
	for _, slotID := range s.slotsByEvent[id] {
		delete(s.slots, slotID)
		for holdID := range s.holdsBySlot[slotID] {
			delete(s.holds, holdID)
		}
		delete(s.holdsBySlot, slotID)
	}
	delete(s.slotsByEvent, id)
	for bid, b := range s.bookings {
		if b.EventID == id {
			delete(s.bookings, bid)
		}
	}
	return nil
}

// GetSlot returns the slot by id.
func (s *Store) GetSlot(ctx context.Context, slotID string) (*domain.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sl, ok := s.slots[slotID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *sl
	return &cp, nil
}

// ListSlotsByEvent returns the event's slots ordered by position.
func (s *Store) ListSlotsByEvent(ctx context.Context, eventID string) ([]*domain.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.events[eventID]; !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]*domain.Slot, 0, len(s.slotsByEvent[eventID]))
	for _, id := range s.slotsByEvent[eventID] {
		cp := *s.slots[id]
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// CompareAndUpdate applies mut under the store lock if the slot version
// still matches.
func (s *Store) CompareAndUpdate(ctx context.Context, slotID string, expectedVersion int64, mut domain.SlotMutation) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[slotID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if sl.Version != expectedVersion {
		return 0, domain.ErrVersionConflict
	}

	sl.HeldCount += mut.HeldDelta
	sl.BookedCount += mut.BookedDelta
	sl.Version++

	for _, holdID := range mut.DeleteHoldIDs {
		if h, ok := s.holds[holdID]; ok {
			delete(s.holds, holdID)
			delete(s.holdsBySlot[h.SlotID], holdID)
		}
	}
	if mut.InsertHold != nil {
		cp := *mut.InsertHold
		s.holds[cp.ID] = &cp
		if s.holdsBySlot[cp.SlotID] == nil {
			s.holdsBySlot[cp.SlotID] = make(map[string]struct{})
		}
		s.holdsBySlot[cp.SlotID][cp.ID] = struct{}{}
	}
	if mut.InsertBooking != nil {
		// Keep the first write on id collision so a replayed confirm
		// cannot clobber the original booking.
		if _, exists := s.bookings[mut.InsertBooking.ID]; !exists {
			cp := *mut.InsertBooking
			s.bookings[cp.ID] = &cp
		}
	}
	if mut.UpdateBooking != nil {
		if b, ok := s.bookings[mut.UpdateBooking.BookingID]; ok {
			b.Status = mut.UpdateBooking.Status
			b.UpdatedAt = mut.UpdateBooking.At
		}
	}
	return sl.Version, nil
}

// GetHold returns the hold by id.
func (s *Store) GetHold(ctx context.Context, holdID string) (*domain.Hold, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.holds[holdID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *h
	return &cp, nil
}

// ListHoldsBySlot returns every hold recorded on the slot.
func (s *Store) ListHoldsBySlot(ctx context.Context, slotID string) ([]*domain.Hold, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Hold, 0, len(s.holdsBySlot[slotID]))
	for id := range s.holdsBySlot[slotID] {
		cp := *s.holds[id]
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListExpiredHolds returns up to limit holds expired at or before the
// given instant, oldest expiry first.
func (s *Store) ListExpiredHolds(ctx context.Context, before time.Time, limit int) ([]*domain.Hold, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Hold, 0)
	for _, h := range s.holds {
		if !h.ExpiresAt.After(before) {
			cp := *h
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetBooking returns the booking by id.
func (s *Store) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

// GetBookingBySlotAndEmail returns the confirmed booking the attendee
// already has on the slot, if any.
func (s *Store) GetBookingBySlotAndEmail(ctx context.Context, slotID, email string) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.bookings {
		if b.SlotID == slotID && strings.EqualFold(b.AttendeeEmail, email) && b.Status == domain.BookingConfirmed {
			cp := *b
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListByEmail returns a page of the attendee's bookings, newest first,
// plus the total count.
func (s *Store) ListByEmail(ctx context.Context, email string, p domain.PaginationParams) ([]*domain.Booking, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if strings.EqualFold(b.AttendeeEmail, email) {
			cp := *b
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.Limit()
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}
