package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"slotbooker/internal/clock"
	"slotbooker/internal/domain"
)

type catalogService struct {
	eventRepo      domain.EventRepository
	store          domain.SlotStore
	clk            clock.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewCatalogService creates an EventCatalogService with the given
// repositories.
func NewCatalogService(
	eventRepo domain.EventRepository,
	store domain.SlotStore,
	clk clock.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventCatalogService {
	return &catalogService{
		eventRepo:      eventRepo,
		store:          store,
		clk:            clk,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *catalogService) CreateEvent(ctx context.Context, in domain.CreateEventInput) (*domain.Event, []*domain.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if in.Title == "" {
		return nil, nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if in.HostName == "" {
		return nil, nil, fmt.Errorf("%w: host name is required", domain.ErrInvalidInput)
	}
	if len(in.SlotStarts) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one slot is required", domain.ErrInvalidInput)
	}
	if in.DurationMin <= 0 {
		in.DurationMin = 30
	}
	if in.MaxPerSlot <= 0 {
		in.MaxPerSlot = 1
	}
	if in.Timezone == "" {
		in.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(in.Timezone); err != nil {
		return nil, nil, fmt.Errorf("%w: unknown timezone %q", domain.ErrInvalidInput, in.Timezone)
	}

	starts := make([]time.Time, len(in.SlotStarts))
	for i, t := range in.SlotStarts {
		starts[i] = t.UTC()
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	for i := 1; i < len(starts); i++ {
		if starts[i].Equal(starts[i-1]) {
			return nil, nil, fmt.Errorf("%w: duplicate slot start %s", domain.ErrInvalidInput, starts[i].Format(time.RFC3339))
		}
	}

	now := s.clk.Now()
	event := domain.NewEvent(in.HostName, in.Title, in.Description, in.Timezone, in.MaxPerSlot, in.DurationMin, now)
	event.ID = uuid.NewString()

	slots := make([]*domain.Slot, 0, len(starts))
	for i, startsAt := range starts {
		slot := domain.NewSlot(event.ID, startsAt, in.MaxPerSlot, i)
		slot.ID = uuid.NewString()
		slots = append(slots, slot)
	}

	if err := s.eventRepo.Create(ctx, event, slots); err != nil {
		return nil, nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info("event created", "event_id", event.ID, "slots", len(slots))
	return event, slots, nil
}

func (s *catalogService) GetEvent(ctx context.Context, id string) (*domain.Event, []*domain.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrEventNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	slots, err := s.store.ListSlotsByEvent(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrEventNotFound
		}
		return nil, nil, fmt.Errorf("list slots: %w", err)
	}
	return event, slots, nil
}

func (s *catalogService) ListEvents(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *catalogService) DeleteEvent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	s.logger.Info("event deleted", "event_id", id)
	return nil
}
