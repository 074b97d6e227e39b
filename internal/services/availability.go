package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"slotbooker/internal/broadcast"
	"slotbooker/internal/clock"
	"slotbooker/internal/domain"
)

const streamBuffer = 16

type availabilityService struct {
	store  domain.SlotStore
	hub    *broadcast.Hub
	clk    clock.Clock
	logger *slog.Logger
}

// NewAvailabilityService creates an AvailabilityService reading slot state
// from store and live changes from hub.
func NewAvailabilityService(store domain.SlotStore, hub *broadcast.Hub, clk clock.Clock, logger *slog.Logger) domain.AvailabilityService {
	return &availabilityService{
		store:  store,
		hub:    hub,
		clk:    clk,
		logger: logger,
	}
}

func (s *availabilityService) Snapshot(ctx context.Context, eventID string) ([]domain.SlotStateChange, error) {
	slots, err := s.store.ListSlotsByEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("list slots: %w", err)
	}
	now := s.clk.Now()
	out := make([]domain.SlotStateChange, 0, len(slots))
	for _, slot := range slots {
		out = append(out, domain.ChangeFromSlot(slot, now))
	}
	return out, nil
}

func (s *availabilityService) Subscribe(ctx context.Context, eventID string) (domain.AvailabilityStream, error) {
	// Register with the hub before reading the snapshot. A change that
	// commits between the two lands in the live channel, so the stream
	// may repeat a state the snapshot already carried but never skips one.
	sub := s.hub.Subscribe(eventID)
	snapshot, err := s.Snapshot(ctx, eventID)
	if err != nil {
		sub.Close()
		return nil, err
	}

	stream := &availabilityStream{
		sub:  sub,
		out:  make(chan domain.SlotStateChange, streamBuffer),
		done: make(chan struct{}),
	}
	go stream.run(snapshot)
	return stream, nil
}

// availabilityStream replays the snapshot, then pipes live changes until
// the consumer closes it or the hub drops it.
type availabilityStream struct {
	sub  *broadcast.Subscription
	out  chan domain.SlotStateChange
	done chan struct{}
	once sync.Once
}

func (st *availabilityStream) run(snapshot []domain.SlotStateChange) {
	defer close(st.out)
	for _, c := range snapshot {
		select {
		case st.out <- c:
		case <-st.done:
			return
		}
	}
	for {
		select {
		case c, ok := <-st.sub.Events():
			if !ok {
				return
			}
			select {
			case st.out <- c:
			case <-st.done:
				return
			}
		case <-st.done:
			return
		}
	}
}

func (st *availabilityStream) Events() <-chan domain.SlotStateChange {
	return st.out
}

func (st *availabilityStream) Close() {
	st.once.Do(func() {
		st.sub.Close()
		close(st.done)
	})
}
