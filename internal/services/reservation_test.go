package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"slotbooker/internal/clock"
	"slotbooker/internal/domain"
	"slotbooker/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var testStart = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// seedStore creates an event with one slot of the given capacity.
func seedStore(t *testing.T, capacity int) (*memory.Store, string) {
	t.Helper()
	store := memory.NewStore()
	event := &domain.Event{ID: "ev-1", HostName: "Dana", Title: "Office Hours", MaxPerSlot: capacity, Timezone: "UTC", DurationMin: 30, CreatedAt: testStart}
	slot := &domain.Slot{ID: "slot-1", EventID: "ev-1", StartsAt: testStart.Add(24 * time.Hour), Capacity: capacity, Version: 1, Position: 0}
	require.NoError(t, store.Create(context.Background(), event, []*domain.Slot{slot}))
	return store, slot.ID
}

func newEngine(store domain.SlotStore, clk clock.Clock, opts ...EngineOption) domain.ReservationEngine {
	base := []EngineOption{WithBackoffBase(time.Millisecond), WithRetryBudget(8)}
	return NewReservationEngine(store, nil, clk, testLogger, append(base, opts...)...)
}

func TestRequestHold_NeverOverbooks(t *testing.T) {
	ctx := context.Background()
	store, slotID := seedStore(t, 3)
	engine := newEngine(store, clock.NewFake(testStart))

	const requesters = 16
	errs := make(chan error, requesters)
	var wg sync.WaitGroup
	for i := 0; i < requesters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := engine.RequestHold(ctx, slotID, fmt.Sprintf("req-%d", n))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	granted, full := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			granted++
		case err == domain.ErrSlotFull:
			full++
		default:
			t.Fatalf("unexpected outcome: %v", err)
		}
	}
	require.Equal(t, 3, granted)
	require.Equal(t, requesters-3, full)

	slot, err := store.GetSlot(ctx, slotID)
	require.NoError(t, err)
	require.Equal(t, 3, slot.HeldCount)
	require.Equal(t, 0, slot.BookedCount)
	require.LessOrEqual(t, slot.HeldCount+slot.BookedCount, slot.Capacity)

	holds, err := store.ListHoldsBySlot(ctx, slotID)
	require.NoError(t, err)
	require.Len(t, holds, 3)
}

func TestRequestHold_LastSeatHasExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	store, slotID := seedStore(t, 1)
	engine := newEngine(store, clock.NewFake(testStart))

	const requesters = 16
	type outcome struct {
		hold *domain.Hold
		err  error
	}
	results := make(chan outcome, requesters)
	var wg sync.WaitGroup
	for i := 0; i < requesters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			h, err := engine.RequestHold(ctx, slotID, fmt.Sprintf("req-%d", n))
			results <- outcome{hold: h, err: err}
		}(i)
	}
	wg.Wait()
	close(results)

	var winners []*domain.Hold
	losers := 0
	for r := range results {
		if r.err == nil {
			winners = append(winners, r.hold)
			continue
		}
		require.ErrorIs(t, r.err, domain.ErrSlotFull)
		losers++
	}
	require.Len(t, winners, 1)
	require.Equal(t, requesters-1, losers)
	require.Equal(t, testStart.Add(defaultHoldTTL), winners[0].ExpiresAt)
}

func TestRequestHold_UnknownSlot(t *testing.T) {
	store, _ := seedStore(t, 1)
	engine := newEngine(store, clock.NewFake(testStart))

	_, err := engine.RequestHold(context.Background(), "missing", "req-1")
	require.ErrorIs(t, err, domain.ErrSlotNotFound)
}

func TestRequestHold_ReclaimsExpiredInline(t *testing.T) {
	ctx := context.Background()
	store, slotID := seedStore(t, 1)
	clk := clock.NewFake(testStart)
	engine := newEngine(store, clk)

	stale, err := engine.RequestHold(ctx, slotID, "req-1")
	require.NoError(t, err)

	_, err = engine.RequestHold(ctx, slotID, "req-2")
	require.ErrorIs(t, err, domain.ErrSlotFull)

	// Past the TTL the dead hold no longer counts, even before a sweep.
	clk.Advance(defaultHoldTTL + time.Second)

	fresh, err := engine.RequestHold(ctx, slotID, "req-2")
	require.NoError(t, err)
	require.NotEqual(t, stale.ID, fresh.ID)

	slot, err := store.GetSlot(ctx, slotID)
	require.NoError(t, err)
	require.Equal(t, 1, slot.HeldCount)

	_, err = store.GetHold(ctx, stale.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// The reclaimed hold cannot be confirmed anymore.
	_, err = engine.ConfirmHold(ctx, stale.ID, domain.AttendeeInfo{Name: "Ada", Email: "ada@example.com"})
	require.ErrorIs(t, err, domain.ErrHoldNotFound)
}

func TestConfirmHold_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, slotID := seedStore(t, 1)
	engine := newEngine(store, clock.NewFake(testStart))

	hold, err := engine.RequestHold(ctx, slotID, "req-1")
	require.NoError(t, err)

	attendee := domain.AttendeeInfo{Name: "Ada", Email: "ada@example.com"}
	first, err := engine.ConfirmHold(ctx, hold.ID, attendee)
	require.NoError(t, err)
	require.Equal(t, BookingIDForHold(hold.ID), first.ID)

	second, err := engine.ConfirmHold(ctx, hold.ID, attendee)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	slot, err := store.GetSlot(ctx, slotID)
	require.NoError(t, err)
	require.Equal(t, 0, slot.HeldCount)
	require.Equal(t, 1, slot.BookedCount)
}

func TestConfirmHold_ConcurrentRepeatsAgreeOnOneBooking(t *testing.T) {
	ctx := context.Background()
	store, slotID := seedStore(t, 1)
	engine := newEngine(store, clock.NewFake(testStart))

	hold, err := engine.RequestHold(ctx, slotID, "req-1")
	require.NoError(t, err)

	attendee := domain.AttendeeInfo{Name: "Ada", Email: "ada@example.com"}
	const confirms = 8
	ids := make(chan string, confirms)
	var wg sync.WaitGroup
	for i := 0; i < confirms; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := engine.ConfirmHold(ctx, hold.ID, attendee)
			if err != nil {
				ids <- "error: " + err.Error()
				return
			}
			ids <- b.ID
		}()
	}
	wg.Wait()
	close(ids)

	want := BookingIDForHold(hold.ID)
	for got := range ids {
		require.Equal(t, want, got)
	}

	slot, err := store.GetSlot(ctx, slotID)
	require.NoError(t, err)
	require.Equal(t, 1, slot.BookedCount)
	require.Equal(t, 0, slot.HeldCount)
}

func TestConfirmHold_Expired(t *testing.T) {
	ctx := context.Background()
	store, slotID := seedStore(t, 1)
	clk := clock.NewFake(testStart)
	engine := newEngine(store, clk)

	hold, err := engine.RequestHold(ctx, slotID, "req-1")
	require.NoError(t, err)

	clk.Advance(defaultHoldTTL + time.Second)

	_, err = engine.ConfirmHold(ctx, hold.ID, domain.AttendeeInfo{Name: "Ada", Email: "ada@example.com"})
	require.ErrorIs(t, err, domain.ErrHoldExpired)

	// The seat comes back within one sweep.
	swept, err := engine.SweepExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, swept)

	slot, err := store.GetSlot(ctx, slotID)
	require.NoError(t, err)
	require.Equal(t, 0, slot.HeldCount)
	require.Equal(t, 0, slot.BookedCount)
}

func TestConfirmHold_RejectsDoubleBookingByEmail(t *testing.T) {
	ctx := context.Background()
	store, slotID := seedStore(t, 2)
	engine := newEngine(store, clock.NewFake(testStart))

	holdA, err := engine.RequestHold(ctx, slotID, "req-1")
	require.NoError(t, err)
	holdB, err := engine.RequestHold(ctx, slotID, "req-2")
	require.NoError(t, err)

	_, err = engine.ConfirmHold(ctx, holdA.ID, domain.AttendeeInfo{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = engine.ConfirmHold(ctx, holdB.ID, domain.AttendeeInfo{Name: "Ada", Email: "ADA@example.com"})
	require.ErrorIs(t, err, domain.ErrAlreadyBooked)

	_, err = engine.ConfirmHold(ctx, holdB.ID, domain.AttendeeInfo{Name: "Grace", Email: "grace@example.com"})
	require.NoError(t, err)
}

func TestReleaseHold(t *testing.T) {
	ctx := context.Background()
	store, slotID := seedStore(t, 1)
	engine := newEngine(store, clock.NewFake(testStart))

	hold, err := engine.RequestHold(ctx, slotID, "req-1")
	require.NoError(t, err)

	require.NoError(t, engine.ReleaseHold(ctx, hold.ID))

	slot, err := store.GetSlot(ctx, slotID)
	require.NoError(t, err)
	require.Equal(t, 0, slot.HeldCount)

	// The seat is immediately claimable again.
	_, err = engine.RequestHold(ctx, slotID, "req-2")
	require.NoError(t, err)

	require.ErrorIs(t, engine.ReleaseHold(ctx, hold.ID), domain.ErrHoldNotFound)
	require.ErrorIs(t, engine.ReleaseHold(ctx, "missing"), domain.ErrHoldNotFound)
}

func TestCancelBooking_RestoresCapacity(t *testing.T) {
	ctx := context.Background()
	store, slotID := seedStore(t, 1)
	engine := newEngine(store, clock.NewFake(testStart))

	hold, err := engine.RequestHold(ctx, slotID, "req-1")
	require.NoError(t, err)
	booking, err := engine.ConfirmHold(ctx, hold.ID, domain.AttendeeInfo{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = engine.RequestHold(ctx, slotID, "req-2")
	require.ErrorIs(t, err, domain.ErrSlotFull)

	require.NoError(t, engine.CancelBooking(ctx, booking.ID))

	slot, err := store.GetSlot(ctx, slotID)
	require.NoError(t, err)
	require.Equal(t, 0, slot.BookedCount)

	// Cancelling again is a no-op and must not free a second seat.
	require.NoError(t, engine.CancelBooking(ctx, booking.ID))
	slot, err = store.GetSlot(ctx, slotID)
	require.NoError(t, err)
	require.Equal(t, 0, slot.BookedCount)

	_, err = engine.RequestHold(ctx, slotID, "req-2")
	require.NoError(t, err)

	got, err := store.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	require.Equal(t, domain.BookingCancelled, got.Status)

	require.ErrorIs(t, engine.CancelBooking(ctx, "missing"), domain.ErrBookingNotFound)
}

func TestSweepExpired_SkipsLiveHolds(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	event := &domain.Event{ID: "ev-1", Title: "Office Hours", MaxPerSlot: 1, Timezone: "UTC", CreatedAt: testStart}
	slots := []*domain.Slot{
		{ID: "slot-1", EventID: "ev-1", StartsAt: testStart.Add(24 * time.Hour), Capacity: 1, Version: 1, Position: 0},
		{ID: "slot-2", EventID: "ev-1", StartsAt: testStart.Add(25 * time.Hour), Capacity: 1, Version: 1, Position: 1},
	}
	require.NoError(t, store.Create(ctx, event, slots))

	clk := clock.NewFake(testStart)
	engine := newEngine(store, clk)

	old, err := engine.RequestHold(ctx, "slot-1", "req-1")
	require.NoError(t, err)

	clk.Advance(defaultHoldTTL - time.Second)
	fresh, err := engine.RequestHold(ctx, "slot-2", "req-2")
	require.NoError(t, err)

	clk.Advance(2 * time.Second)

	swept, err := engine.SweepExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, swept)

	_, err = store.GetHold(ctx, old.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetHold(ctx, fresh.ID)
	require.NoError(t, err)

	swept, err = engine.SweepExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, swept)
}

// conflictStore forces CompareAndUpdate to keep failing so the retry
// budget runs out.
type conflictStore struct {
	domain.SlotStore
}

func (c *conflictStore) CompareAndUpdate(ctx context.Context, slotID string, expectedVersion int64, mut domain.SlotMutation) (int64, error) {
	return 0, domain.ErrVersionConflict
}

func TestRequestHold_GivesUpUnderContention(t *testing.T) {
	store, slotID := seedStore(t, 1)
	engine := NewReservationEngine(&conflictStore{SlotStore: store}, nil, clock.NewFake(testStart), testLogger,
		WithRetryBudget(3), WithBackoffBase(time.Millisecond))

	_, err := engine.RequestHold(context.Background(), slotID, "req-1")
	require.ErrorIs(t, err, domain.ErrContention)
}
