package services

import (
	"context"
	"testing"
	"time"

	"slotbooker/internal/broadcast"
	"slotbooker/internal/clock"
	"slotbooker/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestAvailabilityService_Snapshot(t *testing.T) {
	ctx := context.Background()
	store, _ := seedStore(t, 2)
	hub := broadcast.NewHub(testLogger)
	svc := NewAvailabilityService(store, hub, clock.NewFake(testStart), testLogger)

	snapshot, err := svc.Snapshot(ctx, "ev-1")
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	require.Equal(t, "slot-1", snapshot[0].SlotID)
	require.Equal(t, 2, snapshot[0].Remaining)
	require.Equal(t, int64(1), snapshot[0].Version)

	_, err = svc.Snapshot(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestAvailabilityService_SubscribeSnapshotFirst(t *testing.T) {
	ctx := context.Background()
	store, slotID := seedStore(t, 2)
	hub := broadcast.NewHub(testLogger)
	clk := clock.NewFake(testStart)
	svc := NewAvailabilityService(store, hub, clk, testLogger)
	engine := NewReservationEngine(store, hub, clk, testLogger, WithBackoffBase(time.Millisecond))

	stream, err := svc.Subscribe(ctx, "ev-1")
	require.NoError(t, err)
	defer stream.Close()

	// A change right after subscribing must not displace the snapshot.
	_, err = engine.RequestHold(ctx, slotID, "req-1")
	require.NoError(t, err)

	first := receiveChange(t, stream)
	require.Equal(t, int64(1), first.Version, "snapshot state must arrive before live changes")
	require.Equal(t, 2, first.Remaining)

	second := receiveChange(t, stream)
	require.Equal(t, int64(2), second.Version)
	require.Equal(t, 1, second.Remaining)
	require.Equal(t, 1, second.HeldCount)
}

func TestAvailabilityService_SubscribeUnknownEvent(t *testing.T) {
	store, _ := seedStore(t, 1)
	hub := broadcast.NewHub(testLogger)
	svc := NewAvailabilityService(store, hub, clock.NewFake(testStart), testLogger)

	_, err := svc.Subscribe(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrEventNotFound)
	require.Equal(t, 0, hub.SubscriberCount("missing"))
}

func TestAvailabilityService_CloseEndsStream(t *testing.T) {
	ctx := context.Background()
	store, _ := seedStore(t, 1)
	hub := broadcast.NewHub(testLogger)
	svc := NewAvailabilityService(store, hub, clock.NewFake(testStart), testLogger)

	stream, err := svc.Subscribe(ctx, "ev-1")
	require.NoError(t, err)

	receiveChange(t, stream)
	stream.Close()
	stream.Close()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-stream.Events():
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, 0, hub.SubscriberCount("ev-1"))
}

func TestAvailabilityService_LaggardIsDisconnected(t *testing.T) {
	ctx := context.Background()
	store, slotID := seedStore(t, 10)
	hub := broadcast.NewHub(testLogger, broadcast.WithSubscriberBuffer(1))
	clk := clock.NewFake(testStart)
	svc := NewAvailabilityService(store, hub, clk, testLogger)
	engine := NewReservationEngine(store, hub, clk, testLogger, WithBackoffBase(time.Millisecond))

	stream, err := svc.Subscribe(ctx, "ev-1")
	require.NoError(t, err)
	defer stream.Close()

	// Nobody reads the stream while a burst of changes lands: the hub
	// buffer (1) plus the stream buffer eventually overflow and the
	// subscriber is cut off rather than silently missing updates.
	for i := 0; i < streamBuffer+8; i++ {
		_, err := engine.RequestHold(ctx, slotID, "req")
		require.NoError(t, err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-stream.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("stalled subscriber was never disconnected")
		}
	}
}

func receiveChange(t *testing.T, stream domain.AvailabilityStream) domain.SlotStateChange {
	t.Helper()
	select {
	case c, ok := <-stream.Events():
		require.True(t, ok, "stream closed early")
		return c
	case <-time.After(time.Second):
		t.Fatal("no change received")
		return domain.SlotStateChange{}
	}
}
