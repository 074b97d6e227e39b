package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"slotbooker/internal/clock"
	"slotbooker/internal/domain"
	"slotbooker/internal/monitoring"
)

const (
	defaultHoldTTL     = 5 * time.Minute
	defaultRetryBudget = 5
	defaultBackoffBase = 5 * time.Millisecond
	defaultSweepBatch  = 256
)

type reservationEngine struct {
	store     domain.SlotStore
	publisher domain.ChangePublisher
	clk       clock.Clock
	logger    *slog.Logger

	holdTTL     time.Duration
	retryBudget int
	backoffBase time.Duration
	sweepBatch  int
}

// EngineOption tunes the reservation engine.
type EngineOption func(*reservationEngine)

// WithHoldTTL sets how long a hold claims its seat.
func WithHoldTTL(d time.Duration) EngineOption {
	return func(e *reservationEngine) { e.holdTTL = d }
}

// WithRetryBudget sets how many read-check-write cycles an operation may
// attempt before giving up with ErrContention.
func WithRetryBudget(n int) EngineOption {
	return func(e *reservationEngine) { e.retryBudget = n }
}

// WithBackoffBase sets the base delay between retries. The actual delay
// is jittered between base and 5x base.
func WithBackoffBase(d time.Duration) EngineOption {
	return func(e *reservationEngine) { e.backoffBase = d }
}

// WithSweepBatch caps how many expired holds one sweep pass loads.
func WithSweepBatch(n int) EngineOption {
	return func(e *reservationEngine) { e.sweepBatch = n }
}

// NewReservationEngine creates a ReservationEngine on top of the given
// slot store. Every state change is announced through publisher after it
// commits.
func NewReservationEngine(
	store domain.SlotStore,
	publisher domain.ChangePublisher,
	clk clock.Clock,
	logger *slog.Logger,
	opts ...EngineOption,
) domain.ReservationEngine {
	e := &reservationEngine{
		store:       store,
		publisher:   publisher,
		clk:         clk,
		logger:      logger,
		holdTTL:     defaultHoldTTL,
		retryBudget: defaultRetryBudget,
		backoffBase: defaultBackoffBase,
		sweepBatch:  defaultSweepBatch,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BookingIDForHold derives the deterministic booking id for a hold. A
// retried confirm of the same hold therefore lands on the same booking row.
func BookingIDForHold(holdID string) string {
	ns := uuid.MustParse(domain.BookingIDNamespace)
	return uuid.NewSHA1(ns, []byte(holdID)).String()
}

func (e *reservationEngine) RequestHold(ctx context.Context, slotID, requesterToken string) (*domain.Hold, error) {
	for attempt := 0; attempt < e.retryBudget; attempt++ {
		if attempt > 0 {
			if err := e.backoff(ctx); err != nil {
				return nil, err
			}
		}

		slot, err := e.store.GetSlot(ctx, slotID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrSlotNotFound
			}
			return nil, fmt.Errorf("get slot: %w", err)
		}
		holds, err := e.store.ListHoldsBySlot(ctx, slotID)
		if err != nil {
			return nil, fmt.Errorf("list holds: %w", err)
		}

		now := e.clk.Now()
		live, expired := splitHolds(holds, now)

		if slot.BookedCount+live >= slot.Capacity {
			if len(expired) == 0 {
				monitoring.RecordHoldRequested("slot_full")
				return nil, domain.ErrSlotFull
			}
			// Seats are only tied up by dead holds. Reclaim them and
			// re-evaluate on the next attempt.
			mut := domain.SlotMutation{HeldDelta: -len(expired), DeleteHoldIDs: expired}
			version, err := e.store.CompareAndUpdate(ctx, slot.ID, slot.Version, mut)
			switch {
			case err == nil:
				monitoring.RecordHoldsSwept(len(expired))
				e.publish(slot, mut, version, now)
			case errors.Is(err, domain.ErrVersionConflict):
				monitoring.RecordStoreConflict()
			case errors.Is(err, domain.ErrNotFound):
				return nil, domain.ErrSlotNotFound
			default:
				return nil, fmt.Errorf("reclaim holds: %w", err)
			}
			continue
		}

		hold := &domain.Hold{
			ID:             uuid.NewString(),
			SlotID:         slot.ID,
			EventID:        slot.EventID,
			RequesterToken: requesterToken,
			CreatedAt:      now,
			ExpiresAt:      now.Add(e.holdTTL),
		}
		mut := domain.SlotMutation{
			HeldDelta:     1 - len(expired),
			DeleteHoldIDs: expired,
			InsertHold:    hold,
		}
		version, err := e.store.CompareAndUpdate(ctx, slot.ID, slot.Version, mut)
		if err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				monitoring.RecordStoreConflict()
				continue
			}
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrSlotNotFound
			}
			return nil, fmt.Errorf("apply hold: %w", err)
		}

		monitoring.RecordHoldRequested("granted")
		e.publish(slot, mut, version, now)
		e.logger.Debug("hold granted", "hold_id", hold.ID, "slot_id", slot.ID, "expires_at", hold.ExpiresAt)
		return hold, nil
	}

	monitoring.RecordHoldRequested("contention")
	return nil, domain.ErrContention
}

func (e *reservationEngine) ConfirmHold(ctx context.Context, holdID string, attendee domain.AttendeeInfo) (*domain.Booking, error) {
	bookingID := BookingIDForHold(holdID)

	for attempt := 0; attempt < e.retryBudget; attempt++ {
		if attempt > 0 {
			if err := e.backoff(ctx); err != nil {
				return nil, err
			}
		}

		hold, err := e.store.GetHold(ctx, holdID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// The hold may be gone because an earlier confirm of it
				// already went through; answer that confirm's result.
				if booking, berr := e.store.GetBooking(ctx, bookingID); berr == nil {
					return booking, nil
				} else if !errors.Is(berr, domain.ErrNotFound) {
					return nil, fmt.Errorf("get booking: %w", berr)
				}
				return nil, domain.ErrHoldNotFound
			}
			return nil, fmt.Errorf("get hold: %w", err)
		}

		now := e.clk.Now()
		if !hold.Live(now) {
			return nil, domain.ErrHoldExpired
		}

		if attendee.Email != "" {
			if existing, err := e.store.GetBookingBySlotAndEmail(ctx, hold.SlotID, attendee.Email); err == nil {
				if existing.HoldID == hold.ID {
					return existing, nil
				}
				return nil, domain.ErrAlreadyBooked
			} else if !errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("check existing booking: %w", err)
			}
		}

		slot, err := e.store.GetSlot(ctx, hold.SlotID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrSlotNotFound
			}
			return nil, fmt.Errorf("get slot: %w", err)
		}

		booking := domain.NewBooking(bookingID, hold, attendee, now)
		mut := domain.SlotMutation{
			HeldDelta:     -1,
			BookedDelta:   1,
			DeleteHoldIDs: []string{hold.ID},
			InsertBooking: booking,
		}
		version, err := e.store.CompareAndUpdate(ctx, slot.ID, slot.Version, mut)
		if err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				monitoring.RecordStoreConflict()
				continue
			}
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrSlotNotFound
			}
			return nil, fmt.Errorf("apply confirm: %w", err)
		}

		monitoring.RecordBookingConfirmed()
		e.publish(slot, mut, version, now)
		e.logger.Info("hold confirmed", "hold_id", hold.ID, "booking_id", booking.ID, "slot_id", slot.ID)
		return booking, nil
	}

	return nil, domain.ErrContention
}

func (e *reservationEngine) ReleaseHold(ctx context.Context, holdID string) error {
	for attempt := 0; attempt < e.retryBudget; attempt++ {
		if attempt > 0 {
			if err := e.backoff(ctx); err != nil {
				return err
			}
		}

		hold, err := e.store.GetHold(ctx, holdID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrHoldNotFound
			}
			return fmt.Errorf("get hold: %w", err)
		}
		slot, err := e.store.GetSlot(ctx, hold.SlotID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrHoldNotFound
			}
			return fmt.Errorf("get slot: %w", err)
		}

		mut := domain.SlotMutation{HeldDelta: -1, DeleteHoldIDs: []string{hold.ID}}
		version, err := e.store.CompareAndUpdate(ctx, slot.ID, slot.Version, mut)
		if err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				monitoring.RecordStoreConflict()
				continue
			}
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrHoldNotFound
			}
			return fmt.Errorf("apply release: %w", err)
		}

		monitoring.RecordHoldReleased()
		e.publish(slot, mut, version, e.clk.Now())
		e.logger.Debug("hold released", "hold_id", hold.ID, "slot_id", slot.ID)
		return nil
	}

	return domain.ErrContention
}

func (e *reservationEngine) CancelBooking(ctx context.Context, bookingID string) error {
	for attempt := 0; attempt < e.retryBudget; attempt++ {
		if attempt > 0 {
			if err := e.backoff(ctx); err != nil {
				return err
			}
		}

		booking, err := e.store.GetBooking(ctx, bookingID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrBookingNotFound
			}
			return fmt.Errorf("get booking: %w", err)
		}
		if booking.Status == domain.BookingCancelled {
			return nil
		}
		slot, err := e.store.GetSlot(ctx, booking.SlotID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrBookingNotFound
			}
			return fmt.Errorf("get slot: %w", err)
		}

		now := e.clk.Now()
		mut := domain.SlotMutation{
			BookedDelta:   -1,
			UpdateBooking: &domain.BookingStatusChange{BookingID: booking.ID, Status: domain.BookingCancelled, At: now},
		}
		version, err := e.store.CompareAndUpdate(ctx, slot.ID, slot.Version, mut)
		if err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				monitoring.RecordStoreConflict()
				continue
			}
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrBookingNotFound
			}
			return fmt.Errorf("apply cancel: %w", err)
		}

		monitoring.RecordBookingCancelled()
		e.publish(slot, mut, version, now)
		e.logger.Info("booking cancelled", "booking_id", booking.ID, "slot_id", slot.ID)
		return nil
	}

	return domain.ErrContention
}

func (e *reservationEngine) SweepExpired(ctx context.Context) (int, error) {
	holds, err := e.store.ListExpiredHolds(ctx, e.clk.Now(), e.sweepBatch)
	if err != nil {
		return 0, fmt.Errorf("list expired holds: %w", err)
	}
	if len(holds) == 0 {
		return 0, nil
	}

	slotIDs := make([]string, 0, len(holds))
	seen := make(map[string]struct{}, len(holds))
	for _, h := range holds {
		if _, ok := seen[h.SlotID]; ok {
			continue
		}
		seen[h.SlotID] = struct{}{}
		slotIDs = append(slotIDs, h.SlotID)
	}

	swept := 0
	for _, slotID := range slotIDs {
		n, err := e.reclaimSlot(ctx, slotID)
		if err != nil {
			// One contended slot must not starve the rest of the sweep.
			e.logger.Warn("sweep: slot reclaim failed", "slot_id", slotID, "error", err)
			continue
		}
		swept += n
	}
	if swept > 0 {
		e.logger.Info("expired holds reclaimed", "count", swept)
	}
	return swept, nil
}

// reclaimSlot releases every expired hold on the slot in one mutation.
func (e *reservationEngine) reclaimSlot(ctx context.Context, slotID string) (int, error) {
	for attempt := 0; attempt < e.retryBudget; attempt++ {
		if attempt > 0 {
			if err := e.backoff(ctx); err != nil {
				return 0, err
			}
		}

		slot, err := e.store.GetSlot(ctx, slotID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return 0, nil
			}
			return 0, fmt.Errorf("get slot: %w", err)
		}
		holds, err := e.store.ListHoldsBySlot(ctx, slotID)
		if err != nil {
			return 0, fmt.Errorf("list holds: %w", err)
		}

		now := e.clk.Now()
		_, expired := splitHolds(holds, now)
		if len(expired) == 0 {
			return 0, nil
		}

		mut := domain.SlotMutation{HeldDelta: -len(expired), DeleteHoldIDs: expired}
		version, err := e.store.CompareAndUpdate(ctx, slot.ID, slot.Version, mut)
		if err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				monitoring.RecordStoreConflict()
				continue
			}
			if errors.Is(err, domain.ErrNotFound) {
				return 0, nil
			}
			return 0, fmt.Errorf("apply reclaim: %w", err)
		}

		monitoring.RecordHoldsSwept(len(expired))
		e.publish(slot, mut, version, now)
		return len(expired), nil
	}

	return 0, domain.ErrContention
}

// publish announces the slot's post-mutation state. Publishing happens
// after the store committed, so subscribers may observe a commit before
// its announcement but never the reverse.
func (e *reservationEngine) publish(slot *domain.Slot, mut domain.SlotMutation, version int64, now time.Time) {
	if e.publisher == nil {
		return
	}
	updated := *slot
	updated.HeldCount += mut.HeldDelta
	updated.BookedCount += mut.BookedDelta
	updated.Version = version
	e.publisher.Publish(domain.ChangeFromSlot(&updated, now))
}

// backoff sleeps a jittered interval between base and 5x base, honoring
// context cancellation.
func (e *reservationEngine) backoff(ctx context.Context) error {
	d := e.backoffBase + time.Duration(rand.Int63n(int64(4*e.backoffBase)+1))
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// splitHolds partitions the slot's holds into a live count and the ids of
// those already expired at now.
func splitHolds(holds []*domain.Hold, now time.Time) (live int, expired []string) {
	for _, h := range holds {
		if h.Live(now) {
			live++
		} else {
			expired = append(expired, h.ID)
		}
	}
	return live, expired
}
