package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"slotbooker/internal/domain"
)

type slotStore struct {
	DB *sql.DB
}

// NewSlotStore returns the Postgres-backed slot store. Counter mutations
// run in a single transaction guarded by the slot row's version column.
func NewSlotStore(db *sql.DB) domain.SlotStore {
	return &slotStore{
		DB: db,
	}
}

const slotColumns = `id, event_id, starts_at, capacity, held_count, booked_count, version, position`

func scanSlot(row interface{ Scan(...any) error }) (*domain.Slot, error) {
	s := &domain.Slot{}
	err := row.Scan(&s.ID, &s.EventID, &s.StartsAt, &s.Capacity, &s.HeldCount, &s.BookedCount, &s.Version, &s.Position)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *slotStore) GetSlot(ctx context.Context, slotID string) (*domain.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE id = $1
	`
	s, err := scanSlot(r.DB.QueryRowContext(ctx, query, slotID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *slotStore) ListSlotsByEvent(ctx context.Context, eventID string) ([]*domain.Slot, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, eventID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE event_id = $1
		ORDER BY position
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := []*domain.Slot{}
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *slotStore) CompareAndUpdate(ctx context.Context, slotID string, expectedVersion int64, mut domain.SlotMutation) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE slots
		SET held_count = held_count + $1, booked_count = booked_count + $2, version = version + 1
		WHERE id = $3 AND version = $4
	`, mut.HeldDelta, mut.BookedDelta, slotID, expectedVersion)
	if err != nil {
		return 0, fmt.Errorf("update slot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM slots WHERE id = $1)`, slotID).Scan(&exists); err != nil {
			return 0, err
		}
		if !exists {
			return 0, domain.ErrNotFound
		}
		return 0, domain.ErrVersionConflict
	}

	if len(mut.DeleteHoldIDs) > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM holds WHERE id = ANY($1)`, pq.Array(mut.DeleteHoldIDs)); err != nil {
			return 0, fmt.Errorf("delete holds: %w", err)
		}
	}
	if h := mut.InsertHold; h != nil {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO holds (id, slot_id, event_id, requester_token, created_at, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, h.ID, h.SlotID, h.EventID, h.RequesterToken, h.CreatedAt, h.ExpiresAt)
		if err != nil {
			return 0, fmt.Errorf("insert hold: %w", err)
		}
	}
	if b := mut.InsertBooking; b != nil {
		// ON CONFLICT keeps the first write so a replayed confirm cannot
		// clobber the original booking row.
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bookings (id, slot_id, event_id, hold_id, attendee_name, attendee_email, notes, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO NOTHING
		`, b.ID, b.SlotID, b.EventID, b.HoldID, b.AttendeeName, b.AttendeeEmail, b.Notes, string(b.Status), b.CreatedAt, b.UpdatedAt)
		if err != nil {
			return 0, fmt.Errorf("insert booking: %w", err)
		}
	}
	if u := mut.UpdateBooking; u != nil {
		_, err := tx.ExecContext(ctx, `
			UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3
		`, string(u.Status), u.At, u.BookingID)
		if err != nil {
			return 0, fmt.Errorf("update booking: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return expectedVersion + 1, nil
}

func (r *slotStore) GetHold(ctx context.Context, holdID string) (*domain.Hold, error) {
	query := `
		SELECT id, slot_id, event_id, requester_token, created_at, expires_at
		FROM holds
		WHERE id = $1
	`
	h := &domain.Hold{}
	err := r.DB.QueryRowContext(ctx, query, holdID).Scan(
		&h.ID, &h.SlotID, &h.EventID, &h.RequesterToken, &h.CreatedAt, &h.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return h, nil
}

func (r *slotStore) ListHoldsBySlot(ctx context.Context, slotID string) ([]*domain.Hold, error) {
	query := `
		SELECT id, slot_id, event_id, requester_token, created_at, expires_at
		FROM holds
		WHERE slot_id = $1
		ORDER BY created_at
	`
	return r.queryHolds(ctx, query, slotID)
}

func (r *slotStore) ListExpiredHolds(ctx context.Context, before time.Time, limit int) ([]*domain.Hold, error) {
	query := `
		SELECT id, slot_id, event_id, requester_token, created_at, expires_at
		FROM holds
		WHERE expires_at <= $1
		ORDER BY expires_at
		LIMIT $2
	`
	return r.queryHolds(ctx, query, before, limit)
}

func (r *slotStore) queryHolds(ctx context.Context, query string, args ...any) ([]*domain.Hold, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holds := []*domain.Hold{}
	for rows.Next() {
		h := &domain.Hold{}
		if err := rows.Scan(&h.ID, &h.SlotID, &h.EventID, &h.RequesterToken, &h.CreatedAt, &h.ExpiresAt); err != nil {
			return nil, err
		}
		holds = append(holds, h)
	}
	return holds, rows.Err()
}

const bookingColumns = `id, slot_id, event_id, hold_id, attendee_name, attendee_email, notes, status, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*domain.Booking, error) {
	b := &domain.Booking{}
	var status string
	err := row.Scan(&b.ID, &b.SlotID, &b.EventID, &b.HoldID, &b.AttendeeName, &b.AttendeeEmail, &b.Notes, &status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}

func (r *slotStore) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`
	b, err := scanBooking(r.DB.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *slotStore) GetBookingBySlotAndEmail(ctx context.Context, slotID, email string) (*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE slot_id = $1 AND lower(attendee_email) = lower($2) AND status = 'confirmed'
	`
	b, err := scanBooking(r.DB.QueryRowContext(ctx, query, slotID, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}
