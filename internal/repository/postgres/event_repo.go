package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"slotbooker/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event, slots []*domain.Slot) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (id, host_name, title, description, max_per_slot, timezone, duration_min, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.HostName, e.Title, e.Description, e.MaxPerSlot, e.Timezone, e.DurationMin, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	for _, s := range slots {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO slots (id, event_id, starts_at, capacity, held_count, booked_count, version, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, s.ID, s.EventID, s.StartsAt, s.Capacity, s.HeldCount, s.BookedCount, s.Version, s.Position)
		if err != nil {
			return fmt.Errorf("insert slot: %w", err)
		}
	}

	return tx.Commit()
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, host_name, title, description, max_per_slot, timezone, duration_min, created_at
		FROM events
		WHERE id = $1
	`
	e := &domain.Event{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.HostName, &e.Title, &e.Description, &e.MaxPerSlot, &e.Timezone, &e.DurationMin, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, host_name, title, description, max_per_slot, timezone, duration_min, created_at
		FROM events
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		e := &domain.Event{}
		err := rows.Scan(&e.ID, &e.HostName, &e.Title, &e.Description, &e.MaxPerSlot, &e.Timezone, &e.DurationMin, &e.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
