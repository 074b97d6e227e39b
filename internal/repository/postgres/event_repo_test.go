package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"slotbooker/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	event := &domain.Event{
		ID:          "ev-1",
		HostName:    "Dana",
		Title:       "Office Hours",
		Description: "Weekly office hours",
		MaxPerSlot:  2,
		Timezone:    "Europe/Madrid",
		DurationMin: 30,
		CreatedAt:   now,
	}
	slots := []*domain.Slot{
		{ID: "slot-1", EventID: "ev-1", StartsAt: now.Add(24 * time.Hour), Capacity: 2, Version: 1, Position: 0},
		{ID: "slot-2", EventID: "ev-1", StartsAt: now.Add(25 * time.Hour), Capacity: 2, Version: 1, Position: 1},
	}

	t.Run("event and slot grid commit together", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO events`).
			WithArgs("ev-1", "Dana", "Office Hours", "Weekly office hours", 2, "Europe/Madrid", 30, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO slots`).
			WithArgs("slot-1", "ev-1", now.Add(24*time.Hour), 2, 0, 0, int64(1), 0).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO slots`).
			WithArgs("slot-2", "ev-1", now.Add(25*time.Hour), 2, 0, 0, int64(1), 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewEventRepository(db)
		require.NoError(t, repo.Create(ctx, event, slots))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("slot insert failure rolls back the event", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO events`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO slots`).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		repo := NewEventRepository(db)
		require.Error(t, repo.Create(ctx, event, slots))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		id      string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Event
		wantErr error
	}{
		{
			name: "success",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, host_name, title, description, max_per_slot, timezone, duration_min, created_at`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "host_name", "title", "description", "max_per_slot", "timezone", "duration_min", "created_at"}).
						AddRow("ev-1", "Dana", "Office Hours", "", 2, "Europe/Madrid", 30, now))
			},
			want: &domain.Event{
				ID:          "ev-1",
				HostName:    "Dana",
				Title:       "Office Hours",
				MaxPerSlot:  2,
				Timezone:    "Europe/Madrid",
				DurationMin: 30,
				CreatedAt:   now,
			},
		},
		{
			name: "not found",
			id:   "missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, host_name`).
					WithArgs("missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM events`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewEventRepository(db)
		require.NoError(t, repo.Delete(ctx, "ev-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM events`).
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewEventRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "missing"), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
