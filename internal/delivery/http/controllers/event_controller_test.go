package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slotbooker/internal/delivery/http/helpers"
	"slotbooker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalogService implements domain.EventCatalogService for handler tests.
type fakeCatalogService struct {
	createErr    error
	createEvent  *domain.Event
	createSlots  []*domain.Slot
	getErr       error
	getEvent     *domain.Event
	getSlots     []*domain.Slot
	listErr      error
	listEvents   []*domain.Event
	listTotal    int
	deleteErr    error
	lastCreateIn domain.CreateEventInput
	lastGetID    string
	lastListP    domain.PaginationParams
	lastDeleteID string
}

func (f *fakeCatalogService) CreateEvent(ctx context.Context, in domain.CreateEventInput) (*domain.Event, []*domain.Slot, error) {
	f.lastCreateIn = in
	if f.createErr != nil {
		return nil, nil, f.createErr
	}
	return f.createEvent, f.createSlots, nil
}

func (f *fakeCatalogService) GetEvent(ctx context.Context, id string) (*domain.Event, []*domain.Slot, error) {
	f.lastGetID = id
	if f.getErr != nil {
		return nil, nil, f.getErr
	}
	return f.getEvent, f.getSlots, nil
}

func (f *fakeCatalogService) ListEvents(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastListP = p
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.listEvents, f.listTotal, nil
}

func (f *fakeCatalogService) DeleteEvent(ctx context.Context, id string) error {
	f.lastDeleteID = id
	return f.deleteErr
}

func TestEventController_CreateEvent(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	created := &domain.Event{ID: "ev-created", HostName: "Ada", Title: "Office Hours"}
	slots := []*domain.Slot{{ID: "slot-1", EventID: "ev-created", StartsAt: start, Capacity: 1, Version: 1}}

	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantErrCode    string
		wantBodySubstr string
		checkData      func(t *testing.T, data EventWithSlotsResponse, fake *fakeCatalogService)
	}{
		{
			name:       "success",
			body:       `{"host_name":"Ada","title":"Office Hours","timezone":"Europe/Berlin","duration_min":30,"max_per_slot":2,"slot_starts":["2026-03-01T09:00:00Z"]}`,
			wantStatus: http.StatusCreated,
			checkData: func(t *testing.T, data EventWithSlotsResponse, fake *fakeCatalogService) {
				require.NotNil(t, data.Event)
				assert.Equal(t, "ev-created", data.Event.ID)
				require.Len(t, data.Slots, 1)
				assert.Equal(t, "slot-1", data.Slots[0].ID)
				assert.Equal(t, "Ada", fake.lastCreateIn.HostName)
				assert.Equal(t, "Europe/Berlin", fake.lastCreateIn.Timezone)
				assert.Equal(t, 2, fake.lastCreateIn.MaxPerSlot)
				require.Len(t, fake.lastCreateIn.SlotStarts, 1)
				assert.True(t, fake.lastCreateIn.SlotStarts[0].Equal(start))
			},
		},
		{
			name:           "missing title",
			body:           `{"host_name":"Ada","slot_starts":["2026-03-01T09:00:00Z"]}`,
			wantStatus:     http.StatusBadRequest,
			wantErrCode:    helpers.ErrCodeBadRequest,
			wantBodySubstr: "title is required",
		},
		{
			name:           "no slots",
			body:           `{"host_name":"Ada","title":"Office Hours","slot_starts":[]}`,
			wantStatus:     http.StatusBadRequest,
			wantErrCode:    helpers.ErrCodeBadRequest,
			wantBodySubstr: "slot_starts",
		},
		{
			name:           "unknown field rejected",
			body:           `{"host_name":"Ada","title":"Office Hours","slot_starts":["2026-03-01T09:00:00Z"],"id":"custom"}`,
			wantStatus:     http.StatusBadRequest,
			wantErrCode:    helpers.ErrCodeBadRequest,
			wantBodySubstr: "unknown field",
		},
		{
			name:           "duplicate slot starts rejected by service",
			body:           `{"host_name":"Ada","title":"Office Hours","slot_starts":["2026-03-01T09:00:00Z","2026-03-01T09:00:00Z"]}`,
			fakeErr:        domain.ErrInvalidInput,
			wantStatus:     http.StatusBadRequest,
			wantErrCode:    helpers.ErrCodeBadRequest,
		},
		{
			name:           "service error",
			body:           `{"host_name":"Ada","title":"Office Hours","slot_starts":["2026-03-01T09:00:00Z"]}`,
			fakeErr:        errors.New("db error"),
			wantStatus:     http.StatusInternalServerError,
			wantErrCode:    helpers.ErrCodeInternalError,
			wantBodySubstr: "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCatalogService{createErr: tt.fakeErr, createEvent: created, createSlots: slots}
			ctrl := NewEventController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			ctrl.CreateEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error, "success response must have error nil")
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var data EventWithSlotsResponse
				require.NoError(t, json.Unmarshal(dataBytes, &data))
				tt.checkData(t, data, fake)
				return
			}
			require.NotNil(t, envelope.Error, "error response must have error set")
			assert.Equal(t, tt.wantErrCode, envelope.Error.Code, "error code")
			if tt.wantBodySubstr != "" {
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr, "error message")
			}
		})
	}
}

func TestEventController_ListEvents(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		fakeErr    error
		listEvents []*domain.Event
		listTotal  int
		wantStatus int
		checkData  func(t *testing.T, data ListEventsResponse, fake *fakeCatalogService)
	}{
		{
			name: "success with defaults",
			listEvents: []*domain.Event{
				{ID: "ev-1", Title: "A"},
				{ID: "ev-2", Title: "B"},
			},
			listTotal:  2,
			wantStatus: http.StatusOK,
			checkData: func(t *testing.T, data ListEventsResponse, fake *fakeCatalogService) {
				require.Len(t, data.Items, 2)
				assert.Equal(t, "ev-1", data.Items[0].ID)
				assert.Equal(t, 1, fake.lastListP.Page)
				assert.Equal(t, 20, fake.lastListP.PageSize)
				assert.Equal(t, 2, data.Pagination.Total)
				assert.Equal(t, 1, data.Pagination.TotalPages)
			},
		},
		{
			name:       "pagination params forwarded and clamped",
			query:      "?page=3&page_size=500",
			listTotal:  101,
			wantStatus: http.StatusOK,
			checkData: func(t *testing.T, data ListEventsResponse, fake *fakeCatalogService) {
				assert.Equal(t, 3, fake.lastListP.Page)
				assert.Equal(t, 100, fake.lastListP.PageSize)
				assert.Equal(t, 2, data.Pagination.TotalPages)
			},
		},
		{
			name:       "service error",
			fakeErr:    errors.New("db error"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCatalogService{listErr: tt.fakeErr, listEvents: tt.listEvents, listTotal: tt.listTotal}
			ctrl := NewEventController(testLogger, fake)
			req := httptest.NewRequest(http.MethodGet, "/events"+tt.query, nil)
			rr := httptest.NewRecorder()

			ctrl.ListEvents(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK && tt.checkData != nil {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var data ListEventsResponse
				require.NoError(t, json.Unmarshal(dataBytes, &data))
				tt.checkData(t, data, fake)
			}
		})
	}
}

func TestEventController_GetEvent(t *testing.T) {
	tests := []struct {
		name           string
		eventID        string
		fakeErr        error
		wantStatus     int
		wantErrCode    string
		wantBodySubstr string
	}{
		{name: "success", eventID: "ev-1", wantStatus: http.StatusOK},
		{name: "missing eventID", eventID: "", wantStatus: http.StatusBadRequest, wantErrCode: helpers.ErrCodeBadRequest, wantBodySubstr: "missing eventID"},
		{name: "not found", eventID: "ev-missing", fakeErr: domain.ErrEventNotFound, wantStatus: http.StatusNotFound, wantErrCode: helpers.ErrCodeNotFound, wantBodySubstr: "event not found"},
		{name: "service error", eventID: "ev-1", fakeErr: errors.New("db error"), wantStatus: http.StatusInternalServerError, wantErrCode: helpers.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCatalogService{
				getErr:   tt.fakeErr,
				getEvent: &domain.Event{ID: "ev-1", Title: "Office Hours"},
				getSlots: []*domain.Slot{{ID: "slot-1", EventID: "ev-1", Capacity: 1, HeldCount: 1, Version: 4}},
			}
			ctrl := NewEventController(testLogger, fake)
			req := httptest.NewRequest(http.MethodGet, "http://test/events/"+tt.eventID, nil)
			req.SetPathValue("eventID", tt.eventID)
			rr := httptest.NewRecorder()

			ctrl.GetEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var data EventWithSlotsResponse
				require.NoError(t, json.Unmarshal(dataBytes, &data))
				assert.Equal(t, "ev-1", data.Event.ID)
				require.Len(t, data.Slots, 1)
				assert.Equal(t, 1, data.Slots[0].HeldCount, "slots must carry live counters")
				assert.Equal(t, "ev-1", fake.lastGetID)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantErrCode, envelope.Error.Code)
			if tt.wantBodySubstr != "" {
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestEventController_DeleteEvent(t *testing.T) {
	tests := []struct {
		name        string
		eventID     string
		fakeErr     error
		wantStatus  int
		wantErrCode string
	}{
		{name: "success", eventID: "ev-1", wantStatus: http.StatusNoContent},
		{name: "not found", eventID: "ev-missing", fakeErr: domain.ErrEventNotFound, wantStatus: http.StatusNotFound, wantErrCode: helpers.ErrCodeNotFound},
		{name: "service error", eventID: "ev-1", fakeErr: errors.New("db error"), wantStatus: http.StatusInternalServerError, wantErrCode: helpers.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCatalogService{deleteErr: tt.fakeErr}
			ctrl := NewEventController(testLogger, fake)
			req := httptest.NewRequest(http.MethodDelete, "http://test/events/"+tt.eventID, nil)
			req.SetPathValue("eventID", tt.eventID)
			rr := httptest.NewRecorder()

			ctrl.DeleteEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, tt.eventID, fake.lastDeleteID)
				return
			}
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantErrCode, envelope.Error.Code)
		})
	}
}
