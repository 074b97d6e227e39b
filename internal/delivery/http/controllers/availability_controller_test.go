package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"slotbooker/internal/delivery/http/helpers"
	"slotbooker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStream implements domain.AvailabilityStream over a plain channel.
type fakeStream struct {
	ch     chan domain.SlotStateChange
	closed bool
}

func newFakeStream(buf int) *fakeStream {
	return &fakeStream{ch: make(chan domain.SlotStateChange, buf)}
}

func (s *fakeStream) Events() <-chan domain.SlotStateChange { return s.ch }

func (s *fakeStream) Close() {
	if !s.closed {
		s.closed = true
	}
}

// fakeAvailabilityService implements domain.AvailabilityService for handler tests.
type fakeAvailabilityService struct {
	snapshotErr  error
	snapshot     []domain.SlotStateChange
	subscribeErr error
	stream       *fakeStream

	lastSnapshotEventID  string
	lastSubscribeEventID string
}

func (f *fakeAvailabilityService) Snapshot(ctx context.Context, eventID string) ([]domain.SlotStateChange, error) {
	f.lastSnapshotEventID = eventID
	if f.snapshotErr != nil {
		return nil, f.snapshotErr
	}
	return f.snapshot, nil
}

func (f *fakeAvailabilityService) Subscribe(ctx context.Context, eventID string) (domain.AvailabilityStream, error) {
	f.lastSubscribeEventID = eventID
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	return f.stream, nil
}

func TestAvailabilityController_Snapshot(t *testing.T) {
	tests := []struct {
		name        string
		eventID     string
		fakeErr     error
		snapshot    []domain.SlotStateChange
		wantStatus  int
		wantErrCode string
		checkData   func(t *testing.T, data []domain.SlotStateChange)
	}{
		{
			name:    "success",
			eventID: "ev-1",
			snapshot: []domain.SlotStateChange{
				{SlotID: "slot-1", EventID: "ev-1", Capacity: 2, HeldCount: 1, Remaining: 1, Version: 3},
				{SlotID: "slot-2", EventID: "ev-1", Capacity: 2, BookedCount: 2, Remaining: 0, Version: 7},
			},
			wantStatus: http.StatusOK,
			checkData: func(t *testing.T, data []domain.SlotStateChange) {
				require.Len(t, data, 2)
				assert.Equal(t, "slot-1", data[0].SlotID)
				assert.Equal(t, 1, data[0].Remaining)
				assert.Equal(t, 0, data[1].Remaining)
				assert.Equal(t, int64(7), data[1].Version)
			},
		},
		{
			name:        "event not found",
			eventID:     "ev-missing",
			fakeErr:     domain.ErrEventNotFound,
			wantStatus:  http.StatusNotFound,
			wantErrCode: helpers.ErrCodeNotFound,
		},
		{
			name:        "service error",
			eventID:     "ev-1",
			fakeErr:     errors.New("db error"),
			wantStatus:  http.StatusInternalServerError,
			wantErrCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAvailabilityService{snapshotErr: tt.fakeErr, snapshot: tt.snapshot}
			ctrl := NewAvailabilityController(testLogger, fake)
			req := httptest.NewRequest(http.MethodGet, "http://test/events/"+tt.eventID+"/availability", nil)
			req.SetPathValue("eventID", tt.eventID)
			rr := httptest.NewRecorder()

			ctrl.GetAvailability(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var data []domain.SlotStateChange
				require.NoError(t, json.Unmarshal(dataBytes, &data))
				tt.checkData(t, data)
				assert.Equal(t, tt.eventID, fake.lastSnapshotEventID)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantErrCode, envelope.Error.Code)
		})
	}
}

func TestAvailabilityController_StreamDeliversFrames(t *testing.T) {
	stream := newFakeStream(4)
	stream.ch <- domain.SlotStateChange{SlotID: "slot-1", EventID: "ev-1", Remaining: 1, Version: 1}
	stream.ch <- domain.SlotStateChange{SlotID: "slot-1", EventID: "ev-1", Remaining: 0, Version: 2}
	close(stream.ch)

	fake := &fakeAvailabilityService{stream: stream}
	ctrl := NewAvailabilityController(testLogger, fake)

	req := httptest.NewRequest(http.MethodGet, "http://test/events/ev-1/availability", nil)
	req.Header.Set("Accept", "text/event-stream")
	req.SetPathValue("eventID", "ev-1")
	rr := httptest.NewRecorder()

	// The handler returns once the stream channel is drained and closed.
	ctrl.GetAvailability(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "ev-1", fake.lastSubscribeEventID)

	body := rr.Body.String()
	frames := strings.Split(strings.TrimSuffix(body, "\n\n"), "\n\n")
	require.Len(t, frames, 2, "one SSE frame per change")
	for i, frame := range frames {
		lines := strings.SplitN(frame, "\n", 2)
		require.Len(t, lines, 2)
		assert.Equal(t, "event: slot_state", lines[0])
		var change domain.SlotStateChange
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines[1], "data: ")), &change))
		assert.Equal(t, "slot-1", change.SlotID)
		assert.Equal(t, int64(i+1), change.Version, "frames preserve publish order")
	}
}

func TestAvailabilityController_StreamStopsOnClientDisconnect(t *testing.T) {
	stream := newFakeStream(1)
	fake := &fakeAvailabilityService{stream: stream}
	ctrl := NewAvailabilityController(testLogger, fake)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "http://test/events/ev-1/availability", nil).WithContext(ctx)
	req.Header.Set("Accept", "text/event-stream")
	req.SetPathValue("eventID", "ev-1")
	rr := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		ctrl.GetAvailability(rr, req)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after client disconnect")
	}
	assert.True(t, stream.closed, "subscription must be closed on disconnect")
}

func TestAvailabilityController_StreamSubscribeNotFound(t *testing.T) {
	fake := &fakeAvailabilityService{subscribeErr: domain.ErrEventNotFound}
	ctrl := NewAvailabilityController(testLogger, fake)

	req := httptest.NewRequest(http.MethodGet, "http://test/events/ev-missing/availability", nil)
	req.Header.Set("Accept", "text/event-stream")
	req.SetPathValue("eventID", "ev-missing")
	rr := httptest.NewRecorder()

	ctrl.GetAvailability(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, helpers.ErrCodeNotFound, envelope.Error.Code)
}
