package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"slotbooker/internal/delivery/http/helpers"
	"slotbooker/internal/domain"
)

const sseHeartbeatInterval = 15 * time.Second

// AvailabilityController serves slot availability: a one-shot JSON
// snapshot, or a live Server-Sent Events stream when the client asks for
// text/event-stream.
type AvailabilityController struct {
	Logger       *slog.Logger
	Availability domain.AvailabilityService
}

func NewAvailabilityController(logger *slog.Logger, availability domain.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{
		Logger:       logger,
		Availability: availability,
	}
}

// AvailabilitySnapshotSuccessResponse is the success response envelope for GET /events/{eventID}/availability (200, JSON mode).
type AvailabilitySnapshotSuccessResponse struct {
	Data  []domain.SlotStateChange `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// GetAvailability godoc
// @Summary Watch slot availability for an event
// @Description With Accept: text/event-stream, streams slot state changes as SSE: first one record per slot (the snapshot), then every change as it commits, until the client disconnects. Without it, returns a one-shot JSON snapshot of the same records. Delivery is at-least-once; the version field lets clients drop stale updates per slot.
// @Tags availability
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.AvailabilitySnapshotSuccessResponse "data is an array of slot states"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/availability [get]
func (c *AvailabilityController) GetAvailability(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		c.stream(w, r, eventID)
		return
	}
	snapshot, err := c.Availability.Snapshot(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, snapshot)
}

// stream subscribes and pumps SSE frames until the client goes away or
// the subscription is dropped. Heartbeat comments keep intermediaries
// from closing the idle connection.
func (c *AvailabilityController) stream(w http.ResponseWriter, r *http.Request, eventID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "streaming unsupported")
		return
	}

	sub, err := c.Availability.Subscribe(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case change, open := <-sub.Events():
			if !open {
				// The hub dropped us (or the event was deleted); the
				// client reconnects and resyncs from the snapshot.
				return
			}
			payload, err := json.Marshal(change)
			if err != nil {
				c.Logger.Error("availability stream: marshal failed", "event_id", eventID, "err", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: slot_state\ndata: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
