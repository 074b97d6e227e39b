package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"slotbooker/internal/delivery/http/helpers"
	"slotbooker/internal/domain"
)

// EventController handles the host-facing publishing surface: creating
// events with their slot grids, listing, and deleting them.
type EventController struct {
	Logger  *slog.Logger
	Catalog domain.EventCatalogService
}

func NewEventController(logger *slog.Logger, catalog domain.EventCatalogService) *EventController {
	return &EventController{
		Logger:  logger,
		Catalog: catalog,
	}
}

// CreateEventRequest is the request body for POST /events. Slot starts are
// RFC 3339 instants; they are stored in UTC and the timezone field only
// drives display and calendar artifacts.
type CreateEventRequest struct {
	HostName    string      `json:"host_name"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Timezone    string      `json:"timezone"`
	DurationMin int         `json:"duration_min"`
	MaxPerSlot  int         `json:"max_per_slot"`
	SlotStarts  []time.Time `json:"slot_starts"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(c.HostName) == "" {
		errs = append(errs, "host_name is required")
	}
	if len(c.SlotStarts) == 0 {
		errs = append(errs, "slot_starts must contain at least one instant")
	}
	if c.DurationMin < 0 {
		errs = append(errs, "duration_min must be non-negative")
	}
	if c.MaxPerSlot < 0 {
		errs = append(errs, "max_per_slot must be non-negative")
	}
	return errs
}

// EventWithSlotsResponse is the data payload carrying an event together
// with its slot grid.
type EventWithSlotsResponse struct {
	Event *domain.Event  `json:"event"`
	Slots []*domain.Slot `json:"slots"`
}

// CreateEventSuccessResponse is the success response envelope for POST /events (201).
type CreateEventSuccessResponse struct {
	Data  EventWithSlotsResponse `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// CreateEvent godoc
// @Summary Publish a new event
// @Description Creates an event together with its bookable slot grid in one shot. Each slot gets max_per_slot capacity (default 1). Duplicate slot starts are rejected.
// @Tags events
// @Accept json
// @Produce json
// @Param event body CreateEventRequest true "Event and slot grid"
// @Success 201 {object} controllers.CreateEventSuccessResponse "data contains the event and its slots"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, slots, err := c.Catalog.CreateEvent(r.Context(), domain.CreateEventInput{
		HostName:    strings.TrimSpace(req.HostName),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Timezone:    req.Timezone,
		DurationMin: req.DurationMin,
		MaxPerSlot:  req.MaxPerSlot,
		SlotStarts:  req.SlotStarts,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, EventWithSlotsResponse{Event: event, Slots: slots})
}

// ListEventsResponse is the data payload for GET /events (200).
type ListEventsResponse struct {
	Items      []*domain.Event        `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListEvents godoc
// @Summary List events
// @Description Returns a paginated list of events, newest first. Use page and page_size query params.
// @Tags events
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains items and pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	events, total, err := c.Catalog.ListEvents(r.Context(), params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{Items: events, Pagination: meta})
}

// GetEventSuccessResponse is the success response envelope for GET /events/{eventID} (200).
type GetEventSuccessResponse struct {
	Data  EventWithSlotsResponse `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns the event and its slots with current capacity counters (held_count, booked_count).
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GetEventSuccessResponse "data contains the event and its slots"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	event, slots, err := c.Catalog.GetEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventWithSlotsResponse{Event: event, Slots: slots})
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event and cascades to its slots and holds. Booking history for the event is removed with it.
// @Tags events
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "event deleted"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	if err := c.Catalog.DeleteEvent(r.Context(), eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
