package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"slotbooker/internal/delivery/http/helpers"
	"slotbooker/internal/domain"
)

// emailRegex matches a simple email format (local@domain with at least one dot in domain).
var emailRegex = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// BookingController handles the hold lifecycle: acquire, confirm,
// release, and booking cancellation.
type BookingController struct {
	Logger   *slog.Logger
	Sessions domain.BookingSessionService
}

func NewBookingController(logger *slog.Logger, sessions domain.BookingSessionService) *BookingController {
	return &BookingController{
		Logger:   logger,
		Sessions: sessions,
	}
}

// RequestHoldRequest is the request body for POST /events/{eventID}/slots/{slotID}/hold.
type RequestHoldRequest struct {
	RequesterToken string `json:"requester_token"`
}

// Validate implements Validator.
func (h RequestHoldRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(h.RequesterToken) == "" {
		errs = append(errs, "requester_token is required")
	}
	return errs
}

// RequestHoldResponse is the data payload for POST /events/{eventID}/slots/{slotID}/hold (201).
type RequestHoldResponse struct {
	HoldID       string    `json:"hold_id"`
	SlotID       string    `json:"slot_id"`
	ExpiresAt    time.Time `json:"expires_at"`
	SessionToken string    `json:"session_token,omitempty"`
}

// RequestHoldSuccessResponse is the success response envelope for POST /events/{eventID}/slots/{slotID}/hold (201).
type RequestHoldSuccessResponse struct {
	Data  RequestHoldResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// RequestHold godoc
// @Summary Hold a seat on a slot
// @Description Claims one unit of the slot's capacity for a short time window. The hold must be confirmed before expires_at or the seat is reclaimed. At most capacity holds can be live at once; a full slot answers 409 slot_full, and heavy contention answers 503 contention (safe to retry).
// @Tags bookings
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param slotID path string true "Slot ID (UUID)"
// @Param body body RequestHoldRequest true "Requester token identifying the client attempt"
// @Success 201 {object} controllers.RequestHoldSuccessResponse "data contains the hold"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: slot_full"
// @Failure 503 {object} helpers.APIResponse "error.code: contention"
// @Router /events/{eventID}/slots/{slotID}/hold [post]
func (c *BookingController) RequestHold(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	slotID := r.PathValue("slotID")
	if eventID == "" || slotID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID or slotID")
		return
	}
	var req RequestHoldRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Sessions.Start(r.Context(), eventID, slotID, req.RequesterToken)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSlotFull):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeSlotFull, "slot is fully booked")
		case errors.Is(err, domain.ErrContention):
			helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeContention, "slot is under heavy contention, retry")
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "slot not found")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, RequestHoldResponse{
		HoldID:       result.Hold.ID,
		SlotID:       result.Hold.SlotID,
		ExpiresAt:    result.Hold.ExpiresAt,
		SessionToken: result.SessionToken,
	})
}

// ConfirmHoldRequest is the request body for POST /holds/{holdID}/confirm.
type ConfirmHoldRequest struct {
	AttendeeName  string `json:"attendee_name"`
	AttendeeEmail string `json:"attendee_email"`
	Notes         string `json:"notes"`
	SessionToken  string `json:"session_token"`
}

// Validate implements Validator.
func (c ConfirmHoldRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.AttendeeName) == "" {
		errs = append(errs, "attendee_name is required")
	}
	if c.AttendeeEmail == "" {
		errs = append(errs, "attendee_email is required")
	} else if !emailRegex.MatchString(strings.TrimSpace(c.AttendeeEmail)) {
		errs = append(errs, "attendee_email must be a valid email address")
	}
	return errs
}

// ConfirmHoldResponse is the data payload for POST /holds/{holdID}/confirm (200).
type ConfirmHoldResponse struct {
	BookingID string               `json:"booking_id"`
	SlotID    string               `json:"slot_id"`
	EventID   string               `json:"event_id"`
	Status    domain.BookingStatus `json:"status"`
}

// ConfirmHoldSuccessResponse is the success response envelope for POST /holds/{holdID}/confirm (200).
type ConfirmHoldSuccessResponse struct {
	Data  ConfirmHoldResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ConfirmHold godoc
// @Summary Confirm a hold into a booking
// @Description Converts a live hold into a confirmed booking. Confirming the same hold again returns the same booking id. An expired hold answers 410 hold_expired; the seat has been reclaimed and a new hold must be requested.
// @Tags bookings
// @Accept json
// @Produce json
// @Param holdID path string true "Hold ID (UUID)"
// @Param body body ConfirmHoldRequest true "Attendee details; session_token is optional and must match the hold when present"
// @Success 200 {object} controllers.ConfirmHoldSuccessResponse "data contains the booking"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: already_booked"
// @Failure 410 {object} helpers.APIResponse "error.code: hold_expired"
// @Failure 503 {object} helpers.APIResponse "error.code: contention"
// @Router /holds/{holdID}/confirm [post]
func (c *BookingController) ConfirmHold(w http.ResponseWriter, r *http.Request) {
	holdID := r.PathValue("holdID")
	if holdID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing holdID")
		return
	}
	var req ConfirmHoldRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	attendee := domain.AttendeeInfo{
		Name:  strings.TrimSpace(req.AttendeeName),
		Email: strings.TrimSpace(req.AttendeeEmail),
		Notes: req.Notes,
	}
	booking, err := c.Sessions.Confirm(r.Context(), holdID, req.SessionToken, attendee)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrHoldExpired):
			helpers.WriteJSONError(w, http.StatusGone, helpers.ErrCodeHoldExpired, "hold has expired")
		case errors.Is(err, domain.ErrAlreadyBooked):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeAlreadyBooked, "attendee already booked this slot")
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		case errors.Is(err, domain.ErrContention):
			helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeContention, "slot is under heavy contention, retry")
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "hold not found")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ConfirmHoldResponse{
		BookingID: booking.ID,
		SlotID:    booking.SlotID,
		EventID:   booking.EventID,
		Status:    booking.Status,
	})
}

// ReleaseHold godoc
// @Summary Release a hold
// @Description Voluntarily gives the held seat back before the hold expires.
// @Tags bookings
// @Param holdID path string true "Hold ID (UUID)"
// @Success 204 "hold released"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: contention"
// @Router /holds/{holdID}/release [post]
func (c *BookingController) ReleaseHold(w http.ResponseWriter, r *http.Request) {
	holdID := r.PathValue("holdID")
	if holdID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing holdID")
		return
	}
	if err := c.Sessions.Abort(r.Context(), holdID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "hold not found")
		case errors.Is(err, domain.ErrContention):
			helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeContention, "slot is under heavy contention, retry")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelBooking godoc
// @Summary Cancel a confirmed booking
// @Description Cancels the booking and returns its seat to the slot. Cancelling an already cancelled booking is a no-op. The booking record is kept for history.
// @Tags bookings
// @Param bookingID path string true "Booking ID (UUID)"
// @Success 204 "booking cancelled"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: contention"
// @Router /bookings/{bookingID}/cancel [post]
func (c *BookingController) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("bookingID")
	if bookingID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing bookingID")
		return
	}
	if err := c.Sessions.Cancel(r.Context(), bookingID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "booking not found")
		case errors.Is(err, domain.ErrContention):
			helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeContention, "slot is under heavy contention, retry")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
