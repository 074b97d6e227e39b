package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"slotbooker/internal/delivery/http/helpers"
	"slotbooker/internal/domain"
)

// AttendeeController handles the attendee-facing read side: booking
// lookups, booking history by email, and calendar artifacts.
type AttendeeController struct {
	Logger   *slog.Logger
	Service  domain.AttendeeService
	Calendar domain.CalendarService
}

func NewAttendeeController(logger *slog.Logger, svc domain.AttendeeService, calendar domain.CalendarService) *AttendeeController {
	return &AttendeeController{
		Logger:   logger,
		Service:  svc,
		Calendar: calendar,
	}
}

// GetBookingSuccessResponse is the success response envelope for GET /bookings/{bookingID} (200).
type GetBookingSuccessResponse struct {
	Data  *domain.Booking   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetBooking godoc
// @Summary Get a booking by ID
// @Description Returns the booking, including its status. Cancelled bookings remain retrievable for history.
// @Tags attendees
// @Produce json
// @Param bookingID path string true "Booking ID (UUID)"
// @Success 200 {object} controllers.GetBookingSuccessResponse "data contains the booking"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/{bookingID} [get]
func (c *AttendeeController) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("bookingID")
	if bookingID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing bookingID")
		return
	}
	booking, _, _, err := c.Service.GetBooking(r.Context(), bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "booking not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, booking)
}

// ListBookingsResponse is the data payload for GET /users/{email}/bookings (200).
type ListBookingsResponse struct {
	Items      []*domain.Booking      `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListBookingsSuccessResponse is the success response envelope for GET /users/{email}/bookings (200).
type ListBookingsSuccessResponse struct {
	Data  ListBookingsResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListBookings godoc
// @Summary List bookings for an attendee email
// @Description Returns a paginated list of the attendee's bookings, newest first, including cancelled ones. Use page and page_size query params.
// @Tags attendees
// @Produce json
// @Param email path string true "Attendee email"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListBookingsSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{email}/bookings [get]
func (c *AttendeeController) ListBookings(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PathValue("email"))
	if email == "" || !emailRegex.MatchString(email) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "email must be a valid email address")
		return
	}
	params := helpers.ParsePagination(r)
	bookings, total, err := c.Service.ListBookings(r.Context(), email, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListBookingsResponse{Items: bookings, Pagination: meta})
}

// DownloadICS godoc
// @Summary Download the booking as an iCalendar file
// @Description Renders the confirmed booking as a .ics attachment suitable for importing into any calendar client.
// @Tags attendees
// @Produce text/calendar
// @Param bookingID path string true "Booking ID (UUID)"
// @Success 200 {string} string "iCalendar document"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/{bookingID}/ics [get]
func (c *AttendeeController) DownloadICS(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("bookingID")
	if bookingID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing bookingID")
		return
	}
	booking, event, slot, err := c.Service.GetBooking(r.Context(), bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "booking not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	invite, err := c.Calendar.Invite(booking, event, slot)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invite.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(invite.Body)
}

// CalendarLinkResponse is the data payload for GET /bookings/{bookingID}/calendar-link (200).
type CalendarLinkResponse struct {
	URL string `json:"url"`
}

// CalendarLinkSuccessResponse is the success response envelope for GET /bookings/{bookingID}/calendar-link (200).
type CalendarLinkSuccessResponse struct {
	Data  CalendarLinkResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// GetCalendarLink godoc
// @Summary Get a Google Calendar quick-add link for the booking
// @Description Returns a prefilled Google Calendar event URL the attendee can open to add the booking to their calendar.
// @Tags attendees
// @Produce json
// @Param bookingID path string true "Booking ID (UUID)"
// @Success 200 {object} controllers.CalendarLinkSuccessResponse "data contains the url"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/{bookingID}/calendar-link [get]
func (c *AttendeeController) GetCalendarLink(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("bookingID")
	if bookingID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing bookingID")
		return
	}
	booking, event, slot, err := c.Service.GetBooking(r.Context(), bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "booking not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	url, err := c.Calendar.QuickAddLink(booking, event, slot)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CalendarLinkResponse{URL: url})
}
