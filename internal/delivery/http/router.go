package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"slotbooker/internal/delivery/http/controllers"
	"slotbooker/internal/delivery/http/middleware"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	logger *slog.Logger,
	events *controllers.EventController,
	bookings *controllers.BookingController,
	attendees *controllers.AttendeeController,
	availability *controllers.AvailabilityController,
	corsOrigins []string,
) http.Handler {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("POST /events", events.CreateEvent)
	mux.HandleFunc("GET /events", events.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", events.GetEvent)
	mux.HandleFunc("DELETE /events/{eventID}", events.DeleteEvent)

	// Booking lifecycle
	mux.HandleFunc("POST /events/{eventID}/slots/{slotID}/hold", bookings.RequestHold)
	mux.HandleFunc("POST /holds/{holdID}/confirm", bookings.ConfirmHold)
	mux.HandleFunc("POST /holds/{holdID}/release", bookings.ReleaseHold)
	mux.HandleFunc("POST /bookings/{bookingID}/cancel", bookings.CancelBooking)

	// Availability
	mux.HandleFunc("GET /events/{eventID}/availability", availability.GetAvailability)

	// Attendee reads and calendar artifacts
	mux.HandleFunc("GET /bookings/{bookingID}", attendees.GetBooking)
	mux.HandleFunc("GET /bookings/{bookingID}/ics", attendees.DownloadICS)
	mux.HandleFunc("GET /bookings/{bookingID}/calendar-link", attendees.GetCalendarLink)
	mux.HandleFunc("GET /users/{email}/bookings", attendees.ListBookings)

	// Operational surface
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	handler = middleware.CORS(corsOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.Recover(logger, handler)
	return handler
}
