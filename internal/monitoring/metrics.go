package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	holdsRequested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holds_requested_total",
			Help: "Total hold requests by outcome",
		},
		[]string{"outcome"},
	)

	holdsReleased = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "holds_released_total",
			Help: "Total holds released voluntarily",
		},
	)

	holdsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "holds_swept_total",
			Help: "Total expired holds reclaimed",
		},
	)

	bookingsConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_confirmed_total",
			Help: "Total bookings confirmed",
		},
	)

	bookingsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_cancelled_total",
			Help: "Total bookings cancelled",
		},
	)

	storeConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slot_version_conflicts_total",
			Help: "Total optimistic concurrency conflicts observed",
		},
	)

	availabilitySubscribers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "availability_subscribers",
			Help: "Current availability subscribers per event",
		},
		[]string{"event_id"},
	)

	notificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total notification dispatches by kind and status",
		},
		[]string{"kind", "status"},
	)
)

// RecordHoldRequested counts one hold request outcome: granted, slot_full,
// or contention.
func RecordHoldRequested(outcome string) {
	holdsRequested.WithLabelValues(outcome).Inc()
}

// RecordHoldReleased counts one voluntary release.
func RecordHoldReleased() {
	holdsReleased.Inc()
}

// RecordHoldsSwept counts n reclaimed holds.
func RecordHoldsSwept(n int) {
	holdsSwept.Add(float64(n))
}

// RecordBookingConfirmed counts one confirmed booking.
func RecordBookingConfirmed() {
	bookingsConfirmed.Inc()
}

// RecordBookingCancelled counts one cancelled booking.
func RecordBookingCancelled() {
	bookingsCancelled.Inc()
}

// RecordStoreConflict counts one compare-and-update conflict.
func RecordStoreConflict() {
	storeConflicts.Inc()
}

// SubscriberConnected tracks one availability subscriber joining.
func SubscriberConnected(eventID string) {
	availabilitySubscribers.WithLabelValues(eventID).Inc()
}

// SubscriberDisconnected tracks one availability subscriber leaving.
func SubscriberDisconnected(eventID string) {
	availabilitySubscribers.WithLabelValues(eventID).Dec()
}

// RecordNotification counts one notification dispatch attempt.
func RecordNotification(kind, status string) {
	notificationsSent.WithLabelValues(kind, status).Inc()
}
