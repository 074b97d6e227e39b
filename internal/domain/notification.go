package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// BookingConfirmedEmailData holds data for the booking confirmation email.
type BookingConfirmedEmailData struct {
	AttendeeName string
	EventTitle   string
	HostName     string
	StartsAt     time.Time
	Timezone     string
	DurationMin  int
	BookingID    string
	CancelURL    string
	CalendarLink string
	ICSURL       string
}

// BookingCancelledEmailData holds data for the cancellation notice email.
type BookingCancelledEmailData struct {
	AttendeeName string
	EventTitle   string
	StartsAt     time.Time
	Timezone     string
}

// NotificationService dispatches the emails that follow booking state
// changes. Failures are logged and retried a bounded number of times;
// they never propagate back into booking state.
type NotificationService interface {
	SendBookingConfirmed(ctx context.Context, to string, data *BookingConfirmedEmailData) error
	SendBookingCancelled(ctx context.Context, to string, data *BookingCancelledEmailData) error
}

// CalendarInvite is a rendered iCalendar attachment for one booking.
type CalendarInvite struct {
	Filename string
	Body     []byte
}

// CalendarService renders calendar artifacts for confirmed bookings.
type CalendarService interface {
	// Invite renders the booking as an iCalendar VEVENT.
	Invite(booking *Booking, event *Event, slot *Slot) (*CalendarInvite, error)

	// QuickAddLink builds a Google Calendar prefill URL for the booking.
	QuickAddLink(booking *Booking, event *Event, slot *Slot) (string, error)
}
