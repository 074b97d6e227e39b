package calendar

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"slotbooker/internal/clock"
	"slotbooker/internal/domain"
)

const (
	prodID        = "-//slotbooker//EN"
	icsTimeLayout = "20060102T150405Z"
)

type generator struct {
	organizer string
	clk       clock.Clock
}

// NewGenerator returns a CalendarService rendering iCalendar invites and
// Google Calendar quick-add links for confirmed bookings. organizer is
// the MAILTO address stamped on invites.
func NewGenerator(organizer string, clk clock.Clock) domain.CalendarService {
	return &generator{organizer: organizer, clk: clk}
}

func (g *generator) Invite(booking *domain.Booking, event *domain.Event, slot *domain.Slot) (*domain.CalendarInvite, error) {
	if booking == nil || event == nil || slot == nil {
		return nil, fmt.Errorf("booking, event and slot are required")
	}
	start := slot.StartsAt.UTC()
	end := start.Add(time.Duration(event.DurationMin) * time.Minute)

	var b bytes.Buffer
	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:"+prodID)
	writeLine(&b, "CALSCALE:GREGORIAN")
	writeLine(&b, "METHOD:PUBLISH")
	writeLine(&b, "BEGIN:VEVENT")
	writeLine(&b, fmt.Sprintf("UID:%s@slotbooker", booking.ID))
	writeLine(&b, "DTSTAMP:"+g.clk.Now().UTC().Format(icsTimeLayout))
	writeLine(&b, "DTSTART:"+start.Format(icsTimeLayout))
	writeLine(&b, "DTEND:"+end.Format(icsTimeLayout))
	writeLine(&b, "SUMMARY:"+escapeText(event.Title))
	if event.Description != "" {
		writeLine(&b, "DESCRIPTION:"+escapeText(event.Description))
	}
	writeLine(&b, "LOCATION:Online")
	if g.organizer != "" {
		writeLine(&b, fmt.Sprintf("ORGANIZER;CN=%s:MAILTO:%s", escapeText(event.HostName), g.organizer))
	}
	if booking.AttendeeEmail != "" {
		writeLine(&b, fmt.Sprintf("ATTENDEE;CN=%s:MAILTO:%s", escapeText(booking.AttendeeName), booking.AttendeeEmail))
	}
	writeLine(&b, "STATUS:CONFIRMED")
	writeLine(&b, "END:VEVENT")
	writeLine(&b, "END:VCALENDAR")

	return &domain.CalendarInvite{
		Filename: booking.ID + ".ics",
		Body:     b.Bytes(),
	}, nil
}

func (g *generator) QuickAddLink(booking *domain.Booking, event *domain.Event, slot *domain.Slot) (string, error) {
	if booking == nil || event == nil || slot == nil {
		return "", fmt.Errorf("booking, event and slot are required")
	}
	start := slot.StartsAt.UTC()
	end := start.Add(time.Duration(event.DurationMin) * time.Minute)

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", event.Title)
	if event.Description != "" {
		q.Set("details", event.Description)
	}
	q.Set("dates", start.Format(icsTimeLayout)+"/"+end.Format(icsTimeLayout))
	q.Set("location", "Online")
	q.Set("trp", "false")
	return "https://www.google.com/calendar/render?" + q.Encode(), nil
}

// writeLine appends one content line with the CRLF terminator iCalendar
// requires.
func writeLine(b *bytes.Buffer, line string) {
	b.WriteString(line)
	b.WriteString("\r\n")
}

// escapeText escapes the characters RFC 5545 reserves in TEXT values.
func escapeText(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
		"\r", "",
	)
	return r.Replace(s)
}
