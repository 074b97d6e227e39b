package services

import (
	"context"
	"fmt"
	"log"

	"slotbooker/internal/domain"
)

type notificationService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewNotificationService returns a NotificationService that uses the given
// Mailer and template renderer.
func NewNotificationService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.NotificationService {
	return &notificationService{mailer: mailer, renderer: renderer}
}

// SendBookingConfirmed sends the confirmation email using the
// "booking_confirmed" template and the given data.
func (s *notificationService) SendBookingConfirmed(ctx context.Context, to string, data *domain.BookingConfirmedEmailData) error {
	if data == nil {
		return fmt.Errorf("booking confirmed data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("booking_confirmed", data)
	if err != nil {
		return fmt.Errorf("failed to render booking_confirmed template: %w", err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send booking confirmed email: %w", err)
	}
	log.Printf("[EMAIL] Booking confirmation sent to %s", to)
	return nil
}

// SendBookingCancelled sends the cancellation notice using the
// "booking_cancelled" template.
func (s *notificationService) SendBookingCancelled(ctx context.Context, to string, data *domain.BookingCancelledEmailData) error {
	if data == nil {
		return fmt.Errorf("booking cancelled data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("booking_cancelled", data)
	if err != nil {
		return fmt.Errorf("failed to render booking_cancelled template: %w", err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send booking cancelled email: %w", err)
	}
	log.Printf("[EMAIL] Cancellation notice sent to %s", to)
	return nil
}
