package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"slotbooker/internal/clock"
	"slotbooker/internal/domain"
	"slotbooker/internal/monitoring"
)

const (
	defaultSessionTTL    = 10 * time.Minute
	defaultNotifyTimeout = 30 * time.Second
	defaultNotifyRetries = 2
	notifyRetryDelay     = 2 * time.Second
	sessionPruneEvery    = time.Minute
)

type bookingSessionService struct {
	engine        domain.ReservationEngine
	store         domain.SlotStore
	eventRepo     domain.EventRepository
	notifications domain.NotificationService
	calendar      domain.CalendarService
	tokens        domain.SessionTokenCodec
	clk           clock.Clock
	logger        *slog.Logger

	sessionTTL    time.Duration
	notifyTimeout time.Duration
	notifyRetries int
	baseURL       string

	mu        sync.Mutex
	sessions  map[string]*domain.BookingSession
	holdIndex map[string]string
	lastPrune time.Time
}

// SessionOption tunes the booking session coordinator.
type SessionOption func(*bookingSessionService)

// WithSessionTTL sets how long an attempt's session record is kept.
func WithSessionTTL(d time.Duration) SessionOption {
	return func(s *bookingSessionService) { s.sessionTTL = d }
}

// WithNotifyTimeout bounds the background notification dispatch.
func WithNotifyTimeout(d time.Duration) SessionOption {
	return func(s *bookingSessionService) { s.notifyTimeout = d }
}

// WithPublicBaseURL sets the base for the links embedded in emails.
func WithPublicBaseURL(u string) SessionOption {
	return func(s *bookingSessionService) { s.baseURL = u }
}

// NewBookingSessionService creates the coordinator that walks one booking
// attempt from hold to confirmation. Sessions are advisory, in-memory
// records; the hold itself stays authoritative, so an attempt started
// here can still finish on another instance.
func NewBookingSessionService(
	engine domain.ReservationEngine,
	store domain.SlotStore,
	eventRepo domain.EventRepository,
	notifications domain.NotificationService,
	calendar domain.CalendarService,
	tokens domain.SessionTokenCodec,
	clk clock.Clock,
	logger *slog.Logger,
	opts ...SessionOption,
) domain.BookingSessionService {
	s := &bookingSessionService{
		engine:        engine,
		store:         store,
		eventRepo:     eventRepo,
		notifications: notifications,
		calendar:      calendar,
		tokens:        tokens,
		clk:           clk,
		logger:        logger,
		sessionTTL:    defaultSessionTTL,
		notifyTimeout: defaultNotifyTimeout,
		notifyRetries: defaultNotifyRetries,
		sessions:      make(map[string]*domain.BookingSession),
		holdIndex:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *bookingSessionService) Start(ctx context.Context, eventID, slotID, requesterToken string) (*domain.StartSessionResult, error) {
	slot, err := s.store.GetSlot(ctx, slotID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSlotNotFound
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot.EventID != eventID {
		return nil, domain.ErrSlotNotFound
	}

	now := s.clk.Now()
	session := &domain.BookingSession{
		ID:        uuid.NewString(),
		SlotID:    slotID,
		EventID:   eventID,
		State:     domain.SessionInitiated,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	s.track(session)

	hold, err := s.engine.RequestHold(ctx, slotID, requesterToken)
	if err != nil {
		s.drop(session.ID)
		return nil, err
	}
	s.bind(session.ID, hold.ID)

	token, err := s.tokens.Issue(session.ID, hold.ID, s.sessionTTL)
	if err != nil {
		// The hold stands either way; the attempt just proceeds untokened.
		s.logger.Warn("session token issue failed", "session_id", session.ID, "error", err)
		token = ""
	}
	return &domain.StartSessionResult{Hold: hold, SessionToken: token}, nil
}

func (s *bookingSessionService) Confirm(ctx context.Context, holdID, sessionToken string, attendee domain.AttendeeInfo) (*domain.Booking, error) {
	if attendee.Name == "" {
		return nil, fmt.Errorf("%w: attendee name is required", domain.ErrInvalidInput)
	}
	if attendee.Email == "" {
		return nil, fmt.Errorf("%w: attendee email is required", domain.ErrInvalidInput)
	}
	if sessionToken != "" {
		_, tokenHold, err := s.tokens.Verify(sessionToken)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid session token", domain.ErrInvalidInput)
		}
		if tokenHold != holdID {
			return nil, fmt.Errorf("%w: session token issued for another hold", domain.ErrInvalidInput)
		}
	}

	s.setStateByHold(holdID, domain.SessionConfirming)

	booking, err := s.engine.ConfirmHold(ctx, holdID, attendee)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrHoldExpired), errors.Is(err, domain.ErrHoldNotFound):
			s.setStateByHold(holdID, domain.SessionAborted)
		default:
			// Retryable outcome; the attempt is still live.
			s.setStateByHold(holdID, domain.SessionHolding)
		}
		return nil, err
	}

	s.setStateByHold(holdID, domain.SessionDone)
	s.dispatchConfirmed(booking)
	return booking, nil
}

func (s *bookingSessionService) Abort(ctx context.Context, holdID string) error {
	err := s.engine.ReleaseHold(ctx, holdID)
	if err != nil && !errors.Is(err, domain.ErrHoldNotFound) {
		return err
	}
	s.setStateByHold(holdID, domain.SessionAborted)
	return err
}

func (s *bookingSessionService) Cancel(ctx context.Context, bookingID string) error {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrBookingNotFound
		}
		return fmt.Errorf("get booking: %w", err)
	}
	wasConfirmed := booking.Status == domain.BookingConfirmed

	if err := s.engine.CancelBooking(ctx, bookingID); err != nil {
		return err
	}
	if wasConfirmed {
		s.dispatchCancelled(booking)
	}
	return nil
}

// Session reports the advisory session attached to a hold, if this
// instance started it.
func (s *bookingSessionService) Session(holdID string) (domain.BookingSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.holdIndex[holdID]
	if !ok {
		return domain.BookingSession{}, false
	}
	session, ok := s.sessions[id]
	if !ok {
		return domain.BookingSession{}, false
	}
	return *session, true
}

func (s *bookingSessionService) track(session *domain.BookingSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.clk.Now())
	s.sessions[session.ID] = session
}

func (s *bookingSessionService) bind(sessionID, holdID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	session.HoldID = holdID
	session.State = domain.SessionHolding
	s.holdIndex[holdID] = sessionID
}

func (s *bookingSessionService) drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		delete(s.holdIndex, session.HoldID)
		delete(s.sessions, sessionID)
	}
}

func (s *bookingSessionService) setStateByHold(holdID string, state domain.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.holdIndex[holdID]
	if !ok {
		return
	}
	if session, ok := s.sessions[id]; ok {
		session.State = state
	}
}

// pruneLocked drops sessions past their expiry. Called with mu held, at
// most once per sessionPruneEvery.
func (s *bookingSessionService) pruneLocked(now time.Time) {
	if now.Sub(s.lastPrune) < sessionPruneEvery {
		return
	}
	s.lastPrune = now
	for id, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.holdIndex, session.HoldID)
			delete(s.sessions, id)
		}
	}
}

// dispatchConfirmed sends the confirmation email and calendar links in
// the background. Failures are logged and counted, never propagated; the
// booking stands regardless.
func (s *bookingSessionService) dispatchConfirmed(booking *domain.Booking) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		s.notifyConfirmed(ctx, booking)
	}()
}

func (s *bookingSessionService) notifyConfirmed(ctx context.Context, booking *domain.Booking) {
	event, err := s.eventRepo.GetByID(ctx, booking.EventID)
	if err != nil {
		s.logger.Error("confirmation notice: load event failed", "booking_id", booking.ID, "error", err)
		monitoring.RecordNotification("booking_confirmed", "failed")
		return
	}
	slot, err := s.store.GetSlot(ctx, booking.SlotID)
	if err != nil {
		s.logger.Error("confirmation notice: load slot failed", "booking_id", booking.ID, "error", err)
		monitoring.RecordNotification("booking_confirmed", "failed")
		return
	}

	data := &domain.BookingConfirmedEmailData{
		AttendeeName: booking.AttendeeName,
		EventTitle:   event.Title,
		HostName:     event.HostName,
		StartsAt:     slot.StartsAt,
		Timezone:     event.Timezone,
		DurationMin:  event.DurationMin,
		BookingID:    booking.ID,
		CancelURL:    s.baseURL + "/bookings/" + booking.ID,
		ICSURL:       s.baseURL + "/bookings/" + booking.ID + "/ics",
	}
	if link, err := s.calendar.QuickAddLink(booking, event, slot); err == nil {
		data.CalendarLink = link
	} else {
		s.logger.Warn("calendar link build failed", "booking_id", booking.ID, "error", err)
	}

	if err := s.sendWithRetry(ctx, func() error {
		return s.notifications.SendBookingConfirmed(ctx, booking.AttendeeEmail, data)
	}); err != nil {
		s.logger.Error("confirmation email undeliverable", "booking_id", booking.ID, "error", err)
		monitoring.RecordNotification("booking_confirmed", "failed")
		return
	}
	monitoring.RecordNotification("booking_confirmed", "sent")
}

func (s *bookingSessionService) dispatchCancelled(booking *domain.Booking) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		s.notifyCancelled(ctx, booking)
	}()
}

func (s *bookingSessionService) notifyCancelled(ctx context.Context, booking *domain.Booking) {
	event, err := s.eventRepo.GetByID(ctx, booking.EventID)
	if err != nil {
		s.logger.Error("cancellation notice: load event failed", "booking_id", booking.ID, "error", err)
		monitoring.RecordNotification("booking_cancelled", "failed")
		return
	}
	slot, err := s.store.GetSlot(ctx, booking.SlotID)
	if err != nil {
		s.logger.Error("cancellation notice: load slot failed", "booking_id", booking.ID, "error", err)
		monitoring.RecordNotification("booking_cancelled", "failed")
		return
	}

	data := &domain.BookingCancelledEmailData{
		AttendeeName: booking.AttendeeName,
		EventTitle:   event.Title,
		StartsAt:     slot.StartsAt,
		Timezone:     event.Timezone,
	}
	if err := s.sendWithRetry(ctx, func() error {
		return s.notifications.SendBookingCancelled(ctx, booking.AttendeeEmail, data)
	}); err != nil {
		s.logger.Error("cancellation email undeliverable", "booking_id", booking.ID, "error", err)
		monitoring.RecordNotification("booking_cancelled", "failed")
		return
	}
	monitoring.RecordNotification("booking_cancelled", "sent")
}

// sendWithRetry runs send up to notifyRetries+1 times with a fixed delay.
func (s *bookingSessionService) sendWithRetry(ctx context.Context, send func() error) error {
	var err error
	for attempt := 0; attempt <= s.notifyRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(notifyRetryDelay):
			}
		}
		if err = send(); err == nil {
			return nil
		}
	}
	return err
}
