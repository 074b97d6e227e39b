package services

import (
	"context"
	"log/slog"
	"time"

	"slotbooker/internal/domain"
)

// Sweeper periodically reclaims seats from expired holds. It is the
// backstop for clients that vanish without releasing; the engine also
// reclaims opportunistically when a full slot blocks a new hold.
type Sweeper struct {
	engine   domain.ReservationEngine
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper driving the engine's SweepExpired every
// interval.
func NewSweeper(engine domain.ReservationEngine, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		engine:   engine,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("hold sweeper started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("hold sweeper stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	swept, err := s.engine.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("sweep failed", "error", err)
		return
	}
	if swept > 0 {
		s.logger.Debug("sweep pass complete", "reclaimed", swept)
	}
}
