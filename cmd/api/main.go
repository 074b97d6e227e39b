package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"slotbooker/config"
	_ "slotbooker/docs"
	"slotbooker/internal/adapters/calendar"
	"slotbooker/internal/adapters/email"
	"slotbooker/internal/adapters/session"
	"slotbooker/internal/broadcast"
	"slotbooker/internal/clock"
	delivery "slotbooker/internal/delivery/http"
	"slotbooker/internal/delivery/http/controllers"
	"slotbooker/internal/domain"
	"slotbooker/internal/repository/memory"
	"slotbooker/internal/repository/postgres"
	"slotbooker/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title Slotbooker API
// @version 1.0
// @description Slot booking service: hosts publish events with bookable time slots, visitors hold and confirm seats without double-booking, and viewers watch availability in real time.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.NewSystem()

	var (
		slotStore   domain.SlotStore
		eventRepo   domain.EventRepository
		bookingRepo domain.BookingRepository
	)
	switch cfg.StoreBackend {
	case "memory":
		logger.Warn("using in-memory store, state is lost on restart")
		mem := memory.NewStore()
		slotStore, eventRepo, bookingRepo = mem, mem, mem
	default:
		db, err := sql.Open("postgres", cfg.DBUrl)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		if err := postgres.Migrate(db); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		slotStore = postgres.NewSlotStore(db)
		eventRepo = postgres.NewEventRepository(db)
		bookingRepo = postgres.NewBookingRepository(db)
	}

	hub := broadcast.NewHub(logger)
	var publisher domain.ChangePublisher = hub
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()
		relay := broadcast.NewRelay(rdb, hub, cfg.InstanceID, logger)
		publisher = relay
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("availability relay stopped", "error", err)
			}
		}()
		logger.Info("availability relay enabled", "instance_id", cfg.InstanceID)
	}

	engine := services.NewReservationEngine(slotStore, publisher, clk, logger,
		services.WithHoldTTL(cfg.HoldTTL),
	)
	sweeper := services.NewSweeper(engine, cfg.SweepInterval, logger)
	go sweeper.Start(ctx)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailerProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "error", err)
		os.Exit(1)
	}
	notifications := services.NewNotificationService(mailer, email.NewTemplateRenderer())
	calendarSvc := calendar.NewGenerator(cfg.EmailFromAddress, clk)
	tokens := session.NewJWTCodec(cfg.SessionSecret, clk)

	sessions := services.NewBookingSessionService(
		engine, slotStore, eventRepo, notifications, calendarSvc, tokens, clk, logger,
		services.WithSessionTTL(cfg.SessionTTL),
		services.WithPublicBaseURL(cfg.PublicBaseURL),
	)
	catalog := services.NewCatalogService(eventRepo, slotStore, clk, logger, serviceTimeout)
	availability := services.NewAvailabilityService(slotStore, hub, clk, logger)
	attendees := services.NewAttendeeService(bookingRepo, eventRepo, slotStore, serviceTimeout)

	router := delivery.NewRouter(
		logger,
		controllers.NewEventController(logger, catalog),
		controllers.NewBookingController(logger, sessions),
		controllers.NewAttendeeController(logger, attendees, calendarSvc),
		controllers.NewAvailabilityController(logger, availability),
		strings.Split(cfg.CORSOrigins, ","),
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Port, "store", cfg.StoreBackend, "environment", cfg.Environment)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
