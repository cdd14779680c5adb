// Package main is the entry point for the Adventure Together API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/lucamoretti/adventure-together/internal/config"
	"github.com/lucamoretti/adventure-together/internal/handler"
	"github.com/lucamoretti/adventure-together/internal/middleware"
	"github.com/lucamoretti/adventure-together/internal/notify"
	"github.com/lucamoretti/adventure-together/internal/payment"
	"github.com/lucamoretti/adventure-together/internal/repo"
	"github.com/lucamoretti/adventure-together/internal/service"
	"github.com/lucamoretti/adventure-together/migrations"
)

// maxBodyBytes caps incoming request bodies. The largest legitimate request
// is a full-party booking, which stays well under this.
const maxBodyBytes = 1 << 20 // 1 MiB

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic. In containerised
	// deployments Postgres often comes up a few seconds after the app, so
	// retry the ping with exponential backoff before giving up.
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 30*time.Second)
	err = retry.Do(pingCtx, retry.WithMaxRetries(5, retry.NewExponential(time.Second)), func(ctx context.Context) error {
		return retry.RetryableError(pool.Ping(ctx))
	})
	cancelPing()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Migrations -------------------------------------------------------
	// goose needs database/sql, not a pgx pool; open a short-lived *sql.DB
	// for the migration run only.
	if err := runMigrations(cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations applied")

	// --- Dependencies -----------------------------------------------------
	store := repo.NewStore(pool)
	tripRepo := repo.NewTripRepo(pool)
	itineraryRepo := repo.NewItineraryRepo(pool)
	bookingRepo := repo.NewBookingRepo(pool)

	gateway := payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	var notifier notify.Notifier
	if cfg.SMTPHost != "" {
		notifier, err = notify.NewMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.FromEmail,
		})
		if err != nil {
			slog.Error("failed to create mailer", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("SMTP_HOST not set; notification mail disabled")
	}

	lifecycle := service.NewLifecycleService(store, tripRepo, notifier, logger, cfg.BaseURL, nil)
	bookings := service.NewBookingService(store, bookingRepo, gateway, lifecycle, notifier, logger, cfg.Currency, cfg.BaseURL, nil)
	trips := service.NewTripService(tripRepo, itineraryRepo, logger, nil)
	itineraries := service.NewItineraryService(itineraryRepo)
	export := service.NewExportService(tripRepo, bookingRepo)

	// --- Lifecycle sweep --------------------------------------------------
	// The sweep closes expired booking windows and reconciles any transition
	// a crashed admission left behind.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go lifecycle.Run(sweepCtx, cfg.SweepInterval)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body-size cap.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))

	server := handler.NewServer(itineraries, trips, bookings, lifecycle, export)
	r.Mount("/", server.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// runMigrations applies all pending goose migrations from the embedded FS.
func runMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	_, err = provider.Up(context.Background())
	return err
}
