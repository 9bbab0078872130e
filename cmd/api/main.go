package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadpilot_backend/internal/adapters/storage"
	"leadpilot_backend/internal/appointments"
	apptsvc "leadpilot_backend/internal/appointments/service"
	"leadpilot_backend/internal/calls"
	callsvc "leadpilot_backend/internal/calls/service"
	"leadpilot_backend/internal/email"
	"leadpilot_backend/internal/events"
	apphttp "leadpilot_backend/internal/http"
	"leadpilot_backend/internal/http/router"
	"leadpilot_backend/internal/leads"
	leadsvc "leadpilot_backend/internal/leads/service"
	"leadpilot_backend/internal/notification"
	"leadpilot_backend/internal/reasoning"
	"leadpilot_backend/internal/scheduler"
	"leadpilot_backend/internal/voice"
	"leadpilot_backend/platform/ai/groq"
	"leadpilot_backend/platform/config"
	"leadpilot_backend/platform/db"
	"leadpilot_backend/platform/logger"
	"leadpilot_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Reasoning engine over the Groq completion API
	groqClient := groq.NewClient(groq.Config{
		APIKey:  cfg.GetGroqAPIKey(),
		BaseURL: cfg.GetGroqBaseURL(),
		Model:   cfg.GetGroqModel(),
	})
	engine := reasoning.NewEngine(groqClient, log)
	log.Info("reasoning engine initialized", "model", groqClient.Model())

	// Recording archive (MinIO); nil disables archival
	recordings := initRecordingStore(ctx, cfg, log)

	// Delayed task scheduler (asynq); nil disables follow-ups and reminders
	followUpScheduler, reminderScheduler, closeScheduler := initSchedulers(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	sender := initSender(cfg, log)

	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsModule := leads.NewModule(pool, engine, eventBus, followUpScheduler, val, log)
	appointmentsModule := appointments.NewModule(pool, eventBus, reminderScheduler, val, log)
	callsModule := calls.NewModule(pool, engine, recordings, eventBus, log)
	voiceModule := voice.NewModule(leadsModule.Service(), appointmentsModule.Service(), callsModule.Service(), log)

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.NewModule(sender, leadsModule.Repository(), appointmentsModule.Repository(), cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			appointmentsModule,
			callsModule,
			voiceModule,
		},
	}

	engineHTTP := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engineHTTP.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initRecordingStore(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) callsvc.RecordingArchiver {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MinIO not configured; call recording archival disabled")
		return nil
	}

	store, err := storage.NewRecordingStore(cfg)
	if err != nil {
		log.Error("failed to initialize recording store", "error", err)
		return nil
	}

	if err := withRetry(ctx, log, "ensure recordings bucket", 5, 2*time.Second, func() error {
		return store.EnsureBucketExists(ctx)
	}); err != nil {
		log.Error("failed to ensure recordings bucket exists", "error", err)
		panic("failed to ensure recordings bucket exists: " + err.Error())
	}

	log.Info("recording store initialized", "bucket", cfg.GetMinioBucketCallRecordings())
	return store
}

func initSchedulers(cfg config.SchedulerConfig, log *logger.Logger) (leadsvc.FollowUpScheduler, apptsvc.ReminderScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; follow-ups and reminders disabled")
		return nil, nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil, nil
	}

	return client, client, func() {
		_ = client.Close()
	}
}

func initSender(cfg config.EmailConfig, log *logger.Logger) email.Sender {
	if !cfg.IsEmailEnabled() {
		log.Warn("SMTP not configured; agent notification email disabled")
		return email.NoopSender{}
	}

	return email.NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
