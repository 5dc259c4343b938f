package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/api"
	"github.com/notifyhub/jobboard/internal/auth"
	"github.com/notifyhub/jobboard/internal/config"
	"github.com/notifyhub/jobboard/internal/db"
	"github.com/notifyhub/jobboard/internal/mail"
	"github.com/notifyhub/jobboard/internal/metrics"
	"github.com/notifyhub/jobboard/internal/provider"
	"github.com/notifyhub/jobboard/internal/queue"
	"github.com/notifyhub/jobboard/internal/ratelimiter"
	"github.com/notifyhub/jobboard/internal/realtime"
	"github.com/notifyhub/jobboard/internal/repository"
	"github.com/notifyhub/jobboard/internal/service"
	"github.com/notifyhub/jobboard/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Apply migrations and run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- database ----
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	users := repository.NewPgUserRepository(pool)
	jobs := repository.NewPgJobRepository(pool)
	apps := repository.NewPgApplicationRepository(pool)
	alerts := repository.NewPgAlertRepository(pool)
	companies := repository.NewPgCompanyRepository(pool)
	saved := repository.NewPgSavedJobRepository(pool)

	onDelivered, onDropped := m.PushHooks()
	onConnect, onDisconnect := m.ConnHooks()
	registry := realtime.NewRegistry()
	conns := realtime.NewConnSet()
	notifier := realtime.NewNotifier(registry, conns, logger, realtime.Hooks{
		OnDelivered: onDelivered,
		OnDropped:   onDropped,
	})
	hub := realtime.NewHub(registry, conns, cfg.ClientURL, logger, realtime.HubHooks{
		OnConnect:    onConnect,
		OnDisconnect: onDisconnect,
	})

	q := queue.New()
	metrics.RegisterQueueDepth(reg, q)
	dispatcher := mail.NewDispatcher(q, logger)
	prov, err := newProvider(cfg, logger)
	if err != nil {
		return err
	}

	// ---- background workers ----
	// Context for all background goroutines; cancelled on shutdown.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	onSent, onFailed, onRetry := m.MailHooks()
	retries := worker.NewRetryWorker(q, cfg.RetryBackoff, cfg.RetryInterval, logger)
	go retries.Run(workerCtx)

	mailPool := worker.NewPool(cfg, q, prov, ratelimiter.New(cfg.MailRateLimit), retries, logger, worker.MetricHooks{
		OnSent:   onSent,
		OnFailed: onFailed,
		OnRetry:  onRetry,
	})
	mailPool.Start(workerCtx)

	digests := worker.NewDigestWorker(alerts, jobs, users, dispatcher, cfg.ClientURL, cfg.DigestInterval, logger)
	go digests.Run(workerCtx)

	limits := ratelimiter.NewClientLimiters(cfg.RateLimitRequests, cfg.RateLimitWindow)
	go limits.Run(workerCtx, time.Minute)

	// ---- HTTP server ----
	userSvc := service.NewUserService(users, dispatcher, logger)
	router := api.NewRouter(api.Deps{
		Users:        userSvc,
		Jobs:         service.NewJobService(jobs, alerts, notifier, logger),
		Applications: service.NewApplicationService(apps, jobs, users, notifier, dispatcher, logger),
		Alerts:       service.NewAlertService(alerts, jobs, logger),
		Companies:    service.NewCompanyService(companies, jobs, logger),
		SavedJobs:    service.NewSavedJobService(saved, jobs, logger),
		Tokens:       auth.NewTokenManager(cfg.JWTSecret),
		Hub:          hub,
		Registry:     registry,
		Conns:        conns,
		Queue:        q,
		Retries:      retries,
		Limits:       limits,
		DB:           pool,
		Metrics:      m,
		Gatherer:     reg,
		ClientURL:    cfg.ClientURL,
		Logger:       logger,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("mail_transport", cfg.MailTransport),
			zap.Int("mail_workers", mailPool.Size()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// ---- graceful shutdown ----
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	// 1. Stop accepting new HTTP requests and close live sockets.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	hub.Close()

	// 2. Stop background workers; queued and pending-retry emails are dropped.
	cancelWorkers()

	// 3. Wait for in-flight sends to finish.
	mailPool.Wait()

	high, normal, low := q.Depths()
	logger.Info("server stopped cleanly",
		zap.Int("unsent_emails", high+normal+low),
		zap.Int("pending_retries", retries.Pending()),
	)
	return nil
}

func newProvider(cfg *config.Config, logger *zap.Logger) (provider.Provider, error) {
	switch cfg.MailTransport {
	case "smtp":
		return provider.NewSMTPProvider(provider.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			Timeout:  cfg.ProviderTimeout,
		}), nil
	case "webhook":
		return provider.NewWebhookProvider(cfg.MailWebhookURL, cfg.MailFrom, cfg.ProviderTimeout), nil
	case "log":
		return provider.NewLogProvider(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.MailTransport)
	}
}
