package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prmhub_backend/internal/auth"
	"prmhub_backend/internal/config"
	"prmhub_backend/internal/events"
	"prmhub_backend/internal/feed"
	apphttp "prmhub_backend/internal/http"
	"prmhub_backend/internal/http/router"
	"prmhub_backend/internal/leads"
	"prmhub_backend/internal/notification"
	"prmhub_backend/internal/partners"
	"prmhub_backend/internal/partners/perfcache"
	partnerservice "prmhub_backend/internal/partners/service"
	"prmhub_backend/platform/db"
	"prmhub_backend/platform/logger"
	"prmhub_backend/platform/validator"

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
		return db.RunMigrations(ctx, cfg.DatabaseURL, cfg.MigrationsDir)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg.DatabaseURL)
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

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(pool, log)
	notificationModule.RegisterHandlers(eventBus)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Redis-backed cache for computed performance percentages. The app runs
	// without it when Redis is not configured.
	var cache partnerservice.PercentageCache
	if cfg.RedisURL != "" {
		pc, err := perfcache.New(cfg.RedisURL, cfg.PerfCacheTTL, log)
		if err != nil {
			log.Warn("performance cache disabled", "error", err)
		} else {
			defer func() { _ = pc.Close() }()
			cache = pc
			log.Info("performance cache initialized", "ttl", cfg.PerfCacheTTL)
		}
	} else {
		log.Warn("REDIS_URL not configured; performance cache disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, val)
	partnersModule := partners.NewModule(pool, eventBus, log, val, cache)
	leadsModule := leads.NewModule(pool, eventBus, log, val, partnersModule.ScoringEngine())
	feedModule := feed.NewModule(pool, val)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	engine := router.New(cfg, log, pool, []apphttp.Module{
		authModule,
		partnersModule,
		leadsModule,
		feedModule,
	})

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
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
	return fmt.Errorf("%s: %w", name, lastErr)
}
