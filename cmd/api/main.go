package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/campaigns"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/dialer"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/events"
	apphttp "github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/http"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/http/router"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/outcomes"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/scheduler"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/migrations"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/config"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/db"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/logger"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
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

	// Shared validator instance for dependency injection
	val := validator.New()

	redisClient := initRedisClient(cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	campaignsModule := campaigns.NewModule(pool, val, log, eventBus)
	outcomesModule := outcomes.NewModule(pool, val, log)
	dialerModule := dialer.NewModule(
		pool,
		campaignsModule.Repository,
		outcomesModule.Service,
		redisClient,
		cfg,
		val,
		log,
		eventBus,
	)

	// Counter refresh rides the event bus through asynq when redis is up
	var worker *scheduler.Worker
	if cfg.RedisURL != "" {
		client, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize scheduler client", "error", err)
			panic("failed to initialize scheduler client: " + err.Error())
		}
		defer func() { _ = client.Close() }()
		scheduler.RegisterEventHandlers(eventBus, client, log)

		worker, err = scheduler.NewWorker(cfg, pool, log)
		if err != nil {
			log.Error("failed to initialize scheduler worker", "error", err)
			panic("failed to initialize scheduler worker: " + err.Error())
		}
	} else {
		log.Warn("REDIS_URL not configured; counter refresh jobs disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			campaignsModule,
			outcomesModule,
			dialerModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: engine}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if worker != nil {
		g.Go(func() error {
			worker.Run(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
}

func initRedisClient(cfg *config.Config, log *logger.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not configured; availability snapshot cache disabled")
		return nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Error("invalid REDIS_URL", "error", err)
		return nil
	}

	return redis.NewClient(opt)
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
