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

	"salesrep_sync/internal/adapters"
	"salesrep_sync/internal/audit"
	"salesrep_sync/internal/erp"
	"salesrep_sync/internal/events"
	apphttp "salesrep_sync/internal/http"
	"salesrep_sync/internal/http/router"
	"salesrep_sync/internal/salesrep"
	"salesrep_sync/internal/scheduler"
	"salesrep_sync/internal/signer"
	"salesrep_sync/internal/storefront"
	"salesrep_sync/migrations"
	"salesrep_sync/platform/config"
	"salesrep_sync/platform/db"
	"salesrep_sync/platform/logger"
	"salesrep_sync/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := cfg.RequireStorefront(); err != nil {
		panic("invalid config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var checks healthChecks

	var pool *pgxpool.Pool
	if cfg.IsDatabaseEnabled() {
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

		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, pool, migrations.FS)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		checks = append(checks, db.NewPoolAdapter(pool))
		log.Info("database ready")
	} else {
		log.Warn("DATABASE_URL not configured; ERP directory disabled")
	}

	var rdb *redis.Client
	if cfg.IsSchedulerEnabled() {
		rdb, err = adapters.NewRedisClient(cfg)
		if err != nil {
			log.Error("failed to initialize redis client", "error", err)
			panic("failed to initialize redis client: " + err.Error())
		}
		defer func() { _ = rdb.Close() }()
		checks = append(checks, redisHealth{rdb})
	}

	sig := signer.New(adapters.NewSecretStore(rdb), cfg.GetSigningSecretRef())

	shop, err := storefront.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize storefront client", "error", err)
		panic("failed to initialize storefront client: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// Sync outcomes flow to subscribers through the bus
	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	modules := make([]apphttp.Module, 0, 3)

	salesRepModule, err := salesrep.NewModule(shop, sig, cfg, val, eventBus, log)
	if err != nil {
		log.Error("failed to initialize sales rep module", "error", err)
		panic("failed to initialize sales rep module: " + err.Error())
	}

	if cfg.IsSchedulerEnabled() {
		queueClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize queue client", "error", err)
			panic("failed to initialize queue client: " + err.Error())
		}
		defer func() { _ = queueClient.Close() }()
		salesRepModule.SetEnqueuer(adapters.NewSalesRepEnqueuer(queueClient))
	} else {
		log.Warn("REDIS_URL not configured; async updates disabled")
	}

	var directory erp.DirectorySource
	switch {
	case pool != nil:
		directory = erp.NewPostgresDirectory(pool)
	case cfg.ERPDirectoryFile != "":
		static, err := erp.LoadStaticDirectory(cfg.ERPDirectoryFile)
		if err != nil {
			log.Error("failed to load erp directory file", "error", err)
			panic("failed to load erp directory file: " + err.Error())
		}
		directory = static
	}
	erpModule, err := erp.NewModule(directory, salesRepModule.Service(), sig, cfg, val, log)
	if err != nil {
		log.Error("failed to initialize erp module", "error", err)
		panic("failed to initialize erp module: " + err.Error())
	}
	modules = append(modules, salesRepModule, erpModule)

	if pool != nil {
		modules = append(modules, audit.NewModule(audit.NewRepository(pool), log))
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:       cfg,
		Logger:       log,
		Health:       checks,
		EventBus:     eventBus,
		AdminEnabled: cfg.IsAdminEnabled(),
		Modules:      modules,
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
}

type healthChecks []apphttp.HealthChecker

func (h healthChecks) Ping(ctx context.Context) error {
	for _, check := range h {
		if err := check.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

type redisHealth struct {
	rdb *redis.Client
}

func (r redisHealth) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
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
