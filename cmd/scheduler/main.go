package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesrep_sync/internal/audit"
	"salesrep_sync/internal/events"
	"salesrep_sync/internal/salesrep"
	"salesrep_sync/internal/scheduler"
	"salesrep_sync/internal/storefront"
	"salesrep_sync/platform/config"
	"salesrep_sync/platform/db"
	"salesrep_sync/platform/logger"
	"salesrep_sync/platform/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
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

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	if err := run(cfg, log); err != nil {
		log.Error("scheduler stopped", "error", err)
		os.Exit(1)
	}
	log.Info("scheduler stopped")
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	shop, err := storefront.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize storefront client", "error", err)
		panic("failed to initialize storefront client: " + err.Error())
	}

	opts, err := salesrep.OptionsFromConfig(cfg)
	if err != nil {
		log.Error("invalid sales rep settings", "error", err)
		panic("invalid sales rep settings: " + err.Error())
	}

	// Outcomes are audited when the API's database is reachable; the API
	// process owns the migrations.
	var pool *pgxpool.Pool
	if cfg.IsDatabaseEnabled() {
		pool, err = db.NewPool(ctx, cfg)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			panic("failed to connect to database: " + err.Error())
		}
		defer pool.Close()
	}

	eventBus := events.NewInMemoryBus(log)
	opts.Bus = eventBus
	if pool != nil {
		audit.NewRecorder(audit.NewRepository(pool), log).RegisterHandlers(eventBus)
	}

	service := salesrep.NewService(shop, opts, log)

	worker, err := scheduler.NewWorker(cfg, service, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})

	if addr := cfg.GetWorkerMetricsAddr(); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			log.Info("metrics listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	// Audit inserts for the last tasks must land before the pool closes.
	eventBus.Wait()
	return err
}
