package scheduler

import (
	"context"
	"fmt"

	"salesrep_sync/internal/salesrep"
	"salesrep_sync/platform/apperr"
	"salesrep_sync/platform/config"
	"salesrep_sync/platform/logger"

	"github.com/hibiken/asynq"
)

// Updater runs one sales rep update.
type Updater interface {
	UpdateSalesRep(ctx context.Context, customerEmail, repIdentifier string) (*salesrep.UpdateResult, error)
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	updater Updater
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, updater Updater, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		updater: updater,
		log:     log,
	}

	mux.HandleFunc(TaskSalesRepUpdate, w.handleSalesRepUpdate)

	return w, nil
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	if err := w.server.Start(w.mux); err != nil {
		w.log.Error("scheduler worker failed to start", "error", err)
		return err
	}
	<-ctx.Done()
	w.server.Shutdown()
	w.log.Info("scheduler worker stopped")
	return nil
}

func (w *Worker) handleSalesRepUpdate(ctx context.Context, task *asynq.Task) error {
	return HandleSalesRepUpdate(ctx, w.updater, task)
}

// HandleSalesRepUpdate runs the update carried by task. Failures that a retry
// cannot fix are marked with asynq.SkipRetry.
func HandleSalesRepUpdate(ctx context.Context, updater Updater, task *asynq.Task) error {
	payload, err := ParseSalesRepUpdatePayload(task)
	if err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", TaskSalesRepUpdate, err, asynq.SkipRetry)
	}

	if id, ok := asynq.GetTaskID(ctx); ok {
		ctx = context.WithValue(ctx, logger.TaskIDKey, id)
	}
	if payload.RequestID != "" {
		ctx = context.WithValue(ctx, logger.RequestIDKey, payload.RequestID)
	}

	_, err = updater.UpdateSalesRep(ctx, payload.CustomerEmail, payload.SalesRep)
	if err == nil {
		return nil
	}

	switch apperr.GetKind(err) {
	case apperr.KindValidation, apperr.KindNotFound, apperr.KindResolution, apperr.KindConfiguration:
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	default:
		return err
	}
}
