package syncqueue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tenant-identity/internal/observability"
	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

// AccountStateSyncer pushes the local account state of email to the provider.
// application.Service implements it.
type AccountStateSyncer interface {
	SyncAccountState(ctx context.Context, email string) error
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	syncer  AccountStateSyncer
	logger  *logrus.Logger
	metrics *observability.Metrics
}

func NewWorker(cfg Config, syncer AccountStateSyncer, logger *logrus.Logger, metrics *observability.Metrics) (*Worker, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("redis address not configured")
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 5
	}
	server := asynq.NewServer(cfg.redisOpt(), asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{cfg.queue(): 1},
	})
	w := &Worker{
		server:  server,
		mux:     asynq.NewServeMux(),
		syncer:  syncer,
		logger:  logger,
		metrics: metrics,
	}
	w.mux.HandleFunc(TaskAccountStateSync, w.HandleAccountState)
	return w, nil
}

// HandleAccountState is the task handler. A user that no longer exists
// locally is dropped without retry.
func (w *Worker) HandleAccountState(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAccountStatePayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	err = w.syncer.SyncAccountState(ctx, payload.Email)
	switch {
	case err == nil:
		w.metrics.SyncResult("done")
		return nil
	case apperr.Is(err, apperr.KindNotFound), apperr.Is(err, apperr.KindValidation):
		w.metrics.SyncResult("dropped")
		if w.logger != nil {
			w.logger.WithError(err).WithField("email", payload.Email).Warn("dropping provider sync task")
		}
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	default:
		w.metrics.SyncResult("retry")
		return err
	}
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}
