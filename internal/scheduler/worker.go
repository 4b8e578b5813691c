package scheduler

import (
	"context"

	"prmhub_backend/internal/config"
	"prmhub_backend/internal/events"
	"prmhub_backend/internal/notification/outbox"
	"prmhub_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker consumes asynq tasks and turns them into domain events.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	outbox *outbox.Repository
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg *config.Config, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.AsynqQueue
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.AsynqConcurrency
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
		server: server,
		mux:    mux,
		outbox: outbox.New(pool),
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskNotificationOutboxDue, w.handleNotificationOutboxDue)

	return w, nil
}

func (w *Worker) handleNotificationOutboxDue(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseNotificationOutboxDuePayload(task)
	if err != nil {
		return err
	}

	outboxID, err := uuid.Parse(payload.OutboxID)
	if err != nil {
		return err
	}
	orgID, err := uuid.Parse(payload.OrganizationID)
	if err != nil {
		return err
	}

	if err := w.outbox.MarkProcessing(ctx, outboxID); err != nil {
		return err
	}

	if w.bus != nil {
		if err := w.bus.PublishSync(ctx, events.NotificationOutboxDue{
			BaseEvent:      events.NewBaseEvent(),
			OutboxID:       outboxID,
			OrganizationID: orgID,
		}); err != nil {
			_ = w.outbox.MarkFailed(ctx, outboxID, err.Error())
			return err
		}
	}

	return w.outbox.MarkSucceeded(ctx, outboxID)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
