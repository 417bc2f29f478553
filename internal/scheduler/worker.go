// Package scheduler runs the background snapshot jobs on asynq: a periodic
// enqueuer emits one metrics.snapshot task per active account, and the
// worker computes and persists that account's daily setter metrics.
package scheduler

import (
	"context"
	"fmt"
	"time"

	attrrepo "salesops_backend/internal/attribution/repository"
	attrservice "salesops_backend/internal/attribution/service"
	snaprepo "salesops_backend/internal/snapshot/repository"
	"salesops_backend/platform/config"
	"salesops_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	client    *Client
	mux       *asynq.ServeMux
	events    *attrrepo.Repository
	metrics   *attrservice.Service
	snapshots *snaprepo.Repository
	queue     string
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetSnapshotQueueName()
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			queue: 1,
		},
	})

	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	eventsRepo := attrrepo.New(pool)
	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		client:    client,
		mux:       mux,
		events:    eventsRepo,
		metrics:   attrservice.New(eventsRepo, log),
		snapshots: snaprepo.New(pool),
		queue:     queue,
		log:       log,
	}

	mux.HandleFunc(TaskMetricsSnapshot, w.handleMetricsSnapshot)

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{})
	cron := cfg.GetSnapshotCron()
	if cron == "" {
		cron = "0 3 * * *"
	}
	if _, err := scheduler.Register(cron, asynq.NewTask(taskEnqueueSnapshots, nil), asynq.Queue(queue)); err != nil {
		return nil, err
	}
	w.scheduler = scheduler
	mux.HandleFunc(taskEnqueueSnapshots, w.handleEnqueueSnapshots)

	return w, nil
}

// taskEnqueueSnapshots fans one snapshot task out per active account.
const taskEnqueueSnapshots = "metrics.snapshot.enqueue"

func (w *Worker) handleEnqueueSnapshots(ctx context.Context, _ *asynq.Task) error {
	accountIDs, err := w.events.ListAccountIDs(ctx)
	if err != nil {
		return err
	}

	day := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

	for _, accountID := range accountIDs {
		payload := MetricsSnapshotPayload{
			AccountID: accountID.String(),
			Day:       day,
		}
		if err := w.client.EnqueueSnapshot(ctx, payload); err != nil {
			w.log.Error("failed to enqueue snapshot task", "error", err, "account_id", accountID)
		}
	}

	w.log.Info("snapshot tasks enqueued", "accounts", len(accountIDs), "day", day)
	return nil
}

func (w *Worker) handleMetricsSnapshot(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseMetricsSnapshotPayload(task)
	if err != nil {
		return err
	}

	accountID, err := uuid.Parse(payload.AccountID)
	if err != nil {
		return err
	}
	day, err := time.Parse("2006-01-02", payload.Day)
	if err != nil {
		return err
	}

	report, err := w.metrics.ComputeMetrics(ctx, attrservice.MetricsRequest{
		AccountID: accountID,
		From:      day,
		To:        day.Add(24*time.Hour - time.Nanosecond),
	})
	if err != nil {
		return err
	}

	if err := w.snapshots.UpsertSetterSnapshots(ctx, accountID, day, report.Setters); err != nil {
		return err
	}

	w.log.Info("metrics snapshot stored", "account_id", accountID, "day", payload.Day, "setters", len(report.Setters))
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.scheduler.Shutdown()
		w.server.Shutdown()
		_ = w.client.Close()
	}()

	go func() {
		if err := w.scheduler.Run(); err != nil {
			w.log.Error("snapshot scheduler stopped", "error", err)
		}
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
