package scheduler

import (
	"context"
	"fmt"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/campaigns/repository"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/config"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	log    *logger.Logger
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
		server: server,
		mux:    mux,
		repo:   repository.New(pool),
		log:    log,
	}

	mux.HandleFunc(TaskCampaignCountersRefresh, w.handleCampaignCountersRefresh)

	return w, nil
}

func (w *Worker) handleCampaignCountersRefresh(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCampaignCountersRefreshPayload(task)
	if err != nil {
		return err
	}

	if err := w.repo.RefreshLeadCounters(ctx, payload.CampaignKey); err != nil {
		return err
	}

	w.log.Info("campaign counters refreshed", "campaignKey", payload.CampaignKey)
	return nil
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
