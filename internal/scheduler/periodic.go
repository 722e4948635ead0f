package scheduler

import (
	"context"
	"fmt"

	"leadpipeline_backend/platform/config"
	"leadpipeline_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic enqueues the daily analytics snapshot on SNAPSHOT_CRON in the
// snapshot time zone. Only one scheduler process should run per Redis.
type Periodic struct {
	scheduler *asynq.Scheduler
	entryID   string
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: cfg.GetSnapshotLocation(),
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				log.Error("periodic enqueue failed", "error", err)
				return
			}
			log.Debug("periodic task enqueued", "task", info.Type, "id", info.ID)
		},
	})

	entryID, err := s.Register(cfg.GetSnapshotCron(), NewSnapshotCaptureTask(), asynq.Queue(queueName(cfg)))
	if err != nil {
		return nil, fmt.Errorf("register snapshot task: %w", err)
	}

	return &Periodic{scheduler: s, entryID: entryID, log: log}, nil
}

// Run blocks until ctx is cancelled.
func (p *Periodic) Run(ctx context.Context) error {
	if err := p.scheduler.Start(); err != nil {
		return fmt.Errorf("start periodic scheduler: %w", err)
	}
	p.log.Info("periodic scheduler started", "entry", p.entryID, "task", TaskSnapshotCapture)

	<-ctx.Done()
	p.scheduler.Shutdown()
	return nil
}
