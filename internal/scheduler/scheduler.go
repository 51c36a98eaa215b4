// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/arbiter-gg/arbiter/internal/config"
	"github.com/arbiter-gg/arbiter/internal/models"
	"github.com/arbiter-gg/arbiter/internal/queue"
	"github.com/arbiter-gg/arbiter/internal/reminders"
)

// Trigger periodically enqueues one scan job per lobby kind. The scan queue
// decouples the cadence from scan execution: any worker may pick the job up,
// and a missed tick costs nothing because scans are idempotent.
type Trigger struct {
	pub    *queue.Publisher
	cfg    config.Config
	logger *logrus.Logger
	cron   *cron.Cron
}

// NewTrigger builds the cron-backed trigger.
func NewTrigger(pub *queue.Publisher, cfg config.Config, logger *logrus.Logger) *Trigger {
	return &Trigger{
		pub:    pub,
		cfg:    cfg,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start registers the cron entries and begins ticking. Stop with Stop.
func (t *Trigger) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %dm", t.cfg.ScanEveryMin)
	for _, kind := range models.Kinds {
		kind := kind
		_, err := t.cron.AddFunc(spec, func() {
			t.enqueueScan(ctx, kind)
		})
		if err != nil {
			return fmt.Errorf("add cron entry for %s: %w", kind, err)
		}
	}
	t.cron.Start()
	t.logger.Infof("scan trigger running (%s)", spec)
	return nil
}

func (t *Trigger) enqueueScan(ctx context.Context, kind models.LobbyKind) {
	req := reminders.ScanRequest{
		Kind:         kind,
		LookaheadMin: t.cfg.LookaheadMin[kind],
	}
	if err := t.pub.Enqueue(ctx, queue.ScanQueue(kind), req); err != nil {
		t.logger.Errorf("failed to enqueue %s scan: %v", kind, err)
	}
}

// Stop halts the cron loop, waiting for an in-flight tick to finish.
func (t *Trigger) Stop() {
	<-t.cron.Stop().Done()
}
