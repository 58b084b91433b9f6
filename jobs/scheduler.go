// Package jobs runs the scheduled background work: the nightly stock
// refresh and the morning email digest. Scheduling is cron-based; both
// jobs can also be triggered on demand through the admin endpoints.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/stockwatch/stockwatch/logger"
	"github.com/stockwatch/stockwatch/observability"
)

// Job is one schedulable unit of work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler drives jobs on cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	log     *logger.Logger
	metrics *observability.Metrics
}

// NewScheduler creates an empty scheduler. Metrics may be nil.
func NewScheduler(log *logger.Logger, metrics *observability.Metrics) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		log:     log.WithComponent("scheduler"),
		metrics: metrics,
	}
}

// Register adds a job on a cron schedule.
func (s *Scheduler) Register(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.runJob(job)
	})
	if err != nil {
		return err
	}
	s.log.Info("Job scheduled", map[string]interface{}{
		"job":  job.Name(),
		"spec": spec,
	})
	return nil
}

func (s *Scheduler) runJob(job Job) {
	ctx := context.Background()
	start := time.Now()

	err := job.Run(ctx)
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.RecordJobRun(ctx, job.Name(), err, elapsed)
	}
	if err != nil {
		s.log.Error("Job failed", map[string]interface{}{
			"job":      job.Name(),
			"error":    err.Error(),
			"duration": elapsed.String(),
		})
		return
	}
	s.log.Info("Job completed", map[string]interface{}{
		"job":      job.Name(),
		"duration": elapsed.String(),
	})
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
