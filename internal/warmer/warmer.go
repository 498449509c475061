// Package warmer refreshes upstream caches on a cron schedule so public
// requests rarely pay for a cold upstream call.
package warmer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redstonelake/lakeside-api/internal/observability"
	"github.com/robfig/cron/v3"
)

// ErrNoJobs is returned by Start when every job was disabled.
var ErrNoJobs = errors.New("no warm jobs scheduled")

// Job is one scheduled refresh. An empty Schedule disables the job.
type Job struct {
	Name     string
	Schedule string // six-field cron spec, seconds first
	Run      func(ctx context.Context) error
}

// Warmer runs Jobs on their schedules. Overlapping runs of the same job are skipped.
type Warmer struct {
	cron    *cron.Cron
	jobs    []Job
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a Warmer for jobs. Jobs without a schedule are dropped.
func New(jobs []Job, metrics *observability.Metrics, logger *slog.Logger) *Warmer {
	var enabled []Job
	for _, j := range jobs {
		if j.Schedule != "" && j.Run != nil {
			enabled = append(enabled, j)
		}
	}
	return &Warmer{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		jobs:    enabled,
		metrics: metrics,
		logger:  logger,
	}
}

// Start registers every job and blocks until ctx is cancelled. It returns
// ErrNoJobs immediately when nothing is scheduled.
func (w *Warmer) Start(ctx context.Context) error {
	if len(w.jobs) == 0 {
		return ErrNoJobs
	}
	for _, j := range w.jobs {
		if _, err := w.cron.AddFunc(j.Schedule, func() { w.RunOnce(ctx, j) }); err != nil {
			return fmt.Errorf("schedule %s job %q: %w", j.Name, j.Schedule, err)
		}
		w.logger.Info("warm job scheduled", "job", j.Name, "schedule", j.Schedule)
	}

	w.cron.Start()
	<-ctx.Done()
	<-w.cron.Stop().Done()
	w.logger.Info("warmer stopped")
	return nil
}

// RunOnce executes job and records the outcome.
func (w *Warmer) RunOnce(ctx context.Context, job Job) {
	start := time.Now()
	err := job.Run(ctx)

	outcome := "success"
	if err != nil {
		outcome = "error"
		w.logger.Warn("warm job failed", "job", job.Name, "error", err, "duration", time.Since(start))
	} else {
		w.logger.Debug("warm job finished", "job", job.Name, "duration", time.Since(start))
	}
	w.metrics.WarmRuns.WithLabelValues(job.Name, outcome).Inc()
}

// Jobs returns the enabled jobs.
func (w *Warmer) Jobs() []Job {
	return w.jobs
}
