// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package scheduler runs periodic maintenance jobs on a cron schedule.

Jobs are plain functions of a context. Each run gets a bounded child of the
scheduler's root context, so cancelling the root (server shutdown) stops
new runs and aborts in-flight ones.
*/
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single job run.
const jobTimeout = 5 * time.Minute

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler wraps a [cron.Cron] with structured logging.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New constructs an idle Scheduler. Panicking jobs are recovered by cron.
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger,
	}
}

/*
Register adds a named job on the given cron spec.

Parameters:
  - ctx: Root context; every run derives from it
  - name: Identifier used in log events
  - spec: Standard 5-field cron expression or descriptor (e.g. "@hourly")
  - job: Work to run

Returns:
  - error: Invalid cron spec
*/
func (scheduler *Scheduler) Register(ctx context.Context, name, spec string, job Job) error {
	_, err := scheduler.cron.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}

		runCtx, cancel := context.WithTimeout(ctx, jobTimeout)
		defer cancel()

		startTime := time.Now()
		if err := job(runCtx); err != nil {
			scheduler.logger.Error("scheduled_job_failed",
				slog.String("job", name),
				slog.Any("error", err),
			)
			return
		}

		scheduler.logger.Info("scheduled_job_finished",
			slog.String("job", name),
			slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
		)
	})
	if err != nil {
		return fmt.Errorf("scheduler: invalid spec %q for job %s: %w", spec, name, err)
	}

	scheduler.logger.Info("scheduled_job_registered", slog.String("job", name), slog.String("spec", spec))
	return nil
}

// Start runs the cron loop in its own goroutine.
func (scheduler *Scheduler) Start() {
	scheduler.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (scheduler *Scheduler) Stop(ctx context.Context) {
	done := scheduler.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		scheduler.logger.Warn("scheduler_stop_timeout")
	}
}
