// Package scheduler triggers recurring pipeline runs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"NewsRadar/internal/ports"
)

// CronScheduler runs the job on a cron expression. SkipIfStillRunning keeps
// runs single-flight: a slow run suppresses the next trigger instead of
// overlapping it.
type CronScheduler struct {
	spec   string
	cron   *cron.Cron
	logger *slog.Logger
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler for the given cron spec and timezone.
func NewCronScheduler(spec string, location *time.Location, logger *slog.Logger) *CronScheduler {
	if location == nil {
		location = time.UTC
	}
	cronLogger := &slogCronLogger{logger: logger}
	c := cron.New(
		cron.WithLocation(location),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
	)
	return &CronScheduler{spec: spec, cron: c, logger: logger}
}

// Start registers the job and begins the cron loop.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	_, err := c.cron.AddFunc(c.spec, func() {
		job(time.Now())
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", c.spec, err)
	}

	c.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (c *CronScheduler) Stop(ctx context.Context) error {
	done := c.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// slogCronLogger adapts slog to the cron.Logger interface.
type slogCronLogger struct {
	logger *slog.Logger
}

func (l *slogCronLogger) Info(msg string, keysAndValues ...interface{}) {
	if l.logger != nil {
		l.logger.Info(msg, keysAndValues...)
	}
}

func (l *slogCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	if l.logger != nil {
		l.logger.Error(msg, append(keysAndValues, "error", err)...)
	}
}
