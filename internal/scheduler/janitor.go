// Package scheduler runs periodic housekeeping: idle review sessions and old
// diagnostic screenshots are removed on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"go-vacancy-swipe/internal/logging"
)

// SessionPruner drops reviews idle longer than maxIdle.
type SessionPruner interface {
	Prune(maxIdle time.Duration) int
}

// ScreenshotPruner removes captures older than maxAge.
type ScreenshotPruner interface {
	Prune(maxAge time.Duration) (int, error)
}

type Options struct {
	Spec             string // cron spec, e.g. "@every 30m"
	SessionMaxIdle   time.Duration
	ScreenshotMaxAge time.Duration
}

type Janitor struct {
	cron        *cron.Cron
	sessions    SessionPruner
	screenshots ScreenshotPruner
	opts        Options
	log         *logging.Logger
}

// New builds a janitor. Either pruner may be nil.
func New(sessions SessionPruner, screenshots ScreenshotPruner, opts Options, log *logging.Logger) *Janitor {
	if opts.Spec == "" {
		opts.Spec = "@every 30m"
	}
	return &Janitor{
		cron:        cron.New(),
		sessions:    sessions,
		screenshots: screenshots,
		opts:        opts,
		log:         log,
	}
}

func (j *Janitor) Start(ctx context.Context) error {
	if _, err := j.cron.AddFunc(j.opts.Spec, func() { j.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	j.cron.Start()
	j.log.Info("🧹 Janitor started", "spec", j.opts.Spec)
	return nil
}

// Stop waits for a running cleanup to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
	j.log.Info("🧹 Janitor stopped")
}

func (j *Janitor) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if j.sessions != nil && j.opts.SessionMaxIdle > 0 {
		if n := j.sessions.Prune(j.opts.SessionMaxIdle); n > 0 {
			j.log.Info("🧹 Pruned idle reviews", "count", n)
		}
	}
	if j.screenshots != nil && j.opts.ScreenshotMaxAge > 0 {
		n, err := j.screenshots.Prune(j.opts.ScreenshotMaxAge)
		if err != nil {
			j.log.Warn("⚠️ Screenshot cleanup failed", "err", err)
		} else if n > 0 {
			j.log.Info("🧹 Pruned old screenshots", "count", n)
		}
	}
}
