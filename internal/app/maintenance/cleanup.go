// Package maintenance schedules background housekeeping for the notification
// engine, currently the retention sweep over old notifications.
package maintenance

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/pulsefeed/backend/internal/notifications"
	"github.com/pulsefeed/backend/pkg/logger"
)

const defaultCleanupSpec = "@daily"

// Cleaner coordinates the periodic notification retention sweep.
type Cleaner struct {
	engine *notifications.Service
	cron   *cron.Cron
	log    *zap.Logger

	cleanupSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithCleanupSchedule overrides the cron specification for the retention sweep.
func WithCleanupSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cleanupSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil engine results in a no-op cleaner.
func NewCleaner(engine *notifications.Service, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		engine:          engine,
		cleanupSchedule: defaultCleanupSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return cleaner
}

// Start registers the sweep with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.engine == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.cleanupSchedule, func() {
		ctx := context.Background()
		if _, err := c.engine.CleanupOld(ctx); err != nil {
			c.log.Warn("notification cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes the sweep immediately. Used by tests and graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if c.engine != nil {
		if _, err := c.engine.CleanupOld(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
