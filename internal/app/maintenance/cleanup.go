package maintenance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/logger"
)

const defaultSchedule = "@every 15m"

// Purger removes entries that expired at or before now and reports how many
// were deleted.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// PurgeFunc adapts a function to the Purger interface.
type PurgeFunc func(ctx context.Context, now time.Time) (int64, error)

// PurgeExpired calls f.
func (f PurgeFunc) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return f(ctx, now)
}

// Cleaner runs the registered purgers on a cron schedule.
type Cleaner struct {
	purgers  map[string]Purger
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger
	schedule string
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

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSchedule overrides the cron schedule for the purge job.
func WithSchedule(schedule string) Option {
	return func(cleaner *Cleaner) {
		if schedule != "" {
			cleaner.schedule = schedule
		}
	}
}

// WithPurger registers p under name. Nil purgers are ignored.
func WithPurger(name string, p Purger) Option {
	return func(cleaner *Cleaner) {
		if p != nil {
			cleaner.purgers[name] = p
		}
	}
}

// NewCleaner constructs a Cleaner. Without any purger Start is a no-op.
func NewCleaner(opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		purgers:  make(map[string]Purger),
		now:      time.Now,
		schedule: defaultSchedule,
		log:      logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Enabled reports whether any purger is registered.
func (c *Cleaner) Enabled() bool {
	return len(c.purgers) > 0
}

// Start registers the purge job and launches the scheduler.
func (c *Cleaner) Start() error {
	if !c.Enabled() {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("cache purge failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("maintenance: schedule %q: %w", c.schedule, err)
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler. The returned context is done once any
// running job completes.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return c.cron.Stop()
}

// RunOnce executes every purger in name order. All purgers run even when one
// fails; the failures are combined.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	names := make([]string, 0, len(c.purgers))
	for name := range c.purgers {
		names = append(names, name)
	}
	sort.Strings(names)

	now := c.now()
	var errs error
	for _, name := range names {
		removed, err := c.purgers[name].PurgeExpired(ctx, now)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if removed > 0 {
			c.log.Info("purged expired entries", zap.String("store", name), zap.Int64("removed", removed))
		}
	}

	return errs
}
