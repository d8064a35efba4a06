// Package autosync pushes the library to WebDAV on a schedule: periodically
// (hourly/daily), shortly after changes (on_change) or once at start
// (on_open). Sync is best effort; failures are logged and retried at the
// next trigger.
package autosync

import (
	"context"
	"time"

	"github.com/nikbrunner/bmai/internal/settings"
	"github.com/nikbrunner/bmai/internal/webdav"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPollInterval = time.Minute
	DefaultDebounce     = 5 * time.Second
)

// Library is the part of the library the scheduler drives.
type Library interface {
	Settings() settings.Settings
	SaveToWebDAV(ctx context.Context) webdav.Result
	Subscribe() (<-chan struct{}, func())
}

// Scheduler runs the auto-sync triggers until its context ends.
type Scheduler struct {
	lib      Library
	log      logrus.FieldLogger
	poll     time.Duration
	debounce time.Duration
	now      func() time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithPollInterval sets how often the periodic check runs.
func WithPollInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.poll = d }
}

// WithDebounce sets the quiet period after a change before syncing.
func WithDebounce(d time.Duration) Option {
	return func(s *Scheduler) { s.debounce = d }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New creates a Scheduler for lib.
func New(lib Library, log logrus.FieldLogger, opts ...Option) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Scheduler{
		lib:      lib,
		log:      log,
		poll:     DefaultPollInterval,
		debounce: DefaultDebounce,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Due reports whether a periodic sync is due for cfg at now.
func Due(cfg settings.Sync, now time.Time) bool {
	if !cfg.AutoSync {
		return false
	}
	elapsed := now.UnixMilli() - cfg.LastSyncTime
	switch cfg.Interval {
	case settings.IntervalHourly:
		return elapsed > time.Hour.Milliseconds()
	case settings.IntervalDaily:
		return elapsed > (24 * time.Hour).Milliseconds()
	}
	return false
}

// Run blocks until ctx is done. Settings are re-read at every trigger, so
// changes take effect without a restart.
func (s *Scheduler) Run(ctx context.Context) error {
	changes, unsubscribe := s.lib.Subscribe()
	defer unsubscribe()

	cfg := s.lib.Settings().WebDAVSync
	if cfg.AutoSync && cfg.Interval == settings.IntervalOnOpen {
		s.sync(ctx, "on_open")
	}
	s.checkPeriodic(ctx)

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	// Debounce timer; nil channel while idle.
	var debounce *time.Timer
	var fire <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			s.checkPeriodic(ctx)

		case <-changes:
			cfg := s.lib.Settings().WebDAVSync
			if !cfg.AutoSync || cfg.Interval != settings.IntervalOnChange {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(s.debounce)
			} else {
				debounce.Stop()
				debounce.Reset(s.debounce)
			}
			fire = debounce.C

		case <-fire:
			fire = nil
			s.sync(ctx, "on_change")
		}
	}
}

func (s *Scheduler) checkPeriodic(ctx context.Context) {
	if Due(s.lib.Settings().WebDAVSync, s.now()) {
		s.sync(ctx, "interval")
	}
}

func (s *Scheduler) sync(ctx context.Context, trigger string) {
	res := s.lib.SaveToWebDAV(ctx)
	entry := s.log.WithField("trigger", trigger)
	if !res.Success {
		entry.WithField("message", res.Message).Warn("auto-sync failed")
		return
	}
	entry.Info("auto-sync done")
}
