// Package background runs the process's only long-lived goroutine: a
// gocron schedule that prunes placement sessions abandoned mid-test and
// refreshes the in-process catalog cache, mirroring the teacher's
// internal/scheduler.Scheduler (gocron.NewScheduler(time.UTC), StartAsync
// /Stop) generalized from Telegram reminders to this domain's upkeep
// tasks.
package background

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/example/vocabadapt/internal/placement"
)

// Refresher is satisfied by internal/catalogcache.Cache.
type Refresher interface {
	Clear()
}

// Sweep owns the background gocron schedule.
type Sweep struct {
	scheduler    *gocron.Scheduler
	sessions     *placement.Store
	cache        Refresher
	interval     time.Duration
	abandonAfter time.Duration
	logger       *zap.Logger
}

// New builds a Sweep that runs every interval, pruning placement sessions
// idle longer than abandonAfter and clearing cache on each tick.
func New(sessions *placement.Store, cache Refresher, interval, abandonAfter time.Duration, logger *zap.Logger) *Sweep {
	return &Sweep{
		scheduler:    gocron.NewScheduler(time.UTC),
		sessions:     sessions,
		cache:        cache,
		interval:     interval,
		abandonAfter: abandonAfter,
		logger:       logger,
	}
}

// Start schedules the sweep at the configured interval and returns
// immediately; the schedule runs on gocron's own goroutine until Stop.
func (sw *Sweep) Start() {
	_, _ = sw.scheduler.Every(sw.interval).Do(sw.tick)
	sw.scheduler.StartAsync()
}

func (sw *Sweep) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-sw.abandonAfter)
	n, err := sw.sessions.PruneAbandoned(ctx, cutoff)
	if err != nil {
		sw.logger.Error("prune abandoned placement sessions failed", zap.Error(err))
	} else if n > 0 {
		sw.logger.Info("pruned abandoned placement sessions", zap.Int64("count", n))
	}

	if sw.cache != nil {
		sw.cache.Clear()
	}
}

// Stop halts the schedule.
func (sw *Sweep) Stop() {
	sw.scheduler.Stop()
}
