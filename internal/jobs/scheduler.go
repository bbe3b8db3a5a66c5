// Package jobs runs the nightly taste learning and full recompute.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/gdugdh24/speeddate-backend/internal/config"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/logger"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/taste"
)

const (
	lockKey    = "speeddate:jobs:nightly:lock"
	doneKeyFmt = "speeddate:jobs:nightly:done:"
	doneTTL    = 48 * time.Hour
)

type Learner interface {
	Run(ctx context.Context) (taste.Stats, error)
}

type Recalculator interface {
	RecalculateAll(ctx context.Context) (int, error)
}

// Report summarises one nightly run.
type Report struct {
	Taste    taste.Stats   `json:"taste"`
	Pairs    int           `json:"pairs"`
	Duration time.Duration `json:"duration"`
}

type Scheduler struct {
	learner Learner
	recalc  Recalculator
	locker  Locker
	cfg     config.JobsConfig
	log     *logger.Logger
	now     func() time.Time

	lastDay string
}

func NewScheduler(learner Learner, recalc Recalculator, locker Locker, cfg config.JobsConfig, log *logger.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Scheduler{
		learner: learner,
		recalc:  recalc,
		locker:  locker,
		cfg:     cfg,
		log:     log.With("component", "Scheduler"),
		now:     time.Now,
	}
}

// Start ticks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("Scheduler started", "run_hour_utc", s.cfg.RunHour, "interval", s.cfg.Interval.String())

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick starts the nightly run at most once per UTC day, from the configured
// hour on, on whichever replica takes the lock first.
func (s *Scheduler) tick(ctx context.Context) {
	now := s.now().UTC()
	if now.Hour() < s.cfg.RunHour {
		return
	}
	day := now.Format("2006-01-02")
	if s.lastDay == day {
		return
	}

	doneKey := doneKeyFmt + day
	done, err := s.locker.Done(ctx, doneKey)
	if err != nil {
		s.log.Warn("Failed to read run marker", "error", err)
		return
	}
	if done {
		s.lastDay = day
		return
	}

	release, acquired, err := s.locker.Acquire(ctx, lockKey, s.cfg.LockTTL)
	if err != nil {
		s.log.Warn("Failed to acquire nightly lock", "error", err)
		return
	}
	if !acquired {
		s.log.Debug("Nightly run held by another replica")
		return
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("Failed to release nightly lock", "error", err)
		}
	}()

	// another replica may have finished between the marker check and the lock
	if done, err := s.locker.Done(ctx, doneKey); err == nil && done {
		s.lastDay = day
		return
	}

	report, err := s.RunOnce(ctx)
	// a failed run is not retried on this replica until tomorrow
	s.lastDay = day
	if err != nil {
		s.log.Error("Nightly run failed", "error", err, "pairs", report.Pairs)
		return
	}
	if err := s.locker.MarkDone(ctx, doneKey, doneTTL); err != nil {
		s.log.Warn("Failed to write run marker", "error", err)
	}
}

// RunOnce learns taste vectors and then rebuilds the whole score cache, so
// the rebuild sees the fresh vectors. Learner errors do not stop the rebuild.
func (s *Scheduler) RunOnce(ctx context.Context) (Report, error) {
	start := time.Now()
	var report Report

	stats, learnErr := s.learner.Run(ctx)
	report.Taste = stats
	if learnErr != nil {
		s.log.Warn("Taste learning finished with errors", "error", learnErr)
	}

	pairs, recalcErr := s.recalc.RecalculateAll(ctx)
	report.Pairs = pairs
	report.Duration = time.Since(start)

	s.log.Info("Nightly run complete",
		"raters", stats.Raters,
		"vectors", stats.Written,
		"pairs", pairs,
		"duration", report.Duration.String(),
	)
	return report, errors.Join(learnErr, recalcErr)
}
