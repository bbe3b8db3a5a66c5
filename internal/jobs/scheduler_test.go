package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gdugdh24/speeddate-backend/internal/config"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/logger"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/taste"
)

type memLocker struct {
	mu    sync.Mutex
	held  map[string]bool
	marks map[string]bool
}

func newMemLocker() *memLocker {
	return &memLocker{held: map[string]bool{}, marks: map[string]bool{}}
}

func (l *memLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, true, nil
}

func (l *memLocker) Done(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.marks[key], nil
}

func (l *memLocker) MarkDone(_ context.Context, key string, _ time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.marks[key] = true
	return nil
}

type calls struct {
	order []string
	err   error
}

type fakeLearner struct{ c *calls }

func (f fakeLearner) Run(context.Context) (taste.Stats, error) {
	f.c.order = append(f.c.order, "learn")
	return taste.Stats{Raters: 4, Written: 2}, nil
}

type fakeRecalc struct{ c *calls }

func (f fakeRecalc) RecalculateAll(context.Context) (int, error) {
	f.c.order = append(f.c.order, "recalc")
	return 12, f.c.err
}

func newTestScheduler(c *calls, locker Locker, at *time.Time) *Scheduler {
	s := NewScheduler(fakeLearner{c}, fakeRecalc{c}, locker, config.JobsConfig{RunHour: 3, LockTTL: time.Hour}, logger.NewNop())
	s.now = func() time.Time { return *at }
	return s
}

func TestTick_RunsOncePerDayAfterRunHour(t *testing.T) {
	c := &calls{}
	at := time.Date(2026, 3, 9, 2, 59, 0, 0, time.UTC)
	s := newTestScheduler(c, newMemLocker(), &at)

	s.tick(context.Background())
	if len(c.order) != 0 {
		t.Fatalf("ran before the configured hour: %v", c.order)
	}

	at = at.Add(time.Minute)
	s.tick(context.Background())
	at = at.Add(time.Hour)
	s.tick(context.Background())
	if len(c.order) != 2 || c.order[0] != "learn" || c.order[1] != "recalc" {
		t.Fatalf("expected one learn then recalc, got %v", c.order)
	}

	at = at.Add(24 * time.Hour)
	s.tick(context.Background())
	if len(c.order) != 4 {
		t.Fatalf("expected a second run the next day, got %v", c.order)
	}
}

func TestTick_OneReplicaPerDay(t *testing.T) {
	c := &calls{}
	locker := newMemLocker()
	at := time.Date(2026, 3, 9, 4, 0, 0, 0, time.UTC)
	first := newTestScheduler(c, locker, &at)
	second := newTestScheduler(c, locker, &at)

	first.tick(context.Background())
	second.tick(context.Background())
	if len(c.order) != 2 {
		t.Fatalf("expected a single run across replicas, got %v", c.order)
	}
	if second.lastDay != "2026-03-09" {
		t.Fatalf("second replica should record the day as done, got %q", second.lastDay)
	}
}

func TestTick_SkipsWhileLockHeld(t *testing.T) {
	c := &calls{}
	locker := newMemLocker()
	at := time.Date(2026, 3, 9, 4, 0, 0, 0, time.UTC)
	s := newTestScheduler(c, locker, &at)

	release, ok, _ := locker.Acquire(context.Background(), lockKey, time.Hour)
	if !ok {
		t.Fatalf("could not take the lock")
	}
	s.tick(context.Background())
	if len(c.order) != 0 {
		t.Fatalf("ran while another replica held the lock")
	}

	_ = release(context.Background())
	s.tick(context.Background())
	if len(c.order) != 2 {
		t.Fatalf("expected a run once the lock was free, got %v", c.order)
	}
}

func TestTick_FailedRunLeavesNoMarker(t *testing.T) {
	c := &calls{err: errors.New("store down")}
	locker := newMemLocker()
	at := time.Date(2026, 3, 9, 4, 0, 0, 0, time.UTC)
	s := newTestScheduler(c, locker, &at)

	s.tick(context.Background())
	if done, _ := locker.Done(context.Background(), doneKeyFmt+"2026-03-09"); done {
		t.Fatalf("failed run was marked done")
	}
	if locker.held[lockKey] {
		t.Fatalf("lock not released after a failed run")
	}

	// a fresh replica may retry the same day
	c.err = nil
	other := newTestScheduler(c, locker, &at)
	other.tick(context.Background())
	if len(c.order) != 4 {
		t.Fatalf("expected a retry on another replica, got %v", c.order)
	}
}

func TestRunOnce_ReportsCounts(t *testing.T) {
	c := &calls{}
	at := time.Now()
	s := newTestScheduler(c, newMemLocker(), &at)

	report, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if report.Pairs != 12 || report.Taste.Written != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
}
