// Package scheduler arms the daily question trigger and the optional vote
// retention job on a robfig/cron scheduler running in a fixed time zone.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/wyr-bot/internal/domain"
)

// RetentionSpec runs the retention job daily at 03:30.
const RetentionSpec = "30 3 * * *"

// ErrNotStarted is returned by Reschedule before Start succeeded.
var ErrNotStarted = errors.New("scheduler not started")

// ScheduleReader returns the stored daily schedule. *services.ScheduleService
// satisfies it.
type ScheduleReader interface {
	Current(ctx context.Context) (*domain.Schedule, error)
}

// Trigger runs Fire at the stored daily time.
type Trigger struct {
	Fire func(ctx context.Context)

	c *cron.Cron

	mu      sync.Mutex
	ctx     context.Context
	entry   cron.EntryID
	expr    string
	started bool
}

// New returns a Trigger interpreting expressions in loc (UTC when nil).
func New(loc *time.Location, fire func(ctx context.Context)) *Trigger {
	if loc == nil {
		loc = time.UTC
	}
	logger := cron.PrintfLogger(&log.Logger)
	return &Trigger{
		Fire: fire,
		c: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger)),
		),
	}
}

// Start reads the stored schedule, validates it and arms the daily job.
// An invalid expression is returned as domain.ErrInvalidSchedule and nothing
// is armed.
func (t *Trigger) Start(ctx context.Context, schedules ScheduleReader) error {
	s, err := schedules.Current(ctx)
	if err != nil {
		return fmt.Errorf("read schedule: %w", err)
	}
	if err := domain.ValidateSchedule(s.Time); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.ctx = ctx
	id, err := t.c.AddFunc(s.Time, t.fire)
	if err != nil {
		return fmt.Errorf("arm %q: %w", s.Time, err)
	}
	t.entry, t.expr, t.started = id, s.Time, true
	t.c.Start()
	log.Info().Str("schedule", s.Time).Time("next", t.c.Entry(id).Next).Msg("daily trigger armed")
	return nil
}

func (t *Trigger) fire() {
	t.mu.Lock()
	ctx := t.ctx
	t.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}
	t.Fire(ctx)
}

// Reschedule replaces the daily job with expr.
func (t *Trigger) Reschedule(expr string) error {
	if err := domain.ValidateSchedule(expr); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return ErrNotStarted
	}
	if expr == t.expr {
		return nil
	}
	id, err := t.c.AddFunc(expr, t.fire)
	if err != nil {
		return fmt.Errorf("arm %q: %w", expr, err)
	}
	t.c.Remove(t.entry)
	t.entry, t.expr = id, expr
	log.Info().Str("schedule", expr).Time("next", t.c.Entry(id).Next).Msg("daily trigger re-armed")
	return nil
}

// AddRetention schedules fn daily at RetentionSpec. It must be called before
// the scheduler stops; it does not start the scheduler on its own.
func (t *Trigger) AddRetention(fn func(ctx context.Context)) error {
	_, err := t.c.AddFunc(RetentionSpec, func() {
		t.mu.Lock()
		ctx := t.ctx
		t.mu.Unlock()
		if ctx == nil || ctx.Err() != nil {
			return
		}
		fn(ctx)
	})
	return err
}

// Expr returns the armed daily expression, or "" before Start.
func (t *Trigger) Expr() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expr
}

// Entries returns the number of armed jobs.
func (t *Trigger) Entries() int { return len(t.c.Entries()) }

// Stop halts the scheduler and waits for running jobs to return.
func (t *Trigger) Stop() {
	<-t.c.Stop().Done()
}
