package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"thoughtforest/internal/models"
	"thoughtforest/internal/summary"

	"github.com/rs/zerolog/log"
)

// State is where a tick of the weekly trigger ended up.
type State string

const (
	StateIdle  State = "idle"
	StateFired State = "fired"
)

// WeekRunner runs one aggregation pass. *summary.Service implements it.
type WeekRunner interface {
	RunWeek(ctx context.Context, ref models.Date) (*summary.Report, error)
}

// Result describes one tick.
type Result struct {
	State  State
	Date   models.Date
	Report *summary.Report
	Err    error
}

// String renders the status line for the tick.
func (r Result) String() string {
	switch {
	case r.State == StateIdle:
		return fmt.Sprintf("No weekly summaries today: %s is a %s, passes run on Mondays", r.Date, r.Date.Weekday())
	case r.Err != nil:
		return fmt.Sprintf("Weekly summary pass for %s failed: %v", r.Date, r.Err)
	default:
		return r.Report.String()
	}
}

// Trigger fires an aggregation pass when ticked on a Monday and stays idle
// on any other day. Nothing is persisted between ticks; repeating a tick on
// the same Monday converges through the summary upsert. Ticks are serialized.
type Trigger struct {
	runner WeekRunner
	now    func() time.Time
	mu     sync.Mutex
}

// NewTrigger creates a new Trigger that reads the current time from the UTC clock.
func NewTrigger(runner WeekRunner) *Trigger {
	return &Trigger{runner: runner, now: func() time.Time { return time.Now().UTC() }}
}

// Tick checks today's date and fires if it is a Monday.
func (t *Trigger) Tick(ctx context.Context) Result {
	return t.TickAt(ctx, t.now(), false)
}

// TickAt behaves like Tick for the given instant. force fires regardless of weekday.
func (t *Trigger) TickAt(ctx context.Context, at time.Time, force bool) Result {
	date := models.DateOf(at)
	if !force && !summary.IsWeekStart(at) {
		log.Info().Str("date", date.String()).Str("weekday", at.Weekday().String()).Msg("weekly trigger idle")
		return Result{State: StateIdle, Date: date}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	report, err := t.runner.RunWeek(ctx, date)
	if err != nil {
		log.Error().Err(err).Str("date", date.String()).Msg("weekly trigger pass failed")
	}
	return Result{State: StateFired, Date: date, Report: report, Err: err}
}
