package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler ticks a Trigger on a cron schedule evaluated in UTC.
type Scheduler struct {
	cron    *cron.Cron
	trigger *Trigger
	spec    string

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Scheduler. spec is a standard five-field cron expression.
func New(spec string, trigger *Trigger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		trigger: trigger,
		spec:    spec,
		ctx:     context.Background(),
		cancel:  func() {},
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("failed to set up cron schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	log.Info().Str("schedule", s.spec).Msg("cron triggered weekly summaries")
	res := s.trigger.Tick(s.ctx)
	log.Info().Str("state", string(res.State)).Msg(res.String())
}

// Start runs the schedule in the background until Stop or until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	log.Info().Str("schedule", s.spec).Msg("weekly summary scheduler started")
}

// Stop cancels a running pass and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

// Next returns the next time the schedule fires.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
