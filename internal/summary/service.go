package summary

import (
	"context"

	"thoughtforest/internal/models"

	"github.com/rs/zerolog/log"
)

// Service runs aggregation passes: plan the week's jobs, then dispatch them.
type Service struct {
	aggregator *Aggregator
	dispatcher Dispatcher
}

// NewService creates a new Service.
func NewService(a *Aggregator, d Dispatcher) *Service {
	return &Service{aggregator: a, dispatcher: d}
}

// RunWeek executes one aggregation pass for the week containing ref.
// The returned error is only set when the pass could not be planned; per-user
// failures are reported in the Report.
func (s *Service) RunWeek(ctx context.Context, ref models.Date) (*Report, error) {
	report := &Report{WeekStart: WeekStart(ref)}

	jobs, err := s.aggregator.Plan(ctx, ref)
	if err != nil {
		return report, err
	}
	report.Users = len(jobs)

	if len(jobs) > 0 {
		s.dispatcher.Dispatch(ctx, jobs, report)
	}
	report.sortFailures()

	ev := log.Info()
	if report.Failed > 0 {
		ev = log.Warn()
	}
	ev.Str("week_start", report.WeekStart.String()).
		Int("users", report.Users).
		Int("summarized", report.Summarized).
		Int("skipped", report.Skipped).
		Int("queued", report.Queued).
		Int("failed", report.Failed).
		Msg("aggregation pass finished")
	return report, nil
}
