package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"thoughtforest/internal/models"
	"thoughtforest/internal/repositories"

	"github.com/rs/zerolog/log"
)

// Gateway turns journal text into a summary of the requested number of
// bullet points.
type Gateway interface {
	Summarize(ctx context.Context, text string, bullets int) (string, error)
}

// Recorder receives per-job measurements. *metrics.Metrics implements it.
type Recorder interface {
	ObserveSummaryJob(outcome string, took time.Duration)
}

// Job is one user's week of journal text.
type Job struct {
	UserID    string      `json:"user_id"`
	WeekStart models.Date `json:"week_start"`
	Text      string      `json:"text"`
}

// Aggregator builds per-user jobs for a week and executes them.
type Aggregator struct {
	transcriptions repositories.TranscriptionRepository
	summaries      repositories.SummaryRepository
	gateway        Gateway
	jobTimeout     time.Duration
	recorder       Recorder
}

// NewAggregator creates a new Aggregator. jobTimeout bounds each user's
// gateway call and upsert; zero means no bound beyond the caller's context.
func NewAggregator(transcriptions repositories.TranscriptionRepository, summaries repositories.SummaryRepository, gateway Gateway, jobTimeout time.Duration) *Aggregator {
	return &Aggregator{
		transcriptions: transcriptions,
		summaries:      summaries,
		gateway:        gateway,
		jobTimeout:     jobTimeout,
	}
}

// WithRecorder attaches a metrics recorder.
func (a *Aggregator) WithRecorder(r Recorder) *Aggregator {
	a.recorder = r
	return a
}

// Plan collects, per user, the non-null transcripts dated in the week that
// contains ref, in date order, joined by single spaces. Users without any
// text in the window get no job.
func (a *Aggregator) Plan(ctx context.Context, ref models.Date) ([]Job, error) {
	start, end := WeekWindow(ref)
	rows, err := a.transcriptions.ListWithTextBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcriptions for week of %s: %w", start, err)
	}

	var jobs []Job
	var parts []string
	flush := func(userID string) {
		if len(parts) > 0 {
			jobs = append(jobs, Job{UserID: userID, WeekStart: start, Text: strings.Join(parts, " ")})
		}
		parts = parts[:0]
	}

	current := ""
	for _, t := range rows {
		if t.UserID != current {
			flush(current)
			current = t.UserID
		}
		if t.Transcript != nil {
			parts = append(parts, *t.Transcript)
		}
	}
	flush(current)
	return jobs, nil
}

// Process summarizes one job and upserts the result keyed on
// (user, week start). Text that is blank is skipped without calling the
// gateway. A failed gateway call leaves the stored summary untouched.
func (a *Aggregator) Process(ctx context.Context, job Job) (outcome Outcome, err error) {
	started := time.Now()
	bullets := BulletCount(job.Text)

	defer func() {
		if a.recorder != nil {
			a.recorder.ObserveSummaryJob(string(outcome), time.Since(started))
		}
		ev := log.Info()
		if err != nil {
			ev = log.Error().Err(err)
		}
		ev.Str("user_id", job.UserID).
			Str("week_start", job.WeekStart.String()).
			Int("bullets", bullets).
			Str("outcome", string(outcome)).
			Dur("took", time.Since(started)).
			Msg("weekly summary job")
	}()

	if bullets == 0 || strings.TrimSpace(job.Text) == "" {
		return OutcomeSkipped, nil
	}
	if job.UserID == "" {
		return OutcomeFailed, errors.New("job has no user")
	}

	if a.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.jobTimeout)
		defer cancel()
	}

	text, err := a.gateway.Summarize(ctx, job.Text, bullets)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("summarize: %w", err)
	}

	if _, _, err := a.summaries.Upsert(ctx, job.UserID, job.WeekStart, models.MoodNeutral, text); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeSummarized, nil
}
