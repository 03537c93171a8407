package summary

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// JobQueue is the broker queue summary jobs are published to.
const JobQueue = "summary_jobs"

// Processor executes a single job.
type Processor interface {
	Process(ctx context.Context, job Job) (Outcome, error)
}

// Dispatcher hands a pass's jobs to whatever executes them and records the
// outcome of each in report.
type Dispatcher interface {
	Dispatch(ctx context.Context, jobs []Job, report *Report)
}

// InlineDispatcher runs jobs in this process, at most concurrency at a time.
// One job failing never stops the others.
type InlineDispatcher struct {
	processor   Processor
	concurrency int
}

// NewInlineDispatcher creates a new InlineDispatcher.
func NewInlineDispatcher(p Processor, concurrency int) *InlineDispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &InlineDispatcher{processor: p, concurrency: concurrency}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, jobs []Job, report *Report) {
	var g errgroup.Group
	g.SetLimit(d.concurrency)

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				report.record(job.UserID, OutcomeFailed, err)
				return nil
			}
			outcome, err := d.processor.Process(ctx, job)
			if err != nil {
				outcome = OutcomeFailed
			}
			report.record(job.UserID, outcome, err)
			return nil
		})
	}
	_ = g.Wait()
}

// JobPublisher publishes a JSON document to a named queue.
// *rabbitmq.Client implements it.
type JobPublisher interface {
	PublishJSON(queue string, v interface{}) error
}

// QueueDispatcher publishes each job to JobQueue for the worker to execute.
type QueueDispatcher struct {
	publisher JobPublisher
}

// NewQueueDispatcher creates a new QueueDispatcher.
func NewQueueDispatcher(p JobPublisher) *QueueDispatcher {
	return &QueueDispatcher{publisher: p}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, jobs []Job, report *Report) {
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			report.record(job.UserID, OutcomeFailed, err)
			continue
		}
		if err := d.publisher.PublishJSON(JobQueue, job); err != nil {
			report.record(job.UserID, OutcomeFailed, fmt.Errorf("publish job: %w", err))
			continue
		}
		report.record(job.UserID, OutcomeQueued, nil)
	}
}
