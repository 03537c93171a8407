package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"thoughtforest/internal/mail"
	"thoughtforest/internal/summary"
	"thoughtforest/pkg/rabbitmq"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Consumer delivers queued messages to a handler. *rabbitmq.Client implements it.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler rabbitmq.Handler) error
}

// Worker executes summary jobs and delivers mail taken from the broker.
type Worker struct {
	consumer    Consumer
	processor   summary.Processor
	mailer      mail.Mailer
	concurrency int
}

// New creates a new Worker. concurrency summary jobs run at once.
func New(consumer Consumer, processor summary.Processor, mailer mail.Mailer, concurrency int) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		consumer:    consumer,
		processor:   processor,
		mailer:      mailer,
		concurrency: concurrency,
	}
}

// Run consumes until ctx is done or a consumer fails.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < w.concurrency; i++ {
		g.Go(func() error {
			return w.consumer.Consume(ctx, summary.JobQueue, w.HandleSummaryJob)
		})
	}
	g.Go(func() error {
		return w.consumer.Consume(ctx, mail.Queue, mail.Deliver(w.mailer))
	})

	log.Info().Int("summary_consumers", w.concurrency).Msg("worker started")
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// HandleSummaryJob decodes one job and processes it. A failed job is
// returned as an error so the broker can redeliver it.
func (w *Worker) HandleSummaryJob(ctx context.Context, body []byte) error {
	var job summary.Job
	if err := json.Unmarshal(body, &job); err != nil {
		// redelivery cannot fix a malformed body
		log.Error().Err(err).Msg("dropping malformed summary job")
		return nil
	}

	outcome, err := w.processor.Process(ctx, job)
	if err != nil {
		return fmt.Errorf("summary job for user %s: %w", job.UserID, err)
	}
	log.Debug().Str("user_id", job.UserID).Str("outcome", string(outcome)).Msg("summary job done")
	return nil
}
