package llm

import (
	"context"
	"errors"
	"time"

	"thoughtforest/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Observer receives the outcome and latency of every provider call.
type Observer interface {
	ObserveGatewayCall(result string, took time.Duration)
}

// Resilient wraps a Gateway with bounded exponential-backoff retries and a
// circuit breaker shared by all callers. Permanent provider errors are neither
// retried nor counted by the breaker; while the breaker is open calls fail
// fast with ErrUnavailable.
type Resilient struct {
	next       Gateway
	breaker    *gobreaker.CircuitBreaker
	maxRetries int
	baseDelay  time.Duration
	observer   Observer
}

// NewResilient creates a new Resilient gateway around next.
func NewResilient(next Gateway, cfg config.SummaryConfig) *Resilient {
	failures := cfg.BreakerFailures
	if failures < 1 {
		failures = 1
	}
	settings := gobreaker.Settings{
		Name:        "summarizer",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failures)
		},
		// only retryable failures count against the breaker
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || !IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}

	return &Resilient{
		next:       next,
		breaker:    gobreaker.NewCircuitBreaker(settings),
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.RetryBaseDelay,
	}
}

// WithObserver attaches a metrics observer.
func (r *Resilient) WithObserver(o Observer) *Resilient {
	r.observer = o
	return r
}

// State returns the breaker state, for health reporting.
func (r *Resilient) State() gobreaker.State {
	return r.breaker.State()
}

func (r *Resilient) Summarize(ctx context.Context, text string, bullets int) (string, error) {
	var result string

	op := func() error {
		started := time.Now()
		out, err := r.breaker.Execute(func() (interface{}, error) {
			return r.next.Summarize(ctx, text, bullets)
		})
		r.observe(err, time.Since(started))

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(ErrUnavailable)
		}
		if err != nil {
			if !IsRetryable(err) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		result = out.(string)
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Msg("summarization attempt failed")
	}

	if err := backoff.RetryNotify(op, r.policy(ctx), notify); err != nil {
		return "", err
	}
	return result, nil
}

func (r *Resilient) policy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if r.baseDelay > 0 {
		exp.InitialInterval = r.baseDelay
	}
	exp.Multiplier = 2
	exp.MaxElapsedTime = 0

	retries := r.maxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

func (r *Resilient) observe(err error, took time.Duration) {
	if r.observer == nil {
		return
	}
	result := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		result = "rejected"
	case err != nil:
		result = "error"
	}
	r.observer.ObserveGatewayCall(result, took)
}
