package llm

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"thoughtforest/internal/config"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedGateway struct {
	mu      sync.Mutex
	calls   int
	results []error
}

func (g *scriptedGateway) Summarize(_ context.Context, _ string, _ int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.calls
	g.calls++
	if i < len(g.results) && g.results[i] != nil {
		return "", g.results[i]
	}
	return "- done", nil
}

type countingObserver struct {
	results map[string]int
}

func (o *countingObserver) ObserveGatewayCall(result string, _ time.Duration) {
	o.results[result]++
}

func testSummaryConfig() config.SummaryConfig {
	return config.SummaryConfig{
		MaxRetries:      3,
		RetryBaseDelay:  time.Millisecond,
		BreakerFailures: 5,
		BreakerCooldown: time.Minute,
	}
}

func TestResilient_RetriesTransientErrors(t *testing.T) {
	next := &scriptedGateway{results: []error{
		&APIError{StatusCode: http.StatusServiceUnavailable},
		&APIError{StatusCode: http.StatusTooManyRequests},
	}}
	obs := &countingObserver{results: map[string]int{}}
	r := NewResilient(next, testSummaryConfig()).WithObserver(obs)

	out, err := r.Summarize(context.Background(), "text", 1)
	require.NoError(t, err)
	assert.Equal(t, "- done", out)
	assert.Equal(t, 3, next.calls)
	assert.Equal(t, 2, obs.results["error"])
	assert.Equal(t, 1, obs.results["ok"])
}

func TestResilient_DoesNotRetryPermanentErrors(t *testing.T) {
	next := &scriptedGateway{results: []error{&APIError{StatusCode: http.StatusBadRequest, Message: "too long"}}}
	r := NewResilient(next, testSummaryConfig())

	_, err := r.Summarize(context.Background(), "text", 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, 1, next.calls)
}

func TestResilient_GivesUpAfterMaxRetries(t *testing.T) {
	fail := errors.New("connection reset")
	next := &scriptedGateway{results: []error{fail, fail, fail, fail, fail}}
	r := NewResilient(next, testSummaryConfig())

	_, err := r.Summarize(context.Background(), "text", 1)
	assert.ErrorIs(t, err, fail)
	assert.Equal(t, 4, next.calls)
}

func TestResilient_BreakerOpensAndFailsFast(t *testing.T) {
	fail := errors.New("connection refused")
	cfg := testSummaryConfig()
	cfg.MaxRetries = 0
	cfg.BreakerFailures = 2

	results := make([]error, 10)
	for i := range results {
		results[i] = fail
	}
	next := &scriptedGateway{results: results}
	r := NewResilient(next, cfg)

	for i := 0; i < 2; i++ {
		_, err := r.Summarize(context.Background(), "text", 1)
		assert.ErrorIs(t, err, fail)
	}
	assert.Equal(t, gobreaker.StateOpen, r.State())

	_, err := r.Summarize(context.Background(), "text", 1)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, next.calls)
}

func TestResilient_StopsWhenContextIsDone(t *testing.T) {
	next := &scriptedGateway{results: []error{errors.New("timeout"), errors.New("timeout")}}
	cfg := testSummaryConfig()
	cfg.RetryBaseDelay = time.Hour
	r := NewResilient(next, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.Summarize(ctx, "text", 1)
	require.Error(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestResilient_RejectedInputsKeepBreakerClosed(t *testing.T) {
	cfg := testSummaryConfig()
	cfg.MaxRetries = 0
	cfg.BreakerFailures = 2

	next := &scriptedGateway{results: []error{
		&APIError{StatusCode: http.StatusBadRequest, Type: "invalid_request_error", Message: "context_length_exceeded"},
		&APIError{StatusCode: http.StatusBadRequest, Type: "invalid_request_error", Message: "context_length_exceeded"},
		ErrEmptyCompletion,
		&APIError{StatusCode: http.StatusUnprocessableEntity},
	}}
	r := NewResilient(next, cfg)

	for i := 0; i < 4; i++ {
		_, err := r.Summarize(context.Background(), "text", 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, gobreaker.StateClosed, r.State())
	assert.Equal(t, 4, next.calls)

	out, err := r.Summarize(context.Background(), "text", 1)
	require.NoError(t, err)
	assert.Equal(t, "- done", out)
}

func TestResilient_EmptyCompletionIsNotRetried(t *testing.T) {
	next := &scriptedGateway{results: []error{ErrEmptyCompletion}}
	r := NewResilient(next, testSummaryConfig())

	_, err := r.Summarize(context.Background(), "text", 1)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
	assert.Equal(t, 1, next.calls)
}
