package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"thoughtforest/internal/mail"
	"thoughtforest/internal/models"
	"thoughtforest/internal/summary"
	"thoughtforest/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) Process(ctx context.Context, job summary.Job) (summary.Outcome, error) {
	args := m.Called(ctx, job)
	return args.Get(0).(summary.Outcome), args.Error(1)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (r *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

// fakeConsumer hands each queue's bodies to the handler once, then blocks
// until ctx is done.
type fakeConsumer struct {
	mu      sync.Mutex
	bodies  map[string][][]byte
	results map[string][]error
}

func (f *fakeConsumer) Consume(ctx context.Context, queue string, handler rabbitmq.Handler) error {
	f.mu.Lock()
	bodies := f.bodies[queue]
	f.bodies[queue] = nil
	f.mu.Unlock()

	for _, b := range bodies {
		err := handler(ctx, b)
		f.mu.Lock()
		f.results[queue] = append(f.results[queue], err)
		f.mu.Unlock()
	}
	<-ctx.Done()
	return ctx.Err()
}

var monday = models.NewDate(2026, time.October, 12)

func TestHandleSummaryJob(t *testing.T) {
	proc := new(MockProcessor)
	w := New(&fakeConsumer{}, proc, &recordingMailer{}, 1)

	job := summary.Job{UserID: "u1", WeekStart: monday, Text: "hello"}
	body, err := json.Marshal(job)
	require.NoError(t, err)

	proc.On("Process", mock.Anything, job).Return(summary.OutcomeSummarized, nil).Once()
	assert.NoError(t, w.HandleSummaryJob(context.Background(), body))

	proc.On("Process", mock.Anything, job).Return(summary.OutcomeFailed, errors.New("provider down")).Once()
	err = w.HandleSummaryJob(context.Background(), body)
	assert.ErrorContains(t, err, "provider down")

	assert.NoError(t, w.HandleSummaryJob(context.Background(), []byte("{not json")))
	proc.AssertExpectations(t)
}

func TestRun_ConsumesBothQueues(t *testing.T) {
	proc := new(MockProcessor)
	proc.On("Process", mock.Anything, mock.Anything).Return(summary.OutcomeSummarized, nil)

	jobBody, err := json.Marshal(summary.Job{UserID: "u1", WeekStart: monday, Text: "hello"})
	require.NoError(t, err)
	mailBody, err := json.Marshal(mail.Welcome("a@example.com", "Ann", "http://x"))
	require.NoError(t, err)

	consumer := &fakeConsumer{
		bodies: map[string][][]byte{
			summary.JobQueue: {jobBody},
			mail.Queue:       {mailBody},
		},
		results: map[string][]error{},
	}
	mailer := &recordingMailer{}
	w := New(consumer, proc, mailer, 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		consumer.mu.Lock()
		defer consumer.mu.Unlock()
		return len(consumer.results[summary.JobQueue]) == 1 && len(consumer.results[mail.Queue]) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, mail.KindWelcome, mailer.sent[0].Kind)
	proc.AssertNumberOfCalls(t, "Process", 1)
}
