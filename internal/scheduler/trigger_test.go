package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"thoughtforest/internal/models"
	"thoughtforest/internal/summary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWeekRunner struct {
	mock.Mock
}

func (m *MockWeekRunner) RunWeek(ctx context.Context, ref models.Date) (*summary.Report, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*summary.Report), args.Error(1)
}

var (
	monday  = time.Date(2026, time.October, 12, 6, 0, 0, 0, time.UTC)
	tuesday = monday.Add(24 * time.Hour)
)

func TestTrigger_IdleOnOtherDays(t *testing.T) {
	runner := new(MockWeekRunner)
	trig := NewTrigger(runner)

	for day := 1; day < 7; day++ {
		res := trig.TickAt(context.Background(), monday.AddDate(0, 0, day), false)
		assert.Equal(t, StateIdle, res.State)
	}
	runner.AssertNotCalled(t, "RunWeek", mock.Anything, mock.Anything)

	res := trig.TickAt(context.Background(), tuesday, false)
	assert.Equal(t, "No weekly summaries today: 2026-10-13 is a Tuesday, passes run on Mondays", res.String())
}

func TestTrigger_FiresOnMonday(t *testing.T) {
	runner := new(MockWeekRunner)
	report := &summary.Report{WeekStart: models.DateOf(monday), Users: 1, Summarized: 1}
	runner.On("RunWeek", mock.Anything, models.DateOf(monday)).Return(report, nil).Once()

	trig := NewTrigger(runner)
	res := trig.TickAt(context.Background(), monday, false)

	assert.Equal(t, StateFired, res.State)
	assert.Same(t, report, res.Report)
	assert.Contains(t, res.String(), "1 summarized")
	runner.AssertExpectations(t)
}

func TestTrigger_ForceFiresAnyDay(t *testing.T) {
	runner := new(MockWeekRunner)
	runner.On("RunWeek", mock.Anything, models.DateOf(tuesday)).Return(&summary.Report{}, nil).Once()

	res := NewTrigger(runner).TickAt(context.Background(), tuesday, true)
	assert.Equal(t, StateFired, res.State)
	runner.AssertExpectations(t)
}

func TestTrigger_ReportsPassError(t *testing.T) {
	runner := new(MockWeekRunner)
	runner.On("RunWeek", mock.Anything, mock.Anything).Return(&summary.Report{}, errors.New("db gone"))

	res := NewTrigger(runner).TickAt(context.Background(), monday, false)
	assert.Equal(t, StateFired, res.State)
	assert.Contains(t, res.String(), "failed: db gone")
}

func TestTrigger_TickUsesClock(t *testing.T) {
	runner := new(MockWeekRunner)
	trig := NewTrigger(runner)
	trig.now = func() time.Time { return tuesday }

	assert.Equal(t, StateIdle, trig.Tick(context.Background()).State)
}

func TestScheduler(t *testing.T) {
	_, err := New("not a schedule", NewTrigger(new(MockWeekRunner)))
	assert.Error(t, err)

	s, err := New("0 6 * * *", NewTrigger(new(MockWeekRunner)))
	require.NoError(t, err)
	s.Start(context.Background())
	defer s.Stop()

	next := s.Next()
	assert.Equal(t, 6, next.Hour())
	assert.Equal(t, 0, next.Minute())
}
