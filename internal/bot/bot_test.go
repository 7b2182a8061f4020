package bot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/timerbot/internal/bot/tasks"
	"github.com/edgard/timerbot/internal/config"
	"github.com/edgard/timerbot/internal/logger"
)

type blockingListener struct {
	started atomic.Bool
}

func (l *blockingListener) Start(ctx context.Context) {
	l.started.Store(true)
	<-ctx.Done()
}

type returningListener struct{}

func (returningListener) Start(context.Context) {}

type fakeTimers struct {
	mu       sync.Mutex
	shutdown int
}

func (f *fakeTimers) Shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdown++
}

func (f *fakeTimers) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdown
}

func newCron(t *testing.T) gocron.Scheduler {
	t.Helper()
	cron, err := NewCron(logger.Discard())
	require.NoError(t, err)
	return cron
}

func jobNames(cron gocron.Scheduler) []string {
	var names []string
	for _, j := range cron.Jobs() {
		names = append(names, j.Name())
	}
	return names
}

func noopTask(context.Context) error { return nil }

func TestScheduler_StartSchedulesEnabledTasks(t *testing.T) {
	t.Parallel()

	cron := newCron(t)
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"delivery_cleanup": {Enabled: true, Schedule: "0 15 3 * * *"},
		"sql_maintenance":  {Enabled: false, Schedule: "0 45 3 * * 0"},
		"unknown":          {Enabled: true, Schedule: "0 0 * * * *"},
		"empty":            {Enabled: true},
		"bad_cron":         {Enabled: true, Schedule: "not a cron"},
	}}
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"delivery_cleanup": noopTask,
		"sql_maintenance":  noopTask,
		"empty":            noopTask,
		"bad_cron":         noopTask,
	}

	s := NewScheduler(logger.Discard(), cfg, taskMap, cron)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })

	assert.Equal(t, []string{"delivery_cleanup"}, jobNames(cron))
	assert.Error(t, s.Start(), "second start must fail")
}

func TestScheduler_StartWithoutTasks(t *testing.T) {
	t.Parallel()

	s := NewScheduler(logger.Discard(), nil, nil, newCron(t))
	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop(), "stop is idempotent")
}

func TestScheduler_StartWithoutCron(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, nil, nil, nil)
	require.Error(t, s.Start())
}

func TestScheduler_WrapTaskSwallowsErrors(t *testing.T) {
	t.Parallel()

	var gotDeadline bool
	s := NewScheduler(logger.Discard(), nil, nil, newCron(t))
	run := s.wrapTask("failing", func(ctx context.Context) error {
		_, gotDeadline = ctx.Deadline()
		return errors.New("boom")
	})

	assert.NotPanics(t, run)
	assert.True(t, gotDeadline)
}

func TestBot_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	cron := newCron(t)
	listener := &blockingListener{}
	timers := &fakeTimers{}
	b := NewBot(logger.Discard(), listener, NewScheduler(logger.Discard(), nil, nil, cron), timers)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	assert.Eventually(t, listener.started.Load, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.Equal(t, 1, timers.calls())
}

func TestBot_RunFailsWhenListenerStops(t *testing.T) {
	t.Parallel()

	timers := &fakeTimers{}
	b := NewBot(logger.Discard(), returningListener{}, NewScheduler(logger.Discard(), nil, nil, newCron(t)), timers)

	err := b.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped unexpectedly")
	assert.Equal(t, 1, timers.calls())
}

func TestBot_RunFailsWhenSchedulerCannotStart(t *testing.T) {
	t.Parallel()

	b := NewBot(logger.Discard(), &blockingListener{}, NewScheduler(logger.Discard(), nil, nil, nil), nil)

	err := b.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start scheduler")
}
