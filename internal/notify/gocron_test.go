package notify

import (
	"context"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/timerbot/internal/logger"
)

func newGocron(t *testing.T) gocron.Scheduler {
	t.Helper()

	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(logger.NewGocronLogger(logger.Discard())),
	)
	require.NoError(t, err)
	s.Start()
	t.Cleanup(func() { _ = s.Shutdown() })
	return s
}

func TestNewGocronBackend_RejectsNil(t *testing.T) {
	t.Parallel()

	_, err := NewGocronBackend(nil)
	require.Error(t, err)
}

func TestGocronBackend_EveryAndCancel(t *testing.T) {
	t.Parallel()

	s := newGocron(t)
	backend, err := NewGocronBackend(s)
	require.NoError(t, err)

	h, err := backend.Every("notify-1", time.Hour, false, func() {})
	require.NoError(t, err)

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, h, jobs[0].ID())
	assert.Equal(t, "notify-1", jobs[0].Name())
	assert.ElementsMatch(t, []string{"notify", "notify-1"}, jobs[0].Tags())

	require.NoError(t, backend.Cancel(h))
	assert.Eventually(t, func() bool { return len(s.Jobs()) == 0 }, time.Second, 10*time.Millisecond)

	assert.Error(t, backend.Cancel(uuid.New()))
}

func TestGocronBackend_RejectsInvalidJobs(t *testing.T) {
	t.Parallel()

	backend, err := NewGocronBackend(newGocron(t))
	require.NoError(t, err)

	_, err = backend.Every("notify-1", time.Hour, false, nil)
	assert.Error(t, err)

	_, err = backend.Every("notify-1", 0, false, func() {})
	assert.Error(t, err)
}

func TestScheduler_WithGocronFiresImmediatelyAndRearms(t *testing.T) {
	t.Parallel()

	gs := newGocron(t)
	backend, err := NewGocronBackend(gs)
	require.NoError(t, err)

	sender := &fakeSender{}
	s := NewScheduler(logger.Discard(), backend, sender,
		WithMessages(testWelcome, testNotification),
		WithFireImmediately(true),
	)

	_, err = s.Arm(context.Background(), 42)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return sender.countFor(42) == 1 }, 5*time.Second, 10*time.Millisecond)

	_, err = s.Arm(context.Background(), 42)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return sender.countFor(42) == 2 }, 5*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return len(gs.Jobs()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []sent{{42, testNotification}, {42, testNotification}}, sender.sent())

	s.Shutdown()
	assert.Eventually(t, func() bool { return len(gs.Jobs()) == 0 }, time.Second, 10*time.Millisecond)
}
