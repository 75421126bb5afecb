package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_AddJob(t *testing.T) {
	s := NewScheduler()
	noop := func(context.Context, time.Time) error { return nil }

	require.NoError(t, s.AddJob("monthly", "0 0 1 * *", noop))

	err := s.AddJob("monthly", "0 0 2 * *", noop)
	assert.Error(t, err, "duplicate names are rejected")

	err = s.AddJob("broken", "every day at noon", noop)
	assert.Error(t, err)

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "monthly", jobs[0].Name)
	assert.Equal(t, "0 0 1 * *", jobs[0].Spec)
}

func TestScheduler_FirePassesTickInUTC(t *testing.T) {
	s := NewScheduler()

	var got time.Time
	require.NoError(t, s.AddJob("capture", "0 0 15 * *", func(_ context.Context, now time.Time) error {
		got = now
		return nil
	}))

	jakarta := time.FixedZone("WIB", 7*60*60)
	tick := time.Date(2025, time.December, 1, 3, 0, 0, 0, jakarta)

	require.NoError(t, s.Fire(context.Background(), "capture", tick))
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, tick.Equal(got))
	assert.Equal(t, time.November, got.Month())
}

func TestScheduler_FireReturnsJobError(t *testing.T) {
	s := NewScheduler()
	boom := errors.New("boom")
	require.NoError(t, s.AddJob("failing", "0 0 1 * *", func(context.Context, time.Time) error { return boom }))

	assert.ErrorIs(t, s.Fire(context.Background(), "failing", time.Now()), boom)
	assert.Error(t, s.Fire(context.Background(), "missing", time.Now()))
}

func TestScheduler_RunOnceRunsEveryJob(t *testing.T) {
	s := NewScheduler()
	calls := 0
	count := func(context.Context, time.Time) error { calls++; return nil }
	require.NoError(t, s.AddJob("a", "0 0 1 * *", count))
	require.NoError(t, s.AddJob("b", "0 0 15 * *", count))

	s.RunOnce(context.Background(), time.Now())
	assert.Equal(t, 2, calls)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.AddJob("idle", "0 0 1 * *", func(context.Context, time.Time) error { return nil }))

	s.Start()
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestScheduler_StopLetsRunningJobFinish(t *testing.T) {
	s := NewScheduler()
	started := make(chan struct{}, 1)
	finished := make(chan error, 1)

	require.NoError(t, s.AddJob("slow", "@every 1s", func(ctx context.Context, _ time.Time) error {
		select {
		case started <- struct{}{}:
		default:
			return nil
		}
		time.Sleep(200 * time.Millisecond)
		finished <- ctx.Err()
		return nil
	}))

	s.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job never started")
	}
	s.Stop()

	select {
	case err := <-finished:
		assert.NoError(t, err, "context must stay live while the job drains")
	default:
		t.Fatal("Stop returned before the running job finished")
	}
}

func TestScheduler_StopCancelsJobsPastTimeout(t *testing.T) {
	s := NewScheduler()
	s.stopTimeout = 50 * time.Millisecond
	started := make(chan struct{}, 1)

	require.NoError(t, s.AddJob("stuck", "@every 1s", func(ctx context.Context, _ time.Time) error {
		select {
		case started <- struct{}{}:
		default:
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	}))

	s.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job never started")
	}

	begin := time.Now()
	s.Stop()
	assert.Less(t, time.Since(begin), 2*time.Second)
}
