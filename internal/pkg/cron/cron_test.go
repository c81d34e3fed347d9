package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunUnknownJob(t *testing.T) {
	s := New(nil)
	assert.ErrorIs(t, s.Run("nope"), ErrJobNotFound)
	_, err := s.GetTask("nope")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestRunRecordsResult(t *testing.T) {
	s := New(nil)
	defer s.Stop()
	s.Register(Job{Name: "ok", Interval: time.Hour, Fn: func(context.Context) error { return nil }})
	s.Register(Job{Name: "bad", Interval: time.Hour, Fn: func(context.Context) error { return errors.New("boom") }})

	require.NoError(t, s.Run("ok"))
	require.NoError(t, s.Run("bad"))

	assert.Eventually(t, func() bool {
		r, _ := s.GetTask("ok")
		return r.Status == StatusFulfill
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		r, _ := s.GetTask("bad")
		return r.Status == StatusReject && r.Message == "boom"
	}, time.Second, 5*time.Millisecond)

	items := s.List()
	require.Len(t, items, 2)
	assert.Equal(t, "bad", items[0].Name)
	assert.NotNil(t, items[0].LastRunAt)
}

func TestNoOverlap(t *testing.T) {
	s := New(nil)
	defer s.Stop()

	release := make(chan struct{})
	var calls int32
	s.Register(Job{Name: "slow", Interval: time.Hour, Fn: func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		<-release
		return nil
	}})

	require.NoError(t, s.Run("slow"))
	assert.Eventually(t, func() bool {
		r, _ := s.GetTask("slow")
		return r.Status == StatusRunning
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, s.Run("slow"), ErrJobRunning)
	close(release)

	assert.Eventually(t, func() bool {
		r, _ := s.GetTask("slow")
		return r.Status == StatusFulfill
	}, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestStartTicks(t *testing.T) {
	s := New(nil)
	var calls int32
	s.Register(Job{Name: "tick", Interval: 10 * time.Millisecond, RunOnStart: true, Fn: func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Stop()
}

func TestStopCancelsRunningJob(t *testing.T) {
	s := New(nil)
	done := make(chan error, 1)
	s.Register(Job{Name: "wait", Interval: time.Hour, Fn: func(ctx context.Context) error {
		<-ctx.Done()
		done <- ctx.Err()
		return ctx.Err()
	}})
	require.NoError(t, s.Run("wait"))
	assert.Eventually(t, func() bool {
		r, _ := s.GetTask("wait")
		return r.Status == StatusRunning
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.ErrorIs(t, <-done, context.Canceled)
}
