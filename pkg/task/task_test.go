package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTask struct {
	name    string
	runs    atomic.Int32
	failFor int32
	result  error
}

func (t *countingTask) Name() string { return t.name }

func (t *countingTask) Run(ctx context.Context) error {
	n := t.runs.Add(1)
	if n <= t.failFor {
		return errors.New("transient failure")
	}
	return t.result
}

func TestSupervisorRestartsRecoverableFailures(t *testing.T) {
	task := &countingTask{name: "flaky", failFor: 2}

	s := NewSupervisor()
	s.RestartInitialInterval = time.Millisecond
	s.Add(task)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Run(ctx))
	assert.Equal(t, int32(3), task.runs.Load())
}

func TestSupervisorStopsOnFatal(t *testing.T) {
	task := &countingTask{name: "doomed", result: Fatal(errors.New("bad config"))}

	s := NewSupervisor()
	s.RestartInitialInterval = time.Millisecond
	s.Add(task)

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.Equal(t, int32(1), task.runs.Load())
}

func TestSupervisorStopsOnCancel(t *testing.T) {
	blocking := retryTaskFunc{
		name: "blocker",
		run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}

	s := NewSupervisor()
	s.Add(blocking)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	assert.NoError(t, s.Run(ctx))
}

type retryTaskFunc struct {
	name string
	run  func(ctx context.Context) error
}

func (f retryTaskFunc) Name() string                  { return f.name }
func (f retryTaskFunc) Run(ctx context.Context) error { return f.run(ctx) }

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	var attempts int
	result, err := Retry(context.Background(), 3, time.Millisecond, "flaky_op", func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("not yet")
		}
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, result)
	assert.Equal(t, 3, attempts)
}

func TestRetryExhausted(t *testing.T) {
	var attempts int
	_, err := Retry(context.Background(), 2, time.Millisecond, "always_fails", func() (int, error) {
		attempts++
		return 0, errors.New("nope")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "always_fails")
	assert.Equal(t, 3, attempts)
}
