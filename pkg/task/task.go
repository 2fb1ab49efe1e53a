// Package task runs the broker's long-lived services under a supervisor that
// restarts them after recoverable failures.
package task

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/zkmarket/broker/pkg/log"
)

// CodedError carries a stable error code suitable for alerting.
type CodedError interface {
	error
	Code() string
}

// RetryTask is a long-lived service that can be restarted after a
// recoverable failure.
type RetryTask interface {
	// Name identifies the task in logs.
	Name() string
	// Run blocks until the task fails or ctx is cancelled. A nil return or
	// ctx.Err() stops the task permanently; any other error is retried
	// unless wrapped with Fatal.
	Run(ctx context.Context) error
}

type fatalError struct {
	err error
}

func (f *fatalError) Error() string { return f.err.Error() }
func (f *fatalError) Unwrap() error { return f.err }

// Fatal marks an error as non-recoverable: the supervisor shuts everything
// down instead of restarting the task.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// IsFatal reports whether err was marked with Fatal.
func IsFatal(err error) bool {
	var f *fatalError
	return errors.As(err, &f)
}

// Supervisor runs a set of RetryTasks, restarting recoverable failures with
// exponential backoff. The first fatal error (or context cancellation) stops
// all tasks.
type Supervisor struct {
	tasks []RetryTask

	// RestartInitialInterval seeds the restart backoff. Zero uses 1s.
	RestartInitialInterval time.Duration
	// RestartMaxInterval caps the restart backoff. Zero uses 1m.
	RestartMaxInterval time.Duration
}

// NewSupervisor creates an empty supervisor.
func NewSupervisor() *Supervisor {
	return &Supervisor{}
}

// Add registers a task to be run.
func (s *Supervisor) Add(t RetryTask) {
	s.tasks = append(s.tasks, t)
}

// Run blocks until all tasks stop. It returns the first fatal error, or nil
// on clean shutdown.
func (s *Supervisor) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, t := range s.tasks {
		g.Go(func() error {
			return s.supervise(ctx, t)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Supervisor) supervise(ctx context.Context, t RetryTask) error {
	logger := log.WithComponent("supervisor")

	bo := backoff.NewExponentialBackOff()
	if s.RestartInitialInterval > 0 {
		bo.InitialInterval = s.RestartInitialInterval
	}
	if s.RestartMaxInterval > 0 {
		bo.MaxInterval = s.RestartMaxInterval
	} else {
		bo.MaxInterval = time.Minute
	}
	bo.MaxElapsedTime = 0 // restart forever

	for {
		started := time.Now()
		err := t.Run(ctx)

		switch {
		case err == nil:
			logger.Info().Str("task", t.Name()).Msg("task finished")
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		case IsFatal(err):
			logger.Error().Err(err).Str("task", t.Name()).Msg("task failed fatally, shutting down")
			return err
		}

		// A task that ran for a while before failing gets a fresh backoff.
		if time.Since(started) > bo.MaxInterval {
			bo.Reset()
		}
		wait := bo.NextBackOff()

		var coded CodedError
		if errors.As(err, &coded) {
			logger.Warn().Err(err).Str("task", t.Name()).Str("code", coded.Code()).
				Dur("restart_in", wait).Msg("task failed, restarting")
		} else {
			logger.Warn().Err(err).Str("task", t.Name()).
				Dur("restart_in", wait).Msg("task failed, restarting")
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
