// Package supervisor keeps long-running pipeline tasks alive, restarting
// failed ones with exponential backoff.
package supervisor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
	// A task that survives this long is considered healthy and its backoff
	// resets.
	healthyAfter = time.Minute
)

// ErrPermanent marks task failures that restarting will not fix; the
// supervisor stops the whole group so the process can exit non-zero.
var ErrPermanent = errors.New("supervisor: permanent task failure")

// Task is a restartable unit. Run should block until ctx ends or the task
// fails.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Supervisor runs a group of tasks and restarts crashed ones.
type Supervisor struct {
	log   zerolog.Logger
	tasks []Task
}

func New(log zerolog.Logger) *Supervisor {
	return &Supervisor{log: log.With().Str("component", "supervisor").Logger()}
}

func (s *Supervisor) Add(name string, run func(ctx context.Context) error) {
	s.tasks = append(s.tasks, Task{Name: name, Run: run})
}

// Run blocks until ctx ends or a task fails permanently. In either case all
// remaining tasks are cancelled and drained before returning.
func (s *Supervisor) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	for _, task := range s.tasks {
		wg.Add(1)
		go func(t Task) {
			defer wg.Done()
			s.supervise(runCtx, t, fail)
		}(task)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func (s *Supervisor) supervise(ctx context.Context, t Task, fail func(error)) {
	backoff := initialBackoff
	for {
		started := time.Now()
		err := t.Run(ctx)

		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, ErrPermanent) {
			s.log.Error().Err(err).Str("task", t.Name).Msg("permanent failure, shutting down")
			fail(err)
			return
		}
		if err == nil {
			// A task that returns cleanly while the group is still running
			// is done for good.
			s.log.Info().Str("task", t.Name).Msg("task finished")
			return
		}

		if time.Since(started) >= healthyAfter {
			backoff = initialBackoff
		}
		s.log.Warn().Err(err).Str("task", t.Name).Dur("backoff", backoff).Msg("task crashed, restarting")
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
