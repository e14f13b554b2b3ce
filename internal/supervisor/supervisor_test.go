package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRun_RestartsCrashedTask(t *testing.T) {
	s := New(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int64
	s.Add("flaky", func(ctx context.Context) error {
		if runs.Add(1) < 3 {
			return errors.New("crash")
		}
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("supervisor did not settle")
	}
	if got := runs.Load(); got != 3 {
		t.Fatalf("expected 3 runs, got %d", got)
	}
}

func TestRun_PermanentFailureStopsGroup(t *testing.T) {
	s := New(zerolog.Nop())

	peerStopped := make(chan struct{})
	s.Add("doomed", func(ctx context.Context) error {
		return fmt.Errorf("%w: bad credentials", ErrPermanent)
	})
	s.Add("peer", func(ctx context.Context) error {
		<-ctx.Done()
		close(peerStopped)
		return ctx.Err()
	})

	err := s.Run(context.Background())
	if !errors.Is(err, ErrPermanent) {
		t.Fatalf("expected ErrPermanent, got %v", err)
	}
	select {
	case <-peerStopped:
	default:
		t.Fatal("peer task was not cancelled")
	}
}

func TestRun_CleanReturnIsNotRestarted(t *testing.T) {
	s := New(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int64
	s.Add("oneshot", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done
	if got := runs.Load(); got != 1 {
		t.Fatalf("clean task restarted: %d runs", got)
	}
}

func TestRun_ContextCancelDrainsTasks(t *testing.T) {
	s := New(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	s.Add("blocker", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not drain")
	}
}
