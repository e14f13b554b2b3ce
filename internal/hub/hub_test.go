package hub

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestSubscription_ReceivesPublishedUpdates(t *testing.T) {
	h := New(10)
	defer h.Close()
	sub := h.Subscribe()

	h.Publish(SwapUpdate{TxSig: "a"})
	h.Publish(SwapUpdate{TxSig: "b"})

	ctx := context.Background()
	for _, want := range []string{"a", "b"} {
		u, err := sub.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if u.TxSig != want {
			t.Errorf("TxSig = %q, want %q", u.TxSig, want)
		}
	}
}

func TestSubscription_StartsAtLiveEdge(t *testing.T) {
	h := New(10)
	defer h.Close()
	h.Publish(SwapUpdate{TxSig: "old"})

	sub := h.Subscribe()
	h.Publish(SwapUpdate{TxSig: "new"})

	u, err := sub.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if u.TxSig != "new" {
		t.Errorf("TxSig = %q, want %q (pre-subscribe messages must not replay)", u.TxSig, "new")
	}
}

func TestSubscription_LagReportsSkippedAndResumes(t *testing.T) {
	h := New(100)
	defer h.Close()
	sub := h.Subscribe()

	for i := 0; i < 2000; i++ {
		h.Publish(SwapUpdate{TxSig: fmt.Sprintf("tx%d", i)})
	}

	_, err := sub.Next(context.Background())
	var lag *LaggedError
	if !errors.As(err, &lag) {
		t.Fatalf("err = %v, want *LaggedError", err)
	}
	if lag.Skipped != 1900 {
		t.Errorf("Skipped = %d, want 1900", lag.Skipped)
	}

	// The cursor now sits at the oldest retained message; all 100 retained
	// updates must arrive in order.
	for i := 1900; i < 2000; i++ {
		u, err := sub.Next(context.Background())
		if err != nil {
			t.Fatalf("Next after lag: %v", err)
		}
		if want := fmt.Sprintf("tx%d", i); u.TxSig != want {
			t.Fatalf("TxSig = %q, want %q", u.TxSig, want)
		}
	}
}

func TestSubscription_NextBlocksUntilPublish(t *testing.T) {
	h := New(10)
	defer h.Close()
	sub := h.Subscribe()

	got := make(chan SwapUpdate, 1)
	go func() {
		u, err := sub.Next(context.Background())
		if err == nil {
			got <- u
		}
	}()

	time.Sleep(20 * time.Millisecond)
	h.Publish(SwapUpdate{TxSig: "wake"})

	select {
	case u := <-got:
		if u.TxSig != "wake" {
			t.Errorf("TxSig = %q, want %q", u.TxSig, "wake")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not wake on publish")
	}
}

func TestSubscription_NextHonorsContextCancel(t *testing.T) {
	h := New(10)
	defer h.Close()
	sub := h.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := sub.Next(ctx)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not return on cancel")
	}
}

func TestSubscription_NextReturnsErrClosedAfterClose(t *testing.T) {
	h := New(10)
	sub := h.Subscribe()
	h.Close()

	if _, err := sub.Next(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}

func TestPublish_NeverBlocksWithoutSubscribers(t *testing.T) {
	h := New(4)
	defer h.Close()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10_000; i++ {
			h.Publish(SwapUpdate{Slot: uint64(i)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Publish blocked")
	}
}
