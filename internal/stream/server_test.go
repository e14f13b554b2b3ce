package stream

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/omnipair/omnipair-indexer/internal/hub"
	"github.com/omnipair/omnipair-indexer/internal/stream/streampb"
	"github.com/omnipair/omnipair-indexer/internal/supervisor"
)

type fakeStream struct {
	grpc.ServerStream
	ctx     context.Context
	sent    []*streampb.SwapsUpdate
	sendLag time.Duration
	sendCh  chan *streampb.SwapsUpdate
}

func (f *fakeStream) Context() context.Context { return f.ctx }

func (f *fakeStream) Send(u *streampb.SwapsUpdate) error {
	if f.sendLag > 0 {
		time.Sleep(f.sendLag)
	}
	f.sent = append(f.sent, u)
	if f.sendCh != nil {
		f.sendCh <- u
	}
	return nil
}

func TestStreamSwapsUpdates_FiltersByPair(t *testing.T) {
	h := hub.New(8)
	s := NewServer(Config{}, h, zerolog.Nop())
	fs := &fakeStream{ctx: context.Background()}

	done := make(chan error, 1)
	go func() {
		done <- s.StreamSwapsUpdates(&streampb.SwapsRequest{Pair: "P1"}, fs)
	}()
	time.Sleep(20 * time.Millisecond)

	h.Publish(hub.SwapUpdate{Pair: "P1", TxSig: "a", AmountIn: 5, Reserve0: 10})
	h.Publish(hub.SwapUpdate{Pair: "P2", TxSig: "b"})
	h.Publish(hub.SwapUpdate{Pair: "P1", TxSig: "c"})
	time.Sleep(20 * time.Millisecond)
	h.Close()

	if err := <-done; err != nil {
		t.Fatalf("stream should end cleanly on hub close, got %v", err)
	}
	if len(fs.sent) != 2 {
		t.Fatalf("expected 2 matching updates, got %d", len(fs.sent))
	}
	if fs.sent[0].TxSig != "a" || fs.sent[1].TxSig != "c" {
		t.Fatalf("wrong updates delivered: %s, %s", fs.sent[0].TxSig, fs.sent[1].TxSig)
	}
	if fs.sent[0].AmountIn != "5" || fs.sent[0].Reserve0 != "10" {
		t.Fatalf("numeric fields not stringified: %+v", fs.sent[0])
	}
}

func TestStreamSwapsUpdates_EvictsChronicallyLaggedClient(t *testing.T) {
	h := hub.New(2)
	s := NewServer(Config{MaxLag: 5}, h, zerolog.Nop())
	fs := &fakeStream{ctx: context.Background(), sendLag: 5 * time.Millisecond}

	done := make(chan error, 1)
	go func() {
		done <- s.StreamSwapsUpdates(&streampb.SwapsRequest{}, fs)
	}()
	time.Sleep(20 * time.Millisecond)

	for i := 0; i < 200; i++ {
		h.Publish(hub.SwapUpdate{Pair: "P1"})
	}

	select {
	case err := <-done:
		if status.Code(err) != codes.ResourceExhausted {
			t.Fatalf("expected ResourceExhausted, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("lagged client was never evicted")
	}
}

func TestStreamSwapsUpdates_StopsWhenClientGoesAway(t *testing.T) {
	h := hub.New(8)
	s := NewServer(Config{}, h, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	fs := &fakeStream{ctx: ctx}

	done := make(chan error, 1)
	go func() {
		done <- s.StreamSwapsUpdates(&streampb.SwapsRequest{}, fs)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected context error on client departure")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after cancel")
	}
}

func TestOriginAllowed_ProductionUsesAllowlist(t *testing.T) {
	s := NewServer(Config{
		Production:     true,
		AllowedOrigins: []string{"https://omnipair.fi"},
	}, hub.New(1), zerolog.Nop())

	if !s.originAllowed("https://omnipair.fi") {
		t.Fatal("allowlisted origin rejected")
	}
	if s.originAllowed("https://evil.example") {
		t.Fatal("unknown origin accepted in production")
	}

	dev := NewServer(Config{}, hub.New(1), zerolog.Nop())
	if !dev.originAllowed("http://localhost:3000") {
		t.Fatal("development must accept any origin")
	}
}

func TestToProto_CarriesVolumePresence(t *testing.T) {
	u := hub.SwapUpdate{
		Pair:         "P1",
		VolumeUSD:    12.5,
		HasVolumeUSD: true,
		Timestamp:    1_700_000_000,
		Slot:         99,
	}
	pb := toProto(u)
	if !pb.HasVolumeUsd || pb.VolumeUsd != 12.5 {
		t.Fatalf("volume not carried: %+v", pb)
	}
	if pb.Timestamp != 1_700_000_000 || pb.Slot != 99 {
		t.Fatalf("envelope fields wrong: %+v", pb)
	}
}

func TestStreamSwapsUpdates_LagForgivenOnFilteredReceive(t *testing.T) {
	// Capacity 2 with bursts of 4 forces a lag event per burst; the survivors
	// never match the pair filter, so only a reset on plain receipt (not on
	// delivery) keeps the accumulated lag under the threshold.
	h := hub.New(2)
	s := NewServer(Config{MaxLag: 3}, h, zerolog.Nop())
	fs := &fakeStream{ctx: context.Background(), sendCh: make(chan *streampb.SwapsUpdate, 1)}

	done := make(chan error, 1)
	go func() {
		done <- s.StreamSwapsUpdates(&streampb.SwapsRequest{Pair: "want"}, fs)
	}()
	time.Sleep(20 * time.Millisecond)

	for burst := 0; burst < 3; burst++ {
		for i := 0; i < 3; i++ {
			h.Publish(hub.SwapUpdate{Pair: "noise"})
		}
		h.Publish(hub.SwapUpdate{Pair: "want", Slot: uint64(burst)})
		select {
		case <-fs.sendCh:
		case <-time.After(2 * time.Second):
			t.Fatalf("burst %d: matching update never delivered", burst)
		}
	}
	h.Close()

	if err := <-done; err != nil {
		t.Fatalf("recovered subscriber should not be evicted, got %v", err)
	}
	if len(fs.sent) != 3 {
		t.Fatalf("expected 3 matching updates, got %d", len(fs.sent))
	}
}

func TestRun_PortBindFailureIsPermanent(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	s := NewServer(Config{Addr: ln.Addr().String()}, hub.New(1), zerolog.Nop())
	err = s.Run(context.Background())
	if !errors.Is(err, supervisor.ErrPermanent) {
		t.Fatalf("occupied port should fail permanently, got %v", err)
	}
}

func TestServiceDesc_DeclaresServerStreaming(t *testing.T) {
	desc := streampb.StreamService_ServiceDesc
	if desc.ServiceName != "omnipair.stream.StreamService" {
		t.Fatalf("unexpected service name %q", desc.ServiceName)
	}
	if len(desc.Streams) != 1 || desc.Streams[0].StreamName != "StreamSwapsUpdates" {
		t.Fatalf("stream method missing from descriptor: %+v", desc.Streams)
	}
	if !desc.Streams[0].ServerStreams || desc.Streams[0].ClientStreams {
		t.Fatal("StreamSwapsUpdates must be server-streaming only")
	}
}
