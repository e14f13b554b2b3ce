package source

import (
	"context"
	"errors"
	"fmt"
	"testing"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/omnipair/omnipair-indexer/internal/codec"
)

type captureSink struct {
	instructions []Instruction
	accounts     []Account
	err          error
}

func (c *captureSink) OnInstruction(_ context.Context, ins Instruction) error {
	c.instructions = append(c.instructions, ins)
	return c.err
}

func (c *captureSink) OnAccount(_ context.Context, acct Account) error {
	c.accounts = append(c.accounts, acct)
	return c.err
}

func testSource() *Source {
	return New(Config{ProgramID: "program"}, zerolog.Nop())
}

func key(fill byte) codec.Pubkey {
	var p codec.Pubkey
	for i := range p {
		p[i] = fill
	}
	return p
}

func txUpdate(program codec.Pubkey) *pb.SubscribeUpdateTransaction {
	user, pair := key(2), key(3)
	lookup := key(4)
	return &pb.SubscribeUpdateTransaction{
		Slot: 900,
		Transaction: &pb.SubscribeUpdateTransactionInfo{
			Signature: []byte("sig-bytes"),
			Transaction: &pb.Transaction{
				Message: &pb.Message{
					AccountKeys: [][]byte{user[:], pair[:], program[:]},
					Instructions: []*pb.CompiledInstruction{
						{ProgramIdIndex: 2, Data: []byte{0xaa}, Accounts: []byte{1, 0, 3}},
						{ProgramIdIndex: 0, Data: []byte{0xbb}, Accounts: []byte{1}},
					},
				},
			},
			Meta: &pb.TransactionStatusMeta{
				LoadedWritableAddresses: [][]byte{lookup[:]},
				InnerInstructions: []*pb.InnerInstructions{
					{Instructions: []*pb.InnerInstruction{
						{ProgramIdIndex: 2, Data: []byte{0xcc}, Accounts: []byte{3}},
					}},
				},
			},
		},
	}
}

func TestEmitTransaction_FiltersToProgramAndResolvesLookups(t *testing.T) {
	s := testSource()
	program := key(1)
	s.blockTimes[900] = 1_700_000_000
	sink := &captureSink{}

	if err := s.emitTransaction(context.Background(), program, txUpdate(program), sink); err != nil {
		t.Fatalf("emitTransaction: %v", err)
	}
	if len(sink.instructions) != 2 {
		t.Fatalf("expected 2 program instructions, got %d", len(sink.instructions))
	}

	outer := sink.instructions[0]
	if outer.Data[0] != 0xaa {
		t.Fatalf("outer instruction data = %x", outer.Data)
	}
	if outer.Slot != 900 || outer.BlockTime != 1_700_000_000 {
		t.Fatalf("envelope slot=%d blockTime=%d", outer.Slot, outer.BlockTime)
	}
	// Index 3 reaches past the static keys into the loaded addresses.
	if outer.Accounts[2] != key(4) {
		t.Fatalf("lookup address not resolved: %v", outer.Accounts[2])
	}

	if inner := sink.instructions[1]; inner.Data[0] != 0xcc {
		t.Fatalf("inner instruction data = %x", inner.Data)
	}
}

func TestEmitTransaction_SkipsMalformedAccountIndex(t *testing.T) {
	s := testSource()
	program := key(1)
	upd := txUpdate(program)
	upd.Transaction.Transaction.Message.Instructions = []*pb.CompiledInstruction{
		{ProgramIdIndex: 2, Data: []byte{0xaa}, Accounts: []byte{200}},
	}
	upd.Transaction.Meta.InnerInstructions = nil
	sink := &captureSink{}

	if err := s.emitTransaction(context.Background(), program, upd, sink); err != nil {
		t.Fatalf("emitTransaction: %v", err)
	}
	if len(sink.instructions) != 0 {
		t.Fatalf("malformed instruction should be skipped, got %d", len(sink.instructions))
	}
}

func TestEmitTransaction_SinkErrorStopsDelivery(t *testing.T) {
	s := testSource()
	program := key(1)
	sink := &captureSink{err: errors.New("db gone")}

	err := s.emitTransaction(context.Background(), program, txUpdate(program), sink)
	if err == nil || err.Error() != "db gone" {
		t.Fatalf("expected sink error, got %v", err)
	}
	if len(sink.instructions) != 1 {
		t.Fatalf("delivery should stop at first failure, got %d", len(sink.instructions))
	}
}

func TestIsFatal_AuthAndArgumentCodes(t *testing.T) {
	for _, code := range []codes.Code{codes.Unauthenticated, codes.PermissionDenied, codes.InvalidArgument} {
		if !isFatal(status.Error(code, "nope")) {
			t.Fatalf("code %v should be fatal", code)
		}
	}
	if isFatal(status.Error(codes.Unavailable, "flaky")) {
		t.Fatal("Unavailable should reconnect, not abort")
	}
	if isFatal(errors.New("plain transport error")) {
		t.Fatal("plain errors should reconnect")
	}
}

func TestShouldReconnect_SinkErrorsEscalateToSupervisor(t *testing.T) {
	sinkErr := fmt.Errorf("%w: %w", errSink, errors.New("datastore unavailable"))
	if shouldReconnect(sinkErr) {
		t.Fatal("sink errors must surface to the supervisor, not the fixed reconnect loop")
	}
	if shouldReconnect(context.Canceled) {
		t.Fatal("context end must stop the loop")
	}
	if shouldReconnect(status.Error(codes.Unauthenticated, "bad token")) {
		t.Fatal("fatal subscription errors must not be retried")
	}
	if !shouldReconnect(status.Error(codes.Unavailable, "stream reset")) {
		t.Fatal("transport drops stay on the fixed reconnect sleep")
	}
}

func TestRecordBlockTime_PrunesFarBehindTip(t *testing.T) {
	s := testSource()
	ts := func(slot uint64) *pb.SubscribeUpdateBlockMeta {
		return &pb.SubscribeUpdateBlockMeta{
			Slot:      slot,
			BlockTime: &pb.UnixTimestamp{Timestamp: int64(slot)},
		}
	}
	for slot := uint64(0); slot <= 600; slot++ {
		s.recordBlockTime(ts(slot))
	}
	if _, ok := s.blockTimes[10]; ok {
		t.Fatal("slot far behind tip should be pruned")
	}
	if got := s.blockTimes[600]; got != 600 {
		t.Fatalf("recent slot missing, got %d", got)
	}
}

func TestRun_RejectsBadProgramID(t *testing.T) {
	s := New(Config{ProgramID: "not-base58!"}, zerolog.Nop())
	err := s.Run(context.Background(), &captureSink{})
	if !errors.Is(err, ErrFatal) {
		t.Fatalf("expected ErrFatal, got %v", err)
	}
}
