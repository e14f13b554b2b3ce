// Package source maintains a live geyser subscription filtered to the single
// program of interest and feeds raw instructions, one at a time, to a sink.
// Transport drops are handled internally with a fixed reconnect sleep; only
// permanent subscription errors (bad endpoint, rejected credentials)
// propagate to the supervisor.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/omnipair/omnipair-indexer/internal/codec"
	"github.com/omnipair/omnipair-indexer/internal/metrics"
)

// ErrFatal marks subscription errors no amount of reconnecting will fix.
var ErrFatal = errors.New("source: permanent subscription failure")

// errSink tags errors the sink returned, as opposed to transport failures.
// They bypass the fixed reconnect sleep and surface to the supervisor, whose
// exponential backoff is the right treatment for a struggling downstream.
var errSink = errors.New("source: sink rejected update")

// reconnectSleep is the fixed pause between transport-level reconnects. The
// supervisor applies exponential backoff on top when failures escalate.
const reconnectSleep = 5 * time.Second

// Instruction is one program instruction with its transaction envelope,
// outer or inner.
type Instruction struct {
	Data        []byte
	Accounts    []codec.Pubkey
	TxSignature string
	Slot        uint64
	BlockTime   int64
}

// Account is a program-owned account snapshot.
type Account struct {
	Pubkey codec.Pubkey
	Data   []byte
	Slot   uint64
}

// Sink receives updates serially; a non-nil return stops the source.
type Sink interface {
	OnInstruction(ctx context.Context, ins Instruction) error
	OnAccount(ctx context.Context, acct Account) error
}

// Config holds the upstream connection settings.
type Config struct {
	Endpoint  string
	Token     string // x-token auth, empty for unauthenticated endpoints
	ProgramID string
	Insecure  bool
}

// Source streams program activity from a yellowstone geyser endpoint.
type Source struct {
	cfg Config
	log zerolog.Logger

	// blockTimes remembers recent slot→block-time pairs so transaction
	// envelopes can carry a wall-clock time; geyser delivers block meta as a
	// separate update.
	blockTimes map[uint64]int64
}

func New(cfg Config, log zerolog.Logger) *Source {
	return &Source{
		cfg:        cfg,
		log:        log.With().Str("component", "source").Logger(),
		blockTimes: make(map[uint64]int64),
	}
}

// Run consumes until ctx ends or the sink rejects an update. Transient
// stream errors trigger an internal reconnect after a fixed sleep.
func (s *Source) Run(ctx context.Context, sink Sink) error {
	program, err := codec.PubkeyFromBase58(s.cfg.ProgramID)
	if err != nil {
		return fmt.Errorf("%w: bad program id %q", ErrFatal, s.cfg.ProgramID)
	}

	for {
		err := s.streamOnce(ctx, program, sink)
		switch {
		case err == nil:
			return nil
		case !shouldReconnect(err):
			if isFatal(err) {
				return fmt.Errorf("%w: %v", ErrFatal, err)
			}
			return err
		}

		metrics.RecordSourceReconnect()
		s.log.Warn().Err(err).Dur("sleep", reconnectSleep).Msg("stream dropped, reconnecting")
		select {
		case <-time.After(reconnectSleep):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// shouldReconnect limits the internal fixed-sleep retry to transport
// failures. Context ends, fatal subscription errors, and sink rejections all
// return to the caller instead.
func shouldReconnect(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, errSink) {
		return false
	}
	return !isFatal(err)
}

func isFatal(err error) bool {
	switch status.Code(err) {
	case codes.Unauthenticated, codes.PermissionDenied, codes.InvalidArgument:
		return true
	}
	return errors.Is(err, ErrFatal)
}

func (s *Source) dial(ctx context.Context) (*grpc.ClientConn, error) {
	creds := grpc.WithTransportCredentials(credentials.NewTLS(nil))
	if s.cfg.Insecure {
		creds = grpc.WithTransportCredentials(insecure.NewCredentials())
	}
	conn, err := grpc.DialContext(ctx, s.cfg.Endpoint,
		creds,
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                30 * time.Second,
			Timeout:             10 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(64*1024*1024)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrFatal, s.cfg.Endpoint, err)
	}
	return conn, nil
}

func (s *Source) subscribeRequest() *pb.SubscribeRequest {
	no := false
	confirmed := pb.CommitmentLevel_CONFIRMED
	return &pb.SubscribeRequest{
		Transactions: map[string]*pb.SubscribeRequestFilterTransactions{
			"program": {
				Vote:           &no,
				Failed:         &no,
				AccountInclude: []string{s.cfg.ProgramID},
			},
		},
		Accounts: map[string]*pb.SubscribeRequestFilterAccounts{
			"program": {
				Owner: []string{s.cfg.ProgramID},
			},
		},
		BlocksMeta: map[string]*pb.SubscribeRequestFilterBlocksMeta{
			"meta": {},
		},
		Commitment: &confirmed,
	}
}

func (s *Source) streamOnce(ctx context.Context, program codec.Pubkey, sink Sink) error {
	conn, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	streamCtx := ctx
	if s.cfg.Token != "" {
		streamCtx = metadata.AppendToOutgoingContext(ctx, "x-token", s.cfg.Token)
	}

	stream, err := pb.NewGeyserClient(conn).Subscribe(streamCtx)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	if err := stream.Send(s.subscribeRequest()); err != nil {
		return fmt.Errorf("send subscription: %w", err)
	}
	s.log.Info().Str("endpoint", s.cfg.Endpoint).Str("program", s.cfg.ProgramID).Msg("subscribed")

	for {
		update, err := stream.Recv()
		if err != nil {
			return fmt.Errorf("recv: %w", err)
		}

		switch u := update.UpdateOneof.(type) {
		case *pb.SubscribeUpdate_Ping:
			_ = stream.Send(&pb.SubscribeRequest{Ping: &pb.SubscribeRequestPing{Id: 1}})
		case *pb.SubscribeUpdate_BlockMeta:
			s.recordBlockTime(u.BlockMeta)
		case *pb.SubscribeUpdate_Transaction:
			if err := s.emitTransaction(ctx, program, u.Transaction, sink); err != nil {
				return fmt.Errorf("%w: %w", errSink, err)
			}
		case *pb.SubscribeUpdate_Account:
			if err := s.emitAccount(ctx, u.Account, sink); err != nil {
				return fmt.Errorf("%w: %w", errSink, err)
			}
		}
	}
}

func (s *Source) recordBlockTime(meta *pb.SubscribeUpdateBlockMeta) {
	if meta == nil || meta.BlockTime == nil {
		return
	}
	s.blockTimes[meta.Slot] = meta.BlockTime.Timestamp
	// Bounded: drop entries far behind the tip.
	if len(s.blockTimes) > 512 {
		for slot := range s.blockTimes {
			if slot+256 < meta.Slot {
				delete(s.blockTimes, slot)
			}
		}
	}
}

// emitTransaction walks the outer instructions and every inner instruction
// in delivery order, emitting those owned by the indexed program.
func (s *Source) emitTransaction(ctx context.Context, program codec.Pubkey, tx *pb.SubscribeUpdateTransaction, sink Sink) error {
	info := tx.GetTransaction()
	if info == nil || info.Transaction == nil || info.Transaction.Message == nil {
		return nil
	}
	msg := info.Transaction.Message
	meta := info.Meta

	// The full account table: static keys plus address-table lookups.
	table := make([]codec.Pubkey, 0, len(msg.AccountKeys))
	appendKeys := func(raw [][]byte) {
		for _, k := range raw {
			var p codec.Pubkey
			copy(p[:], k)
			table = append(table, p)
		}
	}
	appendKeys(msg.AccountKeys)
	if meta != nil {
		appendKeys(meta.LoadedWritableAddresses)
		appendKeys(meta.LoadedReadonlyAddresses)
	}

	sig := base58.Encode(info.Signature)
	blockTime := s.blockTimes[tx.Slot]

	emit := func(programIdx uint32, data []byte, accountIdx []byte) error {
		if int(programIdx) >= len(table) || table[programIdx] != program {
			return nil
		}
		accounts := make([]codec.Pubkey, 0, len(accountIdx))
		for _, idx := range accountIdx {
			if int(idx) >= len(table) {
				return nil // malformed index, skip the instruction
			}
			accounts = append(accounts, table[idx])
		}
		return sink.OnInstruction(ctx, Instruction{
			Data:        data,
			Accounts:    accounts,
			TxSignature: sig,
			Slot:        tx.Slot,
			BlockTime:   blockTime,
		})
	}

	for _, ins := range msg.Instructions {
		if err := emit(ins.ProgramIdIndex, ins.Data, ins.Accounts); err != nil {
			return err
		}
	}
	if meta != nil {
		for _, inner := range meta.InnerInstructions {
			for _, ins := range inner.Instructions {
				if err := emit(ins.ProgramIdIndex, ins.Data, ins.Accounts); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Source) emitAccount(ctx context.Context, upd *pb.SubscribeUpdateAccount, sink Sink) error {
	info := upd.GetAccount()
	if info == nil {
		return nil
	}
	var key codec.Pubkey
	copy(key[:], info.Pubkey)
	return sink.OnAccount(ctx, Account{
		Pubkey: key,
		Data:   info.Data,
		Slot:   upd.Slot,
	})
}
