// Package dispatch bridges the raw geyser feed and the typed handlers:
// each incoming instruction is decoded and routed, each program account
// snapshot refreshes the cached market reserves.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/omnipair/omnipair-indexer/internal/codec"
	"github.com/omnipair/omnipair-indexer/internal/handlers"
	"github.com/omnipair/omnipair-indexer/internal/metrics"
	"github.com/omnipair/omnipair-indexer/internal/source"
)

// messageKind labels metrics with the concrete decoded type.
func messageKind(msg codec.Message) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", msg), "*codec.")
}

// Router consumes decoded messages; satisfied by *handlers.Handler.
type Router interface {
	Handle(ctx context.Context, msg codec.Message, meta handlers.Metadata) error
}

// ReserveStore is the slice of the datastore account snapshots touch.
type ReserveStore interface {
	RefreshMarketReserves(ctx context.Context, pair string, reserve0, reserve1, slot uint64) error
}

// Dispatcher implements source.Sink.
type Dispatcher struct {
	handler Router
	store   ReserveStore
	log     zerolog.Logger
}

func New(h Router, st ReserveStore, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		handler: h,
		store:   st,
		log:     log.With().Str("component", "dispatch").Logger(),
	}
}

// OnInstruction decodes and routes one instruction. Foreign and truncated
// payloads are expected on a shared program feed and are skipped; handler
// failures propagate so the supervisor can restart the pipeline.
func (d *Dispatcher) OnInstruction(ctx context.Context, ins source.Instruction) error {
	msg, err := codec.Decode(ins.Data, ins.Accounts)
	if err != nil {
		switch {
		case errors.Is(err, codec.ErrUnknownDiscriminator):
			metrics.RecordDecodeSkip("unknown")
		case errors.Is(err, codec.ErrMalformedPayload):
			metrics.RecordDecodeSkip("malformed")
		default:
			return err
		}
		d.log.Debug().Err(err).Str("tx", ins.TxSignature).Uint64("slot", ins.Slot).Msg("skipping undecodable instruction")
		return nil
	}
	metrics.RecordDecoded(messageKind(msg))
	return d.handler.Handle(ctx, msg, handlers.Metadata{
		TxSignature: ins.TxSignature,
		Slot:        ins.Slot,
		BlockTime:   ins.BlockTime,
	})
}

// OnAccount narrows account snapshots to pair accounts and keeps the
// markets table's reserve columns current with the on-chain state.
func (d *Dispatcher) OnAccount(ctx context.Context, acct source.Account) error {
	if !codec.IsPairAccount(acct.Data) {
		return nil
	}
	pair, err := codec.DecodePairAccount(acct.Data)
	if err != nil {
		d.log.Warn().Err(err).Str("account", acct.Pubkey.String()).Msg("undecodable pair account")
		return nil
	}
	return d.store.RefreshMarketReserves(ctx, acct.Pubkey.String(), pair.Reserve0, pair.Reserve1, acct.Slot)
}
