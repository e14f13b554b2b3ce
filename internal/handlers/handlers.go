// Package handlers turns decoded program messages into datastore writes and
// live broadcasts. Each handler is idempotent; the dispatcher invokes them
// serially in upstream-delivery order.
package handlers

import (
	"context"
	"fmt"
	"math"
	"math/bits"

	"github.com/rs/zerolog"

	"github.com/omnipair/omnipair-indexer/internal/codec"
	"github.com/omnipair/omnipair-indexer/internal/hub"
	"github.com/omnipair/omnipair-indexer/internal/store"
)

// Metadata is the transaction envelope around a decoded message.
type Metadata struct {
	TxSignature string
	Slot        uint64
	BlockTime   int64
}

// Datastore is the slice of the store the handlers write through.
// *store.Store satisfies it.
type Datastore interface {
	UpsertSwap(ctx context.Context, row store.SwapRow) error
	UpsertLiquidity(ctx context.Context, row store.LiquidityRow) error
	UpsertLiquidityPosition(ctx context.Context, row store.LiquidityPositionRow) error
	RecordPositionUpdate(ctx context.Context, row store.PositionUpdateRow) error
	UpsertLiquidation(ctx context.Context, row store.LiquidationRow) error
	UpsertCollateralAdjust(ctx context.Context, row store.CollateralAdjustRow) error
	UpsertDebtAdjust(ctx context.Context, row store.DebtAdjustRow) error
	InsertMarket(ctx context.Context, row store.MarketRow) error
	RefreshMarketReserves(ctx context.Context, pair string, reserve0, reserve1, slot uint64) error
}

// Handler routes messages to their variant-specific handling. Constraint
// violations and malformed rows are logged and swallowed so one bad
// transaction cannot stall the feed; transient datastore failures propagate
// to the supervisor.
type Handler struct {
	store Datastore
	hub   *hub.Hub
	log   zerolog.Logger
}

func New(st Datastore, h *hub.Hub, log zerolog.Logger) *Handler {
	return &Handler{store: st, hub: h, log: log.With().Str("component", "handlers").Logger()}
}

// Handle dispatches one decoded message. A nil return means the pipeline
// moves on; a non-nil return asks the supervisor for a restart.
func (h *Handler) Handle(ctx context.Context, msg codec.Message, meta Metadata) error {
	var err error
	switch ev := msg.(type) {
	case *codec.SwapEvent:
		err = h.handleSwap(ctx, ev, meta)
	case *codec.MintEvent:
		err = h.handleLiquidity(ctx, ev.Amount0, ev.Amount1, ev.Liquidity, store.LiquidityAdd, ev.Metadata, meta)
	case *codec.BurnEvent:
		err = h.handleLiquidity(ctx, ev.Amount0, ev.Amount1, ev.Liquidity, store.LiquidityRemove, ev.Metadata, meta)
	case *codec.AdjustLiquidityEvent:
		err = h.handleLiquidity(ctx, ev.Amount0, ev.Amount1, ev.Liquidity, "adjust", ev.Metadata, meta)
	case *codec.PairCreatedEvent:
		err = h.handlePairCreated(ctx, ev, meta)
	case *codec.UpdatePairEvent:
		err = h.handlePairUpdated(ctx, ev, meta)
	case *codec.UserPositionUpdatedEvent:
		err = h.handlePositionUpdated(ctx, ev, meta)
	case *codec.UserPositionLiquidatedEvent:
		err = h.handleLiquidation(ctx, ev, meta)
	case *codec.AdjustCollateralEvent:
		err = h.handleCollateralAdjust(ctx, ev, meta)
	case *codec.AdjustDebtEvent:
		err = h.handleDebtAdjust(ctx, ev, meta)
	case *codec.UserLiquidityPositionUpdatedEvent:
		err = h.handleLiquidityPosition(ctx, ev, meta)
	case *codec.UserPositionCreatedEvent:
		h.log.Debug().
			Str("position", ev.Position.String()).
			Str("pair", ev.Metadata.Pair.String()).
			Str("tx_sig", meta.TxSignature).
			Msg("position created")
	case *codec.FlashloanEvent:
		h.log.Debug().
			Str("pair", ev.Metadata.Pair.String()).
			Uint64("fee0", ev.Fee0).
			Uint64("fee1", ev.Fee1).
			Str("tx_sig", meta.TxSignature).
			Msg("flashloan")
	default:
		// Top-level instructions carry no state beyond what their event logs
		// already deliver; visibility only.
		h.log.Debug().
			Str("tx_sig", meta.TxSignature).
			Type("variant", msg).
			Msg("instruction observed")
	}
	return h.settle(err, meta)
}

// settle applies the error policy: constraint violations are final for this
// row and get swallowed, everything else restarts the pipeline.
func (h *Handler) settle(err error, meta Metadata) error {
	if err == nil {
		return nil
	}
	if store.Classify(err) == store.KindConstraint {
		h.log.Warn().
			Err(err).
			Str("tx_sig", meta.TxSignature).
			Msg("row rejected by constraint, skipping")
		return nil
	}
	return fmt.Errorf("handle %s: %w", meta.TxSignature, err)
}

// SwapFees computes both fee columns for a swap. The total fee is taken on
// the input side; the cross-side figure is the same value expressed in the
// other token through the reserve ratio, rounded half away from zero. A zero
// reserve on either side zeroes the cross-side fee.
func SwapFees(ev *codec.SwapEvent) (fee0, fee1 uint64) {
	if !ev.HasAmountInAfterFee {
		return 0, 0
	}
	feeTotal := ev.AmountIn - ev.AmountInAfterFee
	if ev.Reserve0 == 0 || ev.Reserve1 == 0 {
		if ev.IsToken0In {
			return feeTotal, 0
		}
		return 0, feeTotal
	}
	if ev.IsToken0In {
		return feeTotal, mulDivRound(feeTotal, ev.Reserve1, ev.Reserve0)
	}
	return mulDivRound(feeTotal, ev.Reserve0, ev.Reserve1), feeTotal
}

// mulDivRound computes round(a*b/d) with a 128-bit intermediate so large
// reserves cannot overflow. Saturates at MaxUint64.
func mulDivRound(a, b, d uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	lo, carry := bits.Add64(lo, d/2, 0)
	hi += carry
	if hi >= d {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, d)
	return q
}

// SpotPrice is the token1-per-token0 price as the display float the feed
// exposes. Zero when reserve0 is empty.
func SpotPrice(reserve0, reserve1 uint64) float32 {
	if reserve0 == 0 {
		return 0
	}
	return float32(float64(reserve1) / float64(reserve0))
}

func (h *Handler) handleSwap(ctx context.Context, ev *codec.SwapEvent, meta Metadata) error {
	fee0, fee1 := SwapFees(ev)
	price := SpotPrice(ev.Reserve0, ev.Reserve1)

	row := store.SwapRow{
		Pair:             ev.Metadata.Pair.String(),
		UserAddress:      ev.Metadata.Signer.String(),
		IsToken0In:       ev.IsToken0In,
		AmountIn:         ev.AmountIn,
		AmountInAfterFee: ev.AmountInAfterFee,
		HasAfterFee:      ev.HasAmountInAfterFee,
		AmountOut:        ev.AmountOut,
		Reserve0:         ev.Reserve0,
		Reserve1:         ev.Reserve1,
		FeePaid0:         fee0,
		FeePaid1:         fee1,
		Price:            price,
		Timestamp:        ev.Metadata.Timestamp,
		TxSig:            meta.TxSignature,
		Slot:             meta.Slot,
	}
	if err := h.store.UpsertSwap(ctx, row); err != nil {
		return err
	}

	h.hub.Publish(hub.SwapUpdate{
		Pair:       row.Pair,
		User:       row.UserAddress,
		IsToken0In: row.IsToken0In,
		AmountIn:   row.AmountIn,
		AmountOut:  row.AmountOut,
		Reserve0:   row.Reserve0,
		Reserve1:   row.Reserve1,
		Price:      price,
		TxSig:      row.TxSig,
		Timestamp:  row.Timestamp,
		Slot:       row.Slot,
	})
	return nil
}

func (h *Handler) handleLiquidity(ctx context.Context, amount0, amount1, liquidity uint64, typ store.LiquidityEventType, evMeta codec.EventMetadata, meta Metadata) error {
	return h.store.UpsertLiquidity(ctx, store.LiquidityRow{
		Pair:        evMeta.Pair.String(),
		UserAddress: evMeta.Signer.String(),
		Amount0:     amount0,
		Amount1:     amount1,
		Liquidity:   liquidity,
		EventType:   typ,
		Timestamp:   evMeta.Timestamp,
		TxSig:       meta.TxSignature,
		Slot:        meta.Slot,
	})
}

func (h *Handler) handlePairCreated(ctx context.Context, ev *codec.PairCreatedEvent, meta Metadata) error {
	return h.store.InsertMarket(ctx, store.MarketRow{
		PairAddress:    ev.Metadata.Pair.String(),
		Token0:         ev.Token0.String(),
		Token1:         ev.Token1.String(),
		LpMint:         ev.LpMint.String(),
		Token0Decimals: ev.Token0Decimals,
		Token1Decimals: ev.Token1Decimals,
		RateModel:      ev.RateModel.String(),
		SwapFeeBps:     ev.SwapFeeBps,
		HalfLife:       ev.HalfLife,
		Version:        ev.Version,
		CreatedAt:      ev.Metadata.Timestamp,
		Slot:           meta.Slot,
	})
}

func (h *Handler) handlePairUpdated(ctx context.Context, ev *codec.UpdatePairEvent, meta Metadata) error {
	return h.store.RefreshMarketReserves(ctx,
		ev.Metadata.Pair.String(),
		ev.Reserve0AfterInterest, ev.Reserve1AfterInterest,
		meta.Slot,
	)
}

func (h *Handler) handlePositionUpdated(ctx context.Context, ev *codec.UserPositionUpdatedEvent, meta Metadata) error {
	return h.store.RecordPositionUpdate(ctx, store.PositionUpdateRow{
		Pair:        ev.Metadata.Pair.String(),
		Signer:      ev.Metadata.Signer.String(),
		Position:    ev.Position.String(),
		Collateral0: ev.Collateral0,
		Collateral1: ev.Collateral1,
		Debt0Shares: ev.Debt0Shares.Decimal(),
		Debt1Shares: ev.Debt1Shares.Decimal(),
		MinCf0Bps:   ev.Collateral0AppliedMinCfBps,
		MinCf1Bps:   ev.Collateral1AppliedMinCfBps,
		Timestamp:   ev.Metadata.Timestamp,
		TxSig:       meta.TxSignature,
		Slot:        meta.Slot,
	})
}

func (h *Handler) handleLiquidation(ctx context.Context, ev *codec.UserPositionLiquidatedEvent, meta Metadata) error {
	return h.store.UpsertLiquidation(ctx, store.LiquidationRow{
		Pair:                    ev.Metadata.Pair.String(),
		Signer:                  ev.Metadata.Signer.String(),
		Position:                ev.Position.String(),
		Liquidator:              ev.Liquidator.String(),
		Collateral0Liquidated:   ev.Collateral0Liquidated,
		Collateral1Liquidated:   ev.Collateral1Liquidated,
		Debt0Liquidated:         ev.Debt0Liquidated,
		Debt1Liquidated:         ev.Debt1Liquidated,
		CollateralPrice:         ev.CollateralPrice,
		Shortfall:               ev.Shortfall.Decimal(),
		LiquidationBonusApplied: ev.LiquidationBonusApplied,
		K0:                      ev.K0.Decimal(),
		K1:                      ev.K1.Decimal(),
		Timestamp:               ev.Metadata.Timestamp,
		TxSig:                   meta.TxSignature,
		Slot:                    meta.Slot,
	})
}

func (h *Handler) handleCollateralAdjust(ctx context.Context, ev *codec.AdjustCollateralEvent, meta Metadata) error {
	return h.store.UpsertCollateralAdjust(ctx, store.CollateralAdjustRow{
		Pair:      ev.Metadata.Pair.String(),
		Signer:    ev.Metadata.Signer.String(),
		Amount0:   ev.Amount0,
		Amount1:   ev.Amount1,
		Timestamp: ev.Metadata.Timestamp,
		TxSig:     meta.TxSignature,
		Slot:      meta.Slot,
	})
}

func (h *Handler) handleDebtAdjust(ctx context.Context, ev *codec.AdjustDebtEvent, meta Metadata) error {
	return h.store.UpsertDebtAdjust(ctx, store.DebtAdjustRow{
		Pair:      ev.Metadata.Pair.String(),
		Signer:    ev.Metadata.Signer.String(),
		Amount0:   ev.Amount0,
		Amount1:   ev.Amount1,
		Timestamp: ev.Metadata.Timestamp,
		TxSig:     meta.TxSignature,
		Slot:      meta.Slot,
	})
}

func (h *Handler) handleLiquidityPosition(ctx context.Context, ev *codec.UserLiquidityPositionUpdatedEvent, meta Metadata) error {
	return h.store.UpsertLiquidityPosition(ctx, store.LiquidityPositionRow{
		Pair:         ev.Metadata.Pair.String(),
		Signer:       ev.Metadata.Signer.String(),
		Token0Amount: ev.Token0Amount,
		Token1Amount: ev.Token1Amount,
		LpAmount:     ev.LpAmount,
		Token0Mint:   ev.Token0Mint.String(),
		Token1Mint:   ev.Token1Mint.String(),
		LpMint:       ev.LpMint.String(),
		Timestamp:    ev.Metadata.Timestamp,
		Slot:         meta.Slot,
	})
}
