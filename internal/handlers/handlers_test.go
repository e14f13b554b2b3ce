package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/omnipair/omnipair-indexer/internal/codec"
	"github.com/omnipair/omnipair-indexer/internal/hub"
	"github.com/omnipair/omnipair-indexer/internal/store"
)

type fakeStore struct {
	swaps      []store.SwapRow
	liquidity  []store.LiquidityRow
	positions  []store.PositionUpdateRow
	markets    []store.MarketRow
	failWith   error
}

func (f *fakeStore) UpsertSwap(_ context.Context, row store.SwapRow) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.swaps = append(f.swaps, row)
	return nil
}

func (f *fakeStore) UpsertLiquidity(_ context.Context, row store.LiquidityRow) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.liquidity = append(f.liquidity, row)
	return nil
}

func (f *fakeStore) UpsertLiquidityPosition(_ context.Context, _ store.LiquidityPositionRow) error {
	return f.failWith
}

func (f *fakeStore) RecordPositionUpdate(_ context.Context, row store.PositionUpdateRow) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.positions = append(f.positions, row)
	return nil
}

func (f *fakeStore) UpsertLiquidation(_ context.Context, _ store.LiquidationRow) error {
	return f.failWith
}

func (f *fakeStore) UpsertCollateralAdjust(_ context.Context, _ store.CollateralAdjustRow) error {
	return f.failWith
}

func (f *fakeStore) UpsertDebtAdjust(_ context.Context, _ store.DebtAdjustRow) error {
	return f.failWith
}

func (f *fakeStore) InsertMarket(_ context.Context, row store.MarketRow) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.markets = append(f.markets, row)
	return nil
}

func (f *fakeStore) RefreshMarketReserves(_ context.Context, _ string, _, _, _ uint64) error {
	return f.failWith
}

func testKey(fill byte) codec.Pubkey {
	var k codec.Pubkey
	for i := range k {
		k[i] = fill
	}
	return k
}

func swapEvent() *codec.SwapEvent {
	return &codec.SwapEvent{
		Reserve0:            1_000_000,
		Reserve1:            2_000_000,
		IsToken0In:          true,
		AmountIn:            1000,
		AmountOut:           995,
		AmountInAfterFee:    997,
		HasAmountInAfterFee: true,
		Metadata: codec.EventMetadata{
			Signer:    testKey(1),
			Pair:      testKey(2),
			Timestamp: 1_700_000_000,
		},
	}
}

func TestSwapFees_InputSideCarriesTotalCrossSideScaled(t *testing.T) {
	fee0, fee1 := SwapFees(swapEvent())
	if fee0 != 3 {
		t.Errorf("fee0 = %d, want 3", fee0)
	}
	if fee1 != 6 {
		t.Errorf("fee1 = %d, want 6 (3 scaled by reserve ratio)", fee1)
	}
}

func TestSwapFees_SideRolesSwapWithDirection(t *testing.T) {
	ev := swapEvent()
	ev.IsToken0In = false
	fee0, fee1 := SwapFees(ev)
	if fee1 != 3 {
		t.Errorf("fee1 = %d, want 3", fee1)
	}
	if fee0 != 2 {
		// round(3 × 1_000_000 / 2_000_000) = round(1.5) = 2
		t.Errorf("fee0 = %d, want 2", fee0)
	}
}

func TestSwapFees_ZeroReserveZeroesCrossSide(t *testing.T) {
	ev := swapEvent()
	ev.Reserve0 = 0
	fee0, fee1 := SwapFees(ev)
	if fee0 != 3 || fee1 != 0 {
		t.Errorf("fees = (%d, %d), want (3, 0)", fee0, fee1)
	}
}

func TestSwapFees_LegacySchemaHasNoFee(t *testing.T) {
	ev := swapEvent()
	ev.HasAmountInAfterFee = false
	fee0, fee1 := SwapFees(ev)
	if fee0 != 0 || fee1 != 0 {
		t.Errorf("fees = (%d, %d), want (0, 0)", fee0, fee1)
	}
}

func TestSwapFees_LargeReservesDoNotOverflow(t *testing.T) {
	ev := swapEvent()
	ev.AmountIn = 1 << 40
	ev.AmountInAfterFee = 1 << 39
	ev.Reserve0 = 1 << 50
	ev.Reserve1 = 1 << 60
	fee0, fee1 := SwapFees(ev)
	if fee0 != 1<<39 {
		t.Errorf("fee0 = %d", fee0)
	}
	if want := uint64(1) << 49; fee1 != want {
		t.Errorf("fee1 = %d, want %d", fee1, want)
	}
}

func TestSpotPrice(t *testing.T) {
	if got := SpotPrice(1_000_000, 2_000_000); got != 2.0 {
		t.Errorf("SpotPrice = %v, want 2.0", got)
	}
	if got := SpotPrice(0, 2_000_000); got != 0 {
		t.Errorf("SpotPrice with empty reserve0 = %v, want 0", got)
	}
}

func TestHandle_SwapUpsertsAndBroadcasts(t *testing.T) {
	fs := &fakeStore{}
	h := hub.New(10)
	defer h.Close()
	sub := h.Subscribe()
	handler := New(fs, h, zerolog.Nop())

	meta := Metadata{TxSignature: "TX1", Slot: 100}
	if err := handler.Handle(context.Background(), swapEvent(), meta); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(fs.swaps) != 1 {
		t.Fatalf("swap rows = %d, want 1", len(fs.swaps))
	}
	row := fs.swaps[0]
	if row.FeePaid0 != 3 || row.FeePaid1 != 6 {
		t.Errorf("fees = (%d, %d), want (3, 6)", row.FeePaid0, row.FeePaid1)
	}
	if row.Price != 2.0 {
		t.Errorf("price = %v, want 2.0", row.Price)
	}
	if row.TxSig != "TX1" || row.Slot != 100 {
		t.Errorf("envelope = (%s, %d)", row.TxSig, row.Slot)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	u, err := sub.Next(ctx)
	if err != nil {
		t.Fatalf("hub Next: %v", err)
	}
	if u.Price != 2.0 || u.TxSig != "TX1" || u.Timestamp != 1_700_000_000 {
		t.Errorf("broadcast = %+v", u)
	}
	if u.HasVolumeUSD {
		t.Error("direct broadcast must not claim enriched volume")
	}
}

func TestHandle_ConstraintViolationIsSwallowed(t *testing.T) {
	fs := &fakeStore{failWith: &pq.Error{Code: "23505"}}
	h := hub.New(10)
	defer h.Close()
	handler := New(fs, h, zerolog.Nop())

	err := handler.Handle(context.Background(), swapEvent(), Metadata{TxSignature: "TX2"})
	if err != nil {
		t.Fatalf("constraint violation should not propagate, got %v", err)
	}
}

func TestHandle_TransientFailurePropagates(t *testing.T) {
	fs := &fakeStore{failWith: &pq.Error{Code: "08006"}}
	h := hub.New(10)
	defer h.Close()
	handler := New(fs, h, zerolog.Nop())

	err := handler.Handle(context.Background(), swapEvent(), Metadata{TxSignature: "TX3"})
	if err == nil {
		t.Fatal("connection failure must propagate for restart")
	}
}

func TestHandle_MintMapsToAddLiquidity(t *testing.T) {
	fs := &fakeStore{}
	h := hub.New(10)
	defer h.Close()
	handler := New(fs, h, zerolog.Nop())

	ev := &codec.MintEvent{
		Amount0:   10,
		Amount1:   20,
		Liquidity: 14,
		Metadata:  codec.EventMetadata{Signer: testKey(1), Pair: testKey(2), Timestamp: 42},
	}
	if err := handler.Handle(context.Background(), ev, Metadata{TxSignature: "TX4", Slot: 7}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(fs.liquidity) != 1 {
		t.Fatalf("liquidity rows = %d, want 1", len(fs.liquidity))
	}
	if fs.liquidity[0].EventType != store.LiquidityAdd {
		t.Errorf("event type = %q, want add", fs.liquidity[0].EventType)
	}
}

func TestHandle_BurnMapsToRemoveLiquidity(t *testing.T) {
	fs := &fakeStore{}
	h := hub.New(10)
	defer h.Close()
	handler := New(fs, h, zerolog.Nop())

	ev := &codec.BurnEvent{
		Metadata: codec.EventMetadata{Signer: testKey(1), Pair: testKey(2), Timestamp: 42},
	}
	if err := handler.Handle(context.Background(), ev, Metadata{TxSignature: "TX5"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if fs.liquidity[0].EventType != store.LiquidityRemove {
		t.Errorf("event type = %q, want remove", fs.liquidity[0].EventType)
	}
}
