package codec

// EventMetadata is the trailing block carried by every protocol event log:
// signer, pair, then the chain timestamp in seconds.
type EventMetadata struct {
	Signer    Pubkey
	Pair      Pubkey
	Timestamp int64
}

// SwapEvent is emitted once per executed swap. AmountInAfterFee was appended
// in a later program revision; HasAmountInAfterFee is false when decoding the
// older layout, in which case fee math treats the fee as zero.
type SwapEvent struct {
	Reserve0            uint64
	Reserve1            uint64
	IsToken0In          bool
	AmountIn            uint64
	AmountOut           uint64
	AmountInAfterFee    uint64
	HasAmountInAfterFee bool
	Metadata            EventMetadata
}

func (*SwapEvent) message() {}

// MintEvent records liquidity added to a pair.
type MintEvent struct {
	Amount0   uint64
	Amount1   uint64
	Liquidity uint64
	Metadata  EventMetadata
}

func (*MintEvent) message() {}

// BurnEvent records liquidity removed from a pair.
type BurnEvent struct {
	Amount0   uint64
	Amount1   uint64
	Liquidity uint64
	Metadata  EventMetadata
}

func (*BurnEvent) message() {}

// AdjustLiquidityEvent is the combined add/remove form emitted by newer
// program versions alongside mint/burn.
type AdjustLiquidityEvent struct {
	Amount0   uint64
	Amount1   uint64
	Liquidity uint64
	Metadata  EventMetadata
}

func (*AdjustLiquidityEvent) message() {}

// PairCreatedEvent announces a newly initialized market.
type PairCreatedEvent struct {
	Token0         Pubkey
	Token1         Pubkey
	LpMint         Pubkey
	Token0Decimals uint8
	Token1Decimals uint8
	RateModel      Pubkey
	SwapFeeBps     uint16
	HalfLife       uint64
	FixedCfBps     uint16
	HasFixedCfBps  bool
	ParamsHash     [32]byte
	Version        uint8
	Metadata       EventMetadata
}

func (*PairCreatedEvent) message() {}

// UpdatePairEvent reports the pair state after interest accrual. Informational
// for persistence but carries the post-accrual reserves used to refresh
// market rows.
type UpdatePairEvent struct {
	Price0Ema             uint64
	Price1Ema             uint64
	Rate0                 uint64
	Rate1                 uint64
	AccruedInterest0      Uint128
	AccruedInterest1      Uint128
	CashReserve0          uint64
	CashReserve1          uint64
	Reserve0AfterInterest uint64
	Reserve1AfterInterest uint64
	Metadata              EventMetadata
}

func (*UpdatePairEvent) message() {}

// UserPositionCreatedEvent marks the opening of a borrow position account.
type UserPositionCreatedEvent struct {
	Position Pubkey
	Metadata EventMetadata
}

func (*UserPositionCreatedEvent) message() {}

// UserPositionUpdatedEvent carries the full post-change position state.
type UserPositionUpdatedEvent struct {
	Position                  Pubkey
	Collateral0               uint64
	Collateral1               uint64
	Debt0Shares               Uint128
	Debt1Shares               Uint128
	Collateral0AppliedMinCfBps uint16
	Collateral1AppliedMinCfBps uint16
	Metadata                  EventMetadata
}

func (*UserPositionUpdatedEvent) message() {}

// UserPositionLiquidatedEvent carries the liquidation outcome. Shortfall may
// be negative when the position was over-collateralized at liquidation time.
type UserPositionLiquidatedEvent struct {
	Position                Pubkey
	Liquidator              Pubkey
	Collateral0Liquidated   uint64
	Collateral1Liquidated   uint64
	Debt0Liquidated         uint64
	Debt1Liquidated         uint64
	CollateralPrice         uint64
	Shortfall               Int128
	LiquidationBonusApplied uint64
	K0                      Uint128
	K1                      Uint128
	Metadata                EventMetadata
}

func (*UserPositionLiquidatedEvent) message() {}

// AdjustCollateralEvent records a collateral change per side. Positive
// amounts are deposits, negative are withdrawals.
type AdjustCollateralEvent struct {
	Amount0  int64
	Amount1  int64
	Metadata EventMetadata
}

func (*AdjustCollateralEvent) message() {}

// AdjustDebtEvent records a debt change per side. Positive amounts are
// borrows, negative are repayments.
type AdjustDebtEvent struct {
	Amount0  int64
	Amount1  int64
	Metadata EventMetadata
}

func (*AdjustDebtEvent) message() {}

// UserLiquidityPositionUpdatedEvent reports a user's LP holdings after an
// add or remove. Feeds the per-user liquidity position table.
type UserLiquidityPositionUpdatedEvent struct {
	Token0Amount uint64
	Token1Amount uint64
	LpAmount     uint64
	Token0Mint   Pubkey
	Token1Mint   Pubkey
	LpMint       Pubkey
	Metadata     EventMetadata
}

func (*UserLiquidityPositionUpdatedEvent) message() {}

// FlashloanEvent records a flashloan with its per-side fees.
type FlashloanEvent struct {
	Amount0  uint64
	Amount1  uint64
	Fee0     uint64
	Fee1     uint64
	Receiver Pubkey
	Metadata EventMetadata
}

func (*FlashloanEvent) message() {}

// eventMetadataSize is the encoded width of the trailing metadata block.
const eventMetadataSize = 32 + 32 + 8

func decodeMetadata(r *reader) EventMetadata {
	return EventMetadata{
		Signer:    r.Pubkey(),
		Pair:      r.Pubkey(),
		Timestamp: r.I64(),
	}
}

func decodeSwapEvent(r *reader) Message {
	ev := &SwapEvent{}
	ev.Reserve0 = r.U64()
	ev.Reserve1 = r.U64()
	ev.IsToken0In = r.Bool()
	ev.AmountIn = r.U64()
	ev.AmountOut = r.U64()
	// The pre-fee-split layout ends at amount_out; the current layout carries
	// one more u64 before the metadata block.
	if r.Remaining() >= 8+eventMetadataSize {
		ev.AmountInAfterFee = r.U64()
		ev.HasAmountInAfterFee = true
	}
	ev.Metadata = decodeMetadata(r)
	return ev
}

func decodeMintEvent(r *reader) Message {
	ev := &MintEvent{}
	ev.Amount0 = r.U64()
	ev.Amount1 = r.U64()
	ev.Liquidity = r.U64()
	ev.Metadata = decodeMetadata(r)
	return ev
}

func decodeBurnEvent(r *reader) Message {
	ev := &BurnEvent{}
	ev.Amount0 = r.U64()
	ev.Amount1 = r.U64()
	ev.Liquidity = r.U64()
	ev.Metadata = decodeMetadata(r)
	return ev
}

func decodeAdjustLiquidityEvent(r *reader) Message {
	ev := &AdjustLiquidityEvent{}
	ev.Amount0 = r.U64()
	ev.Amount1 = r.U64()
	ev.Liquidity = r.U64()
	ev.Metadata = decodeMetadata(r)
	return ev
}

func decodePairCreatedEvent(r *reader) Message {
	ev := &PairCreatedEvent{}
	ev.Token0 = r.Pubkey()
	ev.Token1 = r.Pubkey()
	ev.LpMint = r.Pubkey()
	ev.Token0Decimals = r.U8()
	ev.Token1Decimals = r.U8()
	ev.RateModel = r.Pubkey()
	ev.SwapFeeBps = r.U16()
	ev.HalfLife = r.U64()
	ev.FixedCfBps, ev.HasFixedCfBps = r.OptionU16()
	ev.ParamsHash = r.Bytes32()
	ev.Version = r.U8()
	ev.Metadata = decodeMetadata(r)
	return ev
}

func decodeUpdatePairEvent(r *reader) Message {
	ev := &UpdatePairEvent{}
	ev.Price0Ema = r.U64()
	ev.Price1Ema = r.U64()
	ev.Rate0 = r.U64()
	ev.Rate1 = r.U64()
	ev.AccruedInterest0 = r.U128()
	ev.AccruedInterest1 = r.U128()
	ev.CashReserve0 = r.U64()
	ev.CashReserve1 = r.U64()
	ev.Reserve0AfterInterest = r.U64()
	ev.Reserve1AfterInterest = r.U64()
	ev.Metadata = decodeMetadata(r)
	return ev
}

func decodeUserPositionCreatedEvent(r *reader) Message {
	ev := &UserPositionCreatedEvent{}
	ev.Position = r.Pubkey()
	ev.Metadata = decodeMetadata(r)
	return ev
}

func decodeUserPositionUpdatedEvent(r *reader) Message {
	ev := &UserPositionUpdatedEvent{}
	ev.Position = r.Pubkey()
	ev.Collateral0 = r.U64()
	ev.Collateral1 = r.U64()
	ev.Debt0Shares = r.U128()
	ev.Debt1Shares = r.U128()
	ev.Collateral0AppliedMinCfBps = r.U16()
	ev.Collateral1AppliedMinCfBps = r.U16()
	ev.Metadata = decodeMetadata(r)
	return ev
}

func decodeUserPositionLiquidatedEvent(r *reader) Message {
	ev := &UserPositionLiquidatedEvent{}
	ev.Position = r.Pubkey()
	ev.Liquidator = r.Pubkey()
	ev.Collateral0Liquidated = r.U64()
	ev.Collateral1Liquidated = r.U64()
	ev.Debt0Liquidated = r.U64()
	ev.Debt1Liquidated = r.U64()
	ev.CollateralPrice = r.U64()
	ev.Shortfall = r.I128()
	ev.LiquidationBonusApplied = r.U64()
	ev.K0 = r.U128()
	ev.K1 = r.U128()
	ev.Metadata = decodeMetadata(r)
	return ev
}

func decodeAdjustCollateralEvent(r *reader) Message {
	ev := &AdjustCollateralEvent{}
	ev.Amount0 = r.I64()
	ev.Amount1 = r.I64()
	ev.Metadata = decodeMetadata(r)
	return ev
}

func decodeAdjustDebtEvent(r *reader) Message {
	ev := &AdjustDebtEvent{}
	ev.Amount0 = r.I64()
	ev.Amount1 = r.I64()
	ev.Metadata = decodeMetadata(r)
	return ev
}

func decodeUserLiquidityPositionUpdatedEvent(r *reader) Message {
	ev := &UserLiquidityPositionUpdatedEvent{}
	ev.Token0Amount = r.U64()
	ev.Token1Amount = r.U64()
	ev.LpAmount = r.U64()
	ev.Token0Mint = r.Pubkey()
	ev.Token1Mint = r.Pubkey()
	ev.LpMint = r.Pubkey()
	ev.Metadata = decodeMetadata(r)
	return ev
}

func decodeFlashloanEvent(r *reader) Message {
	ev := &FlashloanEvent{}
	ev.Amount0 = r.U64()
	ev.Amount1 = r.U64()
	ev.Fee0 = r.U64()
	ev.Fee1 = r.U64()
	ev.Receiver = r.Pubkey()
	ev.Metadata = decodeMetadata(r)
	return ev
}
