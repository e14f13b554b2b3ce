package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// MarketRow is one pair's static configuration, written on pair creation.
type MarketRow struct {
	PairAddress    string
	Token0         string
	Token1         string
	LpMint         string
	Token0Decimals uint8
	Token1Decimals uint8
	RateModel      string
	SwapFeeBps     uint16
	HalfLife       uint64
	Version        uint8
	CreatedAt      int64
	Slot           uint64
}

// InsertMarket registers a newly created pair. Replays keep the original
// created_at but refresh the configuration columns.
func (s *Store) InsertMarket(ctx context.Context, row MarketRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO markets (
			pair_address, token0, token1, lp_mint,
			token0_decimals, token1_decimals, rate_model,
			swap_fee_bps, half_life, version, created_at, slot
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (pair_address) DO UPDATE SET
			token0 = EXCLUDED.token0,
			token1 = EXCLUDED.token1,
			lp_mint = EXCLUDED.lp_mint,
			token0_decimals = EXCLUDED.token0_decimals,
			token1_decimals = EXCLUDED.token1_decimals,
			rate_model = EXCLUDED.rate_model,
			swap_fee_bps = EXCLUDED.swap_fee_bps,
			half_life = EXCLUDED.half_life,
			version = EXCLUDED.version,
			slot = EXCLUDED.slot`,
		row.PairAddress, row.Token0, row.Token1, row.LpMint,
		int32(row.Token0Decimals), int32(row.Token1Decimals), row.RateModel,
		int32(row.SwapFeeBps), decimal.NewFromUint64(row.HalfLife),
		int32(row.Version), utcTime(row.CreatedAt), decimal.NewFromUint64(row.Slot),
	)
	if err != nil {
		return fmt.Errorf("insert market %s: %w", row.PairAddress, err)
	}
	return nil
}

// RefreshMarketReserves updates a market's live reserve snapshot from a pair
// update event. Missing markets are ignored: the creation event may simply
// not have been indexed yet.
func (s *Store) RefreshMarketReserves(ctx context.Context, pair string, reserve0, reserve1 uint64, slot uint64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE markets SET reserve0 = $2, reserve1 = $3, slot = $4
		WHERE pair_address = $1`,
		pair,
		decimal.NewFromUint64(reserve0), decimal.NewFromUint64(reserve1),
		decimal.NewFromUint64(slot),
	)
	if err != nil {
		return fmt.Errorf("refresh market reserves %s: %w", pair, err)
	}
	return nil
}
