package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// SwapRow is one executed swap with its derived fee and price fields.
// volume_usd is intentionally absent: it is attached later by an external
// enrichment job and never written by the indexer.
type SwapRow struct {
	Pair             string
	UserAddress      string
	IsToken0In       bool
	AmountIn         uint64
	AmountInAfterFee uint64
	HasAfterFee      bool
	AmountOut        uint64
	Reserve0         uint64
	Reserve1         uint64
	FeePaid0         uint64
	FeePaid1         uint64
	Price            float32
	Timestamp        int64
	TxSig            string
	Slot             uint64
}

// UpsertSwap writes a swap keyed by (tx_sig, timestamp). Re-delivery of the
// same signature overwrites every indexer-owned column but leaves volume_usd
// untouched so enrichment survives replays.
func (s *Store) UpsertSwap(ctx context.Context, row SwapRow) error {
	var afterFee interface{}
	if row.HasAfterFee {
		afterFee = decimal.NewFromUint64(row.AmountInAfterFee)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO swaps (
			pair, user_address, is_token0_in,
			amount_in, amount_in_after_fee, amount_out,
			reserve0, reserve1, fee_paid0, fee_paid1, price,
			timestamp, tx_sig, slot
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (tx_sig, timestamp) DO UPDATE SET
			pair = EXCLUDED.pair,
			user_address = EXCLUDED.user_address,
			is_token0_in = EXCLUDED.is_token0_in,
			amount_in = EXCLUDED.amount_in,
			amount_in_after_fee = EXCLUDED.amount_in_after_fee,
			amount_out = EXCLUDED.amount_out,
			reserve0 = EXCLUDED.reserve0,
			reserve1 = EXCLUDED.reserve1,
			fee_paid0 = EXCLUDED.fee_paid0,
			fee_paid1 = EXCLUDED.fee_paid1,
			price = EXCLUDED.price,
			slot = EXCLUDED.slot`,
		row.Pair, row.UserAddress, row.IsToken0In,
		decimal.NewFromUint64(row.AmountIn), afterFee, decimal.NewFromUint64(row.AmountOut),
		decimal.NewFromUint64(row.Reserve0), decimal.NewFromUint64(row.Reserve1),
		decimal.NewFromUint64(row.FeePaid0), decimal.NewFromUint64(row.FeePaid1), row.Price,
		utcTime(row.Timestamp), row.TxSig, decimal.NewFromUint64(row.Slot),
	)
	if err != nil {
		return fmt.Errorf("upsert swap %s: %w", row.TxSig, err)
	}
	return nil
}
