package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// LiquidityEventType distinguishes mint from burn in adjust_liquidity rows.
type LiquidityEventType string

const (
	LiquidityAdd    LiquidityEventType = "add"
	LiquidityRemove LiquidityEventType = "remove"
)

// LiquidityRow is one mint or burn.
type LiquidityRow struct {
	Pair        string
	UserAddress string
	Amount0     uint64
	Amount1     uint64
	Liquidity   uint64
	EventType   LiquidityEventType
	Timestamp   int64
	TxSig       string
	Slot        uint64
}

// UpsertLiquidity writes a mint/burn keyed by (tx_sig, timestamp).
func (s *Store) UpsertLiquidity(ctx context.Context, row LiquidityRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO adjust_liquidity (
			pair, user_address, amount0, amount1, liquidity,
			event_type, timestamp, tx_sig, slot
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tx_sig, timestamp) DO UPDATE SET
			pair = EXCLUDED.pair,
			user_address = EXCLUDED.user_address,
			amount0 = EXCLUDED.amount0,
			amount1 = EXCLUDED.amount1,
			liquidity = EXCLUDED.liquidity,
			event_type = EXCLUDED.event_type,
			slot = EXCLUDED.slot`,
		row.Pair, row.UserAddress,
		decimal.NewFromUint64(row.Amount0), decimal.NewFromUint64(row.Amount1),
		decimal.NewFromUint64(row.Liquidity),
		string(row.EventType), utcTime(row.Timestamp), row.TxSig, decimal.NewFromUint64(row.Slot),
	)
	if err != nil {
		return fmt.Errorf("upsert liquidity %s: %w", row.TxSig, err)
	}
	return nil
}

// LiquidityPositionRow is the latest LP holding for one (pair, signer).
type LiquidityPositionRow struct {
	Pair         string
	Signer       string
	Token0Amount uint64
	Token1Amount uint64
	LpAmount     uint64
	Token0Mint   string
	Token1Mint   string
	LpMint       string
	Timestamp    int64
	Slot         uint64
}

// UpsertLiquidityPosition maintains the latest row per (pair, signer). The
// table has no unique constraint, so instead of ON CONFLICT this is a
// read-update-else-insert serialized by a per-key mutex stripe; concurrent
// writers for the same key cannot both observe "no row" and double-insert.
func (s *Store) UpsertLiquidityPosition(ctx context.Context, row LiquidityPositionRow) error {
	mu := s.liquidityLock(row.Pair, row.Signer)
	mu.Lock()
	defer mu.Unlock()

	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM user_liquidity_positions WHERE pair = $1 AND signer = $2 LIMIT 1`,
		row.Pair, row.Signer,
	).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO user_liquidity_positions (
				pair, signer, token0_amount, token1_amount, lp_amount,
				token0_mint, token1_mint, lp_mint, timestamp, slot
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			row.Pair, row.Signer,
			decimal.NewFromUint64(row.Token0Amount), decimal.NewFromUint64(row.Token1Amount),
			decimal.NewFromUint64(row.LpAmount),
			row.Token0Mint, row.Token1Mint, row.LpMint,
			utcTime(row.Timestamp), decimal.NewFromUint64(row.Slot),
		)
	case err == nil:
		_, err = s.db.ExecContext(ctx, `
			UPDATE user_liquidity_positions SET
				token0_amount = $2, token1_amount = $3, lp_amount = $4,
				token0_mint = $5, token1_mint = $6, lp_mint = $7,
				timestamp = $8, slot = $9
			WHERE id = $1`,
			id,
			decimal.NewFromUint64(row.Token0Amount), decimal.NewFromUint64(row.Token1Amount),
			decimal.NewFromUint64(row.LpAmount),
			row.Token0Mint, row.Token1Mint, row.LpMint,
			utcTime(row.Timestamp), decimal.NewFromUint64(row.Slot),
		)
	}
	if err != nil {
		return fmt.Errorf("upsert liquidity position %s/%s: %w", row.Pair, row.Signer, err)
	}
	return nil
}
