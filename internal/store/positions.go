package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// PositionUpdateRow carries the full post-change borrow position state.
type PositionUpdateRow struct {
	Pair            string
	Signer          string
	Position        string
	Collateral0     uint64
	Collateral1     uint64
	Debt0Shares     decimal.Decimal
	Debt1Shares     decimal.Decimal
	MinCf0Bps       uint16
	MinCf1Bps       uint16
	Timestamp       int64
	TxSig           string
	Slot            uint64
}

// RecordPositionUpdate performs the dual write for a position-updated event
// inside one transaction: the append-only history row and the latest-state
// upsert. Either both land or neither does.
func (s *Store) RecordPositionUpdate(ctx context.Context, row PositionUpdateRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin position update: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_position_updated_events (
			transaction_signature, pair, signer, position,
			collateral0, collateral1, debt0_shares, debt1_shares,
			min_cf0_bps, min_cf1_bps, timestamp, slot
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (transaction_signature) DO UPDATE SET
			pair = EXCLUDED.pair,
			signer = EXCLUDED.signer,
			position = EXCLUDED.position,
			collateral0 = EXCLUDED.collateral0,
			collateral1 = EXCLUDED.collateral1,
			debt0_shares = EXCLUDED.debt0_shares,
			debt1_shares = EXCLUDED.debt1_shares,
			min_cf0_bps = EXCLUDED.min_cf0_bps,
			min_cf1_bps = EXCLUDED.min_cf1_bps,
			slot = EXCLUDED.slot`,
		row.TxSig, row.Pair, row.Signer, row.Position,
		decimal.NewFromUint64(row.Collateral0), decimal.NewFromUint64(row.Collateral1),
		row.Debt0Shares, row.Debt1Shares,
		int32(row.MinCf0Bps), int32(row.MinCf1Bps),
		utcTime(row.Timestamp), decimal.NewFromUint64(row.Slot),
	)
	if err != nil {
		return fmt.Errorf("insert position update %s: %w", row.TxSig, err)
	}

	guard := ""
	if s.GuardStalePositions {
		guard = " WHERE user_borrow_positions.slot <= EXCLUDED.slot"
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_borrow_positions (
			pair, signer, position,
			collateral0, collateral1, debt0_shares, debt1_shares,
			min_cf0_bps, min_cf1_bps, timestamp, slot
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (pair, signer) DO UPDATE SET
			position = EXCLUDED.position,
			collateral0 = EXCLUDED.collateral0,
			collateral1 = EXCLUDED.collateral1,
			debt0_shares = EXCLUDED.debt0_shares,
			debt1_shares = EXCLUDED.debt1_shares,
			min_cf0_bps = EXCLUDED.min_cf0_bps,
			min_cf1_bps = EXCLUDED.min_cf1_bps,
			timestamp = EXCLUDED.timestamp,
			slot = EXCLUDED.slot`+guard,
		row.Pair, row.Signer, row.Position,
		decimal.NewFromUint64(row.Collateral0), decimal.NewFromUint64(row.Collateral1),
		row.Debt0Shares, row.Debt1Shares,
		int32(row.MinCf0Bps), int32(row.MinCf1Bps),
		utcTime(row.Timestamp), decimal.NewFromUint64(row.Slot),
	)
	if err != nil {
		return fmt.Errorf("upsert borrow position %s/%s: %w", row.Pair, row.Signer, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit position update %s: %w", row.TxSig, err)
	}
	return nil
}

// LiquidationRow is one liquidation outcome.
type LiquidationRow struct {
	Pair                    string
	Signer                  string
	Position                string
	Liquidator              string
	Collateral0Liquidated   uint64
	Collateral1Liquidated   uint64
	Debt0Liquidated         uint64
	Debt1Liquidated         uint64
	CollateralPrice         uint64
	Shortfall               decimal.Decimal
	LiquidationBonusApplied uint64
	K0                      decimal.Decimal
	K1                      decimal.Decimal
	Timestamp               int64
	TxSig                   string
	Slot                    uint64
}

// UpsertLiquidation writes a liquidation keyed by transaction_signature.
func (s *Store) UpsertLiquidation(ctx context.Context, row LiquidationRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_position_liquidated_events (
			transaction_signature, pair, signer, position, liquidator,
			collateral0_liquidated, collateral1_liquidated,
			debt0_liquidated, debt1_liquidated,
			collateral_price, shortfall, liquidation_bonus_applied,
			k0, k1, timestamp, slot
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (transaction_signature) DO UPDATE SET
			pair = EXCLUDED.pair,
			signer = EXCLUDED.signer,
			position = EXCLUDED.position,
			liquidator = EXCLUDED.liquidator,
			collateral0_liquidated = EXCLUDED.collateral0_liquidated,
			collateral1_liquidated = EXCLUDED.collateral1_liquidated,
			debt0_liquidated = EXCLUDED.debt0_liquidated,
			debt1_liquidated = EXCLUDED.debt1_liquidated,
			collateral_price = EXCLUDED.collateral_price,
			shortfall = EXCLUDED.shortfall,
			liquidation_bonus_applied = EXCLUDED.liquidation_bonus_applied,
			k0 = EXCLUDED.k0,
			k1 = EXCLUDED.k1,
			slot = EXCLUDED.slot`,
		row.TxSig, row.Pair, row.Signer, row.Position, row.Liquidator,
		decimal.NewFromUint64(row.Collateral0Liquidated), decimal.NewFromUint64(row.Collateral1Liquidated),
		decimal.NewFromUint64(row.Debt0Liquidated), decimal.NewFromUint64(row.Debt1Liquidated),
		decimal.NewFromUint64(row.CollateralPrice), row.Shortfall,
		decimal.NewFromUint64(row.LiquidationBonusApplied),
		row.K0, row.K1, utcTime(row.Timestamp), decimal.NewFromUint64(row.Slot),
	)
	if err != nil {
		return fmt.Errorf("upsert liquidation %s: %w", row.TxSig, err)
	}
	return nil
}

// CollateralAdjustRow is one collateral deposit/withdrawal, signed per side.
type CollateralAdjustRow struct {
	Pair      string
	Signer    string
	Amount0   int64
	Amount1   int64
	Timestamp int64
	TxSig     string
	Slot      uint64
}

func (s *Store) UpsertCollateralAdjust(ctx context.Context, row CollateralAdjustRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO adjust_collateral_events (
			transaction_signature, pair, signer, amount0, amount1, timestamp, slot
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (transaction_signature) DO UPDATE SET
			pair = EXCLUDED.pair,
			signer = EXCLUDED.signer,
			amount0 = EXCLUDED.amount0,
			amount1 = EXCLUDED.amount1,
			slot = EXCLUDED.slot`,
		row.TxSig, row.Pair, row.Signer,
		row.Amount0, row.Amount1, utcTime(row.Timestamp), decimal.NewFromUint64(row.Slot),
	)
	if err != nil {
		return fmt.Errorf("upsert collateral adjust %s: %w", row.TxSig, err)
	}
	return nil
}

// DebtAdjustRow is one borrow/repay, signed per side.
type DebtAdjustRow struct {
	Pair      string
	Signer    string
	Amount0   int64
	Amount1   int64
	Timestamp int64
	TxSig     string
	Slot      uint64
}

func (s *Store) UpsertDebtAdjust(ctx context.Context, row DebtAdjustRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO adjust_debt_events (
			transaction_signature, pair, signer, amount0, amount1, timestamp, slot
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (transaction_signature) DO UPDATE SET
			pair = EXCLUDED.pair,
			signer = EXCLUDED.signer,
			amount0 = EXCLUDED.amount0,
			amount1 = EXCLUDED.amount1,
			slot = EXCLUDED.slot`,
		row.TxSig, row.Pair, row.Signer,
		row.Amount0, row.Amount1, utcTime(row.Timestamp), decimal.NewFromUint64(row.Slot),
	)
	if err != nil {
		return fmt.Errorf("upsert debt adjust %s: %w", row.TxSig, err)
	}
	return nil
}
