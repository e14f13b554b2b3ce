// Package store persists decoded program activity into Postgres. Every write
// is idempotent: re-delivery of a transaction signature overwrites, it never
// duplicates. Callers classify failures with Classify to decide between
// restarting the pipeline and swallowing the row.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// ErrorKind partitions datastore failures by how the pipeline should react.
type ErrorKind int

const (
	// KindTransient: connection-level trouble, worth a pipeline restart.
	KindTransient ErrorKind = iota
	// KindConstraint: the row itself is unacceptable; log and move on.
	KindConstraint
	// KindOther: anything else (syntax, permissions); treated as transient
	// so the operator sees it through the restart loop.
	KindOther
)

// Classify maps a Postgres error to the pipeline's reaction.
func Classify(err error) ErrorKind {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23": // integrity constraint violation
			return KindConstraint
		case "22": // data exception (bad numeric, overflow)
			return KindConstraint
		case "08", "53", "57": // connection, resources, operator intervention
			return KindTransient
		case "40": // serialization failure, deadlock
			return KindTransient
		}
		return KindOther
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	return KindOther
}

// liquidityStripes sizes the per-key mutex table serializing writes to
// user_liquidity_positions, which lacks a unique constraint and therefore
// cannot rely on ON CONFLICT.
const liquidityStripes = 64

// Store wraps the connection pool with typed upserts for each relation the
// indexer owns.
type Store struct {
	db    *sql.DB
	log   zerolog.Logger
	liqMu [liquidityStripes]sync.Mutex

	// GuardStalePositions makes the latest-position upsert refuse to move a
	// row backwards in slot order. Off by default: the upstream feed is
	// in-order within a connection and the guard rejects legitimate
	// same-slot replays on some RPC providers.
	GuardStalePositions bool
}

// Open connects, verifies the connection, and applies pool limits sized for
// a single-writer indexer.
func Open(ctx context.Context, dsn string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	log.Info().Msg("database connection pool initialized")
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) liquidityLock(pair, signer string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(pair))
	h.Write([]byte{0})
	h.Write([]byte(signer))
	return &s.liqMu[h.Sum32()%liquidityStripes]
}

// utcTime renders an on-chain second timestamp for a timestamptz column.
func utcTime(unixSeconds int64) time.Time {
	return time.Unix(unixSeconds, 0).UTC()
}
