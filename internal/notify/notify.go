// Package notify follows the datastore's swap change-notification channel
// and re-broadcasts enriched rows. Inserts are held in a dedup buffer until
// the external enrichment job's update arrives, so subscribers see exactly
// one message per swap, carrying volume_usd whenever enrichment lands within
// the timeout.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/omnipair/omnipair-indexer/internal/hub"
	"github.com/omnipair/omnipair-indexer/internal/metrics"
)

// Channel is the NOTIFY channel the swaps trigger fires on.
const Channel = "swap_updates"

const (
	// DefaultDedupTimeout is how long an INSERT waits for its enriched
	// UPDATE before being emitted without volume.
	DefaultDedupTimeout = 5 * time.Second
	// DefaultTickInterval is the sweep cadence for timed-out entries.
	DefaultTickInterval = time.Second
	// DefaultMaxBuffered caps the dedup buffer; beyond it the oldest entry
	// is emitted early and evicted.
	DefaultMaxBuffered = 10_000
)

// notification is the JSON payload built by the swaps trigger. Numeric
// columns arrive as strings because they exceed JSON's safe integer range.
type notification struct {
	Op        string   `json:"op"`
	Pair      string   `json:"pair"`
	User      string   `json:"user"`
	IsToken0In bool    `json:"is_token0_in"`
	AmountIn  string   `json:"amount_in"`
	AmountOut string   `json:"amount_out"`
	Reserve0  string   `json:"reserve0"`
	Reserve1  string   `json:"reserve1"`
	VolumeUSD *float64 `json:"volume_usd"`
	TxSig     string   `json:"tx_sig"`
	Timestamp int64    `json:"timestamp"`
	Slot      string   `json:"slot"`
}

func (n *notification) toUpdate() hub.SwapUpdate {
	u := hub.SwapUpdate{
		Pair:       n.Pair,
		User:       n.User,
		IsToken0In: n.IsToken0In,
		AmountIn:   parseU64(n.AmountIn),
		AmountOut:  parseU64(n.AmountOut),
		Reserve0:   parseU64(n.Reserve0),
		Reserve1:   parseU64(n.Reserve1),
		TxSig:      n.TxSig,
		Timestamp:  n.Timestamp,
		Slot:       parseU64(n.Slot),
	}
	if n.VolumeUSD != nil {
		u.VolumeUSD = *n.VolumeUSD
		u.HasVolumeUSD = true
	}
	// Display price from the row's reserves, mirroring the ingest path.
	if u.Reserve0 > 0 {
		u.Price = float32(float64(u.Reserve1) / float64(u.Reserve0))
	}
	return u
}

func parseU64(s string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Options tune the dedup buffer.
type Options struct {
	DedupTimeout time.Duration
	TickInterval time.Duration
	MaxBuffered  int
}

func (o *Options) fill() {
	if o.DedupTimeout <= 0 {
		o.DedupTimeout = DefaultDedupTimeout
	}
	if o.TickInterval <= 0 {
		o.TickInterval = DefaultTickInterval
	}
	if o.MaxBuffered <= 0 {
		o.MaxBuffered = DefaultMaxBuffered
	}
}

// Listener owns the LISTEN session and the dedup buffer. The buffer lives on
// the Listener, not the connection, so it survives reconnects.
type Listener struct {
	dsn   string
	hub   *hub.Hub
	log   zerolog.Logger
	opts  Options
	dedup *dedupBuffer
}

func New(dsn string, h *hub.Hub, log zerolog.Logger, opts Options) *Listener {
	opts.fill()
	l := &Listener{
		dsn:  dsn,
		hub:  h,
		log:  log.With().Str("component", "db-listener").Logger(),
		opts: opts,
	}
	l.dedup = newDedupBuffer(opts, l.emit, l.log)
	return l
}

func (l *Listener) emit(u hub.SwapUpdate) {
	l.hub.Publish(u)
}

// Run blocks until ctx ends. Connection drops are retried by the underlying
// listener with a fixed floor; buffered entries are preserved across
// reconnects.
func (l *Listener) Run(ctx context.Context) error {
	pl := pq.NewListener(l.dsn, 5*time.Second, 30*time.Second, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			l.log.Info().Str("channel", Channel).Msg("listening for swap notifications")
		case pq.ListenerEventReconnected:
			l.log.Info().Int("buffered", l.dedup.len()).Msg("listener reconnected, dedup buffer preserved")
		case pq.ListenerEventDisconnected:
			l.log.Warn().Err(err).Msg("listener disconnected, retrying")
		case pq.ListenerEventConnectionAttemptFailed:
			l.log.Warn().Err(err).Msg("listener reconnect attempt failed")
		}
	})
	defer pl.Close()

	if err := pl.Listen(Channel); err != nil {
		return fmt.Errorf("listen %s: %w", Channel, err)
	}

	tick := time.NewTicker(l.opts.TickInterval)
	defer tick.Stop()
	probe := time.NewTicker(90 * time.Second)
	defer probe.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-pl.Notify:
			if n == nil {
				// Reconnect marker; notifications may have been missed but
				// the tick sweep will flush anything stranded.
				continue
			}
			l.dedup.handle(n.Extra, time.Now())
			metrics.SetNotifyBufferSize(l.dedup.len())
		case now := <-tick.C:
			l.dedup.sweep(now)
			metrics.SetNotifyBufferSize(l.dedup.len())
		case <-probe.C:
			// A silent connection may be dead; Ping forces the listener to
			// notice and reconnect.
			go pl.Ping()
		}
	}
}

// dedupBuffer implements insert-then-enrich: INSERT notifications wait for
// the matching UPDATE, keyed by transaction signature.
type dedupBuffer struct {
	opts    Options
	emit    func(hub.SwapUpdate)
	log     zerolog.Logger
	entries map[string]*entry
	order   []string // insertion order, for timeout sweep and cap eviction
}

type entry struct {
	update hub.SwapUpdate
	added  time.Time
}

func newDedupBuffer(opts Options, emit func(hub.SwapUpdate), log zerolog.Logger) *dedupBuffer {
	return &dedupBuffer{
		opts:    opts,
		emit:    emit,
		log:     log,
		entries: make(map[string]*entry),
	}
}

func (d *dedupBuffer) len() int {
	return len(d.entries)
}

// handle processes one raw notification payload.
func (d *dedupBuffer) handle(payload string, now time.Time) {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		d.log.Error().Err(err).Str("payload", payload).Msg("unparseable notification")
		return
	}
	u := n.toUpdate()

	switch strings.ToUpper(n.Op) {
	case "INSERT":
		if _, exists := d.entries[n.TxSig]; !exists {
			d.order = append(d.order, n.TxSig)
		}
		d.entries[n.TxSig] = &entry{update: u, added: now}
		d.evictOverCap()
	case "UPDATE":
		if _, buffered := d.entries[n.TxSig]; buffered {
			d.drop(n.TxSig)
		}
		// Enriched row wins whether or not an INSERT was waiting; an UPDATE
		// with no prior INSERT happens on backfills.
		d.emit(u)
	default:
		d.log.Warn().Str("op", n.Op).Str("tx_sig", n.TxSig).Msg("unknown notification op, emitting as-is")
		d.drop(n.TxSig)
		d.emit(u)
	}
}

// sweep emits entries that waited past the dedup timeout without enrichment.
func (d *dedupBuffer) sweep(now time.Time) {
	var kept []string
	for _, sig := range d.order {
		e, ok := d.entries[sig]
		if !ok {
			continue
		}
		if now.Sub(e.added) < d.opts.DedupTimeout {
			kept = append(kept, sig)
			continue
		}
		d.log.Warn().
			Str("tx_sig", sig).
			Str("pair", e.update.Pair).
			Dur("waited", now.Sub(e.added)).
			Msg("enrichment timed out, emitting without volume_usd")
		metrics.RecordDedupTimeout()
		delete(d.entries, sig)
		d.emit(e.update)
	}
	d.order = kept
}

func (d *dedupBuffer) drop(sig string) {
	delete(d.entries, sig)
	for i, s := range d.order {
		if s == sig {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// evictOverCap emits and removes the oldest entries once the buffer exceeds
// its cap, protecting memory when the enrichment job stalls.
func (d *dedupBuffer) evictOverCap() {
	for len(d.entries) > d.opts.MaxBuffered && len(d.order) > 0 {
		sig := d.order[0]
		d.order = d.order[1:]
		e, ok := d.entries[sig]
		if !ok {
			continue
		}
		delete(d.entries, sig)
		d.log.Warn().Str("tx_sig", sig).Msg("dedup buffer full, emitting oldest entry early")
		d.emit(e.update)
	}
}
