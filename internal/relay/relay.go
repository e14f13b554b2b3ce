// Package relay republishes the swap feed to NATS so other backend
// services can consume it without holding a gRPC stream open.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/omnipair/omnipair-indexer/internal/hub"
)

// Config holds the NATS connection settings. An empty URL disables the relay.
type Config struct {
	URL     string
	Subject string // subject prefix, pair address is appended
}

// swapMessage is the JSON wire form on NATS. Lamport amounts are decimal
// strings, matching the gRPC surface.
type swapMessage struct {
	Pair         string  `json:"pair"`
	UserAddress  string  `json:"user_address"`
	IsToken0In   bool    `json:"is_token0_in"`
	AmountIn     string  `json:"amount_in"`
	AmountOut    string  `json:"amount_out"`
	Reserve0     string  `json:"reserve0"`
	Reserve1     string  `json:"reserve1"`
	Price        float32 `json:"price"`
	VolumeUSD    float64 `json:"volume_usd,omitempty"`
	HasVolumeUSD bool    `json:"has_volume_usd"`
	TxSig        string  `json:"tx_sig"`
	Timestamp    int64   `json:"timestamp"`
	Slot         uint64  `json:"slot"`
}

// Relay forwards hub updates to NATS.
type Relay struct {
	cfg  Config
	hub  *hub.Hub
	log  zerolog.Logger
	conn *nats.Conn
}

func New(cfg Config, h *hub.Hub, log zerolog.Logger) *Relay {
	return &Relay{
		cfg: cfg,
		hub: h,
		log: log.With().Str("component", "relay").Logger(),
	}
}

func (r *Relay) connect() error {
	conn, err := nats.Connect(r.cfg.URL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.PingInterval(20*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			r.log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			r.log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}
	r.conn = conn
	r.log.Info().Str("url", conn.ConnectedUrl()).Msg("connected to nats")
	return nil
}

// subject routes per pair so consumers can subscribe to a single market.
func (r *Relay) subject(pair string) string {
	return fmt.Sprintf("%s.%s", r.cfg.Subject, pair)
}

// Run publishes until ctx ends. NATS reconnects are handled by the client;
// publishes during an outage are buffered by the library or dropped with a
// warning when the buffer overflows.
func (r *Relay) Run(ctx context.Context) error {
	if err := r.connect(); err != nil {
		return err
	}
	defer r.conn.Close()

	sub := r.hub.Subscribe()
	for {
		update, err := sub.Next(ctx)
		if err != nil {
			var lagged *hub.LaggedError
			if errors.As(err, &lagged) {
				r.log.Warn().Uint64("skipped", lagged.Skipped).Msg("relay lagging behind hub")
				continue
			}
			if errors.Is(err, hub.ErrClosed) {
				return nil
			}
			return err
		}

		data, err := json.Marshal(toMessage(update))
		if err != nil {
			continue
		}
		if err := r.conn.Publish(r.subject(update.Pair), data); err != nil {
			r.log.Warn().Err(err).Str("pair", update.Pair).Msg("nats publish failed")
		}
	}
}

func toMessage(u hub.SwapUpdate) swapMessage {
	return swapMessage{
		Pair:         u.Pair,
		UserAddress:  u.User,
		IsToken0In:   u.IsToken0In,
		AmountIn:     strconv.FormatUint(u.AmountIn, 10),
		AmountOut:    strconv.FormatUint(u.AmountOut, 10),
		Reserve0:     strconv.FormatUint(u.Reserve0, 10),
		Reserve1:     strconv.FormatUint(u.Reserve1, 10),
		Price:        u.Price,
		VolumeUSD:    u.VolumeUSD,
		HasVolumeUSD: u.HasVolumeUSD,
		TxSig:        u.TxSig,
		Timestamp:    u.Timestamp,
		Slot:         u.Slot,
	}
}
