package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/omnipair/omnipair-indexer/internal/config"
	"github.com/omnipair/omnipair-indexer/internal/dispatch"
	"github.com/omnipair/omnipair-indexer/internal/handlers"
	"github.com/omnipair/omnipair-indexer/internal/hub"
	"github.com/omnipair/omnipair-indexer/internal/logging"
	"github.com/omnipair/omnipair-indexer/internal/metrics"
	"github.com/omnipair/omnipair-indexer/internal/notify"
	"github.com/omnipair/omnipair-indexer/internal/relay"
	"github.com/omnipair/omnipair-indexer/internal/source"
	"github.com/omnipair/omnipair-indexer/internal/store"
	"github.com/omnipair/omnipair-indexer/internal/stream"
	"github.com/omnipair/omnipair-indexer/internal/supervisor"
	"github.com/omnipair/omnipair-indexer/internal/ws"
)

func main() {
	debug := flag.Bool("debug", false, "force debug logging regardless of LOG_LEVEL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("program", cfg.ProgramID).Bool("production", cfg.Production()).Msg("starting omnipair indexer")

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	st, err := store.Open(openCtx, cfg.DatabaseURL, log)
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("datastore unavailable")
		os.Exit(1)
	}
	defer st.Close()
	st.GuardStalePositions = cfg.GuardStalePositions

	broadcast := hub.New(cfg.BroadcastCapacity)
	defer broadcast.Close()

	handler := handlers.New(st, broadcast, log)
	dispatcher := dispatch.New(handler, st, log)

	feed := source.New(source.Config{
		Endpoint:  cfg.UpstreamURL,
		Token:     cfg.UpstreamAPIKey,
		ProgramID: cfg.ProgramID,
		Insecure:  cfg.UpstreamInsecure,
	}, log)

	listener := notify.New(cfg.DatabaseURL, broadcast, log, notify.Options{
		DedupTimeout: time.Duration(cfg.DedupTimeoutSecs) * time.Second,
		TickInterval: time.Duration(cfg.DedupTickSecs) * time.Second,
	})

	sup := supervisor.New(log)
	sup.Add("source", func(ctx context.Context) error {
		err := feed.Run(ctx, dispatcher)
		if errors.Is(err, source.ErrFatal) {
			return fmt.Errorf("%w: %v", supervisor.ErrPermanent, err)
		}
		return err
	})
	sup.Add("db-listener", listener.Run)

	if cfg.GRPCPort > 0 {
		grpcSrv := stream.NewServer(stream.Config{
			Addr:           fmt.Sprintf(":%d", cfg.GRPCPort),
			Production:     cfg.Production(),
			AllowedOrigins: cfg.AllowedOrigins,
			MaxLag:         cfg.MaxLagThreshold,
		}, broadcast, log)
		sup.Add("grpc", grpcSrv.Run)
	}
	if cfg.WebsocketPort > 0 {
		wsSrv := ws.NewServer(ws.Config{
			Addr:      fmt.Sprintf(":%d", cfg.WebsocketPort),
			ConnRate:  cfg.WSConnRate,
			ConnBurst: cfg.WSConnBurst,
		}, broadcast, log)
		sup.Add("websocket", wsSrv.Run)
	}
	if cfg.HealthPort > 0 {
		sup.Add("metrics", func(ctx context.Context) error {
			return metrics.Serve(ctx, fmt.Sprintf(":%d", cfg.HealthPort), log)
		})
	}
	if cfg.NATSURL != "" {
		natsRelay := relay.New(relay.Config{
			URL:     cfg.NATSURL,
			Subject: cfg.NATSSubject,
		}, broadcast, log)
		sup.Add("relay", natsRelay.Run)
	}

	err = sup.Run(ctx)
	switch {
	case err == nil || errors.Is(err, context.Canceled):
		log.Info().Msg("shut down cleanly")
	default:
		log.Error().Err(err).Msg("exiting after unrecoverable failure")
		os.Exit(1)
	}
}
