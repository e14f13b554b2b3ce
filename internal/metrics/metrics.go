// Package metrics exposes Prometheus instrumentation for the indexer
// pipeline: decode throughput, ingest reconnects, and fanout audience.
package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/omnipair/omnipair-indexer/internal/supervisor"
)

var (
	// Decode pipeline
	messagesDecoded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "indexer_messages_decoded_total",
		Help: "Program messages decoded and routed, by message kind",
	}, []string{"kind"})

	decodeSkips = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "indexer_decode_skips_total",
		Help: "Instructions skipped during decode, by reason",
	}, []string{"reason"})

	// Upstream feed
	sourceReconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "indexer_source_reconnects_total",
		Help: "Times the geyser stream was re-established after a drop",
	})

	// Fanout
	wsClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "indexer_ws_clients_active",
		Help: "Current number of connected websocket clients",
	})

	notifyBufferSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "indexer_notify_buffer_size",
		Help: "Swaps waiting in the insert-then-enrich dedup buffer",
	})

	dedupTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "indexer_dedup_timeouts_total",
		Help: "Swaps emitted without volume after the enrichment window expired",
	})

	// System
	memoryUsageBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "indexer_memory_bytes",
		Help: "Current heap allocation in bytes",
	})

	goroutinesActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "indexer_goroutines_active",
		Help: "Current number of active goroutines",
	})
)

func init() {
	prometheus.MustRegister(messagesDecoded)
	prometheus.MustRegister(decodeSkips)
	prometheus.MustRegister(sourceReconnects)
	prometheus.MustRegister(wsClientsActive)
	prometheus.MustRegister(notifyBufferSize)
	prometheus.MustRegister(dedupTimeouts)
	prometheus.MustRegister(memoryUsageBytes)
	prometheus.MustRegister(goroutinesActive)
}

func RecordDecoded(kind string)      { messagesDecoded.WithLabelValues(kind).Inc() }
func RecordDecodeSkip(reason string) { decodeSkips.WithLabelValues(reason).Inc() }
func RecordSourceReconnect()         { sourceReconnects.Inc() }
func SetWSClients(n int)             { wsClientsActive.Set(float64(n)) }
func SetNotifyBufferSize(n int)      { notifyBufferSize.Set(float64(n)) }
func RecordDedupTimeout()            { dedupTimeouts.Inc() }

// Serve exposes /metrics on addr until ctx is cancelled, refreshing the
// system gauges every 10 seconds.
func Serve(ctx context.Context, addr string, log zerolog.Logger) error {
	started := time.Now()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":         "ok",
			"uptime_seconds": int64(time.Since(started).Seconds()),
			"goroutines":     runtime.NumGoroutine(),
		})
	})
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				var ms runtime.MemStats
				runtime.ReadMemStats(&ms)
				memoryUsageBytes.Set(float64(ms.HeapAlloc))
				goroutinesActive.Set(float64(runtime.NumGoroutine()))
			}
		}
	}()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: listen %s: %v", supervisor.ErrPermanent, addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("metrics server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
