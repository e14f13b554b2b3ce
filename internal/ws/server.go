// Package ws broadcasts a trimmed swap feed over plain WebSocket for
// clients that cannot speak gRPC. Each frame carries just the pair, the
// spot price, and the block timestamp.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"
	"golang.org/x/time/rate"

	"github.com/omnipair/omnipair-indexer/internal/hub"
	"github.com/omnipair/omnipair-indexer/internal/metrics"
	"github.com/omnipair/omnipair-indexer/internal/supervisor"
)

// Config controls the websocket endpoint.
type Config struct {
	Addr      string
	ConnRate  float64 // new connections per second; 0 disables limiting
	ConnBurst int
}

type welcomeMessage struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
	Message  string `json:"message"`
}

type swapEventMessage struct {
	Type      string  `json:"type"`
	Pair      string  `json:"pair"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

// Server fans swap updates out to websocket clients.
type Server struct {
	cfg Config
	hub *hub.Hub
	log zerolog.Logger

	upgrader websocket.Upgrader
	limiter  *rate.Limiter

	mu      sync.RWMutex
	clients map[string]*client
}

func NewServer(cfg Config, h *hub.Hub, log zerolog.Logger) *Server {
	var limiter *rate.Limiter
	if cfg.ConnRate > 0 {
		burst := cfg.ConnBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.ConnRate), burst)
	}
	return &Server{
		cfg: cfg,
		hub: h,
		log: log.With().Str("component", "ws").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Browser clients connect from arbitrary frontends; the feed
				// is public and read-only.
				return true
			},
			EnableCompression: true,
		},
		limiter: limiter,
		clients: make(map[string]*client),
	}
}

// Handler exposes /subscribe, /health and /stats.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/subscribe", s.handleSubscribe)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	return mux
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow() {
		http.Error(w, "connection rate exceeded", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{
		id:          uuid.NewString(),
		conn:        conn,
		send:        make(chan []byte, sendQueueSize),
		log:         s.log,
		connectedAt: time.Now(),
	}
	// Queue the welcome before the client is visible to shutdown, which
	// closes every registered send channel.
	welcome, _ := json.Marshal(welcomeMessage{
		Type:     "welcome",
		ClientID: c.id,
		Message:  "Welcome to Omnipair Indexer! You will receive live SwapEvents.",
	})
	c.send <- welcome
	s.register(c)

	go c.writePump()
	go c.readPump(s.unregister)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	stats := map[string]interface{}{
		"connected_clients": s.clientCount(),
		"goroutines":        runtime.NumGoroutine(),
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats["memory_used_percent"] = vm.UsedPercent
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	s.clients[c.id] = c
	total := len(s.clients)
	s.mu.Unlock()
	metrics.SetWSClients(total)
	s.log.Info().Str("client", c.id).Int("total", total).Msg("client connected")
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c.id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.clients, c.id)
	close(c.send)
	total := len(s.clients)
	s.mu.Unlock()
	metrics.SetWSClients(total)
	s.log.Info().Str("client", c.id).Int("total", total).Msg("client disconnected")
}

func (s *Server) clientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// broadcast queues a frame on every client, dropping it for clients whose
// queue is full.
func (s *Server) broadcast(frame []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		select {
		case c.send <- frame:
		default:
			s.log.Warn().Str("client", c.id).Msg("send queue full, dropping frame")
		}
	}
}

// Run serves HTTP and forwards hub updates until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("%w: listen %s: %v", supervisor.ErrPermanent, s.cfg.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("websocket server listening")
		errCh <- httpServer.Serve(ln)
	}()

	go s.forward(ctx)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		s.closeAll()
		s.log.Info().Msg("websocket server shut down")
		return nil
	case err := <-errCh:
		return err
	}
}

// forward turns hub updates into client frames. Ring-buffer lag only costs
// the websocket audience old frames, which is fine for a price ticker.
func (s *Server) forward(ctx context.Context) {
	sub := s.hub.Subscribe()
	for {
		update, err := sub.Next(ctx)
		if err != nil {
			var lagged *hub.LaggedError
			if errors.As(err, &lagged) {
				s.log.Warn().Uint64("skipped", lagged.Skipped).Msg("websocket fanout lagging behind hub")
				continue
			}
			return
		}
		frame, err := json.Marshal(swapEventMessage{
			Type:      "swap_event",
			Pair:      update.Pair,
			Price:     float64(update.Price),
			Timestamp: update.Timestamp,
		})
		if err != nil {
			continue
		}
		s.broadcast(frame)
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		close(c.send)
		delete(s.clients, id)
	}
}
