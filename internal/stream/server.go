// Package stream serves the indexed swap feed to clients over gRPC and
// gRPC-web on a single port.
package stream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/improbable-eng/grpc-web/go/grpcweb"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/omnipair/omnipair-indexer/internal/hub"
	"github.com/omnipair/omnipair-indexer/internal/stream/streampb"
	"github.com/omnipair/omnipair-indexer/internal/supervisor"
)

// DefaultMaxLag is the cumulative number of dropped updates a subscriber
// may accumulate before it is disconnected.
const DefaultMaxLag = 1000

// Config controls the public streaming endpoint.
type Config struct {
	Addr           string
	Production     bool
	AllowedOrigins []string // honored only in production; dev allows any
	MaxLag         uint64
}

// Server implements omnipair.stream.StreamService on top of the broadcast hub.
type Server struct {
	streampb.UnimplementedStreamServiceServer

	cfg Config
	hub *hub.Hub
	log zerolog.Logger
}

func NewServer(cfg Config, h *hub.Hub, log zerolog.Logger) *Server {
	if cfg.MaxLag == 0 {
		cfg.MaxLag = DefaultMaxLag
	}
	return &Server{
		cfg: cfg,
		hub: h,
		log: log.With().Str("component", "grpc").Logger(),
	}
}

// StreamSwapsUpdates pushes matching swaps until the client goes away or
// falls too far behind. A slow reader first loses messages to the ring
// buffer; once its cumulative losses pass MaxLag it is evicted with
// ResourceExhausted so it can reconnect with a clean slate.
func (s *Server) StreamSwapsUpdates(req *streampb.SwapsRequest, srv streampb.StreamService_StreamSwapsUpdatesServer) error {
	ctx := srv.Context()
	remote := "unknown"
	if p, ok := peer.FromContext(ctx); ok {
		remote = p.Addr.String()
	}
	s.log.Info().Str("peer", remote).Str("pair", req.GetPair()).Str("user", req.GetUser()).Msg("stream opened")

	sub := s.hub.Subscribe()
	var lagTotal uint64
	for {
		update, err := sub.Next(ctx)
		var lagged *hub.LaggedError
		switch {
		case err == nil:
		case errors.As(err, &lagged):
			lagTotal += lagged.Skipped
			s.log.Warn().Str("peer", remote).Uint64("skipped", lagged.Skipped).Uint64("total", lagTotal).Msg("subscriber lagging")
			if lagTotal > s.cfg.MaxLag {
				s.log.Warn().Str("peer", remote).Uint64("total", lagTotal).Msg("subscriber exceeded lag threshold, disconnecting")
				return status.Error(codes.ResourceExhausted, "client too slow, connection terminated")
			}
			continue
		case errors.Is(err, hub.ErrClosed):
			return nil
		default:
			return err // stream context done
		}

		// Any successful receive means the reader caught up; accumulated lag
		// is forgiven even when the update is filtered out below.
		if lagTotal > 0 {
			s.log.Info().Str("peer", remote).Uint64("total", lagTotal).Msg("subscriber recovered from lag")
			lagTotal = 0
		}
		if req.GetPair() != "" && req.GetPair() != update.Pair {
			continue
		}
		if req.GetUser() != "" && req.GetUser() != update.User {
			continue
		}
		if err := srv.Send(toProto(update)); err != nil {
			return err
		}
	}
}

func toProto(u hub.SwapUpdate) *streampb.SwapsUpdate {
	return &streampb.SwapsUpdate{
		Pair:         u.Pair,
		UserAddress:  u.User,
		IsToken0In:   u.IsToken0In,
		AmountIn:     strconv.FormatUint(u.AmountIn, 10),
		AmountOut:    strconv.FormatUint(u.AmountOut, 10),
		Reserve0:     strconv.FormatUint(u.Reserve0, 10),
		Reserve1:     strconv.FormatUint(u.Reserve1, 10),
		Price:        u.Price,
		VolumeUsd:    u.VolumeUSD,
		HasVolumeUsd: u.HasVolumeUSD,
		TxSig:        u.TxSig,
		Timestamp:    u.Timestamp,
		Slot:         u.Slot,
	}
}

// originAllowed implements the production CORS allowlist; development
// accepts any origin so local frontends can connect without ceremony.
func (s *Server) originAllowed(origin string) bool {
	if !s.cfg.Production {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// Run serves native gRPC and gRPC-web on cfg.Addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	grpcServer := grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    60 * time.Second,
			Timeout: 20 * time.Second,
		}),
		grpc.MaxConcurrentStreams(256),
	)
	streampb.RegisterStreamServiceServer(grpcServer, s)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("omnipair.stream.StreamService", healthpb.HealthCheckResponse_SERVING)

	if !s.cfg.Production {
		reflection.Register(grpcServer)
		s.log.Info().Msg("reflection enabled for development")
	}

	wrapped := grpcweb.WrapServer(grpcServer,
		grpcweb.WithOriginFunc(s.originAllowed),
	)

	httpServer := &http.Server{
		Addr: s.cfg.Addr,
		Handler: h2c.NewHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case wrapped.IsGrpcWebRequest(r) || wrapped.IsAcceptableGrpcCorsRequest(r):
				wrapped.ServeHTTP(w, r)
			case r.ProtoMajor == 2:
				grpcServer.ServeHTTP(w, r)
			default:
				http.NotFound(w, r)
			}
		}), &http2.Server{}),
	}

	// A port we cannot bind is a deployment problem; restarting will not fix it.
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("%w: listen %s: %v", supervisor.ErrPermanent, s.cfg.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Bool("production", s.cfg.Production).Msg("grpc server listening")
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		healthSrv.SetServingStatus("omnipair.stream.StreamService", healthpb.HealthCheckResponse_NOT_SERVING)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
		s.log.Info().Msg("grpc server shut down")
		return nil
	case err := <-errCh:
		return err
	}
}
