// Package grpc serves the standard gRPC health checking protocol for the auth
// server. Serving status follows a periodic storage probe.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name clients may query besides "".
const ServiceName = "gophauth.Auth"

const probeTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthServer struct {
	address  string
	logger   logging.Logger
	probe    Pinger
	interval time.Duration
	metrics  *metrics.Registry
	health   *health.Server
}

// NewHealthServer returns a server that is NOT_SERVING until the first
// successful probe. reg may be nil.
func NewHealthServer(address string, l logging.Logger, probe Pinger, interval time.Duration, reg *metrics.Registry) *HealthServer {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthServer{
		address:  address,
		logger:   l.With("module", "grpc_health"),
		probe:    probe,
		interval: interval,
		metrics:  reg,
		health:   hs,
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *HealthServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "Starting gRPC health server", "address", s.address)
	return s.Serve(ctx, listen)
}

// Serve serves on l until ctx is cancelled.
func (s *HealthServer) Serve(ctx context.Context, l net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	go s.probeLoop(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC health server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	if err := srv.Serve(l); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

func (s *HealthServer) probeLoop(ctx context.Context) {
	s.probeOnce(ctx)
	if s.interval <= 0 {
		return
	}

	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.probeOnce(ctx)
		}
	}
}

func (s *HealthServer) probeOnce(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	err := s.probe.Ping(pctx)
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		if ctx.Err() == nil {
			s.logger.Warn(ctx, "storage probe failed", "error", err)
		}
	}
	s.metrics.SetStorageUp(err == nil)
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
