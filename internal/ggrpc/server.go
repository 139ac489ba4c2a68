// Package ggrpc exposes watchdog health through the standard gRPC health service.
package ggrpc

import (
	"context"
	"log/slog"
	"net"

	"github.com/gordian-engine/gmwdg/gwatchdog"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type HealthServer struct {
	log *slog.Logger

	service string
	health  *health.Server

	done chan struct{}
}

type HealthServerConfig struct {
	Listener net.Listener

	// Service name reported alongside the overall "" service.
	Service string
}

// NewHealthServer starts a gRPC server on cfg.Listener
// with the health and reflection services registered.
// Both the configured service and the overall server
// report NOT_SERVING until the first [*HealthServer.SetReport].
func NewHealthServer(ctx context.Context, log *slog.Logger, cfg HealthServerConfig) *HealthServer {
	if cfg.Listener == nil {
		panic("BUG: listener for the grpc server is nil")
	}

	srv := &HealthServer{
		log: log,

		service: cfg.Service,
		health:  health.NewServer(),

		done: make(chan struct{}),
	}
	srv.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)

	gs := grpc.NewServer()

	go srv.serve(cfg.Listener, gs)
	go srv.waitForShutdown(ctx, gs)

	return srv
}

// Wait blocks until the server has stopped.
func (s *HealthServer) Wait() {
	<-s.done
}

// SetReport updates the served status from r.
// It is safe to use as [gwatchdog.SupervisorConfig.OnReport].
func (s *HealthServer) SetReport(r gwatchdog.Report) {
	if r.Healthy() {
		s.setStatus(healthpb.HealthCheckResponse_SERVING)
	} else {
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	}
}

func (s *HealthServer) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	if s.service != "" {
		s.health.SetServingStatus(s.service, st)
	}
}

func (s *HealthServer) waitForShutdown(ctx context.Context, gs *grpc.Server) {
	select {
	case <-s.done:
		return
	case <-ctx.Done():
		// Watchers get a final NOT_SERVING before the server stops.
		s.health.Shutdown()
		gs.Stop()
	}
}

func (s *HealthServer) serve(ln net.Listener, gs *grpc.Server) {
	defer close(s.done)

	healthpb.RegisterHealthServer(gs, s.health)
	reflection.Register(gs)

	if err := gs.Serve(ln); err != nil {
		if err != grpc.ErrServerStopped {
			s.log.Error("GRPC server stopped with error", "err", err)
		}
	}
}
