package grpcserver

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Leganyst/booking-core/internal/repository"
)

// ServiceName используется в ответах Health.Check.
const ServiceName = "booking.core"

// HealthServer отдаёт grpc.health.v1 со статусом по пингу хранилища.
type HealthServer struct {
	grpc     *grpc.Server
	health   *health.Server
	pinger   repository.Pinger
	interval time.Duration
	log      logrus.FieldLogger
}

func NewHealthServer(pinger repository.Pinger, interval time.Duration, log logrus.FieldLogger) *HealthServer {
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	return &HealthServer{
		grpc:     gs,
		health:   hs,
		pinger:   pinger,
		interval: interval,
		log:      log,
	}
}

// Serve слушает addr до остановки сервера.
func (s *HealthServer) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.log.WithField("addr", addr).Info("gRPC health server listening")
	return s.grpc.Serve(lis)
}

// Watch обновляет статус, пока не отменён ctx.
func (s *HealthServer) Watch(ctx context.Context) {
	s.Probe(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

// Probe пингует хранилище и выставляет статус сервиса и сервера в целом.
func (s *HealthServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(pingCtx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		s.log.WithError(err).Warn("store ping failed")
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

// Check отвечает так же, как внешнему клиенту Health.Check.
func (s *HealthServer) Check(ctx context.Context, service string) (*healthpb.HealthCheckResponse, error) {
	return s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
}

func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
