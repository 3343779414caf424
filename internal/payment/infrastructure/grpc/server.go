package grpc

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-check name the payment status service reports under.
const ServiceName = "payment.v1.PaymentStatus"

type Server struct {
	gs     *grpc.Server
	health *health.Server
}

func NewServer() *Server {
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Server{gs: gs, health: hs}
}

// Serve marks the service as serving and blocks until lis is closed or Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s.gs.Serve(lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.gs.GracefulStop()
}

func Run(addr string, srv *Server) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		_ = srv.Serve(lis)
	}()
	return nil
}
