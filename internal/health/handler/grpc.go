package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Checker reports readiness. Implemented by Handler.
type Checker interface {
	Check(ctx context.Context) error
}

// Server is the grpc.health.v1 service. It starts NOT_SERVING; Watch subscribers see every flip.
type Server struct {
	*health.Server
	checker Checker
}

// NewServer returns a health Server that answers Check by running checker.
func NewServer(checker Checker) *Server {
	s := &Server{Server: health.NewServer(), checker: checker}
	s.Server.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Register adds the service to r.
func (s *Server) Register(r grpc.ServiceRegistrar) {
	healthpb.RegisterHealthServer(r, s)
}

// SetServing flips the overall status to SERVING.
func (s *Server) SetServing() {
	s.Server.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
}

// Check reports NOT_SERVING when the readiness probes fail, even after SetServing.
func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	resp, err := s.Server.Check(ctx, req)
	if err != nil || resp.GetStatus() != healthpb.HealthCheckResponse_SERVING || s.checker == nil {
		return resp, err
	}
	if err := s.checker.Check(ctx); err != nil {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return resp, nil
}
