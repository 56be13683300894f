package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	healthhandler "employee-management/backend/internal/health/handler"
)

// NewGRPCServer returns a gRPC server that serves only grpc.health.v1, instrumented with the global
// OpenTelemetry providers.
func NewGRPCServer(health *healthhandler.Server) *grpc.Server {
	s := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	health.Register(s)
	return s
}
