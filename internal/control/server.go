package control

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/signalsfoundry/festival-simulator/internal/logging"
	"github.com/signalsfoundry/festival-simulator/internal/observability"
)

// NewServer assembles a gRPC server exposing srv plus the standard health
// service. collector may be nil.
//
// The health server reports SERVING for both the empty service name and
// ServiceName; callers flip it to NOT_SERVING on shutdown.
func NewServer(srv Server, log logging.Logger, collector *observability.ControlCollector, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	base := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			RequestIDUnaryServerInterceptor(log),
			TracingUnaryServerInterceptor(),
			collector.UnaryServerInterceptor(),
		),
	}
	gs := grpc.NewServer(append(base, opts...)...)
	RegisterServer(gs, srv)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)

	return gs, hs
}
