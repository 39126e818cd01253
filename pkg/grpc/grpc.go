package grpc

import (
	"net"

	"github.com/ranorsolutions/svc-routing-go/pkg/service"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// GRPCService encapsulates a gRPC server and its configuration.
type GRPCService struct {
	Server  *grpc.Server
	Health  *health.Server
	Service *service.Service
}

// New creates a gRPC server with a health service reporting one status per declared module.
func New(svc *service.Service, opts ...grpc.ServerOption) *GRPCService {
	server := grpc.NewServer(opts...)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)

	if svc != nil && svc.Store != nil {
		for _, module := range svc.Store.Modules() {
			healthServer.SetServingStatus(module, grpc_health_v1.HealthCheckResponse_SERVING)
		}
	}

	if svc != nil && svc.Logger != nil {
		svc.Logger.Info("gRPC reflection enabled")
		reflection.Register(server)
	}

	return &GRPCService{
		Server:  server,
		Health:  healthServer,
		Service: svc,
	}
}

// Register registers a gRPC service implementation (auto-generated from .proto).
func (g *GRPCService) Register(registerFunc func(*grpc.Server)) {
	registerFunc(g.Server)
}

// Serve starts the gRPC server on the provided listener.
func (g *GRPCService) Serve(l net.Listener) error {
	g.Service.Logger.Info("gRPC server listening on %s", l.Addr().String())
	return g.Server.Serve(l)
}

// GracefulStop marks every module as not serving and shuts down the server cleanly.
func (g *GRPCService) GracefulStop() {
	g.Service.Logger.Info("Stopping gRPC server...")
	g.Health.Shutdown()
	g.Server.GracefulStop()
}
