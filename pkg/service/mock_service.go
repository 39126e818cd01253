package service

import (
	"github.com/ranorsolutions/http-common-go/pkg/log/logger"
	"github.com/ranorsolutions/svc-routing-go/pkg/auth"
	"github.com/ranorsolutions/svc-routing-go/pkg/metadata"
	"google.golang.org/grpc"
)

// NewMock creates a lightweight Service for tests: no database, no gRPC
// dependencies, an empty module store and the given auth strategies.
func NewMock(strategies ...auth.Strategy) *Service {
	log, _ := logger.New("mock-service", "test", true)

	return &Service{
		ServiceConnections: map[string]*grpc.ClientConn{},
		Logger:             log,
		Port:               "0",
		Store:              metadata.NewStore(),
		Auth:               auth.NewRegistry(strategies...),
	}
}
