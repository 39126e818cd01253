package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	httpsvc "github.com/ranorsolutions/svc-routing-go/pkg/http"
	grpcsvc "github.com/ranorsolutions/svc-routing-go/pkg/grpc"
	"github.com/ranorsolutions/svc-routing-go/pkg/service"
	"github.com/soheilhy/cmux"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// Server multiplexes the HTTP routes and the gRPC server over one listener.
type Server struct {
	GRPC     *grpcsvc.GRPCService
	HTTP     *httpsvc.HTTPService
	Listener net.Listener
	Service  *service.Service
	Version  string
}

// New listens on svc.Port and builds the HTTP and gRPC services.
// Modules must be declared on svc.Store before New is called.
func New(svc *service.Service, version string, creds ...grpc.ServerOption) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	httpService, err := httpsvc.New(svc, version)
	if err != nil {
		return nil, fmt.Errorf("failed to create http service: %w", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", svc.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to create net listener: %w", err)
	}

	return &Server{
		GRPC:     grpcsvc.New(svc, creds...),
		HTTP:     httpService,
		Listener: listener,
		Service:  svc,
		Version:  version,
	}, nil
}

// Run serves until ctx is cancelled or a server fails. SERVICE_PROTOCOL=http|grpc
// restricts the protocols served; both are served by default.
func (s *Server) Run(ctx context.Context) error {
	m := cmux.New(s.Listener)
	protocol := os.Getenv("SERVICE_PROTOCOL")

	g, gctx := errgroup.WithContext(ctx)
	if protocol != "http" {
		grpcListener := m.MatchWithWriters(
			cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"),
			cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc+proto"),
		)
		g.Go(func() error { return s.GRPC.Serve(grpcListener) })
	}

	if protocol != "grpc" {
		httpListener := m.Match(cmux.HTTP1Fast())
		g.Go(func() error { return s.HTTP.ListenAndServe(httpListener) })
	}

	g.Go(func() error { return m.Serve() })

	g.Go(func() error {
		<-gctx.Done()
		m.Close()
		if err := s.Shutdown(context.Background()); err != nil {
			return err
		}
		return gctx.Err()
	})

	err := g.Wait()
	s.Service.Logger.Info("run server: %v", err)
	return err
}

// Shutdown stops both servers and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.HTTP != nil {
		if err := s.HTTP.Server.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.GRPC != nil {
		s.GRPC.GracefulStop()
	}
	if s.Listener != nil {
		if err := s.Listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
