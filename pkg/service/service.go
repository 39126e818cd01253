package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ranorsolutions/http-common-go/pkg/db/postgres"
	logs "github.com/ranorsolutions/http-common-go/pkg/log/logger"
	"github.com/ranorsolutions/svc-routing-go/pkg/auth"
	"github.com/ranorsolutions/svc-routing-go/pkg/metadata"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Service carries the shared dependencies of a routing service: the module
// declarations, the auth strategies routes refer to, and the connections
// module instances use while serving requests.
type Service struct {
	DB                 *sql.DB
	ServiceConnections map[string]*grpc.ClientConn
	Logger             *logs.Logger
	Port               string
	Store              *metadata.Store
	Auth               *auth.Registry
}

type ServiceOption struct {
	GRPCCredential credentials.TransportCredentials
	Strategies     []auth.Strategy
}

// Swapped in tests.
var (
	connectPostgres = postgres.Connect
	dialGRPC        = grpc.Dial
	authFromEnv     = auth.FromEnv
)

// New creates a service from the environment.
func New(serviceOpts ...ServiceOption) (*Service, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	// Create the service logger
	logger, err := logs.New(os.Getenv("SERVICE"), os.Getenv("VERSION"), os.Getenv("IS_TERMINAL") != "true")
	if err != nil {
		log.Fatalf("unable to create service logger")
	}

	// Connect to the Database when one is configured
	var db *sql.DB
	if os.Getenv("DB_HOST") != "" {
		connString := postgres.GetURIFromEnv()
		db, err = connectPostgres(connString)
		if err != nil {
			return nil, fmt.Errorf("failed to create db connection: %v", err)
		}
		logger.Info(fmt.Sprintf("Connected to database %s", connString.HostString()))
	}

	registry, err := authFromEnv(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to configure auth strategies: %w", err)
	}

	grpcOptions := []grpc.DialOption{}
	for _, option := range serviceOpts {
		if option.GRPCCredential != nil {
			grpcOptions = append(grpcOptions, grpc.WithTransportCredentials(option.GRPCCredential))
		}
		for _, s := range option.Strategies {
			registry.Register(s)
		}
	}
	if len(grpcOptions) == 0 {
		grpcOptions = append(grpcOptions, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	// Parse the service dependencies
	services := map[string]*grpc.ClientConn{}
	for _, dep := range strings.Split(os.Getenv("SERVICE_DEPS"), ",") {
		parsed := strings.Split(dep, "@")
		if len(parsed) != 2 {
			continue
		}
		conn, err := dialGRPC(parsed[1], grpcOptions...)
		if err != nil {
			return nil, err
		}
		services[parsed[0]] = conn
		logger.Info("Registered %s service at %s", parsed[0], parsed[1])
	}

	if names := registry.Names(); len(names) > 0 {
		logger.Info("Auth strategies: %s", strings.Join(names, ","))
	}

	return &Service{
		DB:                 db,
		ServiceConnections: services,
		Logger:             logger,
		Port:               port,
		Store:              metadata.NewStore(),
		Auth:               registry,
	}, nil
}

// HandleErr logs err and writes it as the JSON error body with the given status code.
func (s *Service) HandleErr(c *gin.Context, err error, message string, code int) {
	s.Logger.Error(fmt.Sprintf("%s %s", err.Error(), message))
	if message == "" {
		c.JSON(code, gin.H{"error": err.Error()})
	} else {
		c.JSON(code, gin.H{"error": err.Error(), "details": message})
	}
}
