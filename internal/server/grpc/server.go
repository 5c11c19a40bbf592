package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/capstone/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported alongside the overall
// ("") status.
const ServiceName = "capstone.records"

// Pinger reports database liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type GRPCServer struct {
	address   string
	logger    logging.Logger
	db        Pinger
	interval  time.Duration
	health    *health.Server
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, db Pinger, interval time.Duration, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		db:        db,
		interval:  interval,
		health:    health.NewServer(),
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.errorInterceptor, s.principalInterceptor))

	// registers service
	healthpb.RegisterHealthServer(srv, s.health)

	s.checkHealth(ctx)
	go s.watchHealth(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
