// Package grpc is the telemetry gateway: the gRPC endpoint device-status
// channels connect to. Every call must carry a valid session token.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/machinewatch/internal/auth"
	"github.com/dmitrijs2005/machinewatch/internal/common"
	"github.com/dmitrijs2005/machinewatch/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// TelemetryService is the health service name a channel probes to decide
// it is connected.
const TelemetryService = common.TelemetryServiceName

// TokenValidator verifies session tokens.
type TokenValidator interface {
	Validate(raw string) (*auth.Claims, error)
}

type GRPCServer struct {
	address string
	codec   TokenValidator
	health  *health.Server
	logger  logging.Logger
}

func NewGRPCServer(address string, codec TokenValidator, l logging.Logger) *GRPCServer {
	return &GRPCServer{
		address: address,
		codec:   codec,
		health:  health.NewServer(),
		logger:  l.With("module", "telemetry_gateway"),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessTokenInterceptor),
	)

	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(TelemetryService, healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping telemetry gateway...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting telemetry gateway", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
