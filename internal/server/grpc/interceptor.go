package grpc

import (
	"context"

	"github.com/dmitrijs2005/machinewatch/internal/auth"
	"github.com/dmitrijs2005/machinewatch/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ClientIDHeader identifies the telemetry client instance in logs.
const ClientIDHeader = common.ClientIDHeaderName

type ctxKey string

const claimsKey ctxKey = "claims"

var gatewayRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "machinewatch_telemetry_gateway_requests_total",
		Help: "Telemetry gateway calls by method and authorization result.",
	},
	[]string{"method", "result"},
)

// ClaimsFrom returns the claims of the caller's token, set by the
// interceptors.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok
}

func (s *GRPCServer) authorize(ctx context.Context, method string) (context.Context, error) {
	var accessToken, clientID string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
			accessToken = values[0]
		}
		if values := md.Get(ClientIDHeader); len(values) > 0 {
			clientID = values[0]
		}
	}
	if len(accessToken) == 0 {
		gatewayRequestsTotal.WithLabelValues(method, "missing_token").Inc()
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := s.codec.Validate(accessToken)
	if err != nil {
		gatewayRequestsTotal.WithLabelValues(method, "invalid_token").Inc()
		s.logger.Debug(ctx, "telemetry call rejected", "method", method, "client_id", clientID, "error", err)
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	gatewayRequestsTotal.WithLabelValues(method, "ok").Inc()
	s.logger.Debug(ctx, "telemetry call", "method", method, "client_id", clientID, "username", claims.Username())

	return context.WithValue(ctx, claimsKey, claims), nil
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	ctx, err := s.authorize(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

type authorizedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (a *authorizedStream) Context() context.Context {
	return a.ctx
}

func (s *GRPCServer) streamAccessTokenInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := s.authorize(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &authorizedStream{ServerStream: ss, ctx: ctx})
}
