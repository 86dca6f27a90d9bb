package telemetry

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/machinewatch/internal/common"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
)

// GRPCDialer connects to the telemetry gateway. A channel counts as open
// once the gateway's health service reports the telemetry service SERVING.
type GRPCDialer struct {
	address  string
	clientID string
	opts     []grpc.DialOption
}

// NewGRPCDialer returns a dialer for address. Extra options are appended to
// the defaults (plaintext transport, token interceptor).
func NewGRPCDialer(address string, opts ...grpc.DialOption) *GRPCDialer {
	return &GRPCDialer{address: address, clientID: uuid.NewString(), opts: opts}
}

// ClientID identifies this installation's channel in gateway logs.
func (d *GRPCDialer) ClientID() string {
	return d.clientID
}

func withMetadata(ctx context.Context, token, clientID string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	md.Set(common.ClientIDHeaderName, clientID)

	return metadata.NewOutgoingContext(ctx, md)
}

func (d *GRPCDialer) interceptor(token string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		return invoker(withMetadata(ctx, token, d.clientID), method, req, reply, cc, opts...)
	}
}

func (d *GRPCDialer) Dial(ctx context.Context, token string) (Channel, error) {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(d.interceptor(token)),
	}, d.opts...)

	conn, err := grpc.NewClient(d.address, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", d.address, err)
	}

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: common.TelemetryServiceName})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("health check: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		_ = conn.Close()
		return nil, fmt.Errorf("gateway status %s", resp.GetStatus())
	}

	return &grpcChannel{conn: conn}, nil
}

type grpcChannel struct {
	conn *grpc.ClientConn
}

func (c *grpcChannel) Close() error {
	return c.conn.Close()
}
