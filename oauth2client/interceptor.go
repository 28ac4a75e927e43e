package oauth2client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"
)

// authorizationMetadataKey is AuthorizationKey as gRPC carries it (lowercase).
const authorizationMetadataKey = "authorization"

// UnaryClientInterceptor returns a gRPC unary client interceptor that adds the bearer
// credential resolved for cfg to the request metadata.
//
// The interceptor adds the credential as "authorization: <type> <token>" to the outgoing
// request context metadata. If credential resolution fails, the RPC call is aborted with an error.
// Resolution respects the RPC context's cancellation and deadline.
//
// Usage:
//
//	conn, err := grpc.NewClient(
//	    "grpc.ganymede.cloud:443",
//	    grpc.WithUnaryInterceptor(provider.UnaryClientInterceptor(cfg)),
//	)
func (p *Provider) UnaryClientInterceptor(cfg Config) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		cred, err := p.GetToken(ctx, cfg)
		if err != nil {
			return fmt.Errorf("oauth2client: failed to get token: %w", err)
		}

		ctx = metadata.AppendToOutgoingContext(ctx, authorizationMetadataKey, cred.Value)

		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// StreamClientInterceptor returns a gRPC stream client interceptor that adds the bearer
// credential resolved for cfg to the stream metadata.
// If credential resolution fails, stream creation is aborted with an error.
func (p *Provider) StreamClientInterceptor(cfg Config) grpc.StreamClientInterceptor {
	return func(
		ctx context.Context,
		desc *grpc.StreamDesc,
		cc *grpc.ClientConn,
		method string,
		streamer grpc.Streamer,
		opts ...grpc.CallOption,
	) (grpc.ClientStream, error) {
		cred, err := p.GetToken(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("oauth2client: failed to get token: %w", err)
		}

		ctx = metadata.AppendToOutgoingContext(ctx, authorizationMetadataKey, cred.Value)

		return streamer(ctx, desc, cc, method, opts...)
	}
}

var _ credentials.PerRPCCredentials = (*perRPCCredentials)(nil)

// perRPCCredentials is a credentials.PerRPCCredentials backed by a Provider.
type perRPCCredentials struct {
	provider      *Provider
	cfg           Config
	allowInsecure bool
}

// PerRPCCredentials returns gRPC per-RPC credentials that attach the bearer credential
// resolved for cfg to every call. allowInsecure permits them on plaintext connections,
// for local and development deployments only.
//
// Usage:
//
//	conn, err := grpc.NewClient(target,
//	    grpc.WithTransportCredentials(credentials.NewTLS(nil)),
//	    grpc.WithPerRPCCredentials(provider.PerRPCCredentials(cfg, false)),
//	)
func (p *Provider) PerRPCCredentials(cfg Config, allowInsecure bool) credentials.PerRPCCredentials {
	return &perRPCCredentials{provider: p, cfg: cfg, allowInsecure: allowInsecure}
}

// GetRequestMetadata implements credentials.PerRPCCredentials.
func (c *perRPCCredentials) GetRequestMetadata(ctx context.Context, _ ...string) (map[string]string, error) {
	cred, err := c.provider.GetToken(ctx, c.cfg)
	if err != nil {
		return nil, err
	}
	return map[string]string{authorizationMetadataKey: cred.Value}, nil
}

// RequireTransportSecurity implements credentials.PerRPCCredentials.
func (c *perRPCCredentials) RequireTransportSecurity() bool {
	return !c.allowInsecure
}
