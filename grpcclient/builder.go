package grpcclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/systemathics/go-apis/config"
	"github.com/systemathics/go-apis/endpoint"
	"github.com/systemathics/go-apis/oauth2client"
)

// Builder provides a fluent interface for constructing gRPC client connections
// to a resolved API endpoint with bearer-token authentication.
type Builder struct {
	endpoint    *url.URL
	endpointErr error

	// Credential configuration
	authEnabled bool
	provider    *oauth2client.Provider
	credentials oauth2client.Config
	prefetch    bool

	// Additional dial options
	dialOpts []grpc.DialOption
}

// NewBuilder creates a new gRPC client builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithEndpoint sets an already resolved endpoint (see package endpoint).
// An https endpoint is dialed over TLS, an http endpoint in plaintext.
func (b *Builder) WithEndpoint(u *url.URL) *Builder {
	b.endpoint = u
	b.endpointErr = nil
	return b
}

// WithEndpointConfig resolves the endpoint from cfg. When insecure is true the endpoint
// is forced to http. Resolution errors are reported by Build.
func (b *Builder) WithEndpointConfig(cfg endpoint.Config, insecure bool) *Builder {
	resolve := endpoint.Resolve
	if insecure {
		resolve = endpoint.ResolveInsecure
	}
	b.endpoint, b.endpointErr = resolve(cfg)
	return b
}

// WithCredentials attaches a bearer credential resolved by provider for cfg to every RPC.
// A nil provider is replaced by oauth2client.NewProvider().
func (b *Builder) WithCredentials(provider *oauth2client.Provider, cfg oauth2client.Config) *Builder {
	b.authEnabled = true
	b.provider = provider
	b.credentials = cfg
	return b
}

// WithPrefetch makes Build resolve the credential once, so that credential errors
// surface before the first RPC.
func (b *Builder) WithPrefetch() *Builder {
	b.prefetch = true
	return b
}

// WithDialOptions adds custom gRPC dial options.
// These options are applied after the credential and transport options.
func (b *Builder) WithDialOptions(opts ...grpc.DialOption) *Builder {
	b.dialOpts = append(b.dialOpts, opts...)
	return b
}

// Build constructs the gRPC client connection with the configured options.
// Without an endpoint, endpoint.DefaultEndpoint is used.
//
// Returns:
//   - *grpc.ClientConn: gRPC connection (connects lazily)
//   - error: endpoint, credential or dial error
func (b *Builder) Build(ctx context.Context) (*grpc.ClientConn, error) {
	if b.endpointErr != nil {
		return nil, fmt.Errorf("grpcclient: %w", b.endpointErr)
	}

	target := b.endpoint
	if target == nil {
		var err error
		if target, err = endpoint.Resolve(endpoint.Config{}); err != nil {
			return nil, fmt.Errorf("grpcclient: %w", err)
		}
	}
	if target.Hostname() == "" {
		return nil, errors.New("grpcclient: endpoint host is required")
	}

	var opts []grpc.DialOption

	if b.authEnabled {
		if err := b.credentials.Validate(); err != nil {
			return nil, fmt.Errorf("grpcclient: %w", err)
		}

		provider := b.provider
		if provider == nil {
			provider = oauth2client.NewProvider()
		}

		if b.prefetch {
			if _, err := provider.GetToken(ctx, b.credentials); err != nil {
				return nil, fmt.Errorf("grpcclient: credential check failed: %w", err)
			}
		}

		opts = append(opts,
			grpc.WithUnaryInterceptor(provider.UnaryClientInterceptor(b.credentials)),
			grpc.WithStreamInterceptor(provider.StreamClientInterceptor(b.credentials)),
		)
	}

	if endpoint.IsInsecure(target) {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		// TLS with system roots, TLS 1.2 minimum.
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{
			MinVersion: tls.VersionTLS12,
		})))
	}

	opts = append(opts, b.dialOpts...)

	conn, err := grpc.NewClient(endpoint.Target(target), opts...)
	if err != nil {
		return nil, fmt.Errorf("grpcclient: dial failed: %w", err)
	}

	return conn, nil
}

// FromConfig builds a connection to the endpoint described by cfg, authenticated with
// cfg.Credentials. A nil provider is created from cfg.ProviderOptions.
func FromConfig(ctx context.Context, cfg config.Config, provider *oauth2client.Provider) (*grpc.ClientConn, error) {
	if provider == nil {
		provider = oauth2client.NewProvider(cfg.ProviderOptions()...)
	}

	return NewBuilder().
		WithEndpointConfig(cfg.Endpoint, cfg.Insecure).
		WithCredentials(provider, cfg.Credentials).
		Build(ctx)
}
