package grpcclient

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/systemathics/go-apis/config"
	"github.com/systemathics/go-apis/endpoint"
	"github.com/systemathics/go-apis/internal/testutil"
	"github.com/systemathics/go-apis/oauth2client"
	publictestutil "github.com/systemathics/go-apis/testutil"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", raw, err)
	}
	return u
}

func checkHealth(t *testing.T, conn *grpc.ClientConn) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING, got %v", resp.GetStatus())
	}
}

func TestNewBuilder(t *testing.T) {
	builder := NewBuilder()

	if builder == nil {
		t.Fatal("builder should not be nil")
	}
}

func TestBuilder_WithEndpointConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      endpoint.Config
		insecure bool
		want     string
	}{
		{name: "default", want: endpoint.DefaultEndpoint},
		{name: "override", cfg: endpoint.Config{Override: "grpc.example.com:9090"}, want: "https://grpc.example.com:9090"},
		{name: "insecure", cfg: endpoint.Config{Override: "localhost:9090"}, insecure: true, want: "http://localhost:9090"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder := NewBuilder().WithEndpointConfig(tt.cfg, tt.insecure)

			if builder.endpointErr != nil {
				t.Fatalf("unexpected error: %v", builder.endpointErr)
			}
			if builder.endpoint.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, builder.endpoint.String())
			}
		})
	}
}

func TestBuilder_WithCredentials(t *testing.T) {
	provider := oauth2client.NewProvider()
	cfg := oauth2client.Config{StaticToken: "token"}

	builder := NewBuilder().WithCredentials(provider, cfg)

	if !builder.authEnabled {
		t.Error("credentials should be enabled")
	}
	if builder.provider != provider {
		t.Error("provider not stored")
	}
	if builder.credentials != cfg {
		t.Errorf("unexpected credentials: %v", builder.credentials)
	}
}

func TestBuilder_WithDialOptions(t *testing.T) {
	builder := NewBuilder().
		WithDialOptions(grpc.WithUserAgent("a")).
		WithDialOptions(grpc.WithUserAgent("b"), grpc.WithUserAgent("c"))

	if len(builder.dialOpts) != 3 {
		t.Errorf("expected 3 dial options, got %d", len(builder.dialOpts))
	}
}

func TestBuilder_Build_DefaultEndpoint(t *testing.T) {
	conn, err := NewBuilder().Build(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer conn.Close()

	if conn.Target() != "grpc.ganymede.cloud:443" {
		t.Errorf("unexpected target: %s", conn.Target())
	}
}

func TestBuilder_Build_TargetPort(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		want     string
	}{
		{name: "https default port", endpoint: "https://api.example.com", want: "api.example.com:443"},
		{name: "http default port", endpoint: "http://api.example.com", want: "api.example.com:80"},
		{name: "explicit port", endpoint: "https://api.example.com:9443", want: "api.example.com:9443"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := NewBuilder().WithEndpoint(mustParse(t, tt.endpoint)).Build(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer conn.Close()

			if conn.Target() != tt.want {
				t.Errorf("expected target %q, got %q", tt.want, conn.Target())
			}
		})
	}
}

func TestBuilder_Build_InvalidEndpoint(t *testing.T) {
	_, err := NewBuilder().
		WithEndpointConfig(endpoint.Config{Override: "ftp://files.example.com"}, false).
		Build(context.Background())
	if err == nil {
		t.Fatal("expected error for unsupported scheme")
	}

	var cfgErr *endpoint.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected *endpoint.ConfigurationError, got %T: %v", err, err)
	}
	if !strings.HasPrefix(err.Error(), "grpcclient: ") {
		t.Errorf("expected grpcclient prefix, got %q", err.Error())
	}
}

func TestBuilder_Build_EmptyHost(t *testing.T) {
	_, err := NewBuilder().WithEndpoint(&url.URL{Scheme: "https"}).Build(context.Background())
	if err == nil {
		t.Fatal("expected error for empty host")
	}
	if !strings.Contains(err.Error(), "endpoint host is required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBuilder_Build_MissingCredentials(t *testing.T) {
	_, err := NewBuilder().
		WithCredentials(nil, oauth2client.Config{}).
		Build(context.Background())
	if !errors.Is(err, oauth2client.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestBuilder_Build_StaticTokenReachesServer(t *testing.T) {
	server := testutil.NewHealthServer(t)

	conn, err := NewBuilder().
		WithEndpointConfig(endpoint.Config{Override: server.Addr}, true).
		WithCredentials(nil, oauth2client.Config{StaticToken: "static-token"}).
		Build(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer conn.Close()

	checkHealth(t, conn)

	if got := server.LastAuthorization(); got != "Bearer static-token" {
		t.Errorf("expected authorization 'Bearer static-token', got %q", got)
	}
}

func TestBuilder_Build_ExchangedTokenReachesServer(t *testing.T) {
	server := testutil.NewHealthServer(t)
	auth := publictestutil.NewMockAuthServer(t, publictestutil.TokenResponse("Bearer", "exchanged-token", ""))

	provider := oauth2client.NewProvider(oauth2client.WithCache(oauth2client.NewMemoryCache()))

	conn, err := NewBuilder().
		WithEndpoint(mustParse(t, "http://"+server.Addr)).
		WithCredentials(provider, oauth2client.Config{
			ClientID:     "test-client",
			ClientSecret: "test-secret",
			TenantHost:   auth.Host,
		}).
		WithPrefetch().
		Build(auth.Ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer conn.Close()

	if auth.RequestCount() != 1 {
		t.Errorf("expected prefetch to exchange once, got %d requests", auth.RequestCount())
	}

	checkHealth(t, conn)
	checkHealth(t, conn)

	if got := server.LastAuthorization(); got != "Bearer exchanged-token" {
		t.Errorf("expected authorization 'Bearer exchanged-token', got %q", got)
	}
	if auth.RequestCount() != 1 {
		t.Errorf("expected cached token to be reused, got %d requests", auth.RequestCount())
	}
}

func TestBuilder_Build_PrefetchFailure(t *testing.T) {
	auth := publictestutil.NewMockAuthServer(t, publictestutil.JSONResponse(401, `{"error":"access_denied"}`))

	_, err := NewBuilder().
		WithEndpoint(mustParse(t, "http://127.0.0.1:1")).
		WithCredentials(nil, oauth2client.Config{
			ClientID:     "test-client",
			ClientSecret: "test-secret",
			TenantHost:   auth.Host,
		}).
		WithPrefetch().
		Build(auth.Ctx)
	if err == nil {
		t.Fatal("expected prefetch error")
	}

	var exchangeErr *oauth2client.TokenExchangeError
	if !errors.As(err, &exchangeErr) {
		t.Fatalf("expected *oauth2client.TokenExchangeError, got %T: %v", err, err)
	}
	if exchangeErr.StatusCode != 401 {
		t.Errorf("expected status 401, got %d", exchangeErr.StatusCode)
	}
}

func TestFromConfig(t *testing.T) {
	server := testutil.NewHealthServer(t)

	cfg := config.Config{
		Credentials: oauth2client.Config{StaticToken: "from-config"},
		Endpoint:    endpoint.Config{Override: server.Addr},
		Insecure:    true,
	}

	conn, err := FromConfig(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer conn.Close()

	checkHealth(t, conn)

	if got := server.LastAuthorization(); got != "Bearer from-config" {
		t.Errorf("expected authorization 'Bearer from-config', got %q", got)
	}
}
