package testutil

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
)

var testSigningKey = []byte("test-signing-key")

// NewJWT returns an HS256-signed JWT expiring at exp.
// A zero exp produces a token without an exp claim.
func NewJWT(tb testing.TB, subject string, exp time.Time) string {
	tb.Helper()

	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
	}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	if err != nil {
		tb.Fatalf("failed to sign token: %v", err)
	}
	return token
}

// HealthServer is a plaintext gRPC server on IPv4 loopback exposing the standard health
// service. It records the incoming metadata of every call.
type HealthServer struct {
	// Addr is the "127.0.0.1:port" address the server listens on.
	Addr string

	mu       sync.Mutex
	metadata []metadata.MD
}

// NewHealthServer starts a HealthServer that is stopped via tb.Cleanup.
func NewHealthServer(tb testing.TB) *HealthServer {
	tb.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("failed to create IPv4 listener: %v", err)
	}

	hs := &HealthServer{Addr: listener.Addr().String()}

	server := grpc.NewServer(
		grpc.UnaryInterceptor(func(
			ctx context.Context,
			req interface{},
			_ *grpc.UnaryServerInfo,
			handler grpc.UnaryHandler,
		) (interface{}, error) {
			hs.record(ctx)
			return handler(ctx, req)
		}),
		grpc.StreamInterceptor(func(
			srv interface{},
			ss grpc.ServerStream,
			_ *grpc.StreamServerInfo,
			handler grpc.StreamHandler,
		) error {
			hs.record(ss.Context())
			return handler(srv, ss)
		}),
	)
	healthpb.RegisterHealthServer(server, health.NewServer())

	go func() {
		_ = server.Serve(listener)
	}()
	tb.Cleanup(server.Stop)

	return hs
}

func (s *HealthServer) record(ctx context.Context) {
	md, _ := metadata.FromIncomingContext(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata = append(s.metadata, md.Copy())
}

// Metadata returns the incoming metadata recorded so far, one entry per call.
func (s *HealthServer) Metadata() []metadata.MD {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]metadata.MD, len(s.metadata))
	copy(out, s.metadata)
	return out
}

// LastAuthorization returns the authorization metadata of the most recent call.
func (s *HealthServer) LastAuthorization() string {
	all := s.Metadata()
	if len(all) == 0 {
		return ""
	}
	values := all[len(all)-1].Get("authorization")
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
