package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"golang.org/x/oauth2"
)

// DefaultTokenResponse is served by NewMockAuthServer when no handler is given.
const DefaultTokenResponse = `{
	"token_type": "Bearer",
	"access_token": "mock-access-token",
	"scope": "read:data",
	"expires_in": 86400
}`

// NewLocalHTTPServer starts an HTTP server bound to IPv4 loopback only.
// The sandbox blocks IPv6 listeners, so force tcp4 to keep tests runnable.
func NewLocalHTTPServer(tb testing.TB, handler http.Handler) *httptest.Server {
	tb.Helper()

	server := httptest.NewUnstartedServer(handler)
	server.Listener = listenTCP4(tb)
	server.Start()
	tb.Cleanup(server.Close)

	return server
}

// NewLocalTLSServer starts an HTTPS server bound to IPv4 loopback only.
// Use server.Client() to obtain a client trusting its certificate.
func NewLocalTLSServer(tb testing.TB, handler http.Handler) *httptest.Server {
	tb.Helper()

	server := httptest.NewUnstartedServer(handler)
	server.Listener = listenTCP4(tb)
	server.StartTLS()
	tb.Cleanup(server.Close)

	return server
}

func listenTCP4(tb testing.TB) net.Listener {
	tb.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("failed to create IPv4 listener: %v", err)
	}
	return listener
}

// RoundTripFunc allows inlining http.RoundTripper implementations.
type RoundTripFunc func(*http.Request) (*http.Response, error)

// RoundTrip calls the underlying function.
func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// RecordedRequest is a snapshot of a request received by MockAuthServer.
type RecordedRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// MockAuthServer simulates an authentication server token endpoint without real sockets.
// It records requests and serves responses through a custom RoundTripper.
type MockAuthServer struct {
	// Host is the tenant host to configure clients with.
	Host string
	// URL is the https base URL of the server.
	URL string
	// Ctx carries the mock HTTP client under oauth2.HTTPClient.
	Ctx context.Context
	// Client is an *http.Client routed to the mock.
	Client *http.Client

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewMockAuthServer builds a mock token endpoint backed by an in-memory RoundTripper.
// If handler is nil, it answers every request with DefaultTokenResponse.
//
// http.DefaultTransport and http.DefaultClient are routed to the mock for the duration
// of the test, so tests using it must not run in parallel.
func NewMockAuthServer(tb testing.TB, handler RoundTripFunc) *MockAuthServer {
	tb.Helper()

	server := &MockAuthServer{
		Host: "mock-auth.example.com",
		URL:  "https://mock-auth.example.com",
	}

	if handler == nil {
		handler = StaticJSONResponse(DefaultTokenResponse)
	}

	rt := RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		var body []byte
		if req.Body != nil {
			var err error
			body, err = io.ReadAll(req.Body)
			if err != nil {
				return nil, fmt.Errorf("mock auth server: read body: %w", err)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
		}

		server.mu.Lock()
		server.requests = append(server.requests, RecordedRequest{
			Method: req.Method,
			URL:    req.URL.String(),
			Header: req.Header.Clone(),
			Body:   body,
		})
		server.mu.Unlock()

		return handler(req)
	})

	prevTransport := http.DefaultTransport
	prevClient := http.DefaultClient
	http.DefaultTransport = rt
	http.DefaultClient = &http.Client{Transport: rt}
	tb.Cleanup(func() {
		http.DefaultTransport = prevTransport
		http.DefaultClient = prevClient
	})

	server.Client = &http.Client{Transport: rt}
	server.Ctx = context.WithValue(context.Background(), oauth2.HTTPClient, server.Client)

	return server
}

// Requests returns a copy of the requests received so far.
func (m *MockAuthServer) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestCount returns how many requests the server received.
func (m *MockAuthServer) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Close is a no-op to mirror httptest.Server usage in tests.
func (m *MockAuthServer) Close() {}

// StaticJSONResponse returns a RoundTripper that always responds 200 with the provided JSON body.
func StaticJSONResponse(body string) RoundTripFunc {
	return JSONResponse(http.StatusOK, body)
}

// JSONResponse returns a RoundTripper that always responds with status and the provided JSON body.
func JSONResponse(status int, body string) RoundTripFunc {
	return func(req *http.Request) (*http.Response, error) {
		header := make(http.Header)
		header.Set("Content-Type", "application/json")
		return &http.Response{
			StatusCode: status,
			Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
			Header:     header,
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    req,
		}, nil
	}
}

// TokenResponse returns a RoundTripper answering with a successful token response.
func TokenResponse(tokenType, accessToken, scope string) RoundTripFunc {
	return StaticJSONResponse(fmt.Sprintf(`{"token_type":%q,"access_token":%q,"scope":%q}`,
		tokenType, accessToken, scope))
}
