package httpclient

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/systemathics/go-apis/oauth2client"
)

// Builder provides a fluent interface for constructing HTTP clients
// that authenticate with a bearer credential.
type Builder struct {
	// Credential configuration
	provider    *oauth2client.Provider
	credentials oauth2client.Config
	authEnabled bool

	// HTTP client configuration
	timeout         time.Duration
	baseTransport   http.RoundTripper
	followRedirects bool
}

// NewBuilder creates a new HTTP client builder.
func NewBuilder() *Builder {
	return &Builder{
		timeout:         oauth2client.DefaultTimeout,
		followRedirects: true,
	}
}

// WithCredentials enables bearer authentication using provider for cfg.
// A nil provider is replaced by oauth2client.NewProvider().
func (b *Builder) WithCredentials(provider *oauth2client.Provider, cfg oauth2client.Config) *Builder {
	b.provider = provider
	b.credentials = cfg
	b.authEnabled = true
	return b
}

// WithTimeout sets the request timeout for the HTTP client.
// Default is 30 seconds if not specified.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.timeout = timeout
	return b
}

// WithBaseTransport sets a custom base transport.
func (b *Builder) WithBaseTransport(transport http.RoundTripper) *Builder {
	b.baseTransport = transport
	return b
}

// WithoutRedirects disables automatic redirect following.
// By default, the client follows up to 10 redirects.
func (b *Builder) WithoutRedirects() *Builder {
	b.followRedirects = false
	return b
}

// Build constructs the HTTP client with the configured options.
//
// Returns:
//   - *http.Client: Configured HTTP client
//   - error: Error if configuration is invalid
func (b *Builder) Build() (*http.Client, error) {
	if b.authEnabled {
		if err := b.credentials.Validate(); err != nil {
			return nil, fmt.Errorf("httpclient: %w", err)
		}
	}

	transport := b.baseTransport
	if transport == nil {
		transport = http.DefaultTransport
		if httpTransport, ok := transport.(*http.Transport); ok {
			httpTransport = httpTransport.Clone()
			httpTransport.TLSClientConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
			transport = httpTransport
		}
	}

	if b.authEnabled {
		provider := b.provider
		if provider == nil {
			provider = oauth2client.NewProvider()
		}
		transport = NewBearerTransport(provider, b.credentials, transport)
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   b.timeout,
	}

	if !b.followRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return client, nil
}

// NewHTTPClient is a convenience function that creates an HTTP client authenticated
// with provider for cfg. For more configuration options, use Builder instead.
//
// Example:
//
//	provider := oauth2client.NewProvider()
//	client := httpclient.NewHTTPClient(provider, oauth2client.Config{StaticToken: token})
//	resp, err := client.Get("https://api.example.com/data")
func NewHTTPClient(provider *oauth2client.Provider, cfg oauth2client.Config) *http.Client {
	return &http.Client{
		Transport: NewBearerTransport(provider, cfg, nil),
		Timeout:   oauth2client.DefaultTimeout,
	}
}
