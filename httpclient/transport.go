package httpclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/systemathics/go-apis/oauth2client"
)

// BearerTransport is an http.RoundTripper that adds the bearer credential resolved
// by an oauth2client.Provider to outgoing HTTP requests.
//
// It wraps an existing transport (typically http.DefaultTransport) and
// sets the Authorization header before each request.
type BearerTransport struct {
	// Base is the underlying HTTP transport. If nil, http.DefaultTransport is used.
	Base http.RoundTripper

	// Provider resolves the credential.
	Provider *oauth2client.Provider

	// Credentials selects the credential strategy.
	Credentials oauth2client.Config
}

// RoundTrip implements http.RoundTripper interface.
// The credential is resolved with the request context, so its cancellation and deadline
// also bound a token exchange.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Provider == nil {
		return nil, errors.New("httpclient: Provider is nil")
	}

	cred, err := t.Provider.GetToken(req.Context(), t.Credentials)
	if err != nil {
		return nil, fmt.Errorf("httpclient: failed to get token: %w", err)
	}

	// Clone the request to avoid modifying the original
	reqClone := req.Clone(req.Context())
	reqClone.Header.Set(oauth2client.AuthorizationKey, cred.Value)

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	return base.RoundTrip(reqClone)
}

// NewBearerTransport creates a new BearerTransport.
// The base transport defaults to http.DefaultTransport if nil.
func NewBearerTransport(provider *oauth2client.Provider, cfg oauth2client.Config, base http.RoundTripper) *BearerTransport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &BearerTransport{
		Base:        base,
		Provider:    provider,
		Credentials: cfg,
	}
}
