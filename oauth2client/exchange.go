package oauth2client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	grantTypeClientCredentials = "client_credentials"

	// maxResponseBodySize caps how much of the token response is read (1 MiB).
	maxResponseBodySize = 1 << 20
)

// tokenRequest is the JSON body of the client-credentials exchange.
type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
	Audience     string `json:"audience"`
}

// String implements fmt.Stringer, redacting the client secret.
func (r tokenRequest) String() string {
	return fmt.Sprintf("tokenRequest{ClientID: %s, ClientSecret: %s, GrantType: %s, Audience: %s}",
		r.ClientID, redact(r.ClientSecret), r.GrantType, r.Audience)
}

// tokenResponse is the JSON body returned by the authentication server.
type tokenResponse struct {
	TokenType   string `json:"token_type"`
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
	ExpiresIn   int64  `json:"expires_in"`
}

// errorResponse is an RFC 6749 section 5.2 error body.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// exchange performs a single client-credentials round trip against cfg.TenantHost.
// cfg must already carry its defaults.
func (p *Provider) exchange(ctx context.Context, cfg Config) (*oauth2.Token, error) {
	if err := cfg.validateExchange(); err != nil {
		return nil, err
	}

	endpoint := cfg.tokenURL()
	payload, err := json.Marshal(tokenRequest{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		GrantType:    grantTypeClientCredentials,
		Audience:     cfg.Audience,
	})
	if err != nil {
		return nil, fmt.Errorf("oauth2client: failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("oauth2client: failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client(ctx).Do(req)
	if err != nil {
		return nil, fmt.Errorf("oauth2client: token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("oauth2client: failed to read token response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, newTokenExchangeError(endpoint, resp, body)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &MalformedResponseError{Body: string(body), Err: err}
	}
	if tr.TokenType == "" || tr.AccessToken == "" {
		return nil, &MalformedResponseError{Body: string(body)}
	}

	token := &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
	}
	if tr.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	return token.WithExtra(map[string]any{"scope": tr.Scope}), nil
}

// client picks the HTTP client for the exchange: the configured one, then the one
// stored under oauth2.HTTPClient in ctx, then http.DefaultClient.
func (p *Provider) client(ctx context.Context) *http.Client {
	if p.httpClient != nil {
		return p.httpClient
	}
	if c, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok && c != nil {
		return c
	}
	return http.DefaultClient
}

func newTokenExchangeError(endpoint string, resp *http.Response, body []byte) *TokenExchangeError {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}

	exErr := &TokenExchangeError{
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Reason:     reason,
	}

	var oauthErr errorResponse
	if err := json.Unmarshal(body, &oauthErr); err == nil {
		exErr.Code = oauthErr.Error
		exErr.Description = oauthErr.ErrorDescription
	}

	return exErr
}
