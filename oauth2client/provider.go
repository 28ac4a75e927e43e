package oauth2client

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	// AuthorizationKey is the metadata key the bearer credential is attached under.
	AuthorizationKey = "Authorization"

	bearerTokenType = "Bearer"

	// DefaultTimeout bounds a single token exchange round trip.
	DefaultTimeout = 30 * time.Second
)

// Logger is an interface for optional logging in Provider.
// Implementations can log exchange and cache events if desired.
type Logger interface {
	Printf(format string, args ...any)
}

// BearerCredential is a ready-to-attach authorization value of the form "<type> <token>".
type BearerCredential struct {
	Value string
}

// TokenType returns the scheme part of the credential (usually "Bearer").
func (c BearerCredential) TokenType() string {
	tokenType, _, _ := strings.Cut(c.Value, " ")
	return tokenType
}

// AccessToken returns the token part of the credential.
func (c BearerCredential) AccessToken() string {
	_, token, _ := strings.Cut(c.Value, " ")
	return token
}

// Metadata wraps the credential as a single-entry map under AuthorizationKey.
func (c BearerCredential) Metadata() map[string]string {
	return map[string]string{AuthorizationKey: c.Value}
}

func newBearerCredential(tokenType, accessToken string) BearerCredential {
	return BearerCredential{Value: tokenType + " " + accessToken}
}

// Provider resolves bearer credentials from a Config.
// It either reuses a static token or performs an OAuth2 client-credentials exchange,
// and is safe for concurrent use.
type Provider struct {
	cache        TokenCache // optional cache-back of minted tokens
	httpClient   *http.Client
	timeout      time.Duration
	logger       Logger // optional logger
	expiryCheck  bool
	expiryLeeway time.Duration
	now          func() time.Time

	// exchanges collapses concurrent exchanges for identical credentials.
	exchanges singleflight.Group
}

// Option is a functional option for configuring Provider.
type Option func(*Provider)

// WithCache enables writing minted access tokens back into cache, keyed by client ID.
// Later calls with the same client ID reuse the cached token without an exchange,
// until it is cleared with ClearCachedToken.
//
// Only the client ID selects the entry: a Config with the same ClientID but a different
// ClientSecret, Audience or TenantHost gets the cached token as well. Use one Provider
// (or one cache) per audience and tenant, or call ClearCachedToken when they change.
func WithCache(cache TokenCache) Option {
	return func(p *Provider) {
		p.cache = cache
	}
}

// WithHTTPClient sets the HTTP client used for the token exchange.
// If not set, the client stored under oauth2.HTTPClient in the request context is used,
// falling back to http.DefaultClient.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// WithTimeout bounds each token exchange round trip. A zero or negative value
// disables the bound, leaving only the caller's context.
// Default is DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Provider) {
		p.timeout = timeout
	}
}

// WithLogger sets a custom logger for exchange and cache events.
// If not set, no logging will occur.
func WithLogger(logger Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// WithLoggingEnabled enables logging using the default Go log package.
// This is a convenience option that sets the logger to log.Default().
func WithLoggingEnabled() Option {
	return func(p *Provider) {
		p.logger = log.Default()
	}
}

// WithExpiryCheck makes the provider skip cached tokens that are JWTs expiring within leeway.
// Cached tokens that are not JWTs, or carry no exp claim, are still reused.
// Without this option cached tokens are reused unconditionally.
func WithExpiryCheck(leeway time.Duration) Option {
	return func(p *Provider) {
		p.expiryCheck = true
		p.expiryLeeway = leeway
	}
}

// NewProvider creates a credential provider.
//
// Parameters:
//   - opts: Optional configuration options (WithCache, WithHTTPClient, WithTimeout,
//     WithLogger, WithLoggingEnabled, WithExpiryCheck)
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		timeout: DefaultTimeout,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// GetToken returns the bearer credential for cfg.
//
// Strategies are tried in order:
//   - cfg.StaticToken is set: "Bearer <StaticToken>", without any network call
//   - a token cached for cfg.ClientID exists: "Bearer <cached>"
//   - cfg.ClientID and cfg.ClientSecret are set: client-credentials exchange against
//     https://{TenantHost}/oauth/token for Audience
//   - otherwise ErrMissingCredentials
//
// The exchange blocks the calling goroutine for a single round trip and is never retried.
// It is bounded by ctx and by the provider timeout.
//
// Returns:
//   - BearerCredential: Credential of the form "<token_type> <access_token>"
//   - error: ErrMissingCredentials, *InvalidArgumentError, *TokenExchangeError,
//     *MalformedResponseError, or a wrapped transport/context error
func (p *Provider) GetToken(ctx context.Context, cfg Config) (BearerCredential, error) {
	token, err := p.token(ctx, cfg)
	if err != nil {
		return BearerCredential{}, err
	}

	return newBearerCredential(token.TokenType, token.AccessToken), nil
}

// token resolves cfg following the GetToken strategy order. Expiry is set when known:
// from expires_in for a fresh exchange, from the exp claim for a static or cached JWT.
func (p *Provider) token(ctx context.Context, cfg Config) (*oauth2.Token, error) {
	// Use background context if nil
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.HasStaticToken() {
		return bearerToken(cfg.StaticToken), nil
	}

	if !cfg.HasClientCredentials() {
		return nil, ErrMissingCredentials
	}

	if cached, ok := p.cachedToken(cfg.ClientID); ok {
		return bearerToken(cached), nil
	}

	return p.exchangeOnce(ctx, cfg.withDefaults())
}

func bearerToken(accessToken string) *oauth2.Token {
	token := &oauth2.Token{AccessToken: accessToken, TokenType: bearerTokenType}
	if exp, ok := jwtExpiry(accessToken); ok {
		token.Expiry = exp
	}
	return token
}

// GetTokenAsMetadata returns the bearer credential for cfg as a single-entry map
// under AuthorizationKey.
func (p *Provider) GetTokenAsMetadata(ctx context.Context, cfg Config) (map[string]string, error) {
	cred, err := p.GetToken(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return cred.Metadata(), nil
}

// ClearCachedToken drops the token cached for clientID, forcing the next call to exchange again.
func (p *Provider) ClearCachedToken(clientID string) {
	if p.cache != nil {
		p.cache.Delete(clientID)
	}
}

// TokenSource adapts the provider to oauth2.TokenSource for the given configuration.
// Each Token call resolves a credential like GetToken using ctx. Expiry is filled from
// expires_in after an exchange, or from the exp claim of a static or cached JWT; it is
// zero (never expiring) for opaque tokens without expires_in.
func (p *Provider) TokenSource(ctx context.Context, cfg Config) oauth2.TokenSource {
	return &providerTokenSource{ctx: ctx, provider: p, cfg: cfg}
}

// exchangeOnce runs the exchange through the singleflight group so concurrent callers
// with identical credentials share one round trip. Each caller still returns as soon
// as its own ctx is done.
func (p *Provider) exchangeOnce(ctx context.Context, cfg Config) (*oauth2.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("oauth2client: token request aborted: %w", err)
	}

	key := strings.Join([]string{cfg.ClientID, cfg.ClientSecret, cfg.Audience, cfg.TenantHost}, "\x00")

	// The shared exchange must not be cancelled by whichever caller started it.
	// Values (such as oauth2.HTTPClient) are preserved.
	exchangeCtx := context.WithoutCancel(ctx)

	results := p.exchanges.DoChan(key, func() (any, error) {
		runCtx := exchangeCtx
		if p.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(exchangeCtx, p.timeout)
			defer cancel()
		}

		token, err := p.exchange(runCtx, cfg)
		if err != nil {
			p.logf("oauth2client: token exchange for client %s failed: %v", cfg.ClientID, err)
			return nil, err
		}

		if p.cache != nil {
			p.cache.Set(cfg.ClientID, token.AccessToken)
		}

		p.logf("oauth2client: obtained new access token for client %s (type: %s, scope: %q)",
			cfg.ClientID, token.TokenType, token.Extra("scope"))

		return token, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("oauth2client: token request aborted: %w", ctx.Err())
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*oauth2.Token), nil
	}
}

// cachedToken returns a reusable cached token for clientID.
func (p *Provider) cachedToken(clientID string) (string, bool) {
	if p.cache == nil {
		return "", false
	}

	token, ok := p.cache.Get(clientID)
	if !ok || token == "" {
		return "", false
	}

	if p.expiryCheck && expiresWithin(token, p.expiryLeeway, p.now()) {
		p.logf("oauth2client: cached token for client %s is expired or about to expire", clientID)
		return "", false
	}

	return token, true
}

// expiresWithin reports whether token is a JWT whose exp claim falls within leeway of now.
// The signature is not verified: the token is only inspected, never trusted.
func expiresWithin(token string, leeway time.Duration, now time.Time) bool {
	exp, ok := jwtExpiry(token)
	if !ok {
		return false
	}

	return !exp.After(now.Add(leeway))
}

// jwtExpiry returns the exp claim of token, if it is a JWT carrying one.
// The signature is not verified.
func jwtExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}

func (p *Provider) logf(format string, args ...any) {
	// Log only if logger is configured
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}

// providerTokenSource implements oauth2.TokenSource on top of Provider.GetToken.
type providerTokenSource struct {
	ctx      context.Context
	provider *Provider
	cfg      Config
}

// Token implements oauth2.TokenSource.
// The returned token carries its expiry when known, so oauth2.ReuseTokenSource
// asks again once it lapses.
func (ts *providerTokenSource) Token() (*oauth2.Token, error) {
	token, err := ts.provider.token(ts.ctx, ts.cfg)
	if err != nil {
		return nil, err
	}

	// The exchanged token is shared between singleflight callers.
	out := *token
	return &out, nil
}
