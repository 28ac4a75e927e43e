package oauth2client

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultAudience is the resource the exchanged token is requested for when Config.Audience is empty.
	DefaultAudience = "https://prod.ganymede-prod"

	// DefaultTenantHost is the authentication server host used when Config.TenantHost is empty.
	DefaultTenantHost = "ganymede-prod.eu.auth0.com"

	tokenPath = "/oauth/token"

	redactedPlaceholder = "[REDACTED]"
	emptyPlaceholder    = "<empty>"
)

// Config describes which credentials are available to a Provider.
//
// Exactly one strategy must be resolvable: either StaticToken is set, or both
// ClientID and ClientSecret are set.
type Config struct {
	// StaticToken is a pre-obtained access token. When set, no exchange happens.
	StaticToken string

	// ClientID is the OAuth2 client identifier used for the client-credentials grant.
	ClientID string

	// ClientSecret is the OAuth2 client secret used for the client-credentials grant.
	ClientSecret string

	// Audience identifies the API the token is requested for. Defaults to DefaultAudience.
	Audience string

	// TenantHost is the host of the authentication server. Defaults to DefaultTenantHost.
	TenantHost string
}

// HasStaticToken reports whether the static-token strategy applies.
func (c Config) HasStaticToken() bool {
	return c.StaticToken != ""
}

// HasClientCredentials reports whether the client-credentials strategy applies.
func (c Config) HasClientCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Validate reports ErrMissingCredentials when neither strategy is configured.
func (c Config) Validate() error {
	if c.HasStaticToken() || c.HasClientCredentials() {
		return nil
	}
	return ErrMissingCredentials
}

// String implements fmt.Stringer, redacting the static token and the client secret.
func (c Config) String() string {
	return fmt.Sprintf("Config{StaticToken: %s, ClientID: %s, ClientSecret: %s, Audience: %s, TenantHost: %s}",
		redact(c.StaticToken), c.ClientID, redact(c.ClientSecret), c.Audience, c.TenantHost)
}

// withDefaults fills Audience and TenantHost when they are unset.
func (c Config) withDefaults() Config {
	if c.Audience == "" {
		c.Audience = DefaultAudience
	}
	if c.TenantHost == "" {
		c.TenantHost = DefaultTenantHost
	}
	return c
}

// validateExchange checks the fields the client-credentials exchange needs.
// Blank values here are programming errors: the caller already chose this strategy.
func (c Config) validateExchange() error {
	fields := []struct {
		name  string
		value string
	}{
		{"client ID", c.ClientID},
		{"client secret", c.ClientSecret},
		{"audience", c.Audience},
		{"tenant host", c.TenantHost},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &InvalidArgumentError{Field: f.name}
		}
	}

	// Only host[:port] is accepted; any other scheme or a path would change the token URL.
	host := c.tenantHost()
	u, err := url.Parse("https://" + host)
	if strings.ContainsAny(host, "/?#@ \t") || err != nil || u.Host != host || u.Hostname() == "" {
		return &InvalidArgumentError{
			Field:  "tenant host",
			Reason: fmt.Sprintf("%q is not a host[:port]", c.TenantHost),
		}
	}
	return nil
}

// tenantHost returns TenantHost with an https:// prefix or trailing slash removed.
func (c Config) tenantHost() string {
	host := strings.TrimSpace(c.TenantHost)
	host = strings.TrimPrefix(host, "https://")
	return strings.TrimRight(host, "/")
}

// tokenURL returns https://{TenantHost}/oauth/token.
func (c Config) tokenURL() string {
	u := url.URL{Scheme: "https", Host: c.tenantHost(), Path: tokenPath}
	return u.String()
}

func redact(value string) string {
	if value == "" {
		return emptyPlaceholder
	}
	return redactedPlaceholder
}
