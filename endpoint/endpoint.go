package endpoint

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

const (
	// DefaultHost is the production gRPC API host.
	DefaultHost = "grpc.ganymede.cloud"

	// DefaultEndpoint is the production gRPC API endpoint.
	DefaultEndpoint = "https://" + DefaultHost

	secureScheme   = "https"
	insecureScheme = "http"
	schemeSep      = "://"
)

var errUnsupportedScheme = errors.New("only http and https schemes are supported")

// Config holds the inputs of a single endpoint resolution.
type Config struct {
	// Override replaces the default endpoint when non-empty.
	// It may be a bare "host[:port]" or a full http(s) URI.
	Override string

	// Default is used when Override is empty. It falls back to DefaultEndpoint.
	Default string
}

// ConfigurationError reports an endpoint value that cannot be turned into a usable URI.
type ConfigurationError struct {
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("endpoint: invalid endpoint %q: %v", e.Value, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Resolve returns the endpoint URI for cfg.
//
// An empty override yields the default. An override that starts with http:// or https://
// is used as-is, otherwise https:// is prepended.
func Resolve(cfg Config) (*url.URL, error) {
	value := cfg.value()

	if _, ok := splitScheme(value); ok {
		return parse(value)
	}
	if strings.Contains(value, schemeSep) {
		return nil, &ConfigurationError{Value: value, Err: errUnsupportedScheme}
	}

	return parse(secureScheme + schemeSep + value)
}

// ResolveInsecure returns the endpoint URI for cfg with the scheme forced to http.
// Use it only against local or development deployments.
func ResolveInsecure(cfg Config) (*url.URL, error) {
	value := cfg.value()

	if rest, ok := splitScheme(value); ok {
		value = rest
	} else if strings.Contains(value, schemeSep) {
		return nil, &ConfigurationError{Value: value, Err: errUnsupportedScheme}
	}

	return parse(insecureScheme + schemeSep + value)
}

// IsInsecure reports whether u uses plain http.
func IsInsecure(u *url.URL) bool {
	return u != nil && strings.EqualFold(u.Scheme, insecureScheme)
}

// Target converts a resolved endpoint into a gRPC dial target ("host:port").
// When u carries no port, 443 is used for https and 80 for http.
func Target(u *url.URL) string {
	port := u.Port()
	if port == "" {
		port = "443"
		if IsInsecure(u) {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port)
}

func (c Config) value() string {
	if v := strings.TrimSpace(c.Override); v != "" {
		return v
	}
	if v := strings.TrimSpace(c.Default); v != "" {
		return v
	}
	return DefaultEndpoint
}

// splitScheme strips a case-insensitive http:// or https:// prefix.
func splitScheme(value string) (string, bool) {
	lower := strings.ToLower(value)
	for _, scheme := range []string{secureScheme, insecureScheme} {
		prefix := scheme + schemeSep
		if strings.HasPrefix(lower, prefix) {
			return value[len(prefix):], true
		}
	}
	return value, false
}

func parse(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &ConfigurationError{Value: raw, Err: err}
	}
	if u.Hostname() == "" {
		return nil, &ConfigurationError{Value: raw, Err: errors.New("missing host")}
	}
	return u, nil
}
