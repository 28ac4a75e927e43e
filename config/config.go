// Package config loads the client configuration from the environment.
//
// Values are read through viper so that the CLI can bind flags over the same keys.
// Environment variable names used by earlier releases (AUTH0_TOKEN, TENANT, GRPC_APIS)
// are still accepted as fallbacks.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/systemathics/go-apis/endpoint"
	"github.com/systemathics/go-apis/oauth2client"
)

// Keys recognized by Load.
const (
	KeyStaticToken     = "static_token"
	KeyClientID        = "client_id"
	KeyClientSecret    = "client_secret"
	KeyAudience        = "audience"
	KeyTenantHost      = "tenant_host"
	KeyEndpoint        = "endpoint"
	KeyInsecure        = "insecure"
	KeyExchangeTimeout = "exchange_timeout"
)

// envBindings maps each key to its environment variables, in lookup order.
var envBindings = map[string][]string{
	KeyStaticToken:     {"STATIC_TOKEN", "AUTH0_TOKEN"},
	KeyClientID:        {"CLIENT_ID"},
	KeyClientSecret:    {"CLIENT_SECRET"},
	KeyAudience:        {"AUDIENCE"},
	KeyTenantHost:      {"TOKEN_TENANT_HOST", "TENANT"},
	KeyEndpoint:        {"API_ENDPOINT_OVERRIDE", "GRPC_APIS"},
	KeyInsecure:        {"API_ENDPOINT_INSECURE"},
	KeyExchangeTimeout: {"TOKEN_EXCHANGE_TIMEOUT"},
}

// Config is the complete client configuration.
type Config struct {
	Credentials oauth2client.Config
	Endpoint    endpoint.Config

	// Insecure forces a plaintext (http) endpoint, for local and development deployments.
	Insecure bool

	// ExchangeTimeout bounds a single token exchange round trip.
	ExchangeTimeout time.Duration
}

// NewViper returns a viper instance with every key bound to its environment variables
// and defaults applied.
func NewViper() *viper.Viper {
	v := viper.New()

	for key, envs := range envBindings {
		// BindEnv only fails without a key, which cannot happen here.
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	v.SetDefault(KeyAudience, oauth2client.DefaultAudience)
	v.SetDefault(KeyTenantHost, oauth2client.DefaultTenantHost)
	v.SetDefault(KeyInsecure, false)
	v.SetDefault(KeyExchangeTimeout, oauth2client.DefaultTimeout)

	return v
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	return Load(NewViper())
}

// Load builds a Config from v.
func Load(v *viper.Viper) (Config, error) {
	insecure, err := cast.ToBoolE(v.Get(KeyInsecure))
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid %s: %w", KeyInsecure, err)
	}

	timeout, err := cast.ToDurationE(v.Get(KeyExchangeTimeout))
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid %s: %w", KeyExchangeTimeout, err)
	}

	return Config{
		Credentials: oauth2client.Config{
			StaticToken:  v.GetString(KeyStaticToken),
			ClientID:     v.GetString(KeyClientID),
			ClientSecret: v.GetString(KeyClientSecret),
			Audience:     v.GetString(KeyAudience),
			TenantHost:   v.GetString(KeyTenantHost),
		},
		Endpoint: endpoint.Config{
			Override: v.GetString(KeyEndpoint),
		},
		Insecure:        insecure,
		ExchangeTimeout: timeout,
	}, nil
}

// Validate reports oauth2client.ErrMissingCredentials when no credential strategy is configured.
func (c Config) Validate() error {
	return c.Credentials.Validate()
}

// ResolveEndpoint resolves the API endpoint, honoring Insecure.
func (c Config) ResolveEndpoint() (*url.URL, error) {
	if c.Insecure {
		return endpoint.ResolveInsecure(c.Endpoint)
	}
	return endpoint.Resolve(c.Endpoint)
}

// ProviderOptions returns the oauth2client options implied by c.
func (c Config) ProviderOptions() []oauth2client.Option {
	return []oauth2client.Option{oauth2client.WithTimeout(c.ExchangeTimeout)}
}
