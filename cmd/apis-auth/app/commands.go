// Package app provides the commands of the apis-auth command-line application.
package app

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/systemathics/go-apis/config"
	"github.com/systemathics/go-apis/oauth2client"
)

const keyDebug = "debug"

// NewRootCmd creates a new root command for the apis-auth CLI.
// Every flag is bound to the configuration key of the same meaning, so flags
// take precedence over environment variables.
func NewRootCmd() *cobra.Command {
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:               "apis-auth",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Short:             "Resolve the API endpoint and bearer credential",
		Long: `apis-auth prints what an RPC client would use to call the API: the resolved
endpoint, the bearer credential, or the authorization metadata.

Configuration is read from the environment (STATIC_TOKEN, CLIENT_ID, CLIENT_SECRET,
AUDIENCE, TOKEN_TENANT_HOST, API_ENDPOINT_OVERRIDE, API_ENDPOINT_INSECURE,
TOKEN_EXCHANGE_TIMEOUT) and can be overridden with flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.Bool(keyDebug, false, "Enable debug logging")
	flags.String("static-token", "", "Static bearer token")
	flags.String("client-id", "", "OAuth2 client ID")
	flags.String("client-secret", "", "OAuth2 client secret")
	flags.String("audience", "", "OAuth2 audience")
	flags.String("tenant-host", "", "Host of the authentication tenant")
	flags.String("endpoint", "", "API endpoint override")
	flags.Duration("timeout", 0, "Token exchange timeout")

	bindFlags(v, flags, map[string]string{
		keyDebug:                  keyDebug,
		config.KeyStaticToken:     "static-token",
		config.KeyClientID:        "client-id",
		config.KeyClientSecret:    "client-secret",
		config.KeyAudience:        "audience",
		config.KeyTenantHost:      "tenant-host",
		config.KeyEndpoint:        "endpoint",
		config.KeyExchangeTimeout: "timeout",
	})

	rootCmd.AddCommand(
		newEndpointCmd(v),
		newTokenCmd(v),
		newMetadataCmd(v),
	)

	return rootCmd
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			log.Printf("Error binding %s flag: %v", name, err)
		}
	}
}

func newEndpointCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoint",
		Short: "Print the resolved API endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			u, err := cfg.ResolveEndpoint()
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), u.String())
			return err
		},
	}

	cmd.Flags().Bool("insecure", false, "Force a plaintext (http) endpoint")
	bindFlags(v, cmd.Flags(), map[string]string{config.KeyInsecure: "insecure"})

	return cmd
}

func newTokenCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print the bearer credential (\"<type> <token>\")",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			provider, cfg, err := newProvider(v)
			if err != nil {
				return err
			}

			cred, err := provider.GetToken(cmd.Context(), cfg.Credentials)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cred.Value)
			return err
		},
	}
}

func newMetadataCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "Print the authorization metadata as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			provider, cfg, err := newProvider(v)
			if err != nil {
				return err
			}

			md, err := provider.GetTokenAsMetadata(cmd.Context(), cfg.Credentials)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(md)
		},
	}
}

func newProvider(v *viper.Viper) (*oauth2client.Provider, config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, config.Config{}, err
	}

	opts := cfg.ProviderOptions()
	if v.GetBool(keyDebug) {
		opts = append(opts, oauth2client.WithLoggingEnabled())
	}

	return oauth2client.NewProvider(opts...), cfg, nil
}
