// Package oauth2client resolves bearer credentials for gRPC and HTTP clients.
//
// A Provider either reuses a pre-obtained static token or mints one through an OAuth2
// client-credentials exchange (a JSON POST to https://{tenant}/oauth/token), validates
// the response, and renders it as an "Authorization: <type> <token>" value. Minted tokens
// can be written back into an injectable TokenCache keyed by client ID.
//
// # Features
//
//   - Static-token fast path with zero network calls
//   - Client-credentials exchange bounded by context and a provider timeout
//   - Typed errors: ErrMissingCredentials, InvalidArgumentError, TokenExchangeError,
//     MalformedResponseError
//   - Optional cache-back (WithCache) and opt-in JWT expiry check (WithExpiryCheck)
//   - gRPC unary and stream client interceptors, per-RPC credentials, oauth2.TokenSource adapter
//   - Optional logging (WithLogger, WithLoggingEnabled)
//
// # Quick Start
//
//	provider := oauth2client.NewProvider(
//	    oauth2client.WithCache(oauth2client.NewMemoryCache()),
//	    oauth2client.WithLoggingEnabled(),
//	)
//
//	cfg := oauth2client.Config{
//	    ClientID:     os.Getenv("CLIENT_ID"),
//	    ClientSecret: os.Getenv("CLIENT_SECRET"),
//	}
//
//	md, err := provider.GetTokenAsMetadata(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	conn, err := grpc.NewClient(
//	    "grpc.ganymede.cloud:443",
//	    grpc.WithUnaryInterceptor(provider.UnaryClientInterceptor(cfg)),
//	    grpc.WithStreamInterceptor(provider.StreamClientInterceptor(cfg)),
//	)
//
// # Notes
//
//   - No refresh scheduling and no retries: an exchange is a single blocking round trip.
//   - Cached tokens have no expiry unless WithExpiryCheck is set; callers own token lifetime.
//   - Provider is safe for concurrent use; concurrent exchanges for the same credentials share
//     one round trip, and no lock is held across network I/O.
package oauth2client
