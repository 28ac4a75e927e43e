// Package grpcclient provides a fluent builder for gRPC client connections to the API
// endpoint, with every RPC carrying the bearer credential from oauth2client.
//
// An https endpoint is dialed over TLS 1.2+ using system roots. An http endpoint, obtained
// through endpoint.ResolveInsecure, is dialed in plaintext.
//
// # Quick Start
//
//	provider := oauth2client.NewProvider(oauth2client.WithCache(oauth2client.NewMemoryCache()))
//
//	conn, err := grpcclient.NewBuilder().
//	    WithEndpointConfig(endpoint.Config{Override: os.Getenv("API_ENDPOINT_OVERRIDE")}, false).
//	    WithCredentials(provider, oauth2client.Config{
//	        ClientID:     os.Getenv("CLIENT_ID"),
//	        ClientSecret: os.Getenv("CLIENT_SECRET"),
//	    }).
//	    Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	client := pb.NewYourServiceClient(conn)
//
// FromConfig does the same from a config.Config loaded from the environment.
package grpcclient
