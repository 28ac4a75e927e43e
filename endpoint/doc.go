// Package endpoint resolves the scheme-prefixed address of the remote gRPC API.
//
// An optional override (typically read from the environment) replaces the compiled-in
// default. Overrides without a scheme are assumed to be secure (https). ResolveInsecure
// forces plain http for local and development deployments.
//
// # Quick Start
//
//	u, err := endpoint.Resolve(endpoint.Config{Override: os.Getenv("API_ENDPOINT_OVERRIDE")})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	conn, err := grpc.NewClient(endpoint.Target(u), ...)
//
// Resolution never performs network I/O and is safe for concurrent use.
package endpoint
