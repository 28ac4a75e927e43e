package grpcclient_test

import (
	"context"
	"fmt"
	"log"

	"github.com/systemathics/go-apis/endpoint"
	"github.com/systemathics/go-apis/grpcclient"
	"github.com/systemathics/go-apis/oauth2client"
)

// Example demonstrates connecting to the default endpoint with a static token.
func Example() {
	ctx := context.Background()

	conn, err := grpcclient.NewBuilder().
		WithCredentials(nil, oauth2client.Config{StaticToken: "my-token"}).
		Build(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	fmt.Println(conn.Target())
	// Output: grpc.ganymede.cloud:443
}

// ExampleBuilder_WithEndpointConfig demonstrates an endpoint override without a scheme.
func ExampleBuilder_WithEndpointConfig() {
	ctx := context.Background()

	conn, err := grpcclient.NewBuilder().
		WithEndpointConfig(endpoint.Config{Override: "grpc2.ganymede.cloud"}, false).
		Build(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	fmt.Println(conn.Target())
	// Output: grpc2.ganymede.cloud:443
}

// ExampleBuilder_WithCredentials demonstrates client-credentials authentication with a
// shared token cache.
func ExampleBuilder_WithCredentials() {
	ctx := context.Background()

	provider := oauth2client.NewProvider(oauth2client.WithCache(oauth2client.NewMemoryCache()))

	conn, err := grpcclient.NewBuilder().
		WithEndpointConfig(endpoint.Config{Override: "localhost:50051"}, true).
		WithCredentials(provider, oauth2client.Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
		}).
		Build(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	fmt.Println(conn.Target())
	// Output: localhost:50051
}
