package oauth2client_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/systemathics/go-apis/oauth2client"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Example demonstrates attaching a static bearer token to a gRPC connection.
func Example() {
	provider := oauth2client.NewProvider()
	cfg := oauth2client.Config{StaticToken: "pre-obtained-token"}

	conn, err := grpc.NewClient(
		"localhost:50051",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(provider.UnaryClientInterceptor(cfg)),
		grpc.WithStreamInterceptor(provider.StreamClientInterceptor(cfg)),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	fmt.Println("gRPC client configured with bearer authentication")
	// Output: gRPC client configured with bearer authentication
}

// ExampleProvider_GetToken demonstrates the static-token fast path.
func ExampleProvider_GetToken() {
	provider := oauth2client.NewProvider()

	cred, err := provider.GetToken(context.Background(), oauth2client.Config{StaticToken: "abc123"})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(cred.Value)
	// Output: Bearer abc123
}

// ExampleProvider_GetTokenAsMetadata demonstrates rendering the credential as metadata.
func ExampleProvider_GetTokenAsMetadata() {
	provider := oauth2client.NewProvider()

	md, err := provider.GetTokenAsMetadata(context.Background(), oauth2client.Config{StaticToken: "abc123"})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(md[oauth2client.AuthorizationKey])
	// Output: Bearer abc123
}

// ExampleErrMissingCredentials demonstrates detecting an unconfigured provider.
func ExampleErrMissingCredentials() {
	_, err := oauth2client.NewProvider().GetToken(context.Background(), oauth2client.Config{})

	fmt.Println(errors.Is(err, oauth2client.ErrMissingCredentials))
	// Output: true
}
