// Package httpclient provides HTTP clients that send the bearer credential resolved by
// oauth2client on every request.
//
// BearerTransport wraps any http.RoundTripper. Builder assembles an *http.Client with
// a 30s timeout, TLS 1.2+ and an optional redirect policy.
//
// # Quick Start
//
//	provider := oauth2client.NewProvider(oauth2client.WithCache(oauth2client.NewMemoryCache()))
//
//	client, err := httpclient.NewBuilder().
//	    WithCredentials(provider, oauth2client.Config{
//	        ClientID:     os.Getenv("CLIENT_ID"),
//	        ClientSecret: os.Getenv("CLIENT_SECRET"),
//	    }).
//	    WithTimeout(10 * time.Second).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := client.Get("https://api.example.com/data")
package httpclient
