package oauth2client

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials is returned when neither a static token nor a complete
// client ID / client secret pair is configured.
var ErrMissingCredentials = errors.New(
	"oauth2client: no credentials configured: set a static token, or both a client ID and a client secret")

// InvalidArgumentError reports a blank or unusable field required by the client-credentials exchange.
type InvalidArgumentError struct {
	Field string

	// Reason is empty for a blank field.
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("oauth2client: %s must not be empty", e.Field)
	}
	return fmt.Sprintf("oauth2client: invalid %s: %s", e.Field, e.Reason)
}

// TokenExchangeError reports a non-success HTTP status from the authentication server.
type TokenExchangeError struct {
	Endpoint   string
	StatusCode int
	Reason     string

	// Code and Description hold the RFC 6749 error response fields, when the server sent them.
	Code        string
	Description string
}

func (e *TokenExchangeError) Error() string {
	msg := fmt.Sprintf("oauth2client: POST %s failed: status=%d reason=%s", e.Endpoint, e.StatusCode, e.Reason)
	if e.Code != "" {
		msg += fmt.Sprintf(" error=%s", e.Code)
		if e.Description != "" {
			msg += fmt.Sprintf(" description=%q", e.Description)
		}
	}
	return msg
}

// MalformedResponseError reports a successful exchange whose body cannot be used.
// Body holds the raw response for diagnostics.
type MalformedResponseError struct {
	Body string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oauth2client: token response is not valid JSON: %v: %s", e.Err, e.Body)
	}
	return fmt.Sprintf("oauth2client: token response lacks token_type and/or access_token, "+
		"check client ID, client secret, audience and tenant host: %s", e.Body)
}

// Unwrap returns the JSON decoding error, if any.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
