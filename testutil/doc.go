// Package testutil provides test helpers for code built on this module.
//
// MockAuthServer stands in for the authentication server token endpoint without real
// sockets, recording every request. NewLocalHTTPServer and NewLocalTLSServer start
// httptest servers bound to 127.0.0.1 only.
//
// These helpers may mutate http.DefaultClient/Transport; they restore previous values via tb.Cleanup.
package testutil
