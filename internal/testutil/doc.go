// Package testutil provides internal test helpers: JWT minting for expiry tests and a
// loopback gRPC health server that records incoming metadata.
package testutil
