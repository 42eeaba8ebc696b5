// Package clients provides the instrumented outbound HTTP client used by the
// anti-corruption adapters in clients/acl.
package clients

import "errors"

// Transport-level failures. The ACL translates these into domain errors.
var (
	// ErrCircuitOpen is returned without a network call while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last attempt's error once every attempt failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
