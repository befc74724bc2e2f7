package proximity

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrInvalidInput marks request validation failures: empty or too-short
// addresses and radii outside the allowed range. Never retried.
var ErrInvalidInput = eris.New("proximity: invalid input")

// ErrAddressNotFound marks a geocoding miss: the search API returned zero
// results for the address. Terminal, surfaced to the caller as-is.
var ErrAddressNotFound = eris.New("proximity: address not found")

// UpstreamError wraps a failure from an external data provider. The cause
// carries the provider status and body for diagnosis; callers report it as a
// generic service failure.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("proximity: %s request failed: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
