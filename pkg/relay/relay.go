// Package relay defines the boundary contract with the cloud notification
// relay: the two operations the dispatch core depends on, and the error
// taxonomy callers need to decide between re-registering an endpoint and
// retrying a publish.
package relay

import (
	"context"
	"errors"
	"fmt"
)

// Relay is the operation-invocation boundary. Implementations own transport,
// signing, credentials and region resolution; the core only builds parameters
// and interprets results. Calls are independent remote operations, safe to
// invoke concurrently.
type Relay interface {
	// CreatePlatformEndpoint registers a device token against a platform
	// application and returns the relay-assigned endpoint ARN. The relay may
	// or may not return the same ARN for a repeated registration; the
	// returned value is authoritative on every call.
	CreatePlatformEndpoint(ctx context.Context, platformApplicationARN, token string) (string, error)

	// Publish sends an already-built structured-message envelope to an
	// endpoint ARN and returns the relay-assigned message id.
	Publish(ctx context.Context, endpointARN, message string) (string, error)
}

// Kind classifies a relay failure. The split matters to callers:
// EndpointDisabled and NotFound mean the endpoint must be re-registered,
// Throttled and Transient mean the same call may be retried by the transport
// layer, Other is everything else.
type Kind int

const (
	KindOther Kind = iota
	KindEndpointDisabled
	KindNotFound
	KindThrottled
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindEndpointDisabled:
		return "endpoint_disabled"
	case KindNotFound:
		return "not_found"
	case KindThrottled:
		return "throttled"
	case KindTransient:
		return "transient"
	default:
		return "other"
	}
}

// Error is a classified relay failure. The Kind is preserved verbatim through
// every layer above the relay; nothing wraps it into a generic failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("relay: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the classification from an error chain. Errors that did not
// originate at the relay boundary report KindOther.
func KindOf(err error) Kind {
	var relayErr *Error
	if errors.As(err, &relayErr) {
		return relayErr.Kind
	}
	return KindOther
}
