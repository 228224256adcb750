package somgilapi

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call for the initiating screen to render.
type Kind string

const (
	// KindAuthExpired means a token was sent and the backend rejected it.
	KindAuthExpired Kind = "auth_expired"
	// KindAuthRequired means the call needs a token and none was available.
	KindAuthRequired Kind = "auth_required"
	// KindNetworkFailure covers transport errors, timeouts and non-2xx
	// statuses other than 401.
	KindNetworkFailure Kind = "network_failure"
	// KindValidationFailure means client-side input was rejected before
	// any network round-trip.
	KindValidationFailure Kind = "validation_failure"
)

// Error is a classified API failure.
type Error struct {
	Kind     Kind
	Endpoint string
	Status   int // HTTP status, 0 when the request never completed
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Status > 0:
		return fmt.Sprintf("%s %s: http %d: %v", e.Kind, e.Endpoint, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Kind, e.Endpoint, e.Err)
	case e.Status > 0:
		return fmt.Sprintf("%s %s: http %d", e.Kind, e.Endpoint, e.Status)
	default:
		return fmt.Sprintf("%s %s", e.Kind, e.Endpoint)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an API error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

// ValidationError builds a validation failure that never reached the network.
func ValidationError(endpoint string, err error) *Error {
	return &Error{Kind: KindValidationFailure, Endpoint: endpoint, Err: err}
}
