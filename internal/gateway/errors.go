package gateway

import (
	"errors"
	"fmt"
)

// Kind categorizes a gateway failure.
type Kind int

const (
	// KindTransport is a network or HTTP failure before a body could be parsed.
	KindTransport Kind = iota + 1

	// KindUnauthorized means the server rejected the session or security token.
	KindUnauthorized

	// KindBusinessFailure means the server processed the request and reported success=false.
	KindBusinessFailure

	// KindRestaurantConflict means the item belongs to a different restaurant than the cart.
	KindRestaurantConflict

	// KindTimeout means the request did not settle within its deadline.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindBusinessFailure:
		return "business_failure"
	case KindRestaurantConflict:
		return "restaurant_conflict"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method that fails.
type Error struct {
	Kind Kind

	// Op is the endpoint that failed, e.g. "add-to-order".
	Op string

	// Status is the HTTP status code, 0 when no response was received.
	Status int

	// Message is the server-provided reason when there is one.
	Message string

	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("%s: %s: %s (status=%d)", e.Op, e.Kind, e.Message, e.Status)
	case e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s (status=%d)", e.Op, e.Kind, e.Status)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind of a gateway error. Wrapped errors are supported.
func KindOf(err error) (Kind, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a gateway error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// MessageOf returns the server-provided message of a gateway error, if any.
func MessageOf(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Message
	}
	return ""
}
