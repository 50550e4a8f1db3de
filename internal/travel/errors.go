package travel

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEmptyAddress is returned when no destination was supplied.
	ErrEmptyAddress = errors.New("travel: empty address")
	// ErrNoGeocodeMatch means the geocoder answered without a usable match.
	ErrNoGeocodeMatch = errors.New("travel: no geocode match")
)

// ErrorKind is the user-facing classification of a failed lookup.
type ErrorKind string

const (
	KindRateLimited     ErrorKind = "RATE_LIMITED"
	KindRequestDenied   ErrorKind = "REQUEST_DENIED"
	KindAddressNotFound ErrorKind = "ADDRESS_NOT_FOUND"
	KindUnknown         ErrorKind = "UNKNOWN"
)

// UserMessage returns the copy shown to the customer for kind.
func UserMessage(kind ErrorKind) string {
	switch kind {
	case KindRateLimited:
		return "We reached our daily map limit. Please try later."
	case KindRequestDenied:
		return "Maps request was denied. Please contact support."
	case KindAddressNotFound:
		return "We couldn't find that address. Please try a nearby street address."
	default:
		return "We couldn't calculate the distance right now. Please double-check the address or try again."
	}
}

// ResolveError is returned when neither the route nor the straight-line
// fallback produced a distance.
type ResolveError struct {
	Kind ErrorKind
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("travel: resolve distance: %s: %v", e.Kind, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// UserMessage returns the customer copy for this failure.
func (e *ResolveError) UserMessage() string { return UserMessage(e.Kind) }

// KindOf extracts the classification from err, defaulting to KindUnknown.
func KindOf(err error) ErrorKind {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

// classify picks the kind for a failed lookup. The fallback failure wins
// because it is the last thing the provider told us.
func classify(routeErr, geoErr error) ErrorKind {
	if errors.Is(geoErr, context.DeadlineExceeded) || errors.Is(geoErr, context.Canceled) {
		return KindUnknown
	}
	if errors.Is(geoErr, ErrNoGeocodeMatch) || errors.Is(geoErr, ErrEmptyAddress) {
		return KindAddressNotFound
	}
	var pe *ProviderError
	if errors.As(geoErr, &pe) {
		return kindForStatus(pe.Status)
	}
	if errors.As(routeErr, &pe) {
		return kindForStatus(pe.Status)
	}
	return KindUnknown
}

func kindForStatus(status string) ErrorKind {
	switch status {
	case ProviderOverQueryLimit, ProviderOverDailyLimit:
		return KindRateLimited
	case ProviderRequestDenied:
		return KindRequestDenied
	case ProviderZeroResults, ProviderNotFound:
		return KindAddressNotFound
	default:
		return KindUnknown
	}
}
