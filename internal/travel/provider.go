package travel

import (
	"context"
	"fmt"
	"sync"
)

// Provider statuses, as reported by the Maps web services.
const (
	ProviderOK             = "OK"
	ProviderNotFound       = "NOT_FOUND"
	ProviderZeroResults    = "ZERO_RESULTS"
	ProviderOverQueryLimit = "OVER_QUERY_LIMIT"
	ProviderOverDailyLimit = "OVER_DAILY_LIMIT"
	ProviderRequestDenied  = "REQUEST_DENIED"
	ProviderInvalidRequest = "INVALID_REQUEST"
	ProviderUnknownError   = "UNKNOWN_ERROR"
)

// Provider resolves driving distances and geocodes addresses.
type Provider interface {
	// RouteDistance returns the driving distance in meters.
	RouteDistance(ctx context.Context, origin, destination string) (float64, error)
	// Geocode returns the first match for address. found is false when the
	// provider answered but had no match.
	Geocode(ctx context.Context, address string) (GeoPoint, bool, error)
}

// ProviderError carries the provider status code of a failed call.
type ProviderError struct {
	Op     string
	Status string
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// StaticProvider serves fixed distances and coordinates. It backs local
// development when no Maps key is configured.
type StaticProvider struct {
	mu     sync.RWMutex
	routes map[string]float64
	points map[string]GeoPoint
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		routes: make(map[string]float64),
		points: make(map[string]GeoPoint),
	}
}

// SetRouteMiles registers the driving distance from any origin to destination.
func (p *StaticProvider) SetRouteMiles(destination string, miles float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[NormalizeAddress(destination)] = miles * MetersPerMile
}

// SetPoint registers coordinates for address.
func (p *StaticProvider) SetPoint(address string, pt GeoPoint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.points[NormalizeAddress(address)] = pt
}

func (p *StaticProvider) RouteDistance(ctx context.Context, origin, destination string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	meters, ok := p.routes[NormalizeAddress(destination)]
	if !ok {
		return 0, &ProviderError{Op: "route", Status: ProviderZeroResults}
	}
	return meters, nil
}

func (p *StaticProvider) Geocode(ctx context.Context, address string) (GeoPoint, bool, error) {
	if err := ctx.Err(); err != nil {
		return GeoPoint{}, false, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	pt, ok := p.points[NormalizeAddress(address)]
	return pt, ok, nil
}
