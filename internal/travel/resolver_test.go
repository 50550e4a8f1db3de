package travel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/cuddles-booking/internal/observability/metrics"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

type fakeProvider struct {
	mu         sync.Mutex
	routeM     float64
	routeErr   error
	points     map[string]GeoPoint
	geoErr     error
	block      bool
	routeCalls int
	geoCalls   int
}

func (f *fakeProvider) RouteDistance(ctx context.Context, origin, destination string) (float64, error) {
	f.mu.Lock()
	f.routeCalls++
	block := f.block
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return f.routeM, f.routeErr
}

func (f *fakeProvider) Geocode(ctx context.Context, address string) (GeoPoint, bool, error) {
	f.mu.Lock()
	f.geoCalls++
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return GeoPoint{}, false, err
	}
	if f.geoErr != nil {
		return GeoPoint{}, false, f.geoErr
	}
	pt, ok := f.points[address]
	return pt, ok, nil
}

func newTestResolver(p Provider, opts ...ResolverOption) *Resolver {
	opts = append([]ResolverOption{WithLogger(logging.Discard())}, opts...)
	return NewResolver(p, DefaultOrigin, opts...)
}

func TestResolverUsesRoute(t *testing.T) {
	p := &fakeProvider{routeM: 20 * MetersPerMile}
	r := newTestResolver(p, WithMetrics(metrics.NewEstimateMetrics(prometheus.NewRegistry())))

	got, err := r.Resolve(context.Background(), "  200 Oak Ln, Austin TX ")
	require.NoError(t, err)
	assert.Equal(t, MethodRoute, got.Method)
	assert.InDelta(t, 20.0, got.Miles, 1e-9)
	assert.False(t, got.Approximate())
	assert.Equal(t, 0, p.geoCalls)
}

func TestResolverFallsBackToStraightLine(t *testing.T) {
	p := &fakeProvider{
		routeErr: &ProviderError{Op: "route", Status: ProviderZeroResults},
		points: map[string]GeoPoint{
			DefaultOrigin:  {Lat: 30.0, Lng: -97.0},
			"1 Lake Rd, TX": {Lat: 31.0, Lng: -97.0},
		},
	}
	r := newTestResolver(p)

	got, err := r.Resolve(context.Background(), "1 Lake Rd, TX")
	require.NoError(t, err)
	assert.Equal(t, MethodStraightLine, got.Method)
	assert.True(t, got.Approximate())
	assert.InDelta(t, 69.09, got.Miles, 0.01)
	assert.Equal(t, 2, p.geoCalls)
}

func TestResolverNegativeRouteTriggersFallback(t *testing.T) {
	p := &fakeProvider{
		routeM: -1,
		points: map[string]GeoPoint{
			DefaultOrigin: {Lat: 30.0, Lng: -97.0},
			"dest":        {Lat: 30.0, Lng: -97.0},
		},
	}
	got, err := newTestResolver(p).Resolve(context.Background(), "dest")
	require.NoError(t, err)
	assert.Equal(t, MethodStraightLine, got.Method)
}

func TestResolverClassifiesFailures(t *testing.T) {
	tests := []struct {
		name     string
		routeErr error
		geoErr   error
		want     ErrorKind
	}{
		{
			name:     "no geocode match",
			routeErr: &ProviderError{Op: "route", Status: ProviderNotFound},
			want:     KindAddressNotFound,
		},
		{
			name:     "rate limited",
			routeErr: &ProviderError{Op: "route", Status: ProviderOverQueryLimit},
			geoErr:   &ProviderError{Op: "geocode", Status: ProviderOverQueryLimit},
			want:     KindRateLimited,
		},
		{
			name:     "denied",
			routeErr: &ProviderError{Op: "route", Status: ProviderRequestDenied},
			geoErr:   &ProviderError{Op: "geocode", Status: ProviderRequestDenied},
			want:     KindRequestDenied,
		},
		{
			name:     "route status used when fallback error is opaque",
			routeErr: &ProviderError{Op: "route", Status: ProviderOverDailyLimit},
			geoErr:   errors.New("connection reset"),
			want:     KindRateLimited,
		},
		{
			name:     "unknown",
			routeErr: errors.New("boom"),
			geoErr:   errors.New("boom"),
			want:     KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{routeErr: tt.routeErr, geoErr: tt.geoErr, points: map[string]GeoPoint{}}
			_, err := newTestResolver(p).Resolve(context.Background(), "9 Nowhere Rd")
			require.Error(t, err)

			var re *ResolveError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.want, re.Kind)
			assert.Equal(t, tt.want, KindOf(err))
			assert.Equal(t, UserMessage(tt.want), re.UserMessage())
		})
	}
}

func TestResolverTimeoutIsUnknown(t *testing.T) {
	p := &fakeProvider{block: true}
	r := newTestResolver(p, WithTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := r.Resolve(context.Background(), "100 Main St")
	require.Error(t, err)
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestResolverEmptyAddress(t *testing.T) {
	p := &fakeProvider{}
	_, err := newTestResolver(p).Resolve(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyAddress)
	assert.Equal(t, KindAddressNotFound, KindOf(err))
	assert.Equal(t, 0, p.routeCalls)
}

func TestUserMessages(t *testing.T) {
	assert.Equal(t, "We reached our daily map limit. Please try later.", UserMessage(KindRateLimited))
	assert.Equal(t, "Maps request was denied. Please contact support.", UserMessage(KindRequestDenied))
	assert.Equal(t, "We couldn't find that address. Please try a nearby street address.", UserMessage(KindAddressNotFound))
	assert.Equal(t, "We couldn't calculate the distance right now. Please double-check the address or try again.", UserMessage(KindUnknown))
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider()
	p.SetRouteMiles("100 Main St", 12.5)
	p.SetPoint("100 Main St", GeoPoint{Lat: 1, Lng: 2})

	meters, err := p.RouteDistance(context.Background(), DefaultOrigin, "100  MAIN st")
	require.NoError(t, err)
	assert.InDelta(t, 12.5*MetersPerMile, meters, 1e-6)

	_, err = p.RouteDistance(context.Background(), DefaultOrigin, "elsewhere")
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ProviderZeroResults, pe.Status)

	pt, ok, err := p.Geocode(context.Background(), "100 main st")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, GeoPoint{Lat: 1, Lng: 2}, pt)
}
