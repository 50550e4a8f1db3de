package travel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/cuddles-booking/internal/observability/metrics"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

// DefaultTimeout bounds a full resolution including the fallback.
const DefaultTimeout = 10 * time.Second

// Resolver turns a destination address into a DistanceResult, preferring
// the driving route and falling back to a straight-line estimate.
type Resolver struct {
	provider Provider
	origin   string
	timeout  time.Duration
	logger   *logging.Logger
	metrics  *metrics.EstimateMetrics
	tracer   trace.Tracer
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithTimeout bounds each resolution. Non-positive values keep the default.
func WithTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithLogger(logger *logging.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.EstimateMetrics) ResolverOption {
	return func(r *Resolver) { r.metrics = m }
}

func NewResolver(provider Provider, origin string, opts ...ResolverOption) *Resolver {
	if strings.TrimSpace(origin) == "" {
		origin = DefaultOrigin
	}
	r := &Resolver{
		provider: provider,
		origin:   origin,
		timeout:  DefaultTimeout,
		logger:   logging.Default(),
		tracer:   otel.Tracer("cuddles.internal.travel"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Origin returns the address distances are measured from.
func (r *Resolver) Origin() string { return r.origin }

// Resolve returns the distance from the origin to destination. On failure the
// error is a *ResolveError whose Kind drives the customer message.
func (r *Resolver) Resolve(ctx context.Context, destination string) (DistanceResult, error) {
	dest := strings.TrimSpace(destination)
	if dest == "" {
		return DistanceResult{}, &ResolveError{Kind: KindAddressNotFound, Err: ErrEmptyAddress}
	}

	ctx, span := r.tracer.Start(ctx, "travel.resolve_distance")
	defer span.End()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	meters, routeErr := r.provider.RouteDistance(ctx, r.origin, dest)
	if routeErr == nil && meters < 0 {
		routeErr = &ProviderError{Op: "route", Status: ProviderZeroResults}
	}
	if routeErr == nil {
		res := DistanceResult{Miles: meters / MetersPerMile, Method: MethodRoute}
		span.SetAttributes(attribute.String("travel.method", string(res.Method)), attribute.Float64("travel.miles", res.Miles))
		r.metrics.ObserveDistanceLookup(string(MethodRoute), "ok", time.Since(start).Seconds())
		return res, nil
	}

	r.logger.Warn("route distance unavailable, falling back to straight-line",
		"error", routeErr.Error(),
	)

	res, geoErr := r.straightLine(ctx, dest)
	if geoErr == nil {
		span.SetAttributes(attribute.String("travel.method", string(res.Method)), attribute.Float64("travel.miles", res.Miles))
		r.metrics.ObserveDistanceLookup(string(MethodStraightLine), "ok", time.Since(start).Seconds())
		return res, nil
	}

	kind := classify(routeErr, geoErr)
	span.RecordError(geoErr)
	r.logger.Error("distance resolution failed",
		"kind", string(kind),
		"route_error", routeErr.Error(),
		"fallback_error", geoErr.Error(),
	)
	r.metrics.ObserveDistanceLookup(string(MethodStraightLine), strings.ToLower(string(kind)), time.Since(start).Seconds())
	return DistanceResult{}, &ResolveError{Kind: kind, Err: errors.Join(routeErr, geoErr)}
}

func (r *Resolver) straightLine(ctx context.Context, dest string) (DistanceResult, error) {
	var from, to GeoPoint
	var fromOK, toOK bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		from, fromOK, err = r.provider.Geocode(gctx, r.origin)
		return err
	})
	g.Go(func() error {
		var err error
		to, toOK, err = r.provider.Geocode(gctx, dest)
		return err
	})
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return DistanceResult{}, ctxErr
		}
		return DistanceResult{}, err
	}
	if !fromOK {
		return DistanceResult{}, fmt.Errorf("%w: origin", ErrNoGeocodeMatch)
	}
	if !toOK {
		return DistanceResult{}, fmt.Errorf("%w: destination", ErrNoGeocodeMatch)
	}
	return DistanceResult{Miles: HaversineMiles(from, to), Method: MethodStraightLine}, nil
}
