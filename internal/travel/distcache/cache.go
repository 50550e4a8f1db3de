// Package distcache memoizes provider answers in Redis so repeated lookups of
// the same address do not spend Maps quota.
package distcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/cuddles-booking/internal/observability/metrics"
	"github.com/wolfman30/cuddles-booking/internal/travel"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

// DefaultTTL is how long a cached answer is trusted.
const DefaultTTL = 24 * time.Hour

// Provider wraps another travel.Provider with a Redis read-through cache.
// Only successful answers are stored. Redis failures degrade to the
// wrapped provider.
type Provider struct {
	next    travel.Provider
	redis   *redis.Client
	ttl     time.Duration
	logger  *logging.Logger
	metrics *metrics.EstimateMetrics
	tracer  trace.Tracer
}

var _ travel.Provider = (*Provider)(nil)

func New(next travel.Provider, client *redis.Client, ttl time.Duration, logger *logging.Logger, m *metrics.EstimateMetrics) *Provider {
	if next == nil {
		panic("distcache: provider cannot be nil")
	}
	if client == nil {
		panic("distcache: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Provider{
		next:    next,
		redis:   client,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("cuddles.internal.travel.distcache"),
	}
}

func (p *Provider) RouteDistance(ctx context.Context, origin, destination string) (float64, error) {
	ctx, span := p.tracer.Start(ctx, "distcache.route_distance")
	defer span.End()

	key := routeKey(origin, destination)
	raw, err := p.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		if meters, perr := strconv.ParseFloat(raw, 64); perr == nil {
			p.metrics.ObserveCache(true)
			return meters, nil
		}
	case !errors.Is(err, redis.Nil):
		span.RecordError(err)
		p.logger.Warn("distance cache read failed", "error", err.Error())
	}
	p.metrics.ObserveCache(false)

	meters, err := p.next.RouteDistance(ctx, origin, destination)
	if err != nil {
		return 0, err
	}
	if err := p.redis.Set(ctx, key, strconv.FormatFloat(meters, 'f', -1, 64), p.ttl).Err(); err != nil {
		span.RecordError(err)
		p.logger.Warn("distance cache write failed", "error", err.Error())
	}
	return meters, nil
}

func (p *Provider) Geocode(ctx context.Context, address string) (travel.GeoPoint, bool, error) {
	ctx, span := p.tracer.Start(ctx, "distcache.geocode")
	defer span.End()

	key := geocodeKey(address)
	data, err := p.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var pt travel.GeoPoint
		if jerr := json.Unmarshal(data, &pt); jerr == nil {
			p.metrics.ObserveCache(true)
			return pt, true, nil
		}
	case !errors.Is(err, redis.Nil):
		span.RecordError(err)
		p.logger.Warn("geocode cache read failed", "error", err.Error())
	}
	p.metrics.ObserveCache(false)

	pt, found, err := p.next.Geocode(ctx, address)
	if err != nil || !found {
		return pt, found, err
	}
	data, err = json.Marshal(pt)
	if err == nil {
		err = p.redis.Set(ctx, key, data, p.ttl).Err()
	}
	if err != nil {
		span.RecordError(err)
		p.logger.Warn("geocode cache write failed", "error", err.Error())
	}
	return pt, true, nil
}

func routeKey(origin, destination string) string {
	return fmt.Sprintf("distance:route:%s|%s", travel.NormalizeAddress(origin), travel.NormalizeAddress(destination))
}

func geocodeKey(address string) string {
	return fmt.Sprintf("distance:geocode:%s", travel.NormalizeAddress(address))
}
