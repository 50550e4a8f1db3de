package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/cuddles-booking/internal/config"
	"github.com/wolfman30/cuddles-booking/internal/observability/metrics"
	"github.com/wolfman30/cuddles-booking/internal/travel"
	"github.com/wolfman30/cuddles-booking/internal/travel/distcache"
	"github.com/wolfman30/cuddles-booking/internal/travel/googlemaps"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, distance cache disabled", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildDistanceProvider selects the maps backend from MAPS_PROVIDER
// ("google", "static" or "auto") and wraps it in the Redis cache when a
// client is given. "auto" uses Google when an API key is configured.
func BuildDistanceProvider(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger, m *metrics.EstimateMetrics) (travel.Provider, string, error) {
	if cfg == nil {
		return nil, "", fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	name := cfg.MapsProvider
	if name == "" || name == "auto" {
		name = "static"
		if strings.TrimSpace(cfg.GoogleMapsAPIKey) != "" {
			name = "google"
		}
	}

	var provider travel.Provider
	switch name {
	case "google":
		client, err := googlemaps.New(googlemaps.Config{
			APIKey:            cfg.GoogleMapsAPIKey,
			BaseURL:           cfg.GoogleMapsBaseURL,
			RequestsPerSecond: cfg.MapsRequestsPerSecond,
			Burst:             cfg.MapsBurst,
		})
		if err != nil {
			return nil, "", fmt.Errorf("bootstrap: google maps: %w", err)
		}
		provider = client
	case "static":
		logger.Warn("no maps provider configured; every address will fail to resolve")
		provider = travel.NewStaticProvider()
	default:
		return nil, "", fmt.Errorf("bootstrap: unknown maps provider %q", cfg.MapsProvider)
	}

	if redisClient != nil {
		provider = distcache.New(provider, redisClient, cfg.DistanceCacheTTL, logger, m)
		name += "+redis"
	}
	return provider, name, nil
}

// BuildResolver wires the distance resolver for the configured origin.
func BuildResolver(cfg *appconfig.Config, provider travel.Provider, logger *logging.Logger, m *metrics.EstimateMetrics) *travel.Resolver {
	return travel.NewResolver(provider, cfg.OriginAddress,
		travel.WithTimeout(cfg.DistanceTimeout),
		travel.WithLogger(logger),
		travel.WithMetrics(m),
	)
}
