package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/cuddles-booking/internal/api/router"
	"github.com/wolfman30/cuddles-booking/internal/booking"
	appconfig "github.com/wolfman30/cuddles-booking/internal/config"
	"github.com/wolfman30/cuddles-booking/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/cuddles-booking/internal/http/middleware"
	"github.com/wolfman30/cuddles-booking/internal/leads"
	"github.com/wolfman30/cuddles-booking/internal/lookup"
	"github.com/wolfman30/cuddles-booking/internal/observability/metrics"
	"github.com/wolfman30/cuddles-booking/internal/travel"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

// App is the assembled API server.
type App struct {
	Config   *appconfig.Config
	Logger   *logging.Logger
	Rates    appconfig.Rates
	Metrics  *metrics.EstimateMetrics
	Redis    *redis.Client
	Resolver *travel.Resolver
	Sessions *booking.Sessions
	Limiter  *httpmiddleware.RateLimiter
	Handler  http.Handler
}

// Build wires every dependency from cfg. reg receives the metrics; a nil
// reg uses a private registry.
func Build(ctx context.Context, cfg *appconfig.Config, reg *prometheus.Registry, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	rates, err := appconfig.LoadRates(cfg.RateCardFile)
	if err != nil {
		return nil, err
	}
	m := metrics.NewEstimateMetrics(reg)

	redisClient := BuildRedisClient(ctx, cfg, logger, true)
	provider, providerName, err := BuildDistanceProvider(cfg, redisClient, logger, m)
	if err != nil {
		closeRedis(redisClient)
		return nil, err
	}
	resolver := BuildResolver(cfg, provider, logger, m)

	notifySvc, emailName, err := BuildNotifyService(ctx, cfg, logger, m)
	if err != nil {
		closeRedis(redisClient)
		return nil, err
	}
	bookingNotifier := BuildBookingNotifier(cfg, notifySvc, logger)

	sessions := booking.NewSessions(func() *booking.Wizard {
		coord := lookup.New(resolver, travel.ModeInHome, lookup.Options{
			Interval: cfg.LookupDebounce,
			Configs:  rates.Configs,
			Logger:   logger,
			Metrics:  m,
		})
		return booking.NewWizard(coord, booking.Options{
			Table:         rates.Table,
			Notifier:      bookingNotifier,
			SchedulingURL: cfg.SchedulingURL,
			NotifyTimeout: cfg.NotifyTimeout,
			Source:        cfg.BookingSource,
			Logger:        logger,
			Metrics:       m,
		})
	}, cfg.SessionTTL, logger)

	checks := map[string]handlers.HealthCheck{}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	handler := router.New(&router.Config{
		Logger:             logger,
		Health:             handlers.NewHealthHandler(checks),
		Pricing:            handlers.NewPricingHandler(rates.Table, rates.Configs),
		Travel:             handlers.NewTravelHandler(resolver, rates.Configs, logger, m),
		Bookings:           handlers.NewBookingsHandler(sessions, logger).WithAllowedOrigins(cfg.CORSAllowedOrigins),
		BookNow:            handlers.NewBookNowHandler(bookingNotifier, cfg.NotifyTimeout, logger),
		Contact:            leads.NewHandler(notifySvc, logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
	})

	logger.Info("api dependencies ready",
		"maps_provider", providerName,
		"email_provider", emailName,
		"origin", resolver.Origin(),
		"webhook_enabled", cfg.BookingNotifyURL != "",
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Rates:    rates,
		Metrics:  m,
		Redis:    redisClient,
		Resolver: resolver,
		Sessions: sessions,
		Limiter:  limiter,
		Handler:  handler,
	}, nil
}

// Run sweeps idle sessions and rate limiter buckets until ctx is done.
func (a *App) Run(ctx context.Context) {
	interval := a.Config.SessionSweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	go a.Limiter.Run(ctx)
	a.Sessions.Run(ctx, interval)
}

// Close releases sessions and the Redis connection.
func (a *App) Close() {
	a.Sessions.Close()
	closeRedis(a.Redis)
}

func closeRedis(client *redis.Client) {
	if client != nil {
		_ = client.Close()
	}
}
