// Package googlemaps adapts the Google Maps Distance Matrix and Geocoding
// web services to travel.Provider.
package googlemaps

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
	"googlemaps.github.io/maps"

	"github.com/wolfman30/cuddles-booking/internal/travel"
)

// Config holds the client settings.
type Config struct {
	APIKey string
	// BaseURL overrides the Maps host, used by tests and proxies.
	BaseURL           string
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
}

// Client implements travel.Provider.
type Client struct {
	maps    *maps.Client
	limiter *rate.Limiter
	tracer  trace.Tracer
}

var _ travel.Provider = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("googlemaps: api key is required")
	}
	opts := []maps.ClientOption{maps.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, maps.WithHTTPClient(cfg.HTTPClient))
	}
	mc, err := maps.NewClient(opts...)
	if err != nil {
		return nil, err
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 20
	}
	return &Client{
		maps:    mc,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		tracer:  otel.Tracer("cuddles.internal.travel.googlemaps"),
	}, nil
}

// RouteDistance returns the driving distance in meters.
func (c *Client) RouteDistance(ctx context.Context, origin, destination string) (float64, error) {
	ctx, span := c.tracer.Start(ctx, "googlemaps.distance_matrix")
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	resp, err := c.maps.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{origin},
		Destinations: []string{destination},
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsImperial,
	})
	if err != nil {
		span.RecordError(err)
		return 0, providerError("route", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, &travel.ProviderError{Op: "route", Status: travel.ProviderZeroResults}
	}
	el := resp.Rows[0].Elements[0]
	if el.Status != travel.ProviderOK {
		return 0, &travel.ProviderError{Op: "route", Status: el.Status}
	}
	return float64(el.Distance.Meters), nil
}

// Geocode returns the first result for address.
func (c *Client) Geocode(ctx context.Context, address string) (travel.GeoPoint, bool, error) {
	ctx, span := c.tracer.Start(ctx, "googlemaps.geocode")
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		return travel.GeoPoint{}, false, err
	}
	results, err := c.maps.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		pe := providerError("geocode", err)
		var perr *travel.ProviderError
		if errors.As(pe, &perr) && perr.Status == travel.ProviderZeroResults {
			return travel.GeoPoint{}, false, nil
		}
		span.RecordError(err)
		return travel.GeoPoint{}, false, pe
	}
	if len(results) == 0 {
		return travel.GeoPoint{}, false, nil
	}
	loc := results[0].Geometry.Location
	return travel.GeoPoint{Lat: loc.Lat, Lng: loc.Lng}, true, nil
}

// providerError lifts the status out of "maps: STATUS - message" errors.
// Transport and context errors pass through untouched.
func providerError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "maps: ") {
		return err
	}
	status, _, _ := strings.Cut(strings.TrimPrefix(msg, "maps: "), " ")
	switch status {
	case travel.ProviderNotFound, travel.ProviderZeroResults, travel.ProviderOverQueryLimit,
		travel.ProviderOverDailyLimit, travel.ProviderRequestDenied, travel.ProviderInvalidRequest,
		travel.ProviderUnknownError:
		return &travel.ProviderError{Op: op, Status: status, Err: err}
	}
	return err
}
