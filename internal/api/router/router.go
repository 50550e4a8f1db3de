package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/cuddles-booking/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/cuddles-booking/internal/http/middleware"
	"github.com/wolfman30/cuddles-booking/internal/leads"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

// Config holds router configuration. Nil handlers leave their routes unmounted.
type Config struct {
	Logger             *logging.Logger
	Health             *handlers.HealthHandler
	Pricing            *handlers.PricingHandler
	Travel             *handlers.TravelHandler
	Bookings           *handlers.BookingsHandler
	BookNow            *handlers.BookNowHandler
	Contact            *leads.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// RateLimiter guards the endpoints that reach the maps provider or send email.
	RateLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	limited := func(h http.HandlerFunc) http.Handler {
		if cfg.RateLimiter == nil {
			return h
		}
		return cfg.RateLimiter.Handler(h)
	}

	health := cfg.Health
	if health == nil {
		health = handlers.NewHealthHandler(nil)
	}
	r.Get("/health", health.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.Pricing != nil {
			api.Get("/pricing", cfg.Pricing.ListPricing)
			api.Get("/pricing/quote", cfg.Pricing.Quote)
		}
		if cfg.Travel != nil {
			api.Method(http.MethodPost, "/travel/check", limited(cfg.Travel.Check))
		}
		if cfg.Bookings != nil {
			b := cfg.Bookings
			api.Route("/bookings", func(br chi.Router) {
				br.Method(http.MethodPost, "/", limited(b.Create))
				br.Route("/{id}", func(s chi.Router) {
					s.Get("/", b.Get)
					s.Delete("/", b.Delete)
					s.Put("/pet", b.SetPet)
					s.Put("/parent", b.SetParent)
					s.Put("/service", b.SetService)
					s.Method(http.MethodPost, "/address", limited(b.SetAddress))
					s.Post("/next", b.Next)
					s.Post("/back", b.Back)
					s.Method(http.MethodPost, "/schedule", limited(b.Schedule))
					s.Get("/events", b.Events)
				})
			})
		}
	})

	// Endpoints the static site already posts to.
	if cfg.BookNow != nil {
		r.Method(http.MethodPost, "/api/booknow", limited(cfg.BookNow.Submit))
	}
	if cfg.Contact != nil {
		r.Method(http.MethodPost, "/api/contact", limited(cfg.Contact.SubmitContact))
	}

	return r
}
