package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/cuddles-booking/internal/booking"
	"github.com/wolfman30/cuddles-booking/internal/travel"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	LogFormat     string

	// Travel estimation
	OriginAddress         string
	MapsProvider          string
	GoogleMapsAPIKey      string
	GoogleMapsBaseURL     string
	MapsRequestsPerSecond float64
	MapsBurst             int
	DistanceTimeout       time.Duration
	DistanceCacheTTL      time.Duration
	LookupDebounce        time.Duration
	RateCardFile          string

	// Booking sessions
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	SchedulingURL        string
	BookingSource        string

	// Notifications
	EmailProvider       string
	NotifyRecipients    []string
	NotifyTimeout       time.Duration
	BookingNotifyURL    string
	SendGridAPIKey      string
	SendGridFromEmail   string
	SendGridFromName    string
	SESConfigurationSet string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "json")),

		OriginAddress:         getEnv("ORIGIN_ADDRESS", travel.DefaultOrigin),
		MapsProvider:          strings.ToLower(strings.TrimSpace(getEnv("MAPS_PROVIDER", "auto"))),
		GoogleMapsAPIKey:      getEnv("GOOGLE_MAPS_API_KEY", ""),
		GoogleMapsBaseURL:     getEnv("GOOGLE_MAPS_BASE_URL", ""),
		MapsRequestsPerSecond: getEnvAsFloat("MAPS_REQUESTS_PER_SECOND", 10),
		MapsBurst:             getEnvAsInt("MAPS_BURST", 20),
		DistanceTimeout:       getEnvAsDuration("DISTANCE_TIMEOUT", 10*time.Second),
		DistanceCacheTTL:      getEnvAsDuration("DISTANCE_CACHE_TTL", 24*time.Hour),
		LookupDebounce:        getEnvAsDuration("LOOKUP_DEBOUNCE", 800*time.Millisecond),
		RateCardFile:          getEnv("RATE_CARD_FILE", ""),

		SessionTTL:           getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		SessionSweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		SchedulingURL:        getEnv("SCHEDULING_URL", booking.DefaultSchedulingURL),
		BookingSource:        getEnv("BOOKING_SOURCE", booking.DefaultSource),

		EmailProvider:       strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),
		NotifyRecipients:    getEnvAsList("NOTIFY_RECIPIENTS", []string{"contact@cuddlesandcut.com"}),
		NotifyTimeout:       getEnvAsDuration("NOTIFY_TIMEOUT", 10*time.Second),
		BookingNotifyURL:    getEnv("BOOKING_NOTIFY_URL", ""),
		SendGridAPIKey:      getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:   getEnv("SENDGRID_FROM_EMAIL", "noreply@cuddlesandcut.com"),
		SendGridFromName:    getEnv("SENDGRID_FROM_NAME", "Cuddles & Cuts"),
		SESConfigurationSet: getEnv("SES_CONFIGURATION_SET", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"https://cuddlesandcut.com", "https://www.cuddlesandcut.com"}),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
	}
}

// LoadDotEnv loads the given .env files (".env" when none are named) into the
// process environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
