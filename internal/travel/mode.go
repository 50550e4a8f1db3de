package travel

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultOrigin is the business HQ every distance is measured from.
const DefaultOrigin = "1400 Avery Nelson Pkwy, Round Rock, TX 78665"

// ErrUnknownMode is returned for an unsupported fulfillment mode.
var ErrUnknownMode = errors.New("travel: unknown fulfillment mode")

// Mode is how a grooming appointment is fulfilled.
type Mode string

const (
	ModeInHome        Mode = "IN_HOME"
	ModePickupDropoff Mode = "PICKUP_DROPOFF"
)

// ParseMode accepts the canonical names plus the spellings the site uses.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "in_home", "in-home", "inhome":
		return ModeInHome, nil
	case "pickup_dropoff", "pickup-dropoff", "pickup", "pudo":
		return ModePickupDropoff, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
}

// FulfillmentConfig holds the travel billing rules for one mode.
type FulfillmentConfig struct {
	Mode            Mode    `json:"mode"`
	FreeRadiusMiles float64 `json:"free_radius_miles"`
	RatePerMile     float64 `json:"rate_per_mile"`
	MaxServiceMiles float64 `json:"max_service_miles"`
	// TripMultiplier converts one-way excess miles into billable miles:
	// 2 for an in-home round trip, 4 for the pickup and delivery legs.
	TripMultiplier float64 `json:"trip_multiplier"`
	Label          string  `json:"label"`
}

// Validate rejects configs that would make Evaluate meaningless.
func (c FulfillmentConfig) Validate() error {
	switch {
	case c.FreeRadiusMiles < 0:
		return fmt.Errorf("travel: %s free radius must not be negative", c.Mode)
	case c.RatePerMile < 0:
		return fmt.Errorf("travel: %s rate per mile must not be negative", c.Mode)
	case c.MaxServiceMiles < c.FreeRadiusMiles:
		return fmt.Errorf("travel: %s max service miles below free radius", c.Mode)
	case c.TripMultiplier <= 0:
		return fmt.Errorf("travel: %s trip multiplier must be positive", c.Mode)
	}
	return nil
}

// Configs indexes fulfillment rules by mode.
type Configs map[Mode]FulfillmentConfig

// DefaultConfigs returns the published travel rules.
func DefaultConfigs() Configs {
	return Configs{
		ModeInHome: {
			Mode:            ModeInHome,
			FreeRadiusMiles: 15,
			RatePerMile:     2.0,
			MaxServiceMiles: 25,
			TripMultiplier:  2,
			Label:           "In-Home Grooming",
		},
		ModePickupDropoff: {
			Mode:            ModePickupDropoff,
			FreeRadiusMiles: 5,
			RatePerMile:     2.0,
			MaxServiceMiles: 15,
			TripMultiplier:  4,
			Label:           "Pick-up / Drop-off",
		},
	}
}

// For returns the config for mode.
func (c Configs) For(mode Mode) (FulfillmentConfig, error) {
	cfg, ok := c[mode]
	if !ok {
		return FulfillmentConfig{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return cfg, nil
}
