package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/wolfman30/cuddles-booking/internal/pricing"
	"github.com/wolfman30/cuddles-booking/internal/travel"
)

// RateCard is the on-disk shape of a RATE_CARD_FILE:
//
//	[[services]]
//	kind = "full-service-grooming-haircut"
//	tiers = [{ min = 0, max = 10, price = 120.0 }]
//
//	[fulfillment.IN_HOME]
//	free_radius_miles = 15.0
//	rate_per_mile = 2.0
//	max_service_miles = 25.0
//	trip_multiplier = 2.0
type RateCard struct {
	Services    []ServiceRates              `toml:"services"`
	Fulfillment map[string]FulfillmentRates `toml:"fulfillment"`
}

// ServiceRates overrides the tiers of one service kind.
type ServiceRates struct {
	Kind  string         `toml:"kind"`
	Tiers []pricing.Tier `toml:"tiers"`
}

// FulfillmentRates overrides the travel rules of one mode. Omitted fields
// keep the default value; an explicit 0 is applied as written.
type FulfillmentRates struct {
	FreeRadiusMiles *float64 `toml:"free_radius_miles"`
	RatePerMile     *float64 `toml:"rate_per_mile"`
	MaxServiceMiles *float64 `toml:"max_service_miles"`
	TripMultiplier  *float64 `toml:"trip_multiplier"`
	Label           string   `toml:"label"`
}

// Rates is the resolved pricing and travel configuration.
type Rates struct {
	Table   pricing.Table
	Configs travel.Configs
}

// DefaultRates returns the published rate card.
func DefaultRates() Rates {
	return Rates{Table: pricing.DefaultTable(), Configs: travel.DefaultConfigs()}
}

// LoadRates returns the defaults, overridden by the TOML file at path when
// path is non-empty. The merged result is validated.
func LoadRates(path string) (Rates, error) {
	rates := DefaultRates()
	if path == "" {
		return rates, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rates{}, fmt.Errorf("config: read rate card: %w", err)
	}
	var card RateCard
	if err := toml.Unmarshal(data, &card); err != nil {
		return Rates{}, fmt.Errorf("config: parse rate card %s: %w", path, err)
	}
	if err := card.apply(&rates); err != nil {
		return Rates{}, err
	}
	return rates, nil
}

func (c RateCard) apply(rates *Rates) error {
	for _, svc := range c.Services {
		kind, err := pricing.ParseServiceKind(svc.Kind)
		if err != nil {
			return fmt.Errorf("config: rate card: %w", err)
		}
		rates.Table[kind] = svc.Tiers
	}
	if err := rates.Table.Validate(); err != nil {
		return fmt.Errorf("config: rate card: %w", err)
	}

	for raw, override := range c.Fulfillment {
		mode, err := travel.ParseMode(raw)
		if err != nil {
			return fmt.Errorf("config: rate card: %w", err)
		}
		cfg := rates.Configs[mode]
		if override.FreeRadiusMiles != nil {
			cfg.FreeRadiusMiles = *override.FreeRadiusMiles
		}
		if override.RatePerMile != nil {
			cfg.RatePerMile = *override.RatePerMile
		}
		if override.MaxServiceMiles != nil {
			cfg.MaxServiceMiles = *override.MaxServiceMiles
		}
		if override.TripMultiplier != nil {
			cfg.TripMultiplier = *override.TripMultiplier
		}
		if override.Label != "" {
			cfg.Label = override.Label
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config: rate card %s: %w", mode, err)
		}
		rates.Configs[mode] = cfg
	}
	return nil
}
