// Package pricing holds the weight-tiered base prices for each grooming service.
package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/wolfman30/cuddles-booking/internal/travel"
)

var (
	// ErrUnknownService is returned when a service kind is not offered.
	ErrUnknownService = errors.New("pricing: unknown service")

	// ErrInvalidTiers is returned when a tier table is not ascending, contiguous and non-overlapping.
	ErrInvalidTiers = errors.New("pricing: invalid tiers")
)

// ServiceKind identifies a grooming package.
type ServiceKind string

const (
	ServiceHaircut ServiceKind = "full-service-grooming-haircut"
	ServiceBath    ServiceKind = "full-service-bath-maintenance"
)

// Label returns the customer-facing package name.
func (k ServiceKind) Label() string {
	switch k {
	case ServiceHaircut:
		return "Full-Service Grooming with Haircut"
	case ServiceBath:
		return "Full-Service Bath & Maintenance"
	default:
		return string(k)
	}
}

// Mode returns how the package is fulfilled. Haircuts happen in the customer's
// home; baths use pick-up and drop-off.
func (k ServiceKind) Mode() travel.Mode {
	if k == ServiceHaircut {
		return travel.ModeInHome
	}
	return travel.ModePickupDropoff
}

// ParseServiceKind validates a raw service identifier.
func ParseServiceKind(raw string) (ServiceKind, error) {
	k := ServiceKind(strings.ToLower(strings.TrimSpace(raw)))
	switch k {
	case ServiceHaircut, ServiceBath:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownService, raw)
}

// Tier maps an inclusive weight range in pounds to a base price in dollars.
type Tier struct {
	MinLbs int     `json:"min_lbs" toml:"min"`
	MaxLbs int     `json:"max_lbs" toml:"max"`
	Price  float64 `json:"price" toml:"price"`
}

// Contains reports whether weight falls inside the tier.
func (t Tier) Contains(weightLbs int) bool {
	return weightLbs >= t.MinLbs && weightLbs <= t.MaxLbs
}

// Table is the ordered tier list per service kind.
type Table map[ServiceKind][]Tier

// DefaultTable returns the published rate card (before tax).
func DefaultTable() Table {
	return Table{
		ServiceHaircut: {
			{MinLbs: 0, MaxLbs: 10, Price: 120},
			{MinLbs: 11, MaxLbs: 20, Price: 130},
			{MinLbs: 21, MaxLbs: 45, Price: 150},
			{MinLbs: 46, MaxLbs: 60, Price: 180},
			{MinLbs: 61, MaxLbs: 80, Price: 200},
		},
		ServiceBath: {
			{MinLbs: 0, MaxLbs: 10, Price: 90},
			{MinLbs: 11, MaxLbs: 20, Price: 100},
			{MinLbs: 21, MaxLbs: 45, Price: 120},
			{MinLbs: 46, MaxLbs: 60, Price: 150},
			{MinLbs: 61, MaxLbs: 80, Price: 170},
		},
	}
}

// PriceFor returns the base price of the first tier containing weightLbs.
// ok is false when the kind is unknown or no tier covers the weight; callers
// must render that as a custom quote, never as $0.
func (t Table) PriceFor(kind ServiceKind, weightLbs int) (price float64, ok bool) {
	for _, tier := range t[kind] {
		if tier.Contains(weightLbs) {
			return tier.Price, true
		}
	}
	return 0, false
}

// MaxCoveredWeight returns the top tier boundary for kind, or 0 if unknown.
func (t Table) MaxCoveredWeight(kind ServiceKind) int {
	tiers := t[kind]
	if len(tiers) == 0 {
		return 0
	}
	return tiers[len(tiers)-1].MaxLbs
}

// Kinds returns the service kinds in a stable order.
func (t Table) Kinds() []ServiceKind {
	kinds := make([]ServiceKind, 0, len(t))
	for k := range t {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Validate checks every kind's tiers ascend without gaps or overlaps.
func (t Table) Validate() error {
	for kind, tiers := range t {
		if len(tiers) == 0 {
			return fmt.Errorf("%w: %s has no tiers", ErrInvalidTiers, kind)
		}
		for i, tier := range tiers {
			if tier.MinLbs > tier.MaxLbs {
				return fmt.Errorf("%w: %s tier %d has min %d above max %d", ErrInvalidTiers, kind, i, tier.MinLbs, tier.MaxLbs)
			}
			if tier.Price < 0 {
				return fmt.Errorf("%w: %s tier %d has negative price", ErrInvalidTiers, kind, i)
			}
			if i > 0 && tier.MinLbs != tiers[i-1].MaxLbs+1 {
				return fmt.Errorf("%w: %s tier %d starts at %d, want %d", ErrInvalidTiers, kind, i, tier.MinLbs, tiers[i-1].MaxLbs+1)
			}
		}
	}
	return nil
}
