package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/cuddles-booking/internal/travel"
)

func TestPriceFor(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name   string
		kind   ServiceKind
		weight int
		price  float64
		ok     bool
	}{
		{"haircut smallest", ServiceHaircut, 1, 120, true},
		{"haircut boundary 10", ServiceHaircut, 10, 120, true},
		{"haircut 12", ServiceHaircut, 12, 130, true},
		{"haircut boundary 21", ServiceHaircut, 21, 150, true},
		{"haircut top", ServiceHaircut, 80, 200, true},
		{"haircut over top", ServiceHaircut, 81, 0, false},
		{"bath 46", ServiceBath, 46, 150, true},
		{"bath over 80", ServiceBath, 200, 0, false},
		{"negative weight", ServiceBath, -1, 0, false},
		{"unknown kind", ServiceKind("nails"), 10, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, ok := table.PriceFor(tt.kind, tt.weight)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.price, price)
		})
	}
}

func TestPriceForTwoTierScenario(t *testing.T) {
	table := Table{ServiceHaircut: {{MinLbs: 0, MaxLbs: 10, Price: 120}, {MinLbs: 11, MaxLbs: 20, Price: 130}}}
	price, ok := table.PriceFor(ServiceHaircut, 12)
	require.True(t, ok)
	assert.Equal(t, 130.0, price)
}

func TestDefaultTableEachWeightInExactlyOneTier(t *testing.T) {
	table := DefaultTable()
	require.NoError(t, table.Validate())

	for _, kind := range table.Kinds() {
		for w := 0; w <= table.MaxCoveredWeight(kind); w++ {
			matches := 0
			for _, tier := range table[kind] {
				if tier.Contains(w) {
					matches++
				}
			}
			if matches != 1 {
				t.Fatalf("%s weight %d matched %d tiers", kind, w, matches)
			}
		}
	}
}

func TestValidateRejectsOverlapAndGap(t *testing.T) {
	overlap := Table{ServiceBath: {{MinLbs: 0, MaxLbs: 10, Price: 1}, {MinLbs: 10, MaxLbs: 20, Price: 2}}}
	assert.True(t, errors.Is(overlap.Validate(), ErrInvalidTiers))

	gap := Table{ServiceBath: {{MinLbs: 0, MaxLbs: 10, Price: 1}, {MinLbs: 12, MaxLbs: 20, Price: 2}}}
	assert.True(t, errors.Is(gap.Validate(), ErrInvalidTiers))

	inverted := Table{ServiceBath: {{MinLbs: 5, MaxLbs: 1, Price: 1}}}
	assert.True(t, errors.Is(inverted.Validate(), ErrInvalidTiers))

	empty := Table{ServiceBath: nil}
	assert.True(t, errors.Is(empty.Validate(), ErrInvalidTiers))
}

func TestParseServiceKind(t *testing.T) {
	k, err := ParseServiceKind("  Full-Service-Grooming-Haircut ")
	require.NoError(t, err)
	assert.Equal(t, ServiceHaircut, k)

	_, err = ParseServiceKind("spa-day")
	assert.ErrorIs(t, err, ErrUnknownService)
}

func TestServiceKindMode(t *testing.T) {
	assert.Equal(t, travel.ModeInHome, ServiceHaircut.Mode())
	assert.Equal(t, travel.ModePickupDropoff, ServiceBath.Mode())
	assert.Equal(t, "Full-Service Bath & Maintenance", ServiceBath.Label())
}
