package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPricing(t *testing.T) {
	h := NewPricingHandler(nil, nil)
	rec := doJSON(t, http.HandlerFunc(h.ListPricing), http.MethodGet, "/api/v1/pricing", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Services []servicePricing `json:"services"`
	}
	decodeBody(t, rec, &body)
	require.Len(t, body.Services, 2)
	assert.Equal(t, "full-service-bath-maintenance", string(body.Services[0].Service))
	assert.Equal(t, 5.0, body.Services[0].Fulfillment.FreeRadiusMiles)
	assert.Equal(t, "full-service-grooming-haircut", string(body.Services[1].Service))
	assert.Equal(t, 120.0, body.Services[1].Tiers[0].Price)
}

func TestQuote(t *testing.T) {
	h := http.HandlerFunc(NewPricingHandler(nil, nil).Quote)

	cases := []struct {
		name      string
		query     string
		status    int
		available bool
		price     float64
	}{
		{"haircut first tier", "service=full-service-grooming-haircut&weight=10", http.StatusOK, true, 120},
		{"haircut tier boundary", "service=full-service-grooming-haircut&weight=11", http.StatusOK, true, 130},
		{"bath top tier", "service=full-service-bath-maintenance&weight=80", http.StatusOK, true, 170},
		{"above top tier", "service=full-service-bath-maintenance&weight=81", http.StatusOK, false, 0},
		{"unknown service", "service=nail-trim&weight=10", http.StatusBadRequest, false, 0},
		{"bad weight", "service=full-service-bath-maintenance&weight=heavy", http.StatusBadRequest, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodGet, "/api/v1/pricing/quote?"+tc.query, nil)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.status != http.StatusOK {
				return
			}
			var body quoteResponse
			decodeBody(t, rec, &body)
			assert.Equal(t, tc.available, body.Available)
			assert.Equal(t, 80, body.MaxStandardLbs)
			if tc.available {
				require.NotNil(t, body.Price)
				assert.Equal(t, tc.price, *body.Price)
			} else {
				assert.Nil(t, body.Price)
				assert.Equal(t, "custom quote: standard pricing covers pets up to 80 lbs", body.Note)
			}
		})
	}
}
