package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/wolfman30/cuddles-booking/internal/pricing"
	"github.com/wolfman30/cuddles-booking/internal/travel"
)

// PricingHandler serves the rate card.
type PricingHandler struct {
	table   pricing.Table
	configs travel.Configs
}

func NewPricingHandler(table pricing.Table, configs travel.Configs) *PricingHandler {
	if table == nil {
		table = pricing.DefaultTable()
	}
	if configs == nil {
		configs = travel.DefaultConfigs()
	}
	return &PricingHandler{table: table, configs: configs}
}

type servicePricing struct {
	Service     pricing.ServiceKind      `json:"service"`
	Label       string                   `json:"label"`
	Fulfillment travel.FulfillmentConfig `json:"fulfillment"`
	Tiers       []pricing.Tier           `json:"tiers"`
}

// ListPricing handles GET /api/v1/pricing.
func (h *PricingHandler) ListPricing(w http.ResponseWriter, r *http.Request) {
	services := make([]servicePricing, 0, len(h.table))
	for _, kind := range h.table.Kinds() {
		services = append(services, servicePricing{
			Service:     kind,
			Label:       kind.Label(),
			Fulfillment: h.configs[kind.Mode()],
			Tiers:       h.table[kind],
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

type quoteResponse struct {
	Service        pricing.ServiceKind `json:"service"`
	WeightLbs      int                 `json:"weight_lbs"`
	Available      bool                `json:"available"`
	Price          *float64            `json:"price,omitempty"`
	MaxStandardLbs int                 `json:"max_standard_lbs"`
	Note           string              `json:"note,omitempty"`
}

// Quote handles GET /api/v1/pricing/quote?service=&weight=.
func (h *PricingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	kind, err := pricing.ParseServiceKind(r.URL.Query().Get("service"))
	if err != nil {
		jsonError(w, "unknown service", http.StatusBadRequest)
		return
	}
	weight, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("weight")))
	if err != nil || weight < 0 {
		jsonError(w, "weight must be a whole number of pounds", http.StatusBadRequest)
		return
	}

	resp := quoteResponse{Service: kind, WeightLbs: weight, MaxStandardLbs: h.table.MaxCoveredWeight(kind)}
	if price, ok := h.table.PriceFor(kind, weight); ok {
		resp.Available = true
		resp.Price = &price
	} else {
		resp.Note = fmt.Sprintf("custom quote: standard pricing covers pets up to %d lbs", resp.MaxStandardLbs)
	}
	writeJSON(w, http.StatusOK, resp)
}
