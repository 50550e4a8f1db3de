package booking

import (
	"github.com/wolfman30/cuddles-booking/internal/lookup"
	"github.com/wolfman30/cuddles-booking/internal/pricing"
	"github.com/wolfman30/cuddles-booking/internal/travel"
)

// Estimate is the running price. A nil amount means unknown, which is
// distinct from zero.
type Estimate struct {
	ServicePrice *float64              `json:"service_price"`
	TravelFee    *float64              `json:"travel_fee"`
	Total        *float64              `json:"total"`
	Travel       *travel.FeeEvaluation `json:"travel,omitempty"`
}

// ComputeEstimate derives the estimate from its inputs. It is called on every
// read so the total never lags the draft or the travel state.
func ComputeEstimate(table pricing.Table, d Draft, st lookup.State) Estimate {
	var est Estimate
	if price, ok := table.PriceFor(d.Service.Kind, d.Service.WeightLbs); ok {
		est.ServicePrice = &price
	}
	if st.Evaluation != nil {
		eval := *st.Evaluation
		est.Travel = &eval
		if eval.Bookable() {
			fee := eval.Fee
			est.TravelFee = &fee
		}
	}
	if est.ServicePrice != nil && est.TravelFee != nil {
		total := travel.Round2(*est.ServicePrice + *est.TravelFee)
		est.Total = &total
	}
	return est
}
