package travel

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Status classifies a fee evaluation.
type Status string

const (
	StatusIncluded   Status = "INCLUDED"
	StatusSurcharge  Status = "SURCHARGE"
	StatusOutOfRange Status = "OUT_OF_RANGE"
)

// FeeEvaluation is the outcome of applying a fulfillment config to a distance.
// Fee is only meaningful when Status is not OUT_OF_RANGE.
type FeeEvaluation struct {
	Status        Status  `json:"status"`
	Mode          Mode    `json:"mode"`
	Method        Method  `json:"method"`
	RawMiles      float64 `json:"raw_miles"`
	ExcessMiles   float64 `json:"excess_miles"`
	BillableMiles float64 `json:"billable_miles"`
	Fee           float64 `json:"fee"`
}

// Bookable reports whether the address can be served in this mode.
func (e FeeEvaluation) Bookable() bool {
	return e.Status != StatusOutOfRange
}

// Evaluate applies cfg to d. It is pure: identical inputs give identical
// output. Only the final fee is rounded.
func Evaluate(d DistanceResult, cfg FulfillmentConfig) FeeEvaluation {
	raw := math.Max(0, d.Miles)
	eval := FeeEvaluation{
		Mode:     cfg.Mode,
		Method:   d.Method,
		RawMiles: raw,
	}

	if raw > cfg.MaxServiceMiles {
		eval.Status = StatusOutOfRange
		return eval
	}

	excess := math.Max(0, raw-cfg.FreeRadiusMiles)
	if excess == 0 {
		eval.Status = StatusIncluded
		return eval
	}

	eval.Status = StatusSurcharge
	eval.ExcessMiles = excess
	eval.BillableMiles = excess * cfg.TripMultiplier
	eval.Fee = Round2(eval.BillableMiles * cfg.RatePerMile)
	return eval
}

// Round2 rounds to cents, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Describe renders the sentence shown next to the calculator result.
func Describe(e FeeEvaluation, cfg FulfillmentConfig) string {
	switch e.Status {
	case StatusOutOfRange:
		return fmt.Sprintf("Your address is %s away. For %s, we currently serve up to %s miles.",
			miles(e.RawMiles), cfg.Label, strconv.FormatFloat(cfg.MaxServiceMiles, 'f', -1, 64))
	case StatusIncluded:
		return fmt.Sprintf("Your address is %s. Travel is included, no extra charge for %s.",
			miles(e.RawMiles), strings.ToLower(cfg.Label))
	default:
		return fmt.Sprintf("Your address is %s. That is %s beyond the %s included radius. Billing uses %s trips. Additional travel: %s × %s = %s.",
			miles(e.RawMiles), miles(e.ExcessMiles), miles(cfg.FreeRadiusMiles),
			strconv.FormatFloat(cfg.TripMultiplier, 'f', -1, 64),
			miles(e.BillableMiles), usd(cfg.RatePerMile), usd(e.Fee))
	}
}

func miles(v float64) string { return fmt.Sprintf("%.1f mi", v) }

func usd(v float64) string { return fmt.Sprintf("$%.2f", v) }
