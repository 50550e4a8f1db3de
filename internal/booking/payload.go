package booking

import (
	"errors"
	"strings"
	"time"

	"github.com/wolfman30/cuddles-booking/internal/lookup"
	"github.com/wolfman30/cuddles-booking/internal/pricing"
	"github.com/wolfman30/cuddles-booking/internal/travel"
)

const (
	// DefaultSource tags payloads sent by the booking flow.
	DefaultSource = "cuddlesandcut.com/booknow"
	// DefaultSchedulingURL is the external appointment scheduler.
	DefaultSchedulingURL = "https://app.squareup.com/appointments/book/kex5gpj1py34rx/LEKB5ZSK8FPEM/start"
)

// Payload is the flat booking record handed to the notification collaborator.
type Payload struct {
	PetName        string              `json:"petName"`
	Sex            string              `json:"sex"`
	ParentName     string              `json:"parentName"`
	Phone          string              `json:"phone"`
	Email          string              `json:"email"`
	Service        pricing.ServiceKind `json:"service"`
	Breed          string              `json:"breed"`
	Age            string              `json:"age"`
	WeightLbs      int                 `json:"weightLbs"`
	Notes          string              `json:"notes"`
	Address        string              `json:"address,omitempty"`
	Fulfillment    travel.Mode         `json:"fulfillment,omitempty"`
	DistanceMiles  *float64            `json:"distanceMiles,omitempty"`
	DistanceMethod travel.Method       `json:"distanceMethod,omitempty"`
	TravelStatus   travel.Status       `json:"travelStatus,omitempty"`
	TravelFee      *float64            `json:"travelFee"`
	ServicePrice   *float64            `json:"servicePrice"`
	TravelFeeNum   *float64            `json:"travelFeeNum"`
	TotalEstimate  *float64            `json:"totalEstimate"`
	Timestamp      string              `json:"ts"`
	Source         string              `json:"source"`
}

// BuildPayload flattens a draft and its estimate.
func BuildPayload(d Draft, est Estimate, st lookup.State, source string, at time.Time) Payload {
	if source == "" {
		source = DefaultSource
	}
	address := st.Address
	if address == "" {
		address = d.Address
	}
	p := Payload{
		PetName:       d.Pet.Name,
		Sex:           d.Pet.Sex,
		ParentName:    d.Parent.Name,
		Phone:         d.Parent.Phone,
		Email:         d.Parent.Email,
		Service:       d.Service.Kind,
		Breed:         d.Service.Breed,
		Age:           d.Service.Age,
		WeightLbs:     d.Service.WeightLbs,
		Notes:         d.Service.Notes,
		Address:       address,
		Fulfillment:   st.Mode,
		TravelFee:     est.TravelFee,
		ServicePrice:  est.ServicePrice,
		TravelFeeNum:  est.TravelFee,
		TotalEstimate: est.Total,
		Timestamp:     at.UTC().Format(time.RFC3339Nano),
		Source:        source,
	}
	if st.Distance != nil {
		miles := st.Distance.Miles
		p.DistanceMiles = &miles
		p.DistanceMethod = st.Distance.Method
	}
	if est.Travel != nil {
		p.TravelStatus = est.Travel.Status
	}
	return p
}

// Validate checks the fields every notification needs.
func (p Payload) Validate() error {
	var missing []string
	if strings.TrimSpace(p.PetName) == "" {
		missing = append(missing, "petName")
	}
	if strings.TrimSpace(p.ParentName) == "" {
		missing = append(missing, "parentName")
	}
	if strings.TrimSpace(p.Phone) == "" && strings.TrimSpace(p.Email) == "" {
		missing = append(missing, "phone or email")
	}
	if len(missing) > 0 {
		return errors.New("booking: payload missing " + strings.Join(missing, ", "))
	}
	return nil
}
