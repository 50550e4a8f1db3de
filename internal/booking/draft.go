package booking

import (
	"strings"

	"github.com/wolfman30/cuddles-booking/internal/pricing"
)

const (
	MinWeightLbs = 1
	MaxWeightLbs = 200
)

const (
	SexMale   = "male"
	SexFemale = "female"
)

// PetInfo is collected on the first step.
type PetInfo struct {
	Name string `json:"name"`
	Sex  string `json:"sex"`
}

// ParentInfo is the pet parent's contact details.
type ParentInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// ServiceDetails is the chosen service and the pet attributes that price it.
type ServiceDetails struct {
	Kind      pricing.ServiceKind `json:"service"`
	Breed     string              `json:"breed"`
	Age       string              `json:"age,omitempty"`
	WeightLbs int                 `json:"weight_lbs"`
	Notes     string              `json:"notes,omitempty"`
}

// Draft is the in-progress booking owned by one wizard.
type Draft struct {
	Pet     PetInfo        `json:"pet"`
	Parent  ParentInfo     `json:"parent"`
	Service ServiceDetails `json:"service"`
	Address string         `json:"address,omitempty"`
}

func (p PetInfo) normalized() PetInfo {
	p.Name = strings.TrimSpace(p.Name)
	p.Sex = strings.ToLower(strings.TrimSpace(p.Sex))
	return p
}

func (p ParentInfo) normalized() ParentInfo {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.TrimSpace(p.Email)
	return p
}

func (s ServiceDetails) normalized() ServiceDetails {
	s.Breed = strings.TrimSpace(s.Breed)
	s.Age = strings.TrimSpace(s.Age)
	s.Notes = strings.TrimSpace(s.Notes)
	return s
}
