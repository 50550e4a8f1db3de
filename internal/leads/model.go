package leads

import (
	"regexp"
	"strings"
	"time"
)

// DefaultSource tags inquiries from the website contact form.
const DefaultSource = "cuddlesandcut.com/contact"

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// Inquiry is a contact form submission.
type Inquiry struct {
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	City       string    `json:"city"`
	Zip        string    `json:"zip"`
	Service    string    `json:"service"`
	Message    string    `json:"message"`
	Source     string    `json:"source,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// Normalize trims every text field.
func (i *Inquiry) Normalize() {
	i.Name = strings.TrimSpace(i.Name)
	i.Phone = strings.TrimSpace(i.Phone)
	i.Email = strings.TrimSpace(i.Email)
	i.City = strings.TrimSpace(i.City)
	i.Zip = strings.TrimSpace(i.Zip)
	i.Service = strings.TrimSpace(i.Service)
	i.Message = strings.TrimSpace(i.Message)
	if i.Source == "" {
		i.Source = DefaultSource
	}
}

// Validate validates the inquiry
func (i *Inquiry) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(i.Email) == "" && strings.TrimSpace(i.Phone) == "" {
		return ErrMissingContact
	}
	if z := strings.TrimSpace(i.Zip); z != "" && !zipPattern.MatchString(z) {
		return ErrInvalidZip
	}
	return nil
}
