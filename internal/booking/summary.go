package booking

import (
	"fmt"
	"html"
	"strings"
)

// Subject is the notification subject line for p.
func Subject(p Payload) string {
	return fmt.Sprintf("New Booking Request — %s (%s)", p.PetName, p.ParentName)
}

// FormatSummary renders p as plain text.
func FormatSummary(p Payload) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Pet: %s (%s)\n", valueOrNA(p.PetName), valueOrNA(p.Sex)))
	b.WriteString(fmt.Sprintf("Breed: %s\n", valueOrNA(p.Breed)))
	b.WriteString(fmt.Sprintf("Weight: %d lbs\n", p.WeightLbs))
	b.WriteString(fmt.Sprintf("Parent: %s\n", valueOrNA(p.ParentName)))
	b.WriteString(fmt.Sprintf("Phone: %s\n", valueOrNA(p.Phone)))
	if p.Email != "" {
		b.WriteString(fmt.Sprintf("Email: %s\n", p.Email))
	}
	b.WriteString(fmt.Sprintf("Service: %s\n", serviceName(p)))
	if p.Address != "" {
		b.WriteString(fmt.Sprintf("Address: %s\n", p.Address))
	}
	b.WriteString(fmt.Sprintf("Service Price: %s\n", money(p.ServicePrice)))
	b.WriteString(fmt.Sprintf("Travel Fee: %s\n", travelFee(p)))
	b.WriteString(fmt.Sprintf("Estimated Total: %s\n", total(p)))
	if p.Notes != "" {
		b.WriteString(fmt.Sprintf("Notes: %s\n", p.Notes))
	}
	b.WriteString(fmt.Sprintf("Submitted: %s\n", p.Timestamp))
	return b.String()
}

// FormatSummaryHTML renders p for the booking notification email.
func FormatSummaryHTML(p Payload) string {
	row := func(label, value string) string {
		return fmt.Sprintf(`<tr><td style="padding:6px 12px;font-weight:bold;">%s</td><td style="padding:6px 12px;">%s</td></tr>`,
			label, html.EscapeString(value))
	}
	age := p.Age
	if age == "" {
		age = "(not provided)"
	}
	notes := p.Notes
	if notes == "" {
		notes = "(none)"
	}
	email := p.Email
	if email == "" {
		email = "(not provided)"
	}
	distance := "N/A"
	if p.DistanceMiles != nil {
		distance = fmt.Sprintf("%.1f mi (%s)", *p.DistanceMiles, p.DistanceMethod)
	}

	var b strings.Builder
	b.WriteString(`<div style="font-family:sans-serif;max-width:600px;">` + "\n")
	b.WriteString(`<h2 style="color:#333;">New Booking Request</h2>` + "\n")
	b.WriteString("<h3>Pet Information</h3>\n<table style=\"border-collapse:collapse;width:100%;\">\n")
	b.WriteString(row("Name", p.PetName) + "\n")
	b.WriteString(row("Sex", p.Sex) + "\n")
	b.WriteString(row("Breed", p.Breed) + "\n")
	b.WriteString(row("Age", age) + "\n")
	b.WriteString(row("Weight", fmt.Sprintf("%d lbs", p.WeightLbs)) + "\n")
	b.WriteString(row("Notes", notes) + "\n")
	b.WriteString("</table>\n<h3>Pet Parent</h3>\n<table style=\"border-collapse:collapse;width:100%;\">\n")
	b.WriteString(row("Parent Name", p.ParentName) + "\n")
	b.WriteString(row("Phone", p.Phone) + "\n")
	b.WriteString(row("Email", email) + "\n")
	b.WriteString("</table>\n<h3>Service Details</h3>\n<table style=\"border-collapse:collapse;width:100%;\">\n")
	b.WriteString(row("Service", serviceName(p)) + "\n")
	b.WriteString(row("Service Price", money(p.ServicePrice)) + "\n")
	b.WriteString("</table>\n<h3>Travel</h3>\n<table style=\"border-collapse:collapse;width:100%;\">\n")
	b.WriteString(row("Address", valueOrNA(p.Address)) + "\n")
	b.WriteString(row("Distance", distance) + "\n")
	b.WriteString(row("Travel Fee", travelFee(p)) + "\n")
	b.WriteString("</table>\n<h3>Estimated Total</h3>\n<table style=\"border-collapse:collapse;width:100%;\">\n")
	b.WriteString(row("Total", total(p)) + "\n")
	b.WriteString("</table>\n<hr />\n")
	b.WriteString(fmt.Sprintf("<p style=\"color:#666;font-size:12px;\">Source: %s<br>Timestamp: %s</p>\n",
		html.EscapeString(p.Source), html.EscapeString(p.Timestamp)))
	b.WriteString("</div>")
	return b.String()
}

func serviceName(p Payload) string {
	if label := p.Service.Label(); label != "" {
		return label
	}
	return valueOrNA(string(p.Service))
}

func money(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func travelFee(p Payload) string {
	if p.TravelFeeNum == nil {
		return "N/A"
	}
	if *p.TravelFeeNum == 0 {
		return "Free"
	}
	return money(p.TravelFeeNum)
}

func total(p Payload) string {
	if p.TotalEstimate == nil {
		return "N/A"
	}
	return money(p.TotalEstimate) + " (before tax)"
}

func valueOrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
