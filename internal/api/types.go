package api

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// --- Provider ---

// Provider is the complete provider record returned by the backend.
type Provider struct {
	ID           int           `json:"id"`
	NIT          string        `json:"nit"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	CustomFields []CustomField `json:"customFields"`
	Services     []Service     `json:"services"`
}

// CustomField is a free-form name/value pair attached to a provider.
type CustomField struct {
	ID         int    `json:"id"`
	FieldName  string `json:"fieldName"`
	FieldValue string `json:"fieldValue"`
}

// Service is a billable service offered by a provider in a set of countries.
type Service struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	ValuePerHourUSD string    `json:"valuePerHourUsd"`
	Countries       []Country `json:"countries"`
}

// Country is a directory entry, identified by its ISO code.
type Country struct {
	ID        int    `json:"id"`
	ISOCode   string `json:"isocode"`
	Name      string `json:"name"`
	FlagImage string `json:"flagImage"`
}

// Key returns the directory identity of the country.
func (c Country) Key() string {
	return strings.ToUpper(strings.TrimSpace(c.ISOCode))
}

// Clone returns a deep copy of the provider.
func (p Provider) Clone() Provider {
	out := p
	out.CustomFields = append([]CustomField(nil), p.CustomFields...)
	if p.Services != nil {
		out.Services = make([]Service, len(p.Services))
		for i, s := range p.Services {
			out.Services[i] = s.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the service.
func (s Service) Clone() Service {
	out := s
	out.Countries = append([]Country(nil), s.Countries...)
	return out
}

// ServiceIndex returns the position of the service with the given id, or -1.
func (p Provider) ServiceIndex(serviceID int) int {
	for i, s := range p.Services {
		if s.ID == serviceID {
			return i
		}
	}
	return -1
}

// Matches reports whether query (case-insensitive) occurs in the provider's
// name, email, NIT or any service name. An empty query matches everything.
func (p Provider) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Email), q) ||
		strings.Contains(strings.ToLower(p.NIT), q) {
		return true
	}
	for _, s := range p.Services {
		if strings.Contains(strings.ToLower(s.Name), q) {
			return true
		}
	}
	return false
}

// FormatUSD renders an hourly value as "$12.50 USD"; non-numeric values
// render as "$0.00 USD".
func FormatUSD(value string) string {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		n = 0
	}
	return fmt.Sprintf("$%.2f USD", n)
}

// --- Responses ---

// MessageResponse is the acknowledgement body of every mutating endpoint.
type MessageResponse struct {
	Message string `json:"message"`
}

// DefaultSuccessMarker is the word the backend puts in every successful
// acknowledgement ("successfully").
const DefaultSuccessMarker = "exitosamente"

// NotConfirmedError is returned when the backend answered without the success
// marker. The request reached the backend but must be treated as failed.
type NotConfirmedError struct {
	Message string
}

func (e *NotConfirmedError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		return "backend did not confirm the operation"
	}
	return fmt.Sprintf("backend did not confirm the operation: %s", msg)
}
