package valueobject

import "strings"

// Address represents a postal address used for shipping and billing
type Address struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// IsComplete returns true if all required address fields are set
func (a Address) IsComplete() bool {
	return a.FullName != "" && a.Line1 != "" && a.City != "" &&
		a.PostalCode != "" && a.Country != ""
}

// String returns a single-line representation of the address
func (a Address) String() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.FullName, a.Line1, a.Line2, a.City, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
