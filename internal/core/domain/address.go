package domain

import "strings"

type Address struct {
	StreetAddress string
	City          string
	State         string // optional
	PostalCode    string
	Country       string
}

// Complete reports whether the address can be shipped to.
func (a *Address) Complete() bool {
	if a == nil {
		return false
	}
	for _, field := range []string{a.StreetAddress, a.City, a.PostalCode, a.Country} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}
