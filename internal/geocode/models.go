// Package geocode resolves coordinates to a human-readable address.
package geocode

import (
	"errors"
	"strings"
)

// Address resolution errors. All of them are non-fatal to a refresh.
var (
	ErrServiceUnavailable = errors.New("geocoder service unavailable")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrNoAddressFound     = errors.New("no address found")
)

// MaxResults is the number of candidates requested from the geocoder.
const MaxResults = 7

// Address is a best-effort reverse geocoding result. Any field may be empty.
type Address struct {
	Thoroughfare string `json:"thoroughfare,omitempty"`
	CountryName  string `json:"countryName,omitempty"`
	AdminArea    string `json:"adminArea,omitempty"`
}

// Title is the first display line.
func (a Address) Title() string {
	return a.Thoroughfare
}

// Subtitle is the second display line: country followed by admin area.
func (a Address) Subtitle() string {
	return strings.TrimSpace(a.CountryName + " " + a.AdminArea)
}
