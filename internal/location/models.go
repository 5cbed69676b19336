// Package location reads the device's last-known position from the enabled
// location sources.
package location

import (
	"errors"
	"fmt"
)

// ErrCoordinatesUnavailable is returned when no enabled source has a fix.
var ErrCoordinatesUnavailable = errors.New("coordinates unavailable")

// Source names, in the order a Provider prefers them.
const (
	SourceGPS     = "gps"
	SourceNetwork = "network"
)

// Coordinates is a WGS84 position. A Coordinates value is only ever handed
// out whole; a source without both values reports no fix.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String formats the coordinates the way query parameters expect them.
func (c Coordinates) String() string {
	return fmt.Sprintf("%g,%g", c.Lat, c.Lon)
}
