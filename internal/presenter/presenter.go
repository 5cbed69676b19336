package presenter

import (
	"fmt"
	"time"

	"github.com/giljurha/Airvisual/internal/airquality"
	"github.com/giljurha/Airvisual/internal/geocode"
)

// Classify maps an AQI-US value to its category. Values below zero are
// treated as Good.
func Classify(aqi int) Classification {
	var c Category
	switch {
	case aqi <= 50:
		c = CategoryGood
	case aqi <= 150:
		c = CategoryModerate
	case aqi <= 200:
		c = CategoryUnhealthy
	default:
		c = CategoryVeryUnhealthy
	}

	// Every band shows the same backdrop; the app never shipped
	// per-category assets.
	return Classification{Category: c, Background: BackgroundGood}
}

// DisplayZone returns a fixed zone offset from UTC by hours.
func DisplayZone(hours int) *time.Location {
	if hours == 0 {
		return time.UTC
	}
	sign := "+"
	abs := hours
	if hours < 0 {
		sign = "-"
		abs = -hours
	}
	return time.FixedZone(fmt.Sprintf("UTC%s%d", sign, abs), hours*3600)
}

// FormatTime renders ts in loc using TimeLayout.
func FormatTime(ts time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return ts.In(loc).Format(TimeLayout)
}

// WithAddress returns a copy with the location lines taken from addr.
func (v ViewState) WithAddress(addr geocode.Address) ViewState {
	v.LocationTitle = addr.Title()
	v.LocationSubtitle = addr.Subtitle()
	return v
}

// WithReading returns a copy with the pollution fields taken from r.
func (v ViewState) WithReading(r airquality.PollutionReading, loc *time.Location) ViewState {
	class := Classify(r.AQIUS())
	v.HasReading = true
	v.AQIValue = r.AQIUS()
	v.Category = class.Category
	v.Background = class.Background
	v.Timestamp = r.Timestamp()
	v.FormattedTime = FormatTime(r.Timestamp(), loc)
	return v
}
