// Package presenter turns domain results into the immutable ViewState the
// screen renders.
package presenter

import (
	"time"
)

// TimeLayout is the displayed timestamp format.
const TimeLayout = "2006-01-02 15:04"

// Category is the air quality band of an AQI-US value.
type Category int

const (
	CategoryGood Category = iota
	CategoryModerate
	CategoryUnhealthy
	CategoryVeryUnhealthy
)

var categoryLabels = map[string][4]string{
	"en": {"Good", "Moderate", "Unhealthy", "Very Unhealthy"},
	"ko": {"좋음", "보통", "나쁨", "매우 나쁨"},
}

// String returns the English label.
func (c Category) String() string {
	return c.Label("en")
}

// Label returns the category label for locale, falling back to English.
func (c Category) Label(locale string) string {
	labels, ok := categoryLabels[locale]
	if !ok {
		labels = categoryLabels["en"]
	}
	if c < CategoryGood || c > CategoryVeryUnhealthy {
		return ""
	}
	return labels[c]
}

// Background identifies the backdrop asset shown behind the reading.
type Background string

const (
	BackgroundGood          Background = "bg_good"
	BackgroundModerate      Background = "bg_moderate"
	BackgroundUnhealthy     Background = "bg_unhealthy"
	BackgroundVeryUnhealthy Background = "bg_very_unhealthy"
)

// Classification pairs a category with the background to show for it.
type Classification struct {
	Category   Category
	Background Background
}

// ViewState is everything the screen displays. Values are immutable; the
// With methods return updated copies.
type ViewState struct {
	LocationTitle    string
	LocationSubtitle string

	// HasReading is false until the first successful fetch.
	HasReading    bool
	AQIValue      int
	Category      Category
	Background    Background
	FormattedTime string

	// Timestamp is the reading time in UTC.
	Timestamp time.Time
}
