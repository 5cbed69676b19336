// Package airquality fetches the pollution reading for a location.
package airquality

import (
	"errors"
	"fmt"
	"time"
)

// ErrRateLimited is returned when the client-side API quota is exhausted.
var ErrRateLimited = errors.New("air quality request quota exhausted")

// FetchKind classifies why a fetch failed.
type FetchKind int

const (
	// KindTransport covers timeouts, DNS and connection errors.
	KindTransport FetchKind = iota
	// KindHTTP covers non-success HTTP or API status.
	KindHTTP
	// KindParse covers bodies that could not be turned into a reading.
	KindParse
)

func (k FetchKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTP:
		return "http"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// FetchError is the failure result of a fetch.
type FetchError struct {
	Kind FetchKind

	// StatusCode is set for KindHTTP failures caused by the HTTP status.
	StatusCode int

	Err error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("air quality fetch failed (%s, status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("air quality fetch failed (%s): %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// PollutionReading is the current US AQI at the nearest monitored city.
type PollutionReading struct {
	aqiUS     int
	timestamp time.Time
}

// NewPollutionReading validates and builds a reading. The timestamp is kept in UTC.
func NewPollutionReading(aqiUS int, timestamp time.Time) (PollutionReading, error) {
	if aqiUS < 0 {
		return PollutionReading{}, fmt.Errorf("negative aqi %d", aqiUS)
	}
	if timestamp.IsZero() {
		return PollutionReading{}, errors.New("missing timestamp")
	}
	return PollutionReading{aqiUS: aqiUS, timestamp: timestamp.UTC()}, nil
}

// AQIUS returns the US AQI value.
func (r PollutionReading) AQIUS() int { return r.aqiUS }

// Timestamp returns when the reading was measured, in UTC.
func (r PollutionReading) Timestamp() time.Time { return r.timestamp }

// Result is delivered once per fetch: either Reading or Err is set.
type Result struct {
	Reading PollutionReading
	Err     error
}
