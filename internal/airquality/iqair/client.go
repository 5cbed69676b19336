// Package iqair provides a client for the IQAir AirVisual API.
package iqair

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/giljurha/Airvisual/internal/airquality"
	"github.com/giljurha/Airvisual/internal/location"
	"github.com/giljurha/Airvisual/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the AirVisual v2 API.
	DefaultBaseURL = "https://api.airvisual.com/v2"

	// ProviderName identifies this provider.
	ProviderName = "iqair"

	maxBodyBytes = 1 << 20
)

// ClientConfig holds configuration for the IQAir client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a single-attempt resilience client is created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests. Zero keeps the net/http default.
	Timeout time.Duration

	// Registry receives request outcomes when the default client is built.
	Registry *resilience.Registry
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an IQAir API client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

var _ airquality.Source = (*Client)(nil)

// NewClient creates a new IQAir client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		rc := resilience.DefaultClientConfig(ProviderName)
		if cfg.Timeout > 0 {
			rc.Timeout = cfg.Timeout
		}
		rc.Registry = cfg.Registry
		httpClient = resilience.NewClient(rc)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// API response types (from the AirVisual nearest_city endpoint).

type nearestCityResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type cityData struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Current struct {
		Pollution pollutionData `json:"pollution"`
	} `json:"current"`
}

type pollutionData struct {
	Ts     string `json:"ts"`
	Aqius  *int   `json:"aqius"`
	Mainus string `json:"mainus"`
}

type failureData struct {
	Message string `json:"message"`
}

// NearestCity fetches the current pollution reading of the monitored city
// nearest to coords.
func (c *Client) NearestCity(ctx context.Context, coords location.Coordinates, apiKey string) (airquality.PollutionReading, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	q.Set("key", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/nearest_city?"+q.Encode(), http.NoBody)
	if err != nil {
		return airquality.PollutionReading{}, &airquality.FetchError{Kind: airquality.KindTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return airquality.PollutionReading{}, &airquality.FetchError{Kind: airquality.KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return airquality.PollutionReading{}, &airquality.FetchError{Kind: airquality.KindTransport, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return airquality.PollutionReading{}, &airquality.FetchError{
			Kind:       airquality.KindHTTP,
			StatusCode: resp.StatusCode,
			Err:        errors.New(failureMessage(body, resp.Status)),
		}
	}

	return parseNearestCity(body)
}

func parseNearestCity(body []byte) (airquality.PollutionReading, error) {
	var envelope nearestCityResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return airquality.PollutionReading{}, parseError(fmt.Errorf("decode response: %w", err))
	}
	// Only an explicit non-success status is a failure; 2xx bodies may omit it.
	if envelope.Status != "" && envelope.Status != "success" {
		return airquality.PollutionReading{}, &airquality.FetchError{
			Kind: airquality.KindHTTP,
			Err:  fmt.Errorf("api status %q: %s", envelope.Status, failureMessage(body, "")),
		}
	}

	var data cityData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return airquality.PollutionReading{}, parseError(fmt.Errorf("decode data: %w", err))
	}

	pollution := data.Current.Pollution
	if pollution.Aqius == nil {
		return airquality.PollutionReading{}, parseError(errors.New("missing aqius"))
	}
	ts, err := time.Parse(time.RFC3339, pollution.Ts)
	if err != nil {
		return airquality.PollutionReading{}, parseError(fmt.Errorf("parse ts %q: %w", pollution.Ts, err))
	}

	reading, err := airquality.NewPollutionReading(*pollution.Aqius, ts)
	if err != nil {
		return airquality.PollutionReading{}, parseError(err)
	}
	return reading, nil
}

func parseError(err error) *airquality.FetchError {
	return &airquality.FetchError{Kind: airquality.KindParse, Err: err}
}

// failureMessage extracts data.message from an API error body.
func failureMessage(body []byte, fallback string) string {
	var envelope nearestCityResponse
	if json.Unmarshal(body, &envelope) == nil && len(envelope.Data) > 0 {
		var failure failureData
		if json.Unmarshal(envelope.Data, &failure) == nil && failure.Message != "" {
			return failure.Message
		}
	}
	if fallback == "" {
		return "unexpected response"
	}
	return fallback
}
