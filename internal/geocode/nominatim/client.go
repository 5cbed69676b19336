// Package nominatim provides a reverse geocoder backed by OpenStreetMap Nominatim.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/giljurha/Airvisual/internal/geocode"
	"github.com/giljurha/Airvisual/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// ProviderName identifies this provider in the health registry.
	ProviderName = "nominatim"

	userAgent = "airvisual-screen/1.0"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// Language is sent as Accept-Language (e.g. "ko").
	Language string

	// HTTPClient is used for requests. If nil, a resilience client is created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests. Zero keeps the net/http default.
	Timeout time.Duration

	// Registry receives request outcomes when the default client is built.
	Registry *resilience.Registry
}

// Client is a Nominatim reverse geocoder.
type Client struct {
	baseURL    string
	language   string
	httpClient HTTPDoer
}

var _ geocode.Geocoder = (*Client)(nil)

// NewClient creates a new Nominatim client.
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
		language:   cfg.Language,
		httpClient: httpClient,
	}
}

// API response types (from the Nominatim jsonv2 format).

type reverseResponse struct {
	Error   string         `json:"error"`
	Address reverseAddress `json:"address"`
}

type reverseAddress struct {
	Road          string `json:"road"`
	Pedestrian    string `json:"pedestrian"`
	Neighbourhood string `json:"neighbourhood"`
	Quarter       string `json:"quarter"`
	Suburb        string `json:"suburb"`
	City          string `json:"city"`
	Province      string `json:"province"`
	State         string `json:"state"`
	Country       string `json:"country"`
}

// ReverseGeocode implements geocode.Geocoder. Nominatim returns at most one
// place per reverse lookup, so maxResults only caps the slice.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64, maxResults int) ([]geocode.Address, error) {
	if maxResults <= 0 {
		return nil, geocode.ErrInvalidCoordinates
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", geocode.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return nil, geocode.ErrInvalidCoordinates
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", geocode.ErrServiceUnavailable, resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", geocode.ErrServiceUnavailable, err)
	}
	if body.Error != "" {
		// "Unable to geocode" is how Nominatim reports an empty result.
		return nil, nil
	}

	return []geocode.Address{body.Address.toAddress()}, nil
}

func (a reverseAddress) toAddress() geocode.Address {
	return geocode.Address{
		Thoroughfare: firstNonEmpty(a.Road, a.Pedestrian, a.Neighbourhood, a.Quarter, a.Suburb),
		CountryName:  a.Country,
		AdminArea:    firstNonEmpty(a.State, a.Province, a.City),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
