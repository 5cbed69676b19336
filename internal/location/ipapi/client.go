// Package ipapi provides the network location source backed by the ip-api.com
// JSON endpoint.
package ipapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/giljurha/Airvisual/internal/location"
	"github.com/giljurha/Airvisual/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the ip-api.com API.
	DefaultBaseURL = "http://ip-api.com"

	// ProviderName identifies this provider in the health registry.
	ProviderName = "ipapi"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the network location source.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is used for requests. If nil, a resilience client is created.
	HTTPClient HTTPDoer

	// Enabled is the initial enabled state of the source.
	Enabled bool

	// Timeout bounds a single lookup (default: 5s).
	Timeout time.Duration

	// Registry receives request outcomes when the default client is built.
	Registry *resilience.Registry

	Logger zerolog.Logger
}

// Client is a location.Source that geolocates the host's public IP address.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	timeout    time.Duration
	enabled    atomic.Bool
	logger     zerolog.Logger
}

var _ location.Source = (*Client)(nil)

// NewClient creates a new network location source.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		rc := resilience.DefaultClientConfig(ProviderName)
		rc.Timeout = timeout
		rc.Registry = cfg.Registry
		httpClient = resilience.NewClient(rc)
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		timeout:    timeout,
		logger:     cfg.Logger,
	}
	c.enabled.Store(cfg.Enabled)
	return c
}

type lookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
}

// Name implements location.Source.
func (c *Client) Name() string { return location.SourceNetwork }

// Enabled implements location.Source.
func (c *Client) Enabled() bool { return c.enabled.Load() }

// SetEnabled switches the network provider on or off.
func (c *Client) SetEnabled(enabled bool) { c.enabled.Store(enabled) }

// LastKnown implements location.Source. Every failure is reported as no fix.
func (c *Client) LastKnown(ctx context.Context) (location.Coordinates, bool) {
	coords, err := c.lookup(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Msg("network location lookup failed")
		return location.Coordinates{}, false
	}
	return coords, true
}

func (c *Client) lookup(ctx context.Context) (location.Coordinates, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + "/json?fields=status,message,lat,lon,city"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return location.Coordinates{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return location.Coordinates{}, fmt.Errorf("ip lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return location.Coordinates{}, fmt.Errorf("ip lookup: status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return location.Coordinates{}, fmt.Errorf("decode ip lookup: %w", err)
	}
	if body.Status != "success" {
		return location.Coordinates{}, fmt.Errorf("ip lookup %s: %s", body.Status, body.Message)
	}

	return location.Coordinates{Lat: body.Lat, Lon: body.Lon}, nil
}
