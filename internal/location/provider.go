package location

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Source is one platform location provider, such as GPS or the network.
type Source interface {
	// Name identifies the source.
	Name() string

	// Enabled reports whether the source is switched on at the OS level.
	Enabled() bool

	// LastKnown returns the most recent cached fix without waiting for a new one.
	LastKnown(ctx context.Context) (Coordinates, bool)
}

// Provider returns the best available last-known position across sources.
type Provider struct {
	sources []Source
	logger  zerolog.Logger
}

// NewProvider creates a Provider that consults sources in the given order.
func NewProvider(logger zerolog.Logger, sources ...Source) *Provider {
	return &Provider{sources: sources, logger: logger}
}

// ServicesEnabled reports whether any location source is enabled.
func (p *Provider) ServicesEnabled() bool {
	for _, s := range p.sources {
		if s.Enabled() {
			return true
		}
	}
	return false
}

// Current returns the first fix reported by an enabled source.
func (p *Provider) Current(ctx context.Context) (Coordinates, bool) {
	for _, s := range p.sources {
		if !s.Enabled() {
			continue
		}
		if c, ok := s.LastKnown(ctx); ok {
			p.logger.Debug().
				Str("source", s.Name()).
				Float64("lat", c.Lat).
				Float64("lon", c.Lon).
				Msg("last known location")
			return c, true
		}
	}
	return Coordinates{}, false
}

// Latitude returns the latitude of the current fix.
func (p *Provider) Latitude(ctx context.Context) (float64, bool) {
	c, ok := p.Current(ctx)
	return c.Lat, ok
}

// Longitude returns the longitude of the current fix.
func (p *Provider) Longitude(ctx context.Context) (float64, bool) {
	c, ok := p.Current(ctx)
	return c.Lon, ok
}

// StaticSource is a source with a fixed, configured fix.
type StaticSource struct {
	name    string
	coords  *Coordinates
	enabled atomic.Bool
}

// NewStaticSource creates a source reporting coords. A nil coords means the
// source is enabled but has no fix yet.
func NewStaticSource(name string, coords *Coordinates, enabled bool) *StaticSource {
	s := &StaticSource{name: name, coords: coords}
	s.enabled.Store(enabled)
	return s
}

// Name implements Source.
func (s *StaticSource) Name() string { return s.name }

// Enabled implements Source.
func (s *StaticSource) Enabled() bool { return s.enabled.Load() }

// LastKnown implements Source.
func (s *StaticSource) LastKnown(context.Context) (Coordinates, bool) {
	if s.coords == nil {
		return Coordinates{}, false
	}
	return *s.coords, true
}

// SetEnabled switches the source on or off.
func (s *StaticSource) SetEnabled(enabled bool) {
	s.enabled.Store(enabled)
}
