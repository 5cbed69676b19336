package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/giljurha/Airvisual/internal/airquality"
	"github.com/giljurha/Airvisual/internal/airquality/iqair"
	"github.com/giljurha/Airvisual/internal/config"
	"github.com/giljurha/Airvisual/internal/geocode"
	"github.com/giljurha/Airvisual/internal/geocode/nominatim"
	"github.com/giljurha/Airvisual/internal/location"
	"github.com/giljurha/Airvisual/internal/location/ipapi"
	"github.com/giljurha/Airvisual/internal/permission"
	"github.com/giljurha/Airvisual/internal/presenter"
	"github.com/giljurha/Airvisual/internal/provider/resilience"
	"github.com/giljurha/Airvisual/internal/refresh"
	"github.com/giljurha/Airvisual/internal/telemetry"
)

// sources are the location sources, GPS first.
type sources struct {
	gps      *location.StaticSource
	network  *ipapi.Client
	provider *location.Provider
}

func newSources(c *config.Config, registry *resilience.Registry, logger zerolog.Logger) *sources {
	var fix *location.Coordinates
	if c.GPS != nil {
		fix = &location.Coordinates{Lat: c.GPS.Lat, Lon: c.GPS.Lon}
	}
	gps := location.NewStaticSource(location.SourceGPS, fix, fix != nil)

	network := ipapi.NewClient(ipapi.ClientConfig{
		BaseURL:  c.IPAPIBaseURL,
		Enabled:  c.NetworkLocationEnabled,
		Timeout:  c.HTTPTimeout,
		Registry: registry,
		Logger:   logger.With().Str("component", "ipapi").Logger(),
	})

	return &sources{
		gps:      gps,
		network:  network,
		provider: location.NewProvider(logger, gps, network),
	}
}

// host is where the screen is displayed.
type host struct {
	platform permission.Platform
	prompter permission.Prompter
	renderer refresh.Renderer
	notifier refresh.Notifier
	screen   refresh.Screen
}

// screenDeps holds everything a controller is built from.
type screenDeps struct {
	cfg       *config.Config
	logger    zerolog.Logger
	registry  *resilience.Registry
	sources   *sources
	telemetry *telemetry.Provider
}

func newController(d screenDeps, h host) (*refresh.Controller, error) {
	geocoder := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:  d.cfg.NominatimBaseURL,
		Language: d.cfg.GeocoderLanguage,
		Timeout:  d.cfg.HTTPTimeout,
		Registry: d.registry,
	})

	aq := airquality.NewService(airquality.ServiceConfig{
		Source: iqair.NewClient(iqair.ClientConfig{
			BaseURL:  d.cfg.AirVisualBaseURL,
			Timeout:  d.cfg.HTTPTimeout,
			Registry: d.registry,
		}),
		Logger:    d.logger.With().Str("component", "airquality").Logger(),
		RateLimit: d.cfg.RateLimit,
		Burst:     d.cfg.RateBurst,
	})

	gate := permission.NewGate(permission.GateConfig{
		Platform: h.platform,
		Prompter: h.prompter,
		Logger:   d.logger.With().Str("component", "permission").Logger(),
	})

	messages := refresh.MessagesFor(d.cfg.Locale)
	return refresh.NewController(refresh.Config{
		Gate:       gate,
		Locator:    d.sources.provider,
		Resolver:   geocode.NewResolver(geocoder, d.logger.With().Str("component", "geocode").Logger()),
		AirQuality: aq,
		APIKey:     d.cfg.APIKey,
		Renderer:   h.renderer,
		Notifier:   h.notifier,
		Screen:     h.screen,
		Messages:   &messages,
		Zone:       presenter.DisplayZone(d.cfg.UTCOffsetHours),
		Logger:     d.logger.With().Str("component", "refresh").Logger(),
		Tracer:     d.telemetry.Tracer,
		Metrics:    d.telemetry.Refresh,
	})
}

func initTelemetry(ctx context.Context, c *config.Config) (*telemetry.Provider, func(), error) {
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    c.Environment,
		OTLPEndpoint:   c.OTLPEndpoint,
		Enabled:        c.OTelEnabled,
	})
	if err != nil {
		return nil, nil, err
	}

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}
	if c.OTelEnabled {
		log.Info().Str("otlp_endpoint", c.OTLPEndpoint).Msg("OpenTelemetry initialized")
	}
	return tp, shutdown, nil
}
