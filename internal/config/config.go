// Package config loads runtime configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// ErrMissingAPIKey is returned by Validate when no air-quality key is configured.
var ErrMissingAPIKey = errors.New("AIRVISUAL_API_KEY is not set")

// Defaults applied when a variable is unset or unparsable.
const (
	DefaultAirVisualBaseURL = "https://api.airvisual.com/v2"
	DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"
	DefaultIPAPIBaseURL     = "http://ip-api.com"
	DefaultGeocoderLanguage = "ko"
	DefaultLocale           = "en"
	DefaultPort             = "8080"
	DefaultOTLPEndpoint     = "localhost:4317"
	DefaultEnvironment      = "development"
	DefaultUTCOffsetHours   = 9
	DefaultRateBurst        = 5
)

// Config is the complete runtime configuration.
type Config struct {
	APIKey           string
	AirVisualBaseURL string
	RateLimit        float64
	RateBurst        int

	NominatimBaseURL string
	GeocoderLanguage string

	IPAPIBaseURL           string
	NetworkLocationEnabled bool
	GPS                    *Fix

	// Permissions lists scopes granted up front in serve mode.
	Permissions []string

	UTCOffsetHours int
	Locale         string
	// HTTPTimeout overrides the net/http client timeout when positive.
	HTTPTimeout time.Duration

	Port     string
	LogLevel zerolog.Level

	OTelEnabled  bool
	OTLPEndpoint string
	Environment  string
}

// Fix is a configured GPS position.
type Fix struct {
	Lat float64
	Lon float64
}

// Load reads path as a .env file when it exists and then builds a Config
// from the environment.
func Load(path string) *Config {
	if path != "" {
		_ = godotenv.Load(path)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment.
func FromEnv() *Config {
	cfg := &Config{
		APIKey:                 os.Getenv("AIRVISUAL_API_KEY"),
		AirVisualBaseURL:       getEnv("AIRVISUAL_BASE_URL", DefaultAirVisualBaseURL),
		RateLimit:              getFloat("AIRVISUAL_RATE_LIMIT", 0),
		RateBurst:              getInt("AIRVISUAL_RATE_BURST", DefaultRateBurst),
		NominatimBaseURL:       getEnv("NOMINATIM_BASE_URL", DefaultNominatimBaseURL),
		GeocoderLanguage:       getEnv("GEOCODER_LANGUAGE", DefaultGeocoderLanguage),
		IPAPIBaseURL:           getEnv("IPAPI_BASE_URL", DefaultIPAPIBaseURL),
		NetworkLocationEnabled: getBool("NETWORK_LOCATION_ENABLED", true),
		Permissions:            splitList(os.Getenv("LOCATION_PERMISSIONS")),
		UTCOffsetHours:         getInt("DISPLAY_UTC_OFFSET_HOURS", DefaultUTCOffsetHours),
		Locale:                 getEnv("LOCALE", DefaultLocale),
		HTTPTimeout:            getDuration("HTTP_TIMEOUT", 0),
		Port:                   getEnv("APP_PORT", DefaultPort),
		LogLevel:               getLevel("LOG_LEVEL", zerolog.InfoLevel),
		OTelEnabled:            os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint:           getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", DefaultOTLPEndpoint),
		Environment:            getEnv("APP_ENV", DefaultEnvironment),
	}

	lat, latErr := strconv.ParseFloat(os.Getenv("GPS_LAT"), 64)
	lon, lonErr := strconv.ParseFloat(os.Getenv("GPS_LON"), 64)
	if latErr == nil && lonErr == nil {
		cfg.GPS = &Fix{Lat: lat, Lon: lon}
	}

	return cfg
}

// Validate reports configuration that makes a refresh impossible.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && v > 0 {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func getLevel(key string, fallback zerolog.Level) zerolog.Level {
	if lvl, err := zerolog.ParseLevel(os.Getenv(key)); err == nil && os.Getenv(key) != "" {
		return lvl
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
