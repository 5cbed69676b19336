package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giljurha/Airvisual/internal/config"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"AIRVISUAL_API_KEY", "GPS_LAT", "GPS_LON", "LOCATION_PERMISSIONS", "LOG_LEVEL", "APP_PORT", "AIRVISUAL_RATE_LIMIT", "AIRVISUAL_RATE_BURST", "HTTP_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := config.FromEnv()

	assert.Equal(t, config.DefaultAirVisualBaseURL, cfg.AirVisualBaseURL)
	assert.Equal(t, config.DefaultNominatimBaseURL, cfg.NominatimBaseURL)
	assert.Equal(t, config.DefaultIPAPIBaseURL, cfg.IPAPIBaseURL)
	assert.Zero(t, cfg.RateLimit, "client-side limiting is off by default")
	assert.Equal(t, 5, cfg.RateBurst)
	assert.Equal(t, 9, cfg.UTCOffsetHours)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, "8080", cfg.Port)
	assert.Zero(t, cfg.HTTPTimeout, "net/http default applies")
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.True(t, cfg.NetworkLocationEnabled)
	assert.Nil(t, cfg.GPS)
	assert.Empty(t, cfg.Permissions)
	assert.ErrorIs(t, cfg.Validate(), config.ErrMissingAPIKey)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("AIRVISUAL_API_KEY", "secret")
	t.Setenv("GPS_LAT", "37.5665")
	t.Setenv("GPS_LON", "126.9780")
	t.Setenv("LOCATION_PERMISSIONS", "Fine, coarse")
	t.Setenv("NETWORK_LOCATION_ENABLED", "false")
	t.Setenv("DISPLAY_UTC_OFFSET_HOURS", "0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("AIRVISUAL_RATE_LIMIT", "0.5")

	cfg := config.FromEnv()

	require.NoError(t, cfg.Validate())
	require.NotNil(t, cfg.GPS)
	assert.Equal(t, 37.5665, cfg.GPS.Lat)
	assert.Equal(t, 126.9780, cfg.GPS.Lon)
	assert.Equal(t, []string{"fine", "coarse"}, cfg.Permissions)
	assert.False(t, cfg.NetworkLocationEnabled)
	assert.Equal(t, 0, cfg.UTCOffsetHours)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.InDelta(t, 0.5, cfg.RateLimit, 1e-9)
}

func TestFromEnv_PartialGPSIsIgnored(t *testing.T) {
	t.Setenv("GPS_LAT", "37.5")
	t.Setenv("GPS_LON", "")

	assert.Nil(t, config.FromEnv().GPS)
}

func TestLoad_DotEnvFile(t *testing.T) {
	t.Setenv("AIRVISUAL_API_KEY", "")
	os.Unsetenv("AIRVISUAL_API_KEY")
	t.Setenv("LOCALE", "")
	os.Unsetenv("LOCALE")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("AIRVISUAL_API_KEY=from-file\nLOCALE=ko\n"), 0o600))

	cfg := config.Load(path)
	t.Cleanup(func() {
		os.Unsetenv("AIRVISUAL_API_KEY")
		os.Unsetenv("LOCALE")
	})

	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, "ko", cfg.Locale)
}
