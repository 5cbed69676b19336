package resilience_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giljurha/Airvisual/internal/provider/resilience"
)

func TestRegistry_RegisterAndGetHealth(t *testing.T) {
	registry := resilience.NewRegistry()
	cfg := resilience.DefaultClientConfig("nominatim")
	cfg.Registry = registry

	client := resilience.NewClient(cfg)

	health := registry.GetHealth("nominatim")
	require.NotNil(t, health)
	assert.Equal(t, "nominatim", health.Name)
	assert.Equal(t, gobreaker.StateClosed, health.CircuitState)
	assert.Equal(t, resilience.StatusOK, health.Status())
	assert.Equal(t, "nominatim", client.Name())

	assert.Nil(t, registry.GetHealth("unknown"))
}

func TestRegistry_RecordOutcomes(t *testing.T) {
	registry := resilience.NewRegistry()
	cfg := resilience.DefaultClientConfig("iqair")
	cfg.Registry = registry
	_ = resilience.NewClient(cfg)

	registry.RecordSuccess("iqair")
	registry.RecordFailure("iqair", errors.New("connection refused"))

	health := registry.GetHealth("iqair")
	require.NotNil(t, health)
	require.NotNil(t, health.LastSuccessAt)
	require.NotNil(t, health.LastFailureAt)
	assert.WithinDuration(t, time.Now(), *health.LastFailureAt, time.Second)
	assert.Equal(t, "connection refused", health.LastError)
}

func TestRegistry_ClientRecordsRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	registry := resilience.NewRegistry()
	cfg := resilience.DefaultClientConfig("ipapi")
	cfg.Registry = registry
	client := resilience.NewClient(cfg)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	health := registry.GetHealth("ipapi")
	require.NotNil(t, health)
	assert.Nil(t, health.LastSuccessAt)
	require.NotNil(t, health.LastFailureAt)
	assert.Contains(t, health.LastError, "Bad Gateway")
}

func TestRegistry_GetAllHealthSorted(t *testing.T) {
	registry := resilience.NewRegistry()
	for _, name := range []string{"nominatim", "iqair", "ipapi"} {
		cfg := resilience.DefaultClientConfig(name)
		cfg.Registry = registry
		_ = resilience.NewClient(cfg)
	}

	all := registry.GetAllHealth()
	require.Len(t, all, 3)
	assert.Equal(t, "iqair", all[0].Name)
	assert.Equal(t, "ipapi", all[1].Name)
	assert.Equal(t, "nominatim", all[2].Name)
}

func TestProviderHealth_Status(t *testing.T) {
	assert.Equal(t, resilience.StatusDown, (&resilience.ProviderHealth{CircuitState: gobreaker.StateOpen}).Status())
	assert.Equal(t, resilience.StatusDegraded, (&resilience.ProviderHealth{CircuitState: gobreaker.StateHalfOpen}).Status())
	assert.Equal(t, resilience.StatusOK, (&resilience.ProviderHealth{CircuitState: gobreaker.StateClosed}).Status())

	earlier := time.Now().Add(-time.Minute)
	later := time.Now()
	assert.Equal(t, resilience.StatusDegraded, (&resilience.ProviderHealth{LastFailureAt: &later}).Status())
	assert.Equal(t, resilience.StatusDegraded, (&resilience.ProviderHealth{LastSuccessAt: &earlier, LastFailureAt: &later}).Status())
	assert.Equal(t, resilience.StatusOK, (&resilience.ProviderHealth{LastSuccessAt: &later, LastFailureAt: &earlier}).Status())
}
