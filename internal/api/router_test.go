package api_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giljurha/Airvisual/internal/api"
	"github.com/giljurha/Airvisual/internal/api/handler"
	"github.com/giljurha/Airvisual/internal/api/models"
	"github.com/giljurha/Airvisual/internal/presenter"
	"github.com/giljurha/Airvisual/internal/provider/resilience"
	"github.com/giljurha/Airvisual/internal/refresh"
)

// fakeScreen is a ScreenSource with a settable snapshot.
type fakeScreen struct {
	mu        sync.Mutex
	snap      refresh.Snapshot
	accept    bool
	refreshes atomic.Int32
}

func (f *fakeScreen) Snapshot() refresh.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeScreen) Refresh() bool {
	f.refreshes.Add(1)
	return f.accept
}

func (f *fakeScreen) set(snap refresh.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap
}

type testEnv struct {
	router   http.Handler
	screen   *fakeScreen
	board    *handler.Board
	registry *resilience.Registry
}

func newTestEnv() *testEnv {
	logger := zerolog.New(io.Discard)
	env := &testEnv{
		screen:   &fakeScreen{accept: true},
		board:    handler.NewBoard(0, logger),
		registry: resilience.NewRegistry(),
	}
	env.router = api.NewRouter(api.RouterConfig{
		Version:   "test",
		BuildTime: "2024-01-01T00:00:00Z",
		Logger:    logger,
		Screen:    env.screen,
		Board:     env.board,
		Locale:    "en",
		Registry:  env.registry,
	})
	return env
}

func (e *testEnv) do(method, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodGet, "/v1/ops/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	health := decode[models.Health](t, rec)
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "test", health.Details["version"])
}

func TestSystemStatus(t *testing.T) {
	env := newTestEnv()
	resilience.NewClient(resilience.ClientConfig{Name: "iqair", Registry: env.registry})
	env.registry.RecordFailure("iqair", errors.New("api key expired"))
	env.screen.set(refresh.Snapshot{
		State:       refresh.StateIdle,
		Generation:  3,
		LastOutcome: refresh.StateFailed,
		LastError:   errors.New("air quality fetch failed"),
	})

	rec := env.do(http.MethodGet, "/v1/ops/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	status := decode[models.SystemStatus](t, rec)
	assert.Equal(t, models.HealthStatusDegraded, status.Status)

	require.Len(t, status.Subsystems, 1)
	assert.Equal(t, "screen", status.Subsystems[0].Name)
	assert.Equal(t, models.HealthStatusDegraded, status.Subsystems[0].Status)

	require.Len(t, status.Providers, 1)
	provider := status.Providers[0]
	assert.Equal(t, "iqair", provider.Provider)
	assert.Equal(t, models.HealthStatusDegraded, provider.Status)
	assert.Equal(t, "closed", provider.CircuitState)
	require.NotNil(t, provider.Message)
	assert.Equal(t, "api key expired", *provider.Message)
	assert.NotNil(t, provider.LastFailureAt)
}

func TestSystemStatus_ClosedScreenFails(t *testing.T) {
	env := newTestEnv()
	env.screen.set(refresh.Snapshot{State: refresh.StateClosed, LastOutcome: refresh.StateFailed})

	status := decode[models.SystemStatus](t, env.do(http.MethodGet, "/v1/ops/status", ""))

	assert.Equal(t, models.HealthStatusFail, status.Status)
}

func TestGetScreen(t *testing.T) {
	env := newTestEnv()
	measured := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	env.screen.set(refresh.Snapshot{
		State:       refresh.StateIdle,
		Generation:  1,
		LastOutcome: refresh.StateDone,
		View: presenter.ViewState{
			LocationTitle:    "Jung-gu",
			LocationSubtitle: "Sejong-daero",
			HasReading:       true,
			AQIValue:         42,
			Category:         presenter.CategoryGood,
			Background:       presenter.BackgroundGood,
			FormattedTime:    "2024-03-01 19:00",
			Timestamp:        measured,
		},
	})

	rec := env.do(http.MethodGet, "/v1/screen", "")
	require.Equal(t, http.StatusOK, rec.Code)

	screen := decode[models.Screen](t, rec)
	assert.Equal(t, "idle", screen.State)
	assert.Equal(t, "done", screen.LastOutcome)
	assert.Equal(t, uint64(1), screen.Generation)
	assert.False(t, screen.Closed)
	assert.Nil(t, screen.LastError)

	view := screen.View
	assert.Equal(t, "Jung-gu", view.LocationTitle)
	assert.True(t, view.HasReading)
	require.NotNil(t, view.AQIValue)
	assert.Equal(t, 42, *view.AQIValue)
	assert.Equal(t, presenter.CategoryGood.String(), view.Category)
	assert.Equal(t, presenter.CategoryGood.Label("en"), view.CategoryLabel)
	assert.Equal(t, "bg_good", view.Background)
	assert.Equal(t, "2024-03-01 19:00", view.FormattedTime)
	require.NotNil(t, view.MeasuredAt)
	assert.True(t, measured.Equal(view.MeasuredAt.Time()))
}

func TestGetScreen_NoReading(t *testing.T) {
	env := newTestEnv()

	screen := decode[models.Screen](t, env.do(http.MethodGet, "/v1/screen", ""))

	assert.Equal(t, "idle", screen.State)
	assert.False(t, screen.View.HasReading)
	assert.Nil(t, screen.View.AQIValue)
	assert.Nil(t, screen.View.MeasuredAt)
}

func TestNotices(t *testing.T) {
	env := newTestEnv()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second", "Latest data updated!"} {
		env.board.Notify(refresh.Notice{Generation: uint64(i + 1), Level: refresh.NoticeInfo, Text: text, At: at})
	}

	rec := env.do(http.MethodGet, "/v1/screen/notices?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	list := decode[models.NoticeList](t, rec)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "second", list.Items[0].Text)
	assert.Equal(t, "Latest data updated!", list.Items[1].Text)
	assert.Equal(t, "info", list.Items[1].Level)
	assert.Equal(t, uint64(3), list.Items[1].Generation)
}

func TestNotices_InvalidLimit(t *testing.T) {
	env := newTestEnv()

	for _, limit := range []string{"0", "51", "abc"} {
		rec := env.do(http.MethodGet, "/v1/screen/notices?limit="+limit, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "/v1/screen/notices", decode[models.Problem](t, rec).Instance)
	}
}

func TestRefresh_Accepted(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/v1/screen/refresh", "198.51.100.1:1")

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "/v1/screen", rec.Header().Get("Location"))
	accepted := decode[models.RefreshAccepted](t, rec)
	assert.Equal(t, "accepted", accepted.Status)
	assert.Equal(t, rec.Header().Get("X-Request-Id"), accepted.RequestID)
	assert.Equal(t, int32(1), env.screen.refreshes.Load())
}

func TestRefresh_Conflict(t *testing.T) {
	t.Run("screen closed", func(t *testing.T) {
		env := newTestEnv()
		env.board.Close()

		rec := env.do(http.MethodPost, "/v1/screen/refresh", "198.51.100.2:1")

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Zero(t, env.screen.refreshes.Load())
	})

	t.Run("controller stopped", func(t *testing.T) {
		env := newTestEnv()
		env.screen.accept = false

		rec := env.do(http.MethodPost, "/v1/screen/refresh", "198.51.100.3:1")

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "stopped")
	})
}

func TestRefresh_RateLimited(t *testing.T) {
	env := newTestEnv()

	for i := 0; i < 6; i++ {
		require.Equal(t, http.StatusAccepted, env.do(http.MethodPost, "/v1/screen/refresh", "198.51.100.4:1").Code)
	}
	rec := env.do(http.MethodPost, "/v1/screen/refresh", "198.51.100.4:1")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, int32(6), env.screen.refreshes.Load())
}

func TestRouter_WithoutScreen(t *testing.T) {
	router := api.NewRouter(api.RouterConfig{Logger: zerolog.Nop()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/screen", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)
}
