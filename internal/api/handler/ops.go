package handler

import (
	"net/http"
	"time"

	"github.com/giljurha/Airvisual/internal/api/models"
	"github.com/giljurha/Airvisual/internal/api/response"
	"github.com/giljurha/Airvisual/internal/provider/resilience"
	"github.com/giljurha/Airvisual/internal/refresh"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	screen    ScreenSource
}

// NewOpsHandler creates a new OpsHandler. registry and screen may be nil.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry, screen ScreenSource) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		screen:    screen,
	}
}

// HealthCheck handles GET /v1/ops/health.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// SystemStatus handles GET /v1/ops/status. The overall status is the worst
// of the screen subsystem and the providers.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(time.Now()),
		Subsystems: []models.SubsystemStatus{},
		Providers:  []models.ProviderStatus{},
	}

	if h.screen != nil {
		sub := screenStatus(h.screen.Snapshot())
		status.Subsystems = append(status.Subsystems, sub)
		status.Status = worst(status.Status, sub.Status)
	}

	if h.registry != nil {
		for _, p := range h.registry.GetAllHealth() {
			ps := providerStatus(p)
			status.Providers = append(status.Providers, ps)
			status.Status = worst(status.Status, ps.Status)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func screenStatus(snap refresh.Snapshot) models.SubsystemStatus {
	sub := models.SubsystemStatus{Name: "screen", Status: models.HealthStatusOK}
	switch {
	case snap.State == refresh.StateClosed:
		sub.Status = models.HealthStatusFail
	case snap.LastOutcome == refresh.StateFailed:
		sub.Status = models.HealthStatusDegraded
	}
	if snap.LastError != nil {
		detail := snap.LastError.Error()
		sub.Detail = &detail
	}
	return sub
}

func providerStatus(p *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:      p.Name,
		CircuitState:  p.CircuitState.String(),
		Requests:      p.Counts.Requests,
		Failures:      p.Counts.ConsecutiveFailures,
		LastSuccessAt: models.TimestampPtr(p.LastSuccessAt),
		LastFailureAt: models.TimestampPtr(p.LastFailureAt),
	}
	switch p.Status() {
	case resilience.StatusDown:
		ps.Status = models.HealthStatusFail
	case resilience.StatusDegraded:
		ps.Status = models.HealthStatusDegraded
	default:
		ps.Status = models.HealthStatusOK
	}
	if p.LastError != "" {
		msg := p.LastError
		ps.Message = &msg
	}
	return ps
}

func worst(a, b models.HealthStatus) models.HealthStatus {
	rank := map[models.HealthStatus]int{
		models.HealthStatusOK:       0,
		models.HealthStatusDegraded: 1,
		models.HealthStatusFail:     2,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
