// Package handler provides HTTP handlers for the TripDesk admin API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/tripdesk/tripdesk/internal/api/models"
	"github.com/tripdesk/tripdesk/internal/api/response"
	"github.com/tripdesk/tripdesk/internal/resilience"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	db        Pinger
	upstreams *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler. db and upstreams may be nil.
func NewOpsHandler(version, buildTime string, db Pinger, upstreams *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		db:        db,
		upstreams: upstreams,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			health.Status = models.HealthStatusFail
			health.Details = map[string]interface{}{"database": err.Error()}
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - subsystem and upstream status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   now,
	}

	dbStatus := models.SubsystemStatus{Name: "postgres", Status: models.HealthStatusOK}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			detail := err.Error()
			dbStatus.Status = models.HealthStatusFail
			dbStatus.Detail = &detail
			status.Status = models.HealthStatusFail
		}
	}
	status.Subsystems = append(status.Subsystems, dbStatus)

	if h.upstreams != nil {
		for _, health := range h.upstreams.GetAllHealth() {
			status.Upstreams = append(status.Upstreams, upstreamStatus(health))
			if health.IsUnhealthy() && status.Status == models.HealthStatusOK {
				status.Status = models.HealthStatusDegraded
			}
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func upstreamStatus(h *resilience.UpstreamHealth) models.UpstreamStatus {
	s := models.UpstreamStatus{
		Upstream: h.Name,
		Status:   models.HealthStatusOK,
	}
	switch {
	case h.IsUnhealthy():
		s.Status = models.HealthStatusFail
	case h.IsDegraded():
		s.Status = models.HealthStatusDegraded
	}
	if h.LastSuccessAt != nil {
		ts := models.Timestamp(*h.LastSuccessAt)
		s.LastSuccessAt = &ts
	}
	if h.LastFailureAt != nil {
		ts := models.Timestamp(*h.LastFailureAt)
		s.LastFailureAt = &ts
	}
	if h.LastError != "" {
		msg := h.LastError
		s.Message = &msg
	}
	return s
}
