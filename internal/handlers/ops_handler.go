package handlers

import (
	"net/http"

	"vgate-backend/internal/health"
	"vgate-backend/internal/monitoring"
)

// OpsHandler exposes the operational endpoints: health check and the admin
// system-stats snapshot.
type OpsHandler struct {
	Health  *health.HealthChecker
	Monitor *monitoring.Monitor
}

func NewOpsHandler(h *health.HealthChecker, m *monitoring.Monitor) *OpsHandler {
	return &OpsHandler{Health: h, Monitor: m}
}

func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := h.Health.Check()

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func (h *OpsHandler) SystemStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Monitor.Current())
}
