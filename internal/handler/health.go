package handler

import (
	"net/http"
	"time"
)

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	healthy := true

	if err := h.db.HealthCheck(r.Context()); err != nil {
		checks["postgres"] = "unhealthy: " + err.Error()
		healthy = false
	} else {
		checks["postgres"] = "healthy"
	}

	if err := h.rdb.HealthCheck(r.Context()); err != nil {
		checks["redis"] = "unhealthy: " + err.Error()
		healthy = false
	} else {
		checks["redis"] = "healthy"
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}

	writeJSON(w, status, map[string]interface{}{
		"success":   healthy,
		"status":    state,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
