package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/sesskeep-go/internal/infra/buildinfo"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, &HealthResponse{
		Status:  "healthy",
		Version: buildinfo.Version,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// handleReady handles GET /ready. The store is purely in-memory, so the
// server is ready as soon as it accepts connections.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
