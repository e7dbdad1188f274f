package handler

import (
	"net/http"

	"github.com/yndnr/sesskeep-go/internal/infra/buildinfo"
)

// statsData combines store statistics with build information.
type statsData struct {
	LiveSessions          int    `json:"live_sessions"`
	DefaultMaxIdleSeconds int64  `json:"default_max_idle_seconds"`
	Version               string `json:"version"`
	Commit                string `json:"commit"`
	GoVersion             string `json:"go_version"`
}

// handleStats handles GET /v1/system/stats.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.sessions.Stats(r.Context())
	info := buildinfo.Get()

	h.writeJSON(w, r, http.StatusOK, &statsData{
		LiveSessions:          stats.LiveSessions,
		DefaultMaxIdleSeconds: stats.DefaultMaxIdleSeconds,
		Version:               info.Version,
		Commit:                info.Commit,
		GoVersion:             info.GoVersion,
	})
}
