package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/sesskeep-go/internal/core/domain"
	"github.com/yndnr/sesskeep-go/internal/core/service"
)

// Handler serves the SessKeep REST API.
type Handler struct {
	sessions  *service.SessionService
	cookies   *CookieResolver
	logger    *slog.Logger
	startTime time.Time
	mux       *http.ServeMux
}

// New creates a Handler. cookies may be nil, in which case the /v1/me
// endpoints respond 404.
func New(sessions *service.SessionService, cookies *CookieResolver, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		sessions:  sessions,
		cookies:   cookies,
		logger:    logger,
		startTime: time.Now(),
		mux:       http.NewServeMux(),
	}
	h.registerRoutes()
	return h
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("POST /v1/sessions", h.handleCreateSession)
	h.mux.HandleFunc("GET /v1/sessions/{id}", h.handleGetSession)
	h.mux.HandleFunc("DELETE /v1/sessions/{id}", h.handleRevokeSession)
	h.mux.HandleFunc("POST /v1/sessions/{id}/touch", h.handleTouchSession)
	h.mux.HandleFunc("POST /v1/sessions/{id}/rekey", h.handleRekeySession)
	h.mux.HandleFunc("PUT /v1/sessions/{id}/attributes/{key}", h.handleSetAttribute)
	h.mux.HandleFunc("DELETE /v1/sessions/{id}/attributes/{key}", h.handleDeleteAttribute)

	if h.cookies != nil {
		h.mux.HandleFunc("GET /v1/me", h.handleMe)
		h.mux.HandleFunc("POST /v1/me/login", h.handleMeLogin)
		h.mux.HandleFunc("POST /v1/me/logout", h.handleMeLogout)
	}

	h.mux.HandleFunc("GET /v1/system/stats", h.handleStats)
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// writeJSON writes a success envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(getRequestID(r), data)); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewErrorResponse(getRequestID(r), code, message, details)); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}

// handleServiceError maps a service-layer error to an HTTP response.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var derr *domain.DomainError
	if errors.As(err, &derr) {
		h.writeError(w, r, errorCodeToHTTPStatus(derr.Code), derr.Code, derr.Message, derr.Details)
		return
	}

	h.logger.Error("unhandled service error", "error", err, "path", r.URL.Path)
	h.writeError(w, r, http.StatusInternalServerError, domain.ErrInternalServer.Code, "internal server error", "")
}

// errorCodeToHTTPStatus derives the HTTP status from an error code. The
// numeric suffix of SK-AREA-NNNN codes encodes the intended status.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4090"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4010"):
		return http.StatusUnauthorized
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"),
		strings.HasSuffix(code, "-4002"), strings.HasSuffix(code, "-4003"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "SK-ARG-"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "SK-SYS-5"):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON parses a request body into dst. An empty body is allowed
// and leaves dst zero-valued.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return domain.ErrBadRequest.WithDetails("invalid JSON body").WithCause(err)
	}
	return nil
}

func getRequestID(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}
