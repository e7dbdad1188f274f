package handler

import (
	"net/http"

	"github.com/yndnr/sesskeep-go/internal/core/service"
)

// handleCreateSession handles POST /v1/sessions.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp, err := h.sessions.Create(r.Context(), &service.CreateSessionRequest{
		Attributes:     req.Attributes,
		MaxIdleSeconds: req.MaxIdleSeconds,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, resp.Session)
}

// handleGetSession handles GET /v1/sessions/{id}.
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.Get(r.Context(), &service.GetSessionRequest{
		SessionID: r.PathValue("id"),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, view)
}

// handleRevokeSession handles DELETE /v1/sessions/{id}.
func (h *Handler) handleRevokeSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	resp, err := h.sessions.Revoke(r.Context(), &service.RevokeSessionRequest{
		SessionID: id,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, &RevokeResponse{
		SessionID: id,
		Revoked:   resp.Revoked,
	})
}

// handleTouchSession handles POST /v1/sessions/{id}/touch.
func (h *Handler) handleTouchSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	resp, err := h.sessions.Touch(r.Context(), &service.TouchSessionRequest{
		SessionID: id,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, &TouchResponse{
		SessionID:      id,
		LastAccessedAt: resp.LastAccessedAt,
	})
}

// handleRekeySession handles POST /v1/sessions/{id}/rekey.
func (h *Handler) handleRekeySession(w http.ResponseWriter, r *http.Request) {
	resp, err := h.sessions.Rekey(r.Context(), &service.RekeySessionRequest{
		SessionID: r.PathValue("id"),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, &RekeyResponse{
		OldSessionID: resp.OldSessionID,
		Session:      resp.Session,
	})
}

// handleSetAttribute handles PUT /v1/sessions/{id}/attributes/{key}.
func (h *Handler) handleSetAttribute(w http.ResponseWriter, r *http.Request) {
	var req SetAttributeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	view, err := h.sessions.SetAttribute(r.Context(), &service.SetAttributeRequest{
		SessionID: r.PathValue("id"),
		Key:       r.PathValue("key"),
		Value:     req.Value,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, view)
}

// handleDeleteAttribute handles DELETE /v1/sessions/{id}/attributes/{key}.
func (h *Handler) handleDeleteAttribute(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.DeleteAttribute(r.Context(), &service.DeleteAttributeRequest{
		SessionID: r.PathValue("id"),
		Key:       r.PathValue("key"),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, view)
}
