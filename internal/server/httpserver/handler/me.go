package handler

import (
	"net/http"

	"github.com/yndnr/sesskeep-go/internal/core/domain"
	"github.com/yndnr/sesskeep-go/internal/core/service"
)

// The /v1/me endpoints drive the browser flow: the session ID travels in
// a cookie instead of the URL, so a page never has to see a raw id.

// handleMeLogin handles POST /v1/me/login. It creates a session and
// installs the session cookie on the response.
func (h *Handler) handleMeLogin(w http.ResponseWriter, r *http.Request) {
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

	if err := h.cookies.Set(w, resp.Session.ID); err != nil {
		h.logger.Error("failed to seal session cookie", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, domain.ErrInternalServer.Code, "internal server error", "")
		return
	}

	h.writeJSON(w, r, http.StatusCreated, resp.Session)
}

// handleMe handles GET /v1/me. It resolves the caller's session from the
// cookie; the lookup refreshes the idle window.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cookies.Resolve(r)
	if !ok {
		h.writeError(w, r, http.StatusUnauthorized, domain.ErrNoSessionCookie.Code, domain.ErrNoSessionCookie.Message, "")
		return
	}

	view, err := h.sessions.Get(r.Context(), &service.GetSessionRequest{SessionID: id})
	if err != nil {
		// The cookie points at a session that no longer exists, so the
		// cookie itself is stale.
		h.cookies.Expire(w)
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, view)
}

// handleMeLogout handles POST /v1/me/logout. It revokes the cookie's
// session and clears the cookie. Logging out without a live session
// still succeeds.
func (h *Handler) handleMeLogout(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cookies.Resolve(r)
	h.cookies.Expire(w)

	if !ok {
		h.writeJSON(w, r, http.StatusOK, &RevokeResponse{Revoked: false})
		return
	}

	resp, err := h.sessions.Revoke(r.Context(), &service.RevokeSessionRequest{SessionID: id})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, &RevokeResponse{
		SessionID: id,
		Revoked:   resp.Revoked,
	})
}
