package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yndnr/sesskeep-go/internal/core/service"
	"github.com/yndnr/sesskeep-go/internal/core/websession"
)

var testEpoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

type envelope struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
	Details   string          `json:"details"`
}

func newTestHandler(t *testing.T) (*Handler, *websession.ManualClock) {
	t.Helper()
	clk := websession.NewManualClock(testEpoch)
	store, err := websession.New(websession.WithClock(clk))
	if err != nil {
		t.Fatalf("websession.New() error = %v", err)
	}
	svc := service.NewSessionService(store)
	return New(svc, NewCookieResolver("SESSKEEP_SESSION", false, nil), nil), clk
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %q: %v", rec.Body.String(), err)
	}
	return rec, &env
}

func createSession(t *testing.T, h *Handler, body any) *service.SessionView {
	t.Helper()
	rec, env := doJSON(t, h, http.MethodPost, "/v1/sessions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var view service.SessionView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode session view: %v", err)
	}
	return &view
}

func TestCreateSession(t *testing.T) {
	h, _ := newTestHandler(t)

	view := createSession(t, h, &CreateSessionRequest{
		Attributes: map[string]any{"user": "alice"},
	})

	if view.ID == "" {
		t.Error("expected non-empty session id")
	}
	if got, want := view.State, "started"; got != want {
		t.Errorf("state = %q, want %q", got, want)
	}
	if got, want := view.Attributes["user"], "alice"; got != want {
		t.Errorf("attribute user = %v, want %v", got, want)
	}
	if got, want := view.MaxIdleSeconds, int64(1800); got != want {
		t.Errorf("max idle = %d, want %d", got, want)
	}
}

func TestCreateSessionRejectsBadJSON(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got, want := rec.Code, http.StatusBadRequest; got != want {
		t.Errorf("status = %d, want %d", got, want)
	}
	if got, want := rec.Header().Get("X-Error-Code"), "SK-SYS-4000"; got != want {
		t.Errorf("error code = %q, want %q", got, want)
	}
}

func TestGetSession(t *testing.T) {
	h, _ := newTestHandler(t)
	view := createSession(t, h, nil)

	rec, env := doJSON(t, h, http.MethodGet, "/v1/sessions/"+view.ID, nil)
	if got, want := rec.Code, http.StatusOK; got != want {
		t.Fatalf("status = %d, want %d", got, want)
	}

	var got service.SessionView
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode session view: %v", err)
	}
	if got.ID != view.ID {
		t.Errorf("id = %q, want %q", got.ID, view.ID)
	}
}

func TestGetSessionErrors(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantCode   string
	}{
		{"malformed id", "not-a-session-id", http.StatusBadRequest, "SK-SESS-4001"},
		{"unknown id", "sks-01jz0d3f8ke2x5m9q7t4bhw6rn", http.StatusNotFound, "SK-SESS-4040"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doJSON(t, h, http.MethodGet, "/v1/sessions/"+tt.id, nil)
			if got := rec.Code; got != tt.wantStatus {
				t.Errorf("status = %d, want %d", got, tt.wantStatus)
			}
			if env.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", env.Code, tt.wantCode)
			}
		})
	}
}

func TestGetSessionExpired(t *testing.T) {
	h, clk := newTestHandler(t)
	view := createSession(t, h, nil)

	clk.Advance(31 * time.Minute)

	rec, _ := doJSON(t, h, http.MethodGet, "/v1/sessions/"+view.ID, nil)
	if got, want := rec.Code, http.StatusNotFound; got != want {
		t.Errorf("status = %d, want %d", got, want)
	}
}

func TestRevokeSession(t *testing.T) {
	h, _ := newTestHandler(t)
	view := createSession(t, h, nil)

	rec, env := doJSON(t, h, http.MethodDelete, "/v1/sessions/"+view.ID, nil)
	if got, want := rec.Code, http.StatusOK; got != want {
		t.Fatalf("status = %d, want %d", got, want)
	}
	var resp RevokeResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Revoked {
		t.Error("expected Revoked=true on first revoke")
	}

	// Second revoke is idempotent.
	_, env = doJSON(t, h, http.MethodDelete, "/v1/sessions/"+view.ID, nil)
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Revoked {
		t.Error("expected Revoked=false on repeat revoke")
	}
}

func TestTouchSession(t *testing.T) {
	h, clk := newTestHandler(t)
	view := createSession(t, h, nil)

	clk.Advance(20 * time.Minute)
	rec, env := doJSON(t, h, http.MethodPost, "/v1/sessions/"+view.ID+"/touch", nil)
	if got, want := rec.Code, http.StatusOK; got != want {
		t.Fatalf("status = %d, want %d", got, want)
	}
	var resp TouchResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got, want := resp.LastAccessedAt, testEpoch.Add(20*time.Minute); !got.Equal(want) {
		t.Errorf("last accessed = %v, want %v", got, want)
	}

	// Another 20 minutes is under the refreshed window.
	clk.Advance(20 * time.Minute)
	rec, _ = doJSON(t, h, http.MethodGet, "/v1/sessions/"+view.ID, nil)
	if got, want := rec.Code, http.StatusOK; got != want {
		t.Errorf("status after touch = %d, want %d", got, want)
	}
}

func TestRekeySession(t *testing.T) {
	h, _ := newTestHandler(t)
	view := createSession(t, h, map[string]any{"attributes": map[string]any{"user": "bob"}})

	rec, env := doJSON(t, h, http.MethodPost, "/v1/sessions/"+view.ID+"/rekey", nil)
	if got, want := rec.Code, http.StatusOK; got != want {
		t.Fatalf("status = %d, want %d", got, want)
	}
	var resp struct {
		OldSessionID string              `json:"old_session_id"`
		Session      service.SessionView `json:"session"`
	}
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OldSessionID != view.ID {
		t.Errorf("old id = %q, want %q", resp.OldSessionID, view.ID)
	}
	if resp.Session.ID == view.ID {
		t.Error("expected a fresh session id after rekey")
	}

	// Old id no longer resolves, new one does.
	rec, _ = doJSON(t, h, http.MethodGet, "/v1/sessions/"+view.ID, nil)
	if got, want := rec.Code, http.StatusNotFound; got != want {
		t.Errorf("old id status = %d, want %d", got, want)
	}
	rec, _ = doJSON(t, h, http.MethodGet, "/v1/sessions/"+resp.Session.ID, nil)
	if got, want := rec.Code, http.StatusOK; got != want {
		t.Errorf("new id status = %d, want %d", got, want)
	}
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"SK-SESS-4040", http.StatusNotFound},
		{"SK-SESS-4001", http.StatusBadRequest},
		{"SK-SESS-4003", http.StatusBadRequest},
		{"SK-SESS-4010", http.StatusUnauthorized},
		{"SK-CONF-4002", http.StatusBadRequest},
		{"SK-SYS-4000", http.StatusBadRequest},
		{"SK-SYS-4290", http.StatusTooManyRequests},
		{"SK-ARG-1001", http.StatusBadRequest},
		{"SK-SYS-5000", http.StatusInternalServerError},
		{"SK-UNKNOWN-9999", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := errorCodeToHTTPStatus(tt.code); got != tt.want {
				t.Errorf("errorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestAttributeEndpoints(t *testing.T) {
	h, _ := newTestHandler(t)
	view := createSession(t, h, nil)

	rec, env := doJSON(t, h, http.MethodPut, "/v1/sessions/"+view.ID+"/attributes/cart", &SetAttributeRequest{Value: []any{"a", "b"}})
	if got, want := rec.Code, http.StatusOK; got != want {
		t.Fatalf("put status = %d, want %d", got, want)
	}
	var got service.SessionView
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := got.Attributes["cart"]; !ok {
		t.Error("expected cart attribute after put")
	}

	rec, env = doJSON(t, h, http.MethodDelete, "/v1/sessions/"+view.ID+"/attributes/cart", nil)
	if got, want := rec.Code, http.StatusOK; got != want {
		t.Fatalf("delete status = %d, want %d", got, want)
	}
	var after service.SessionView
	if err := json.Unmarshal(env.Data, &after); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := after.Attributes["cart"]; ok {
		t.Error("expected cart attribute removed after delete")
	}
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)

	rec, env := doJSON(t, h, http.MethodGet, "/health", nil)
	if got, want := rec.Code, http.StatusOK; got != want {
		t.Fatalf("status = %d, want %d", got, want)
	}
	var resp HealthResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got, want := resp.Status, "healthy"; got != want {
		t.Errorf("status = %q, want %q", got, want)
	}
}

func TestStats(t *testing.T) {
	h, _ := newTestHandler(t)
	createSession(t, h, nil)
	createSession(t, h, nil)

	rec, env := doJSON(t, h, http.MethodGet, "/v1/system/stats", nil)
	if got, want := rec.Code, http.StatusOK; got != want {
		t.Fatalf("status = %d, want %d", got, want)
	}
	var resp statsData
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got, want := resp.LiveSessions, 2; got != want {
		t.Errorf("live sessions = %d, want %d", got, want)
	}
	if got, want := resp.DefaultMaxIdleSeconds, int64(1800); got != want {
		t.Errorf("default max idle = %d, want %d", got, want)
	}
}

func TestRequestIDEchoedInEnvelope(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-test-0001")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got, want := env.RequestID, "req-test-0001"; got != want {
		t.Errorf("request_id = %q, want %q", got, want)
	}
}
