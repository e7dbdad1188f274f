package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-ID")
	})
	h := Chain(inner, RequestID())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	got := rec.Header().Get("X-Request-ID")
	if got == "" {
		t.Fatal("expected generated request ID on response")
	}
	if !strings.HasPrefix(got, "req-") {
		t.Errorf("request ID = %q, want req- prefix", got)
	}
	if seen != got {
		t.Errorf("handler saw request ID %q, response carries %q", seen, got)
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	h := Chain(okHandler(), RequestID())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-client-supplied")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got, want := rec.Header().Get("X-Request-ID"), "req-client-supplied"; got != want {
		t.Errorf("request ID = %q, want %q", got, want)
	}
}

func TestRecoverConvertsPanic(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	h := Chain(panicking, Recover(nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got, want := rec.Code, http.StatusInternalServerError; got != want {
		t.Errorf("status = %d, want %d", got, want)
	}
	if got, want := rec.Header().Get("X-Error-Code"), "SK-SYS-5000"; got != want {
		t.Errorf("error code = %q, want %q", got, want)
	}
}

func TestRateLimitThrottlesPerIP(t *testing.T) {
	h := Chain(okHandler(), RateLimit(1, 2))

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":12345"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	// Burst of 2 passes, third is throttled.
	for i := 0; i < 2; i++ {
		if got := send("10.0.0.1"); got != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, got, http.StatusOK)
		}
	}
	if got, want := send("10.0.0.1"), http.StatusTooManyRequests; got != want {
		t.Errorf("status = %d, want %d", got, want)
	}

	// A different client has its own bucket.
	if got, want := send("10.0.0.2"), http.StatusOK; got != want {
		t.Errorf("other client status = %d, want %d", got, want)
	}
}

func TestRateLimitConcurrentClients(t *testing.T) {
	h := Chain(okHandler(), RateLimit(1000, 1000))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.1.1:9000"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
		}(i)
	}
	wg.Wait()
}

func TestCORS(t *testing.T) {
	h := Chain(okHandler(), CORS([]string{"https://app.example.com"}))

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got, want := rec.Header().Get("Access-Control-Allow-Origin"), "https://app.example.com"; got != want {
			t.Errorf("allow-origin = %q, want %q", got, want)
		}
	})

	t.Run("denied origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("allow-origin = %q, want empty", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got, want := rec.Code, http.StatusNoContent; got != want {
			t.Errorf("preflight status = %d, want %d", got, want)
		}
	})
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/v1/sessions", "/v1/sessions"},
		{"/v1/sessions/sks-01jz0d3f8ke2x5m9q7t4bhw6rn", "/v1/sessions/{id}"},
		{"/v1/sessions/sks-01jz0d3f8ke2x5m9q7t4bhw6rn/touch", "/v1/sessions/{id}/touch"},
		{"/v1/sessions/sks-01jz0d3f8ke2x5m9q7t4bhw6rn/attributes/cart", "/v1/sessions/{id}/attributes/{key}"},
		{"/health", "/health"},
	}
	for _, tt := range tests {
		if got := routeLabel(tt.path); got != tt.want {
			t.Errorf("routeLabel(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "192.168.1.10:5432", nil, "192.168.1.10"},
		{"x-forwarded-for", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "203.0.113.7"},
		{"x-real-ip", "10.0.0.1:80", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
