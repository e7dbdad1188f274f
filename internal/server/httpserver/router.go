package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/sesskeep-go/internal/core/service"
	"github.com/yndnr/sesskeep-go/internal/server/httpserver/handler"
	"github.com/yndnr/sesskeep-go/internal/telemetry/metric"
)

// RouterConfig carries the dependencies and middleware tuning for the
// HTTP router.
type RouterConfig struct {
	// SessionService serves the session endpoints. Required.
	SessionService *service.SessionService

	// Cookies resolves the session cookie for the /v1/me endpoints.
	// Optional; without it the cookie flow is not mounted.
	Cookies *handler.CookieResolver

	// Logger receives audit and error logs. Defaults to slog.Default.
	Logger *slog.Logger

	// Metrics enables the /metrics endpoint and request observation.
	// Optional.
	Metrics *metric.Metrics

	// RateLimitRPS and RateLimitBurst tune per-IP throttling of the API
	// endpoints. A zero RPS disables throttling.
	RateLimitRPS   float64
	RateLimitBurst int

	// CORSAllowedOrigins enables CORS for the listed origins.
	CORSAllowedOrigins []string

	// EnableAudit logs one line per completed API request.
	EnableAudit bool
}

// NewRouter assembles the full HTTP handler: probe endpoints with a
// minimal middleware chain, and API endpoints behind the full chain.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	h := handler.New(cfg.SessionService, cfg.Cookies, log)

	// Probes and metrics skip throttling and audit so monitoring keeps
	// working under load.
	probeChain := []Middleware{RequestID(), Recover(log)}

	apiChain := []Middleware{RequestID(), Recover(log)}
	if len(cfg.CORSAllowedOrigins) > 0 {
		apiChain = append(apiChain, CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.RateLimitRPS > 0 {
		apiChain = append(apiChain, RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
	if cfg.EnableAudit {
		apiChain = append(apiChain, Audit(log))
	}
	if cfg.Metrics != nil {
		apiChain = append(apiChain, Observe(cfg.Metrics))
	}

	probes := Chain(h, probeChain...)
	api := Chain(h, apiChain...)

	mux := http.NewServeMux()
	mux.Handle("GET /health", probes)
	mux.Handle("GET /ready", probes)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), probeChain...))
	}
	mux.Handle("/v1/", api)

	return mux
}
