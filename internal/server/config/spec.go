// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for sesskeep-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Session SessionSection `koanf:"session"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP      HTTPConfig      `koanf:"http"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`
}

// RateLimitConfig configures per-client request throttling.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// SessionSection configures the session store and cookie flow.
type SessionSection struct {
	// DefaultMaxIdle is the idle timeout applied to new sessions.
	// A negative value disables idle expiry by default.
	DefaultMaxIdle time.Duration `koanf:"default_max_idle"`

	// SweepPeriod is the maximum time between expiration sweeps.
	SweepPeriod time.Duration `koanf:"sweep_period"`

	// SweepCountThreshold forces a sweep once more than this many
	// sessions were registered since the last one.
	SweepCountThreshold int `koanf:"sweep_count_threshold"`

	Cookie CookieConfig `koanf:"cookie"`
}

// CookieConfig configures the browser session cookie.
type CookieConfig struct {
	// Name is the session cookie name.
	Name string `koanf:"name"`

	// Secure marks the cookie as HTTPS-only.
	Secure bool `koanf:"secure"`

	// SealKey, when set, enables authenticated encryption of the
	// cookie value. Must be exactly 32 bytes, hex or raw.
	SealKey string `koanf:"seal_key"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
