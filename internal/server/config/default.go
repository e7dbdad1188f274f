// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr = "127.0.0.1:5086"

	DefaultMaxIdle             = 30 * time.Minute
	DefaultSweepPeriod         = 60 * time.Second
	DefaultSweepCountThreshold = 500

	DefaultCookieName = "SESSKEEP_SESSION"

	DefaultRateLimitRPS   = 50.0
	DefaultRateLimitBurst = 100

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr: DefaultHTTPAddr,
			},
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimitRPS,
				Burst:   DefaultRateLimitBurst,
			},
		},
		Session: SessionSection{
			DefaultMaxIdle:      DefaultMaxIdle,
			SweepPeriod:         DefaultSweepPeriod,
			SweepCountThreshold: DefaultSweepCountThreshold,
			Cookie: CookieConfig{
				Name:   DefaultCookieName,
				Secure: false,
			},
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
