// Package config defines the server configuration structure.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifySession(&cfg.Session); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}

	// TLS cert and key come as a pair.
	cert, key := cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile
	if (cert == "") != (key == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}
	for _, f := range []string{cert, key} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("server.http TLS file %q: %w", f, err)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RPS <= 0 {
			return errors.New("server.rate_limit.rps must be positive")
		}
		if cfg.RateLimit.Burst < 1 {
			return errors.New("server.rate_limit.burst must be at least 1")
		}
	}
	return nil
}

func verifySession(cfg *SessionSection) error {
	if cfg.SweepPeriod <= 0 {
		return errors.New("session.sweep_period must be positive")
	}
	if cfg.SweepCountThreshold < 1 {
		return errors.New("session.sweep_count_threshold must be at least 1")
	}
	if cfg.Cookie.Name == "" {
		return errors.New("session.cookie.name is required")
	}
	if _, err := DecodeSealKey(cfg.Cookie.SealKey); err != nil {
		return err
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch cfg.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q is not one of json, text", cfg.Format)
	}
	return nil
}

// DecodeSealKey decodes the cookie seal key: empty (sealing disabled),
// 64 hex characters, or 32 raw bytes. Returns nil when sealing is
// disabled.
func DecodeSealKey(s string) ([]byte, error) {
	switch len(s) {
	case 0:
		return nil, nil
	case 64:
		key, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("session.cookie.seal_key is not valid hex: %w", err)
		}
		return key, nil
	case 32:
		return []byte(s), nil
	default:
		return nil, errors.New("session.cookie.seal_key must be 32 bytes or 64 hex characters")
	}
}
