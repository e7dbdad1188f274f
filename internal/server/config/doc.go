// Package config provides server configuration for SessKeep.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Business validation (addresses, file existence, tuning)
//   - sanitize.go: Log sanitization (hide sensitive values)
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: files, environment variables, and flags.
package config
