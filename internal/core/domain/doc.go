// Package domain defines the shared domain vocabulary for SessKeep.
//
// It carries the structured error taxonomy used across the service,
// CLI, and transport layers. The session entity itself lives in
// internal/core/websession because it is inseparable from its registry.
package domain
