// Package logger provides structured logging for SessKeep.
//
// It wraps log/slog with JSON output, dynamic level adjustment, and
// automatic redaction of sensitive values: session identifiers
// (sks- prefixed) are partially masked, and attributes whose key looks
// like a credential are fully redacted.
//
// Context helpers carry a request-scoped logger and request id through
// the handler chain.
package logger
