// Package httpserver provides the HTTP transport for SessKeep. It wraps
// the standard library server with lifecycle management and composes the
// middleware chain (request IDs, panic recovery, rate limiting, CORS,
// audit logging, metrics) in front of the REST handlers.
package httpserver
