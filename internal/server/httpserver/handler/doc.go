// Package handler implements the REST endpoints of the SessKeep server:
// session CRUD and lifecycle under /v1/sessions, the cookie-based browser
// flow under /v1/me, operational stats, and health probes. All responses
// share a common JSON envelope.
package handler
