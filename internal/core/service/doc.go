// Package service provides the session domain service for SessKeep.
//
// SessionService orchestrates operations on the in-memory session store
// behind request/response structs, validating identifiers and mapping
// core-level absence to domain errors for the transport layer. The
// service is stateless and safe for concurrent use.
package service
