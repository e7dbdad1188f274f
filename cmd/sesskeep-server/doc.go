// sesskeep-server is the SessKeep service process: an in-memory session
// store with lazy time-based expiration, exposed over a REST API.
package main
