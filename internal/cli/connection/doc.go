// Package connection provides the HTTP client sesskeep-cli uses to
// talk to a SessKeep server, including TLS trust configuration for
// servers behind private certificate authorities.
package connection
