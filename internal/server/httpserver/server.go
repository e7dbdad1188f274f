package httpserver

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"
)

// Server wraps http.Server with sane defaults and graceful shutdown.
type Server struct {
	srv *http.Server
}

// New creates a Server listening on addr and serving handler.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// ListenAndServe starts serving plaintext HTTP. It blocks until the
// server stops and returns nil on graceful shutdown.
func (s *Server) ListenAndServe() error {
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// ListenAndServeTLS starts serving HTTPS. getCert supplies the server
// certificate per handshake, so rotated certificates take effect
// without a restart.
func (s *Server) ListenAndServeTLS(getCert func(*tls.ClientHelloInfo) (*tls.Certificate, error)) error {
	s.srv.TLSConfig = &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: getCert,
	}
	err := s.srv.ListenAndServeTLS("", "")
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server, waiting for in-flight requests
// to complete or the context to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
