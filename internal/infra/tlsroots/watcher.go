package tlsroots

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher keeps the server certificate fresh on disk rotation. Its
// GetCertificate method plugs into tls.Config so rotated certificates
// take effect on the next handshake, without a listener restart.
type Watcher struct {
	certFile string
	keyFile  string
	logger   *slog.Logger
	debounce time.Duration

	mu   sync.RWMutex
	cert *tls.Certificate

	done chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets the logger for the watcher.
func WithLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithDebounce sets the minimum interval between reloads, absorbing
// the burst of filesystem events a single rotation produces.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher loads the key pair and returns a watcher ready to serve
// it. The initial load must succeed; a server should not start with an
// unreadable certificate.
func NewWatcher(certFile, keyFile string, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		certFile: certFile,
		keyFile:  keyFile,
		logger:   slog.Default(),
		debounce: 500 * time.Millisecond,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.reload(); err != nil {
		return nil, fmt.Errorf("tlsroots: initial load: %w", err)
	}
	return w, nil
}

// GetCertificate returns the current certificate. It implements
// tls.Config.GetCertificate.
func (w *Watcher) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cert, nil
}

// StartAsync runs the watch loop in a goroutine until Stop is called.
func (w *Watcher) StartAsync() {
	go func() {
		if err := w.watch(); err != nil {
			w.logger.Error("certificate watcher stopped", "error", err)
		}
	}()
}

// Stop ends the watch loop. The last loaded certificate remains
// available through GetCertificate.
func (w *Watcher) Stop() {
	close(w.done)
}

// watch blocks, reloading the key pair whenever either file is written
// or recreated. Watching the parent directories instead of the files
// survives editor-style replace-by-rename.
func (w *Watcher) watch() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlsroots: create watcher: %w", err)
	}

	certDir := filepath.Dir(w.certFile)
	if err := fsw.Add(certDir); err != nil {
		fsw.Close()
		return fmt.Errorf("tlsroots: watch %s: %w", certDir, err)
	}
	if keyDir := filepath.Dir(w.keyFile); keyDir != certDir {
		if err := fsw.Add(keyDir); err != nil {
			fsw.Close()
			return fmt.Errorf("tlsroots: watch %s: %w", keyDir, err)
		}
	}

	w.logger.Info("certificate watcher started",
		"cert_file", w.certFile,
		"key_file", w.keyFile)

	certBase := filepath.Base(w.certFile)
	keyBase := filepath.Base(w.keyFile)

	// Events arrive on this goroutine only, so the debounce clock
	// needs no locking.
	var lastReload time.Time

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			base := filepath.Base(event.Name)
			if base != certBase && base != keyBase {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if time.Since(lastReload) < w.debounce {
				continue
			}
			lastReload = time.Now()

			// Cert and key rotate as a pair; give the second file a
			// moment to land before reading both.
			time.Sleep(100 * time.Millisecond)

			if err := w.reload(); err != nil {
				w.logger.Error("certificate reload failed",
					"error", err,
					"file", event.Name)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("certificate watcher error", "error", err)

		case <-w.done:
			return fsw.Close()
		}
	}
}

func (w *Watcher) reload() error {
	cert, err := tls.LoadX509KeyPair(w.certFile, w.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}

	w.mu.Lock()
	w.cert = &cert
	w.mu.Unlock()

	w.logger.Info("certificate loaded", "cert_file", w.certFile)
	return nil
}
