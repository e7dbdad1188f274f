package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yndnr/sesskeep-go/internal/core/service"
	"github.com/yndnr/sesskeep-go/internal/core/websession"
	"github.com/yndnr/sesskeep-go/internal/infra/confloader"
	"github.com/yndnr/sesskeep-go/internal/infra/shutdown"
	"github.com/yndnr/sesskeep-go/internal/infra/tlsroots"
	"github.com/yndnr/sesskeep-go/internal/server/config"
	"github.com/yndnr/sesskeep-go/internal/server/httpserver"
	"github.com/yndnr/sesskeep-go/internal/server/httpserver/handler"
	"github.com/yndnr/sesskeep-go/internal/telemetry/logger"
	"github.com/yndnr/sesskeep-go/internal/telemetry/metric"
	"github.com/yndnr/sesskeep-go/pkg/seal"
)

// Build information, set via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// storeStats defers the live-session gauge to a store that is created
// after the metrics registry it feeds.
type storeStats struct {
	store *websession.Store
}

func (s *storeStats) Count() int {
	if s.store == nil {
		return 0
	}
	return s.store.Count()
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("sesskeep-server %s (commit: %s, built: %s)\n", version, commit, buildTime)
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, slogLogger, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting sesskeep-server",
		"version", version,
		"commit", commit,
		"config", *configFile)

	stats := &storeStats{}
	metrics, err := metric.New(stats)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	store, err := websession.New(
		websession.WithMaxIdleTime(cfg.Session.DefaultMaxIdle),
		websession.WithSweepPeriod(cfg.Session.SweepPeriod),
		websession.WithSweepCountThreshold(cfg.Session.SweepCountThreshold),
		websession.WithLogger(slogLogger),
		websession.WithRecorder(metrics),
	)
	if err != nil {
		return fmt.Errorf("init session store: %w", err)
	}
	stats.store = store

	sessionSvc := service.NewSessionService(store)

	cookies, err := initCookies(cfg)
	if err != nil {
		return fmt.Errorf("init cookies: %w", err)
	}

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		SessionService:     sessionSvc,
		Cookies:            cookies,
		Logger:             slogLogger,
		Metrics:            metrics,
		RateLimitRPS:       rateLimitRPS(cfg),
		RateLimitBurst:     cfg.Server.RateLimit.Burst,
		CORSAllowedOrigins: nil,
		EnableAudit:        true,
	})

	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router)

	shutdownHandler := shutdown.NewHandler(30 * time.Second)
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	if *configFile != "" {
		watcher, err := startConfigWatcher(*configFile, slogLogger)
		if err != nil {
			log.Warn("config watcher unavailable", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(ctx context.Context) error {
				return watcher.Stop()
			})
		}
	}

	var certWatcher *tlsroots.Watcher
	if cfg.Server.HTTP.TLSCertFile != "" && cfg.Server.HTTP.TLSKeyFile != "" {
		certWatcher, err = tlsroots.NewWatcher(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile,
			tlsroots.WithLogger(slogLogger))
		if err != nil {
			return fmt.Errorf("load TLS certificate: %w", err)
		}
		certWatcher.StartAsync()
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			certWatcher.Stop()
			return nil
		})
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.HTTP.Addr)

		var err error
		if certWatcher != nil {
			err = httpServer.ListenAndServeTLS(certWatcher.GetCertificate)
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from defaults, file, and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger initializes the structured logger with redaction.
func initLogger(cfg *config.ServerConfig) (logger.Logger, *slog.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, nil, err
	}

	logger.SetDefault(log)
	return log, logger.Slog(log), nil
}

// initCookies builds the session cookie resolver, with sealing when a
// seal key is configured.
func initCookies(cfg *config.ServerConfig) (*handler.CookieResolver, error) {
	key, err := config.DecodeSealKey(cfg.Session.Cookie.SealKey)
	if err != nil {
		return nil, err
	}

	var sealer *seal.Sealer
	if key != nil {
		sealer, err = seal.New(key)
		if err != nil {
			return nil, err
		}
	}

	return handler.NewCookieResolver(cfg.Session.Cookie.Name, cfg.Session.Cookie.Secure, sealer), nil
}

func rateLimitRPS(cfg *config.ServerConfig) float64 {
	if !cfg.Server.RateLimit.Enabled {
		return 0
	}
	return cfg.Server.RateLimit.RPS
}

// startConfigWatcher reapplies the log level when the config file
// changes on disk. Other settings need a restart.
func startConfigWatcher(configFile string, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		return nil, err
	}

	watcher.OnChange(func(path string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("ignoring config reload", "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		log.Info("log level applied from config", "level", cfg.Log.Level)
	})

	watcher.StartAsync()
	return watcher, nil
}
