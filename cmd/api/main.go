package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpAdapter "github.com/lorrc/user-directory/internal/adapters/primary/http"
	mw "github.com/lorrc/user-directory/internal/adapters/primary/http/middleware"
	"github.com/lorrc/user-directory/internal/adapters/primary/web"
	"github.com/lorrc/user-directory/internal/adapters/secondary/memory"
	"github.com/lorrc/user-directory/internal/adapters/secondary/randomuser"
	"github.com/lorrc/user-directory/internal/config"
	"github.com/lorrc/user-directory/internal/core/ports"
	"github.com/lorrc/user-directory/internal/core/services"
	"github.com/lorrc/user-directory/internal/infrastructure/logging"
	"github.com/lorrc/user-directory/internal/infrastructure/metrics"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.ServiceName = cfg.App.Name
	logCfg.Environment = cfg.App.Environment
	logCfg.AddSource = cfg.IsDevelopment()
	logger := logging.NewLogger(logCfg)

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("invalid display time zone", "error", err)
		os.Exit(1)
	}

	// 3. Metrics
	var (
		appMetrics *metrics.Metrics
		gatherer   prometheus.Gatherer
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		appMetrics = metrics.New(reg)
		gatherer = reg
	}

	// 4. Secondary Adapters
	userSource := randomuser.NewClient(randomuser.Config{
		BaseURL: cfg.UserSource.URL,
		Results: cfg.UserSource.Results,
	})
	sessions := memory.NewSessionStore(memory.SessionStoreConfig{
		TTL:             cfg.Session.TTL,
		CleanupInterval: cfg.Session.CleanupInterval,
	})

	// 5. Services (Core)
	var observer ports.FetchObserver
	if appMetrics != nil {
		observer = appMetrics
	}
	directoryService := services.NewDirectoryService(userSource, sessions, observer, logger)

	// 6. Primary Adapters
	renderer, err := web.NewRenderer(cfg.Display.Title, loc)
	if err != nil {
		logger.Error("failed to load page templates", "error", err)
		os.Exit(1)
	}

	var rateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		rlCfg := mw.DefaultRateLimiterConfig()
		rlCfg.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rlCfg.BurstSize = cfg.RateLimit.BurstSize
		rateLimiter = mw.NewRateLimiter(rlCfg)
	}

	errorHandler := httpAdapter.NewErrorHandler(logger)
	pageHandler := httpAdapter.NewPageHandler(directoryService, renderer, logger)
	usersHandler := httpAdapter.NewUsersHandler(directoryService, renderer, errorHandler, logger)
	healthHandler := httpAdapter.NewHealthHandler(userSource, sessions, cfg.App.Version, cfg.UserSource.PingTTL)

	// 7. Setup Router
	r := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		Logger: logger,
		Pages:  pageHandler,
		Users:  usersHandler,
		Health: healthHandler,
		Session: mw.SessionConfig{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.SecureCookie,
		},
		RateLimiter:     rateLimiter,
		Metrics:         appMetrics,
		MetricsGatherer: gatherer,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}
