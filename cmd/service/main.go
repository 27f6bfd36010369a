// cmd/service/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitscout/internal/api"
	"gitscout/internal/cache"
	"gitscout/internal/config"
	"gitscout/internal/github"
	"gitscout/internal/profile"
	"gitscout/internal/trending"
	"gitscout/internal/warmer"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application startup error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 2. Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully")

	// 3. Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Initialize the result cache
	resultCache, closeCache, err := newResultCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	// 5. Initialize application components
	ghClient, err := github.NewClientWithBaseURL(cfg.GithubToken, cfg.GithubAPIURL, logger)
	if err != nil {
		return fmt.Errorf("failed to create github client: %w", err)
	}
	if cfg.GithubToken == "" {
		logger.Warn("GITHUB_TOKEN is not set, search calls are anonymous and heavily rate limited")
	}
	trendingSvc := trending.NewService(ghClient, resultCache, cfg.TrendingTimeout, logger)
	profileSvc := profile.NewService(ghClient, cfg.DefaultGithubUser, cfg.NotificationWindow, logger)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.NewRouter(trendingSvc, profileSvc, logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 6. Start the cache warmer and the HTTP server in separate goroutines
	if cfg.WarmInterval > 0 {
		go warmer.NewWarmer(trendingSvc, logger, warmer.DefaultKeys, cfg.WarmInterval).Start(ctx)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 7. Wait for shutdown signal
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received. Draining connections.")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server forced to shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// newResultCache picks the shared Redis cache when REDIS_URL is set, the in-process one otherwise.
func newResultCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Cache, func(), error) {
	if cfg.RedisURL == "" {
		logger.Info("Using in-memory trending cache", "ttl", cfg.CacheTTL.String())
		return cache.NewMemory(cfg.CacheTTL), func() {}, nil
	}

	client, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Using redis trending cache", "addr", client.Options().Addr, "ttl", cfg.CacheTTL.String())

	return cache.NewRedis(client, cfg.CacheTTL, logger), func() { _ = client.Close() }, nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
