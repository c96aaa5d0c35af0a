package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/satrack/satrack/internal/api"
	"github.com/satrack/satrack/internal/auth"
	"github.com/satrack/satrack/internal/catalog"
	"github.com/satrack/satrack/internal/celestrak"
	"github.com/satrack/satrack/internal/track"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ground-track HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	logger := newLogger()

	addr := os.Getenv("SATRACK_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		return err
	}

	client := celestrak.NewClient(os.Getenv("SATRACK_CELESTRAK_URL"), logger)
	resolver := catalog.NewResolver(client, loadResolverConfig(logger), logger)
	engine := track.NewEngine(logger)

	srv := api.NewServer(api.Config{
		Addr:      addr,
		Auth:      authCfg,
		RateLimit: loadRateLimitConfig(logger),
	}, resolver, client, client, engine, logger)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			"addr", addr,
			"auth_enabled", authCfg.Enabled,
			"local_catalog_size", resolver.LocalTableSize(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error("server listen error", "error", err)
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("SATRACK_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("SATRACK_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("SATRACK_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("SATRACK_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

func loadResolverConfig(logger *slog.Logger) catalog.Config {
	cfg := catalog.Config{}

	if v := os.Getenv("SATRACK_SUGGESTION_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SATRACK_SUGGESTION_LIMIT value, using default", "value", v, "default", 5)
		} else {
			cfg.SuggestionLimit = n
		}
	}

	if v := os.Getenv("SATRACK_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SATRACK_CACHE_SIZE value, using default", "value", v, "default", 1024)
		} else {
			cfg.CacheSize = n
		}
	}

	return cfg
}

func loadRateLimitConfig(logger *slog.Logger) api.RateLimitConfig {
	cfg := api.RateLimitConfig{
		RequestsPerSecond: 10,
		Burst:             20,
	}

	if v := os.Getenv("SATRACK_RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			logger.Warn("invalid SATRACK_RATE_LIMIT_RPS value, using default", "value", v, "default", cfg.RequestsPerSecond)
		} else {
			cfg.RequestsPerSecond = f
		}
	}

	if v := os.Getenv("SATRACK_RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SATRACK_RATE_LIMIT_BURST value, using default", "value", v, "default", cfg.Burst)
		} else {
			cfg.Burst = n
		}
	}

	if v := os.Getenv("SATRACK_TRUST_PROXY"); v != "" {
		trust, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid SATRACK_TRUST_PROXY value, defaulting to false", "value", v)
		} else {
			cfg.TrustProxy = trust
		}
	}

	logger.Info("rate limit config",
		"requests_per_second", cfg.RequestsPerSecond,
		"burst", cfg.Burst,
		"trust_proxy", cfg.TrustProxy,
	)

	return cfg
}
