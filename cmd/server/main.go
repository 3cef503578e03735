package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/catalog"
	"github.com/JonMunkholm/pharmadb/internal/config"
	"github.com/JonMunkholm/pharmadb/internal/core"
	"github.com/JonMunkholm/pharmadb/internal/logging"
	"github.com/JonMunkholm/pharmadb/internal/metrics"
	"github.com/JonMunkholm/pharmadb/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"backend", cfg.API.URL,
		"port", cfg.Server.Port,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	m := metrics.Default()

	// The browser's token wins; the configured token or token file covers
	// requests that carry none.
	tokens := api.Chain{api.ContextToken{}}
	if cfg.API.Token != "" {
		tokens = append(tokens, api.StaticToken(cfg.API.Token))
	} else {
		tokens = append(tokens, api.NewFileTokenStore(cfg.API.TokenFile))
	}

	client, err := api.New(cfg.API.URL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithTokenSource(tokens),
		api.WithMetrics(m),
	)
	if err != nil {
		slog.Error("failed to create backend client", "error", err)
		os.Exit(1)
	}

	limiter := core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)
	service := core.NewService(client,
		core.WithMetrics(m),
		core.WithImportLimiter(limiter),
		core.WithEntryLimit(cfg.Import.EntryLimit),
		core.WithMaxFileSize(cfg.Import.MaxFileSize),
	)

	slog.Info("catalog loaded",
		"domains", len(catalog.Domains()),
		"list_types", len(catalog.ListTypes()),
	)

	server := web.NewServer(service, cfg, m)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if st := limiter.Status(); st.Active > 0 {
			slog.Info("waiting for imports to complete", "active", st.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
