package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/itchan-dev/anonboard/backend/internal/router"
	"github.com/itchan-dev/anonboard/backend/internal/setup"
	"github.com/itchan-dev/anonboard/shared/config"
	"github.com/itchan-dev/anonboard/shared/logger"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := setup.SetupDependencies(ctx, cfg)
	if err != nil {
		// without a store there is nothing to serve
		logger.Log.Error("failed to initialize storage", "driver", cfg.Public.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer deps.Storage.Cleanup()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.New(deps.Handler, cfg.Public.AllowedOrigins),
		ReadTimeout:  cfg.Public.ReadTimeout,
		WriteTimeout: cfg.Public.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Log.Info("server started", "addr", server.Addr, "driver", cfg.Public.StorageDriver)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server failed", "error", err)
		}
	case <-ctx.Done():
		logger.Log.Info("shutting down", "timeout", cfg.Public.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Public.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("graceful shutdown failed", "error", err)
		}
	}
	logger.Log.Info("server stopped")
}
