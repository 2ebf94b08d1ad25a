//go:build !js && !wasm

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Its-donkey/formwire/internal/config"
	"github.com/Its-donkey/formwire/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ui-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	flag.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "address to serve the UI on")
	flag.StringVar(&cfg.BackendURL, "backend", cfg.BackendURL, "base URL of the application backend")
	flag.StringVar(&cfg.AssetsDir, "assets", cfg.AssetsDir, "directory containing main.wasm and wasm_exec.js")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "minimum log level (DEBUG, INFO, WARN, ERROR)")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		return err
	}
	backend, err := cfg.Backend()
	if err != nil {
		return err
	}
	assets, err := filepath.Abs(cfg.AssetsDir)
	if err != nil {
		return fmt.Errorf("resolve assets dir: %w", err)
	}
	if info, err := os.Stat(assets); err != nil || !info.IsDir() {
		return fmt.Errorf("assets directory %s is invalid: %v", assets, err)
	}

	logger := logging.New("ui-server", logging.ParseLevel(cfg.LogLevel), os.Stdout)
	srv := &server{backend: backend, assetsDir: assets, log: logger}
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           logging.NewHTTPLogger(logger).Middleware(srv.routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		logger.Info("startup", "serving UI", map[string]any{
			"listen":  cfg.ListenAddr,
			"backend": backend.String(),
			"assets":  assets,
		})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown", "shutting down UI server", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}
