// Command server exposes plain, CSV and JSON resources over HTTP.
//
// Configuration priority: CLI flags > environment variables > config file > defaults.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/tendant/simple-resource/pkg/simpleresource"
	"github.com/tendant/simple-resource/pkg/simpleresource/api"
	"github.com/tendant/simple-resource/pkg/simpleresource/config"
)

func main() {
	configFlag := flag.String("config", "", "Config file (yaml, json, toml or .env)")
	portFlag := flag.String("port", "", "HTTP port (default: 8080)")
	storageFlag := flag.String("storage", "", "Storage URL (default: file://./storage/app)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		if usage, err := config.Usage(); err == nil {
			fmt.Fprintln(flag.CommandLine.Output())
			fmt.Fprintln(flag.CommandLine.Output(), usage)
		}
	}
	flag.Parse()

	cfg, err := loadConfig(*configFlag, *portFlag, *storageFlag)
	if err != nil {
		slog.Error("Failed to load server configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func loadConfig(file, port, storageURL string) (*config.ServerConfig, error) {
	opts := []config.Option{config.WithFile(file), config.WithEnv()}
	if port != "" {
		opts = append(opts, config.WithPort(port))
	}
	if storageURL != "" {
		opts = append(opts, config.WithStorageURL(storageURL))
	}
	return config.Load(opts...)
}

// newLogger writes colored text in development and JSON everywhere else
func newLogger(w io.Writer, cfg *config.ServerConfig) *slog.Logger {
	level, err := cfg.Level()
	if err != nil {
		level = slog.LevelInfo
	}

	if cfg.IsDevelopment() {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func newHandler(svc simpleresource.Service, cfg *config.ServerConfig, logger *slog.Logger) http.Handler {
	return api.NewRouter(svc,
		api.WithLogger(logger),
		api.WithStaticDir(cfg.StaticDir),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
		api.WithRequestTimeout(cfg.RequestTimeout),
		api.WithCORS(cfg.IsDevelopment()),
	)
}

func run(cfg *config.ServerConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := cfg.BuildService(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}
	defer cleanup()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           newHandler(svc, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Simple Resource Server starting",
			"port", cfg.Port,
			"env", cfg.Environment,
			"storage", cfg.StorageURL,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	// Create a deadline to wait for
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exiting")
	return nil
}
