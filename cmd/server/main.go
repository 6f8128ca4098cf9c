package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// run serves until ctx is cancelled, then drains connections for up to 15s.
func run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	views := viewFiles()
	names, err := listViews(views)
	if err != nil {
		return err
	}

	app, err := NewApp(cfg, views, logger)
	if err != nil {
		return err
	}

	logger.Info("configuration loaded",
		"source", cfg.Source,
		"cookie", cfg.CookieName,
		"signed_cookie", cfg.CookieSecret != "",
		"detect_user_agent", cfg.DetectUserAgent,
		"allow_external_redirects", cfg.AllowExternalRedirects,
	)
	logger.Info("views loaded", "count", len(names), "views", names)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      NewRouter(app, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
