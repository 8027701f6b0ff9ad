// metre-server exposes the takeoff workspace over HTTP.
//
// Configuration comes from the environment (or a .env file):
// METRE_ADDR, METRE_DATA_DIR, METRE_STORAGE, METRE_LOG_LEVEL.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/piwi3910/metre/internal/config"
	"github.com/piwi3910/metre/internal/log"
	"github.com/piwi3910/metre/internal/model"
	"github.com/piwi3910/metre/internal/project"
	"github.com/piwi3910/metre/internal/server"
	"github.com/piwi3910/metre/internal/workspace"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := log.Init(cfg.Log)
	defer log.Close()

	store, err := project.Open(cfg.Storage, cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := project.GetCatalogue(ctx, store)
	if err != nil {
		return err
	}
	logger.Info("store opened", slog.String("storage", cfg.Storage), slog.String("data_dir", cfg.DataDir))
	ws := workspace.New(model.DefaultSettings(), cat, log.WithComponent("workspace"))

	srv := server.New(ws, store, server.Options{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Logger:       log.WithComponent("server"),
		Metrics:      server.NewMetrics(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
