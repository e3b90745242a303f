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

	"github.com/spf13/pflag"
	"github.com/user/edge-probe/internal/adapter/edgefunction"
	"github.com/user/edge-probe/internal/app"
	"github.com/user/edge-probe/internal/delivery/http/handler"
	"github.com/user/edge-probe/internal/delivery/http/router"
	"github.com/user/edge-probe/internal/usecase"
	"github.com/user/edge-probe/pkg/config"
	"github.com/user/edge-probe/pkg/logger"
	"github.com/user/edge-probe/pkg/metrics"
)

func main() {
	// --- Configuration ---
	fs := pflag.NewFlagSet("api", pflag.ExitOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		slog.Error("Unable to load configuration", "error", err)
		os.Exit(1)
	}

	// --- Logger ---
	logLevel := logger.ParseLevel(cfg.LogLevel)
	logger.Init(os.Stdout, logLevel, cfg.LogFormat)
	slog.Info("Logger initialized", "level", logLevel.String())

	// --- Metrics ---
	metrics.Init()
	slog.Info("Metrics initialized")

	// --- Target ---
	target, err := app.LoadTarget(cfg)
	if err != nil {
		slog.Error("Unable to prepare probe target", "error", err)
		os.Exit(1)
	}
	slog.Info("Probe target loaded", "endpoint", target.Endpoint, "file", target.FileName)

	// --- Storage ---
	ctx := context.Background()
	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		slog.Error("Unable to open storage", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	// --- Use Cases ---
	diagnoser := usecase.NewDiagnoser(
		target,
		edgefunction.NewProber(),
		storage.Runs,
		storage.Failures,
		storage.Cooldown,
		storage.History,
	)
	history := usecase.NewRunHistory(storage.Runs, storage.History)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(diagnoser, history)
	httpRouter := router.New(apiHandler)

	// A diagnosis can take both probe timeouts back to back.
	writeTimeout := cfg.UnauthTimeout + cfg.AuthTimeout + 10*time.Second
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("Server exiting")
}
