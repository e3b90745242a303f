// probe diagnoses whether the import-questionnaire Edge Function hangs on
// authenticated requests.
//
//	SUPABASE_ACCESS_TOKEN=... go run ./cmd/probe --file test_questionnaire.json
//
// It sends one multipart upload without credentials (expects a fast 401) and
// one with credentials (expects 200), prints both responses and a diagnosis,
// and exits 0 only if the authenticated upload succeeded.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/user/edge-probe/internal/adapter/edgefunction"
	"github.com/user/edge-probe/internal/app"
	"github.com/user/edge-probe/internal/report"
	"github.com/user/edge-probe/internal/usecase"
	"github.com/user/edge-probe/pkg/config"
	"github.com/user/edge-probe/pkg/logger"
	"github.com/user/edge-probe/pkg/metrics"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := pflag.NewFlagSet("probe", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}

	// Console output by default; LOG_FORMAT or --log-format still win.
	cfg, err := config.Load(fs, config.WithDefault("LOG_FORMAT", "text"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	logger.Init(os.Stderr, logger.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	target, err := app.LoadTarget(cfg)
	if err != nil {
		slog.Error("Cannot prepare probe", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		slog.Warn("Storage unavailable, keeping results in memory", "error", err)
		storage = app.MemoryStorage(cfg.HistorySize)
	}
	defer storage.Close()

	diagnoser := usecase.NewDiagnoser(
		target,
		edgefunction.NewProber(),
		storage.Runs,
		storage.Failures,
		storage.Cooldown,
		storage.History,
	)

	// The CLI is always an explicit request, so it ignores the cooldown.
	result, err := diagnoser.Run(ctx, true)
	if err != nil {
		slog.Error("Diagnosis failed", "error", err)
		return 1
	}

	report.NewPrinter(os.Stdout).Run(result, report.Upload{
		FileName:    target.FileName,
		Size:        len(target.FileContent),
		AccessToken: target.AccessToken,
	})

	if cfg.PushgatewayURL != "" {
		if err := metrics.Push(cfg.PushgatewayURL, "edge_probe"); err != nil {
			slog.Warn("Failed to push metrics", "url", cfg.PushgatewayURL, "error", err)
		}
	}

	return result.ExitCode
}
