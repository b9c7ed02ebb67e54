package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/kapu/customer-crm-go/internal/app"
	"github.com/kapu/customer-crm-go/internal/config"
	"github.com/kapu/customer-crm-go/internal/constants"
	"github.com/kapu/customer-crm-go/internal/platform/bootstrap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := bootstrap.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Customer CRM server starting...",
		slog.String("version", cfg.Version),
		slog.String("log_level", cfg.Logging.Level),
	)

	buildCtx, buildCancel := context.WithTimeout(context.Background(), constants.AppTimeout.Build)
	runtime, err := app.BuildRuntime(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", slog.Any("error", err))
		os.Exit(1)
	}
	defer runtime.Close()

	runtime.Run()
}
