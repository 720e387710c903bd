// ====================================
// File: cmd/graduator/main.go
// ====================================
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Ksavu/launched-lol-admin/internal/app"
	"github.com/Ksavu/launched-lol-admin/internal/config"
	"github.com/Ksavu/launched-lol-admin/internal/utils/logger"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to the configuration file (env-only when empty)")
	pflag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := log.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()
	log.Info("Starting launched.lol graduation admin")

	ctx := context.Background()
	runner := app.NewRunner(cfg, log)
	if err := runner.Initialize(ctx); err != nil {
		log.Error("Failed to initialize", zap.Error(err))
		_ = runner.Close()
		os.Exit(1)
	}

	if err := runner.Run(ctx); err != nil {
		log.Error("Admin API stopped with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Graduation admin stopped")
}
