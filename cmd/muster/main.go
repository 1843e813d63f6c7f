package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/openpaddock/muster/internal/cli"
	"github.com/openpaddock/muster/internal/config"
	"github.com/openpaddock/muster/internal/logging"
)

func newLogger(cfg *config.Config) logging.Logger {
	if cfg.LogBackend == "zap" {
		return logging.NewZapLogger(logging.NewProductionZap(cfg.LogLevel))
	}
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.SlogLevel(cfg.LogLevel),
	})))
}

func main() {
	cfg := config.LoadConfig()
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
