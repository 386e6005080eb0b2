package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/app"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/config"
	"github.com/NastyaGoryachaya/crypto-quotes-service/pkg/logger"
	"github.com/shopspring/decimal"
)

func main() {
	// context + signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("config load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.Logger)

	// цены в JSON числами, а не строками
	decimal.MarshalJSONWithoutQuotes = true

	// build application
	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error("app init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// run application
	if err := application.Run(ctx); err != nil {
		log.Error("application stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("crypto-quotes-service stopped")
}
