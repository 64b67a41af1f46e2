package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cristianadrielbraun/qrultimate/internal/config"
	"github.com/cristianadrielbraun/qrultimate/internal/logger"
	"github.com/cristianadrielbraun/qrultimate/internal/server"
)

func main() {
	cfg, err := config.Load(os.Getenv("QRULTIMATE_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}
	if err := logger.Initialize(cfg.Production); err != nil {
		log.Fatal(err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg); err != nil {
		logger.L().Fatal("server failed", zap.Error(err))
	}
}
