package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contaula-server/configs"
	httpEngine "contaula-server/internal/app/http"
	"contaula-server/internal/logics"
	"contaula-server/internal/repositories"

	"go.uber.org/zap"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "c", "", "Path to config file (short)")
	flag.StringVar(&configPath, "config", "", "Path to config file (long)")
	flag.Parse()

	// Initialize configuration and logger
	configs.Init(&configPath)
	defer configs.Logger.Sync()

	// Initialize shared database handles (MongoDB, Redis)
	repositories.Init()

	// Wire the service singletons
	if err := logics.Init(); err != nil {
		configs.Logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	// One-shot bootstrap: indexes, orphan sweep, default admin
	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 30*time.Second)
	if err := logics.UserSvc.Bootstrap(bootstrapCtx); err != nil {
		cancelBootstrap()
		configs.Logger.Fatal("Bootstrap failed", zap.Error(err))
	}
	cancelBootstrap()

	// Create HTTP server and run it in a separate goroutine.
	httpServer := httpEngine.NewServer()
	if httpServer == nil {
		configs.Logger.Fatal("Failed to create HTTP server")
	}
	go func() {
		if err := httpServer.Start(); err != nil {
			if err.Error() != "http: Server closed" {
				configs.Logger.Fatal("HTTP server error", zap.Error(err))
			}
		}
	}()

	// Wait for a shutdown signal (SIGINT, SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	configs.Logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		configs.Logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		configs.Logger.Info("HTTP server shutdown gracefully")
	}

	configs.Logger.Info("Server exited")
}
