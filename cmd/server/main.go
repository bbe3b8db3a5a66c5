package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdugdh24/speeddate-backend/internal/config"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/container"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Server.Env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize dependency injection container
	app, err := container.NewContainer(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application", "error", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("Error closing application", "error", err)
		}
	}()

	if app.Scheduler != nil {
		go app.Scheduler.Start(ctx)
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Server.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			log.Error("Server error", "error", err)
		}
		stop()
	}

	// Graceful shutdown
	if err := app.Server.Shutdown(context.Background()); err != nil {
		log.Error("Server shutdown error", "error", err)
		return
	}

	log.Info("Server exited properly")
}
