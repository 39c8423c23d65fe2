package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"alignbench/adapters/api"
	"alignbench/internal/config"
	"alignbench/internal/container"
	"alignbench/internal/logging"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.Init(appConfig.Logging.Level, appConfig.Logging.Format); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Sync()
	logger := logging.New("main")

	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		logger.Fatal("failed to create application container", zap.Error(err))
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = appContainer.Connect(connectCtx)
	cancel()
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer appContainer.Shutdown(context.Background())

	server := api.NewServer(appContainer.Scoring)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(":" + appConfig.Server.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}
}
