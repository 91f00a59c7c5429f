package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"VolunteerHub/config"
	"VolunteerHub/internal/queue"
	"VolunteerHub/internal/repository"
	"VolunteerHub/internal/service"
	"VolunteerHub/pkg/logger"
	"VolunteerHub/storage"
	"VolunteerHub/storage/database"
)

// The worker drains signup lifecycle messages into notification tasks.
func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	notificationService := service.NewNotificationService(
		repository.NewNotificationStore(database.DB()),
		logger.Logger,
	)
	queue.SetNotificationService(notificationService)

	logger.Logger.Info("Worker service starting",
		zap.String("service", config.Cfg.ServiceName+"-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	queue.StartAllConsumers(ctx)

	logger.Logger.Info("Worker service shutting down gracefully")
}
