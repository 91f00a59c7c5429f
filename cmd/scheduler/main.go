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
	"VolunteerHub/internal/schedule"
	"VolunteerHub/internal/service"
	"VolunteerHub/pkg/logger"
	"VolunteerHub/pkg/metrics"
	"VolunteerHub/pkg/snowflake"
	"VolunteerHub/storage"
	"VolunteerHub/storage/database"
)

// The scheduler process owns the periodic auto-checkout sweep, kept
// apart from the HTTP server so API deployment never interrupts it.
func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize metrics, continuing without", zap.Error(err))
	}

	db := database.DB()
	signupService := service.NewSignupService(
		repository.NewShiftRepository(db),
		repository.NewSignupStore(db),
		repository.NewUserRepository(db),
		logger.Logger,
		service.WithEventPublisher(queue.NewProducer()),
	)

	sweeper := schedule.NewAutoCheckoutSweeper(
		signupService,
		config.Cfg.AutoCheckoutInterval,
		config.Cfg.AutoCheckoutTimeout,
		logger.Logger,
	)

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", config.Cfg.ServiceName+"-scheduler"),
		zap.String("environment", config.Cfg.Environment),
		zap.Duration("auto_checkout_interval", config.Cfg.AutoCheckoutInterval),
	)

	sweeper.Run(ctx)

	logger.Logger.Info("Scheduler service shutting down gracefully")
}
