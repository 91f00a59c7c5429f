package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"go.uber.org/zap"

	"VolunteerHub/config"
	"VolunteerHub/internal/cache"
	"VolunteerHub/internal/handler"
	"VolunteerHub/internal/middleware"
	"VolunteerHub/internal/queue"
	"VolunteerHub/internal/repository"
	"VolunteerHub/internal/router"
	"VolunteerHub/internal/schedule"
	"VolunteerHub/internal/service"
	"VolunteerHub/pkg/logger"
	"VolunteerHub/pkg/metrics"
	"VolunteerHub/pkg/snowflake"
	"VolunteerHub/pkg/token"
	"VolunteerHub/storage"
	"VolunteerHub/storage/database"
)

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

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize metrics, continuing without", zap.Error(err))
	}

	// token before middleware, middleware depends on the shared generator
	if err := token.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize token package", zap.Error(err))
	}

	if err := middleware.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize middlewares", zap.Error(err))
	}

	db := database.DB()
	shiftRepo := repository.NewShiftRepository(db)
	signupStore := repository.NewSignupStore(db)
	userRepo := repository.NewUserRepository(db)

	signupService := service.NewSignupService(
		shiftRepo,
		signupStore,
		userRepo,
		logger.Logger,
		service.WithSignupLocker(cache.RedisLocker{}, config.Cfg.SignupLockTTL),
		service.WithEventPublisher(queue.NewProducer()),
	)

	// for the manual admin trigger; the periodic loop is cmd/scheduler's job
	sweeper := schedule.NewAutoCheckoutSweeper(
		signupService,
		config.Cfg.AutoCheckoutInterval,
		config.Cfg.AutoCheckoutTimeout,
		logger.Logger,
	)

	signupHandler := handler.NewSignupHandler(signupService, sweeper)
	shiftHandler := handler.NewShiftHandler(shiftRepo)

	logger.Logger.Info("Server starting",
		zap.String("service", config.Cfg.ServiceName),
		zap.String("port", config.Cfg.ServerPort),
		zap.String("environment", config.Cfg.Environment),
	)

	addr := net.JoinHostPort(config.Cfg.ServerHost, config.Cfg.ServerPort)
	h := server.Default(server.WithHostPorts(addr))

	router.Register(h, signupHandler, shiftHandler)

	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}
