package middleware

import (
	"go.uber.org/zap"

	"VolunteerHub/pkg/logger"
)

// Init wires up middleware that needs shared state (the JWT generator).
func Init() error {
	if err := initAuthMiddleware(); err != nil {
		logger.Logger.Error("Failed to initialize auth middleware", zap.Error(err))
		return err
	}

	logger.Logger.Info("All middlewares initialized successfully")
	return nil
}
