package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"VolunteerHub/config"
	"VolunteerHub/pkg/errors"
	"VolunteerHub/pkg/logger"
	"VolunteerHub/pkg/response"
)

// RecoverMiddleware turns handler panics into logged 500 responses.
func RecoverMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				handlePanic(ctx, c, err)
			}
		}()

		c.Next(ctx)
	}
}

func handlePanic(ctx context.Context, c *app.RequestContext, err interface{}) {
	fields := []zap.Field{
		zap.String("panic", fmt.Sprintf("%v", err)),
		zap.String("path", string(c.Path())),
		zap.String("method", string(c.Method())),
		zap.String("client_ip", c.ClientIP()),
		zap.ByteString("stack", debug.Stack()),
	}

	if userID, exists := GetUserID(ctx, c); exists {
		fields = append(fields, zap.Int64("user_id", userID))
	}

	logger.Logger.Error("[PANIC RECOVERED]", fields...)

	errDef := errors.Definition{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: "Internal server error",
	}

	if config.Cfg.IsProduction() {
		response.Error(ctx, c, errDef)
		return
	}

	response.ErrorWithDetails(ctx, c, errDef, map[string]interface{}{
		"panic": fmt.Sprintf("%v", err),
	})
}
