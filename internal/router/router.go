package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"VolunteerHub/internal/handler"
	"VolunteerHub/internal/middleware"
)

func Register(h *server.Hertz, signups *handler.SignupHandler, shifts *handler.ShiftHandler) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())

	v1 := h.Group("/v1")

	// shift discovery, read-only
	shiftRoutes := v1.Group("/shifts")
	shiftRoutes.Use(middleware.AuthMiddleware())
	{
		shiftRoutes.GET("", shifts.ListShifts)
		shiftRoutes.GET("/:shift_id", shifts.GetShift)
	}

	// signup lifecycle
	signupRoutes := v1.Group("/signups")
	signupRoutes.Use(middleware.AuthMiddleware())
	{
		signupRoutes.POST("", signups.CreateSignup)
		signupRoutes.GET("", signups.ListMySignups)
		signupRoutes.POST("/:signup_id/check-in", signups.CheckIn)
		signupRoutes.POST("/:signup_id/check-out", signups.CheckOut)
	}

	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/me/hours", signups.GetMyHours)
	}

	hours := v1.Group("/hours")
	hours.Use(middleware.AuthMiddleware())
	{
		hours.GET("", signups.GetAllHours)
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	{
		admin.POST("/sweeps/auto-checkout", signups.TriggerAutoCheckout)
	}
}
